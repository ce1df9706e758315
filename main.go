package main

import (
	"log"

	"github.com/thiagokokada/gitblame-go/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("gitblame-go: %v", err)
	}
}
