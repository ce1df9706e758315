// Package annotate turns blame lines into display text and colours.
package annotate

import (
	"fmt"
	"strings"
)

// ColorMode picks what drives the colour of an annotation.
type ColorMode int

const (
	ColorNone ColorMode = iota
	ColorAuthor
	ColorAge
)

func (m ColorMode) String() string {
	switch m {
	case ColorAuthor:
		return "author"
	case ColorAge:
		return "age"
	default:
		return "none"
	}
}

func ParseColorMode(raw string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "author", "":
		return ColorAuthor, nil
	case "age":
		return ColorAge, nil
	case "none", "off":
		return ColorNone, nil
	}
	return ColorNone, fmt.Errorf("unknown colour mode %q (want author, age or none)", raw)
}
