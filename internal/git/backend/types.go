package backend

import (
	"strings"
	"time"
)

type Signature struct {
	Name  string
	Email string
	When  time.Time
}

type Commit struct {
	Hash         string
	ParentHashes []string
	Author       Signature
	Committer    Signature
	Message      string
}

// Summary returns the first line of the commit message.
func (c Commit) Summary() string {
	return firstLine(c.Message)
}

// Span is a run of consecutive lines last touched by the same commit.
type Span struct {
	CommitID string
	Author   Signature
	Message  string
	Lines    int
}

type Branch struct {
	Name     string // short name: main, origin/main
	Tip      string
	IsRemote bool
	IsHead   bool
	Upstream string // short name of the tracked branch, if any
}

func firstLine(message string) string {
	return strings.SplitN(strings.TrimSpace(message), "\n", 2)[0]
}
