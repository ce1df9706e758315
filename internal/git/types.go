package git

import (
	"time"

	gitbackend "github.com/thiagokokada/gitblame-go/internal/git/backend"
	"github.com/thiagokokada/gitblame-go/internal/timefmt"
)

type (
	Signature = gitbackend.Signature
	Commit    = gitbackend.Commit
	Branch    = gitbackend.Branch
)

const shortIDLength = 7

// BlameLine attributes a single line of a file to the commit that last
// changed it.
type BlameLine struct {
	LineNumber  int // 1-based
	CommitID    string
	Author      string
	AuthorEmail string
	AuthorTime  time.Time
	Summary     string
	Message     string
}

// ShortID returns the abbreviated commit hash.
func (l BlameLine) ShortID() string {
	if len(l.CommitID) <= shortIDLength {
		return l.CommitID
	}
	return l.CommitID[:shortIDLength]
}

func (l BlameLine) AgeDays(now time.Time) int {
	return timefmt.AgeDays(now, l.AuthorTime)
}

func (l BlameLine) RelativeTime(now time.Time) string {
	return timefmt.Relative(now, l.AuthorTime)
}
