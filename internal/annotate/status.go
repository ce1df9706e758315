package annotate

import (
	"strings"
	"time"

	"github.com/thiagokokada/gitblame-go/internal/git"
	"github.com/thiagokokada/gitblame-go/internal/timefmt"
)

const (
	DefaultStatusFormat    = "{author}, {date} • {message}"
	DefaultStatusMaxLength = 100

	statusPrefix = "gitblame: "
	// statusDateLayout is used when the status line shows absolute dates.
	statusDateLayout = "2006-01-02 15:04"
)

type StatusOptions struct {
	Format       string
	MaxLength    int // 0 disables truncation
	RelativeDate bool
}

func DefaultStatusOptions() StatusOptions {
	return StatusOptions{
		Format:       DefaultStatusFormat,
		MaxLength:    DefaultStatusMaxLength,
		RelativeDate: true,
	}
}

// StatusLine expands the {author}, {date}, {message} and {sha} placeholders
// of opts.Format for line.
func StatusLine(line git.BlameLine, now time.Time, opts StatusOptions) string {
	format := opts.Format
	if format == "" {
		format = DefaultStatusFormat
	}
	author := line.Author
	if author == "" {
		author = "Unknown"
	}
	date := timefmt.Relative(now, line.AuthorTime)
	if !opts.RelativeDate {
		date = line.AuthorTime.Format(statusDateLayout)
	}
	result := strings.NewReplacer(
		"{author}", author,
		"{date}", date,
		"{message}", line.Summary,
		"{sha}", line.ShortID(),
	).Replace(format)
	if opts.MaxLength > 0 {
		result = truncate(result, opts.MaxLength, "...")
	}
	return statusPrefix + result
}
