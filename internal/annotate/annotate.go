package annotate

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/thiagokokada/gitblame-go/internal/color"
	"github.com/thiagokokada/gitblame-go/internal/git"
	"github.com/thiagokokada/gitblame-go/internal/timefmt"
)

const (
	authorWidth  = 15
	messageWidth = 50
	ellipsis     = "…"
	separator    = " | "
)

type Options struct {
	Mode       ColorMode
	MaxAgeDays int
	DateLayout string // timefmt.RelativeLayout or a Go layout
	Dark       bool

	ShowAuthor  bool
	ShowDate    bool
	ShowMessage bool
	Compact     bool // drops the message
}

func DefaultOptions() Options {
	return Options{
		Mode:        ColorAuthor,
		MaxAgeDays:  365,
		DateLayout:  timefmt.RelativeLayout,
		ShowAuthor:  true,
		ShowDate:    true,
		ShowMessage: true,
	}
}

// Annotation is what a front end draws next to a line.
type Annotation struct {
	Line    git.BlameLine
	Text    string
	Date    string
	Color   color.RGB
	Colored bool
}

// Annotator renders blame lines. Author colours persist across calls so an
// author keeps its colour for the life of the Annotator.
type Annotator struct {
	opts    Options
	authors *color.AuthorColors
	now     func() time.Time
}

func New(opts Options, authors *color.AuthorColors) *Annotator {
	if authors == nil {
		authors = color.NewAuthorColors(nil)
	}
	return &Annotator{opts: opts, authors: authors, now: time.Now}
}

// WithClock returns a copy of a that reads the time from now.
func (a *Annotator) WithClock(now func() time.Time) *Annotator {
	cp := *a
	cp.now = now
	return &cp
}

func (a *Annotator) Annotate(line git.BlameLine) Annotation {
	now := a.now()
	date := timefmt.Format(now, line.AuthorTime, a.opts.DateLayout)
	out := Annotation{Line: line, Date: date}

	var parts []string
	if a.opts.ShowAuthor {
		parts = append(parts, truncate(line.Author, authorWidth, ellipsis))
	}
	if a.opts.ShowDate {
		parts = append(parts, date)
	}
	if a.opts.ShowMessage && !a.opts.Compact {
		parts = append(parts, truncate(line.Summary, messageWidth, ellipsis))
	}
	out.Text = strings.Join(parts, separator)

	switch a.opts.Mode {
	case ColorAuthor:
		out.Color = color.AdjustForTheme(a.authors.ColorFor(line.AuthorEmail), a.opts.Dark)
		out.Colored = true
	case ColorAge:
		out.Color = color.Heat(line.AgeDays(now), a.opts.MaxAgeDays)
		out.Colored = true
	}
	return out
}

func (a *Annotator) AnnotateAll(lines []git.BlameLine) []Annotation {
	out := make([]Annotation, 0, len(lines))
	for _, line := range lines {
		out = append(out, a.Annotate(line))
	}
	return out
}

// Details describes the commit behind line over several lines of text.
func (a *Annotator) Details(line git.BlameLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Commit: %s\n", line.CommitID)
	fmt.Fprintf(&b, "Author: %s <%s>\n", line.Author, line.AuthorEmail)
	fmt.Fprintf(&b, "Date:   %s (%s)\n", line.AuthorTime.Format("2006-01-02 15:04:05"), line.RelativeTime(a.now()))
	b.WriteString("\n")
	for _, l := range strings.Split(strings.TrimRight(line.Message, "\n"), "\n") {
		b.WriteString("    ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}

// truncate cuts s to width runes, replacing the tail with suffix.
func truncate(s string, width int, suffix string) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	keep := max(width-utf8.RuneCountInString(suffix), 0)
	runes := []rune(s)
	return string(runes[:keep]) + suffix
}
