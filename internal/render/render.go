// Package render writes blame annotations, history and branch listings to a
// terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	fcolor "github.com/fatih/color"

	"github.com/thiagokokada/gitblame-go/internal/annotate"
	"github.com/thiagokokada/gitblame-go/internal/color"
)

// maxAnnotationWidth caps the padded annotation column.
const maxAnnotationWidth = 72

type Options struct {
	Color  bool // emit 24-bit ANSI colours
	Dark   bool
	Syntax bool // highlight source text
}

type Printer struct {
	out  io.Writer
	opts Options
	now  func() time.Time
}

func New(out io.Writer, opts Options) *Printer {
	return &Printer{out: out, opts: opts, now: time.Now}
}

// paint wraps s in a truecolor foreground escape.
func (p *Printer) paint(s string, c color.RGB) string {
	if !p.opts.Color || s == "" {
		return s
	}
	fc := fcolor.New(fcolor.Attribute(38), fcolor.Attribute(2),
		fcolor.Attribute(c.R), fcolor.Attribute(c.G), fcolor.Attribute(c.B))
	fc.EnableColor()
	return fc.Sprint(s)
}

func (p *Printer) dim(s string) string {
	return p.paint(s, color.TextColor(p.opts.Dark))
}

// Blame writes one row per annotation: short id, annotation text, line
// number and the matching line of source. source may be shorter than anns
// when the working copy has fewer lines than HEAD.
func (p *Printer) Blame(path string, anns []annotate.Annotation, source string) error {
	lines := splitSource(source)
	var hl [][]token
	if p.opts.Syntax {
		hl = highlightLines(path, source, p.opts.Dark)
	}

	width := 0
	for _, a := range anns {
		width = max(width, utf8.RuneCountInString(a.Text))
	}
	width = min(width, maxAnnotationWidth)
	numWidth := len(fmt.Sprint(len(anns)))

	var b strings.Builder
	for i, a := range anns {
		text := pad(a.Text, width)
		if a.Colored {
			text = p.paint(text, a.Color)
		}
		var code string
		if i < len(hl) {
			code = p.tokens(hl[i])
		} else if i < len(lines) {
			code = lines[i]
		}
		fmt.Fprintf(&b, "%s %s %s %s %s\n",
			p.dim(a.Line.ShortID()),
			text,
			p.dim(fmt.Sprintf("%*d", numWidth, a.Line.LineNumber)),
			p.dim("│"),
			code,
		)
	}
	_, err := io.WriteString(p.out, b.String())
	return err
}

// Status writes the status line of a single annotation followed by the
// commit details.
func (p *Printer) Status(status string, a annotate.Annotation, details string) error {
	head := status
	if a.Colored {
		head = p.paint(status, a.Color)
	}
	_, err := fmt.Fprintf(p.out, "%s\n\n%s", head, details)
	return err
}

func (p *Printer) tokens(toks []token) string {
	var b strings.Builder
	for _, t := range toks {
		if t.set {
			b.WriteString(p.paint(t.text, t.color))
		} else {
			b.WriteString(t.text)
		}
	}
	return b.String()
}

func splitSource(source string) []string {
	if source == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(source, "\n"), "\n")
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		runes := []rune(s)
		return string(runes[:max(width-1, 0)]) + "…"
	}
	return s + strings.Repeat(" ", width-n)
}
