package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/thiagokokada/gitblame-go/internal/annotate"
	"github.com/thiagokokada/gitblame-go/internal/color"
)

var (
	diffAdd = color.RGB{R: 76, G: 175, B: 80}
	diffDel = color.RGB{R: 244, G: 67, B: 54}
)

// PlainLines renders annotations without colour, one newline-terminated
// string per line, for diffing.
func PlainLines(anns []annotate.Annotation) []string {
	out := make([]string, 0, len(anns))
	for _, a := range anns {
		out = append(out, fmt.Sprintf("%d %s %s\n", a.Line.LineNumber, a.Line.ShortID(), a.Text))
	}
	return out
}

// Diff writes a unified diff between two renderings of path. Nothing is
// written when they are equal.
func (p *Printer) Diff(path string, before, after []string) error {
	ud := difflib.UnifiedDiff{
		A:        before,
		B:        after,
		FromFile: path + " (before)",
		ToFile:   path + " (after)",
		Context:  1,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return fmt.Errorf("diff annotations: %w", err)
	}
	if text == "" {
		return nil
	}
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			b.WriteString(p.paint(line, diffAdd))
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			b.WriteString(p.paint(line, diffDel))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	_, err = io.WriteString(p.out, b.String())
	return err
}
