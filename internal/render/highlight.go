//go:build !nosyntaxhighlight

package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/thiagokokada/gitblame-go/internal/color"
)

type token struct {
	text  string
	color color.RGB
	set   bool
}

// highlightLines tokenises source as a whole and splits the tokens back into
// lines, so multi-line constructs keep their colour. It returns nil when no
// lexer matches path.
func highlightLines(path, source string, dark bool) [][]token {
	if source == "" {
		return nil
	}
	lexer := lexerForPath(path)
	if lexer == nil {
		return nil
	}
	style := styleForTheme(dark)
	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil
	}
	lines := [][]token{nil}
	for _, tok := range iterator.Tokens() {
		entry := style.Get(tok.Type)
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, nil)
			}
			if part == "" {
				continue
			}
			t := token{text: part}
			if entry.Colour.IsSet() {
				t.color = color.RGB{R: entry.Colour.Red(), G: entry.Colour.Green(), B: entry.Colour.Blue()}
				t.set = true
			}
			lines[len(lines)-1] = append(lines[len(lines)-1], t)
		}
	}
	if strings.HasSuffix(source, "\n") && len(lines) > 0 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func styleForTheme(dark bool) *chroma.Style {
	name := "github"
	if dark {
		name = "github-dark"
	}
	if st := styles.Get(name); st != nil {
		return st
	}
	return styles.Fallback
}

func lexerForPath(path string) chroma.Lexer {
	if path == "" {
		return nil
	}
	lexer := lexers.Match(path)
	if lexer == nil {
		return nil
	}
	return chroma.Coalesce(lexer)
}
