package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/thiagokokada/gitblame-go/internal/git"
	"github.com/thiagokokada/gitblame-go/internal/timefmt"
)

const shortHash = 7

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	return t
}

func abbrev(hash string) string {
	if len(hash) > shortHash {
		return hash[:shortHash]
	}
	return hash
}

// History writes the commits that touched a file, newest first.
func (p *Printer) History(path string, commits []git.Commit) error {
	if len(commits) == 0 {
		_, err := fmt.Fprintf(p.out, "no history for %s\n", path)
		return err
	}
	now := p.now()
	t := newTable()
	t.SetTitle(path)
	t.AppendHeader(table.Row{"Commit", "Author", "Date", "Message"})
	for _, c := range commits {
		t.AppendRow(table.Row{
			abbrev(c.Hash),
			c.Author.Name,
			fmt.Sprintf("%s (%s)", c.Author.When.Format("2006-01-02"), timefmt.Relative(now, c.Author.When)),
			c.Summary(),
		})
	}
	t.AppendFooter(table.Row{"", "", "", humanize.Comma(int64(len(commits))) + " commits"})
	_, err := io.WriteString(p.out, t.Render()+"\n")
	return err
}

// Branches writes local then remote branches, marking the checked out one.
func (p *Printer) Branches(branches []git.Branch) error {
	if len(branches) == 0 {
		_, err := io.WriteString(p.out, "no branches\n")
		return err
	}
	t := newTable()
	t.AppendHeader(table.Row{"", "Branch", "Tip", "Upstream"})
	for _, b := range branches {
		marker := ""
		if b.IsHead {
			marker = "*"
		}
		name := b.Name
		if b.IsRemote {
			name = "remotes/" + name
		}
		t.AppendRow(table.Row{marker, name, abbrev(b.Tip), b.Upstream})
	}
	_, err := io.WriteString(p.out, t.Render()+"\n")
	return err
}

// Summary writes one line with line, commit and author counts and the date
// of the newest change.
func (p *Printer) Summary(path string, lines []git.BlameLine) error {
	_, err := io.WriteString(p.out, p.dim(summaryLine(path, lines, p.now()))+"\n")
	return err
}

func summaryLine(path string, lines []git.BlameLine, now time.Time) string {
	if len(lines) == 0 {
		return path + ": no blame"
	}
	commits := map[string]struct{}{}
	authors := map[string]struct{}{}
	newest := lines[0].AuthorTime
	for _, l := range lines {
		commits[l.CommitID] = struct{}{}
		authors[strings.ToLower(l.AuthorEmail)] = struct{}{}
		if l.AuthorTime.After(newest) {
			newest = l.AuthorTime
		}
	}
	return fmt.Sprintf("%s: %s lines, %s commits, %s authors, last changed %s",
		path,
		humanize.Comma(int64(len(lines))),
		humanize.Comma(int64(len(commits))),
		humanize.Comma(int64(len(authors))),
		humanize.RelTime(newest, now, "ago", "from now"),
	)
}
