package cmd

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thiagokokada/gitblame-go/internal/blame"
	"github.com/thiagokokada/gitblame-go/internal/git"
	"github.com/thiagokokada/gitblame-go/internal/gittest"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cfg := writeConfig(t, "theme: dark\nlogLevel: none\n")
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), append([]string{"--config", cfg}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRun_Version(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"--version"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "gitblame-go ") || !strings.Contains(stdout.String(), "backend: ") {
		t.Fatalf("unexpected version output %q", stdout.String())
	}
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"--help"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr.String(), "Usage: gitblame-go") {
		t.Fatalf("usage missing from %q", stderr.String())
	}
}

func TestRun_RequiresFile(t *testing.T) {
	t.Parallel()

	if _, _, err := runCmd(t); err == nil {
		t.Fatal("expected error without FILE")
	}
}

func TestRun_InvalidOverride(t *testing.T) {
	t.Parallel()

	_, _, err := runCmd(t, "--max-age=-1", "whatever.txt")
	if err == nil || !strings.Contains(err.Error(), "maxAgeDays") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRun_OutsideRepository(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "loose.txt")
	if err := os.WriteFile(file, []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCmd(t, file); err == nil {
		t.Fatal("expected error outside a repository")
	}
}

func TestRun_Annotate(t *testing.T) {
	t.Parallel()

	repo, _ := gittest.ThreeAuthors(t)
	out, _, err := runCmd(t, repo.Path("notes.txt"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 5 annotated lines and a summary, got:\n%s", out)
	}
	for i, author := range []string{"Alice", "Bob", "Bob", "Alice", "Carol"} {
		if !strings.Contains(lines[i], author) {
			t.Fatalf("line %d missing %s: %q", i+1, author, lines[i])
		}
	}
	if !strings.HasSuffix(lines[4], "│ E") {
		t.Fatalf("source text missing: %q", lines[4])
	}
	if !strings.Contains(lines[5], "5 lines, 3 commits, 3 authors") {
		t.Fatalf("unexpected summary %q", lines[5])
	}
}

func TestRun_AnnotationFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		flags   []string
		want    []string
		notWant []string
	}{
		{name: "default", want: []string{"Alice", "add notes"}},
		{name: "compact", flags: []string{"--compact"}, want: []string{"Alice"}, notWant: []string{"add notes"}},
		{name: "no_message", flags: []string{"--no-message"}, want: []string{"Alice"}, notWant: []string{"add notes"}},
		{name: "no_author", flags: []string{"--no-author"}, want: []string{"add notes"}, notWant: []string{"Alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo, _ := gittest.ThreeAuthors(t)
			args := append(append([]string{"--lines", "1:1"}, tt.flags...), repo.Path("notes.txt"))
			out, _, err := runCmd(t, args...)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			first, _, _ := strings.Cut(out, "\n")
			for _, w := range tt.want {
				if !strings.Contains(first, w) {
					t.Errorf("annotation %q missing %q", first, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(first, w) {
					t.Errorf("annotation %q should not contain %q", first, w)
				}
			}
		})
	}
}

func TestRun_AnnotateRange(t *testing.T) {
	t.Parallel()

	repo, _ := gittest.ThreeAuthors(t)
	out, _, err := runCmd(t, "--lines", "2:3", repo.Path("notes.txt"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 3 || !strings.HasSuffix(lines[0], "│ B") || !strings.HasSuffix(lines[1], "│ C") {
		t.Fatalf("unexpected range output:\n%s", out)
	}
}

func TestRun_CopySHA(t *testing.T) {
	t.Parallel()

	repo, hashes := gittest.ThreeAuthors(t)
	out, _, err := runCmd(t, "--copy-sha", "5", repo.Path("notes.txt"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out) != hashes[2] {
		t.Fatalf("copy-sha = %q, want %q", out, hashes[2])
	}
	if _, _, err := runCmd(t, "--copy-sha", "9", repo.Path("notes.txt")); err == nil {
		t.Fatal("expected error for a missing line")
	}
}

func TestRun_Line(t *testing.T) {
	t.Parallel()

	repo, hashes := gittest.ThreeAuthors(t)
	out, _, err := runCmd(t, "--line", "2", repo.Path("notes.txt"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out, "gitblame: Bob, ") || !strings.Contains(out, "• capitalize middle") {
		t.Fatalf("unexpected status line: %q", out)
	}
	if !strings.Contains(out, "Commit: "+hashes[1]) {
		t.Fatalf("details missing commit: %q", out)
	}
}

func TestRun_History(t *testing.T) {
	t.Parallel()

	repo, hashes := gittest.ThreeAuthors(t)
	out, _, err := runCmd(t, "--history", repo.Path("notes.txt"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, h := range hashes {
		if !strings.Contains(out, h[:7]) {
			t.Fatalf("history missing %s:\n%s", h[:7], out)
		}
	}
}

func TestRun_Branches(t *testing.T) {
	t.Parallel()

	repo, _ := gittest.ThreeAuthors(t)
	repo.Branch("feature")
	out, _, err := runCmd(t, "--branches", repo.Path("notes.txt"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out, "On branch "+repo.HeadBranch()) || !strings.Contains(out, "feature") {
		t.Fatalf("unexpected branches output:\n%s", out)
	}
}

func TestParseRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in         string
		start, end int
		wantErr    bool
	}{
		{in: ""},
		{in: "2:4", start: 2, end: 4},
		{in: "3", start: 3, end: 3},
		{in: ":5", start: 1, end: 5},
		{in: "7:", start: 7, end: math.MaxInt},
		{in: "4:2", wantErr: true},
		{in: "0:2", wantErr: true},
		{in: "a:b", wantErr: true},
	}
	for _, tt := range tests {
		start, end, err := parseRange(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseRange(%q) error = %v", tt.in, err)
		}
		if err == nil && (start != tt.start || end != tt.end) {
			t.Fatalf("parseRange(%q) = %d:%d, want %d:%d", tt.in, start, end, tt.start, tt.end)
		}
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := newLogger(&buf, "none", false)
	if err != nil {
		t.Fatal(err)
	}
	log.Error("hidden")
	if buf.Len() != 0 {
		t.Fatalf("none should discard, got %q", buf.String())
	}

	log, err = newLogger(&buf, "error", true)
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("verbose should enable debug, got %q", buf.String())
	}

	if _, err := newLogger(&buf, "loud", false); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLatestLoad_KeepsNewest(t *testing.T) {
	t.Parallel()

	l := newLatestLoad("/repo/f")
	l.offer(blame.Loaded{Path: "/repo/f", Lines: make([]git.BlameLine, 1)})
	l.offer(blame.Loaded{Path: "/repo/other", Lines: make([]git.BlameLine, 7)})
	l.offer(blame.Loaded{Path: "/repo/f", Lines: make([]git.BlameLine, 3)})

	ev := <-l.events
	if len(ev.Lines) != 3 {
		t.Fatalf("received event with %d lines, want the newest (3)", len(ev.Lines))
	}
	select {
	case ev := <-l.events:
		t.Fatalf("unexpected second event %+v", ev)
	default:
	}

	l.offer(blame.Loaded{Path: "/repo/f", Lines: make([]git.BlameLine, 2)})
	if ev := <-l.events; len(ev.Lines) != 2 {
		t.Fatalf("received event with %d lines, want 2", len(ev.Lines))
	}
}
