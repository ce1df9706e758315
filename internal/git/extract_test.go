package git

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	gitbackend "github.com/thiagokokada/gitblame-go/internal/git/backend"
	"github.com/thiagokokada/gitblame-go/internal/gittest"
)

func TestExtract_ExpandsSpansInOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	when := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	backend := &fakeBackend{
		repoPath: root,
		blameFunc: func(relPath string) ([]gitbackend.Span, error) {
			return []gitbackend.Span{
				{CommitID: strings.Repeat("a", 40), Author: gitbackend.Signature{Name: "Alice", Email: "alice@example.com", When: when}, Message: "first\n\nbody\n", Lines: 2},
				{CommitID: strings.Repeat("b", 40), Author: gitbackend.Signature{Name: "Bob", Email: "bob@example.com", When: when}, Message: "second", Lines: 1},
			}, nil
		},
	}

	got := Extract(backend, filepath.Join(root, "dir", "file.go"))
	if backend.lastBlamePath != "dir/file.go" {
		t.Fatalf("blame path = %q, want %q", backend.lastBlamePath, "dir/file.go")
	}
	want := []BlameLine{
		{LineNumber: 1, CommitID: strings.Repeat("a", 40), Author: "Alice", AuthorEmail: "alice@example.com", AuthorTime: when, Summary: "first", Message: "first\n\nbody\n"},
		{LineNumber: 2, CommitID: strings.Repeat("a", 40), Author: "Alice", AuthorEmail: "alice@example.com", AuthorTime: when, Summary: "first", Message: "first\n\nbody\n"},
		{LineNumber: 3, CommitID: strings.Repeat("b", 40), Author: "Bob", AuthorEmail: "bob@example.com", AuthorTime: when, Summary: "second", Message: "second"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Extract mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_BackendErrorIsEmpty(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	backend := &fakeBackend{
		repoPath: root,
		blameFunc: func(string) ([]gitbackend.Span, error) {
			return nil, errors.New("binary file")
		},
	}
	if got := Extract(backend, filepath.Join(root, "logo.png")); len(got) != 0 {
		t.Fatalf("expected empty result, got %d lines", len(got))
	}
}

func TestExtract_OutsideTreeIsEmpty(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	other := t.TempDir()
	backend := &fakeBackend{repoPath: root}
	for _, path := range []string{"", filepath.Join(other, "file.go"), root, root + "-sibling/file.go"} {
		if got := Extract(backend, path); len(got) != 0 {
			t.Fatalf("Extract(%q) = %d lines, want none", path, len(got))
		}
	}
	if backend.lastBlamePath != "" {
		t.Fatalf("backend should not be called, got %q", backend.lastBlamePath)
	}
	if got := Extract(nil, filepath.Join(root, "file.go")); got != nil {
		t.Fatalf("nil backend should yield nil, got %+v", got)
	}
}

func TestRelativePath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "Src"), 0o755); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		path string
		want string
		ok   bool
	}{
		{name: "nested", path: filepath.Join(root, "Src", "main.go"), want: "Src/main.go", ok: true},
		{name: "missing_file", path: filepath.Join(root, "new.go"), want: "new.go", ok: true},
		{name: "root_itself", path: root},
		{name: "sibling_prefix", path: root + "x" + string(filepath.Separator) + "main.go"},
		{name: "relative_outside", path: "main.go"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := relativePath(root, tt.path)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("relativePath(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestBlameLine_Derived(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	line := BlameLine{CommitID: "0123456789abcdef", AuthorTime: now.Add(-49 * time.Hour)}
	if line.ShortID() != "0123456" {
		t.Fatalf("ShortID = %q", line.ShortID())
	}
	if line.AgeDays(now) != 2 {
		t.Fatalf("AgeDays = %d", line.AgeDays(now))
	}
	if line.RelativeTime(now) != "2 days ago" {
		t.Fatalf("RelativeTime = %q", line.RelativeTime(now))
	}
	if (BlameLine{CommitID: "abc"}).ShortID() != "abc" {
		t.Fatal("short ids should be returned unchanged")
	}
}

func TestExtract_ThreeAuthorsScenario(t *testing.T) {
	t.Parallel()

	repo, hashes := gittest.ThreeAuthors(t)
	backend, err := gitbackend.OpenNative(repo.Dir)
	if err != nil {
		t.Fatalf("OpenNative: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })

	lines := Extract(backend, repo.Path("notes.txt"))
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	wantAuthors := []string{"Alice", "Bob", "Bob", "Alice", "Carol"}
	wantHashes := []string{hashes[0], hashes[1], hashes[1], hashes[0], hashes[2]}
	for i, line := range lines {
		if line.LineNumber != i+1 {
			t.Fatalf("line %d has number %d", i, line.LineNumber)
		}
		if line.Author != wantAuthors[i] || line.CommitID != wantHashes[i] {
			t.Fatalf("line %d = %s/%s, want %s/%s", i+1, line.Author, line.CommitID, wantAuthors[i], wantHashes[i])
		}
		if line.ShortID() != wantHashes[i][:7] {
			t.Fatalf("line %d short id = %q", i+1, line.ShortID())
		}
	}
	if lines[1].Summary != "capitalize middle" || lines[0].Summary != "add notes" {
		t.Fatalf("unexpected summaries: %q, %q", lines[0].Summary, lines[1].Summary)
	}
}
