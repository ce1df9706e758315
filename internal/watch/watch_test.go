package watch

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestShouldIgnoreWatchPath(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"/repo/.git/index.lock":    true,
		"/repo/.git/HEAD.LOCK":     true,
		"/repo/.git/fsmonitor.ipc": true,
		"/repo/.git/HEAD":          false,
		"/repo/main.go":            false,
	}
	for name, want := range tests {
		if got := shouldIgnoreWatchPath(name); got != want {
			t.Fatalf("shouldIgnoreWatchPath(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestRelevant(t *testing.T) {
	t.Parallel()

	root := filepath.FromSlash("/repo")
	w := New(filepath.Join(root, "src", "main.go"), root, 0, func() {}, nil)
	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{name: "file_write", ev: fsnotify.Event{Name: filepath.Join(root, "src", "main.go"), Op: fsnotify.Write}, want: true},
		{name: "file_rename", ev: fsnotify.Event{Name: filepath.Join(root, "src", "main.go"), Op: fsnotify.Rename}, want: true},
		{name: "file_chmod", ev: fsnotify.Event{Name: filepath.Join(root, "src", "main.go"), Op: fsnotify.Chmod}},
		{name: "sibling", ev: fsnotify.Event{Name: filepath.Join(root, "src", "other.go"), Op: fsnotify.Write}},
		{name: "head", ev: fsnotify.Event{Name: filepath.Join(root, ".git", "HEAD"), Op: fsnotify.Write}, want: true},
		{name: "ref", ev: fsnotify.Event{Name: filepath.Join(root, ".git", "refs", "heads", "main"), Op: fsnotify.Create}, want: true},
		{name: "lock", ev: fsnotify.Event{Name: filepath.Join(root, ".git", "index.lock"), Op: fsnotify.Create}},
		{name: "gitdir_sibling", ev: fsnotify.Event{Name: filepath.Join(root, ".gitignore"), Op: fsnotify.Write}},
	}
	for _, tt := range tests {
		if got := w.relevant(tt.ev); got != tt.want {
			t.Fatalf("%s: relevant() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWatchPaths(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	gitDir := filepath.Join(root, ".git")
	if err := os.MkdirAll(filepath.Join(gitDir, "refs", "heads"), 0o755); err != nil {
		t.Fatal(err)
	}
	got := slices.Sorted(watchPaths(filepath.Join(root, "main.go"), gitDir))
	want := []string{root, gitDir, filepath.Join(gitDir, "refs", "heads")}
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("watchPaths() = %v, want %v", got, want)
	}

	got = slices.Sorted(watchPaths(filepath.Join(root, "main.go"), filepath.Join(root, "missing")))
	if !slices.Equal(got, []string{root}) {
		t.Fatalf("missing git dir should be skipped, got %v", got)
	}
}

func TestWatcher_FiresOnWrite(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "main.go")
	if err := os.WriteFile(file, []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fired := make(chan struct{}, 4)
	w := New(file, "", 20*time.Millisecond, func() { fired <- struct{}{} },
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	if err := w.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	for range 3 {
		if err := os.WriteFile(file, []byte("package main\n\nfunc main() {}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not fire")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
