// Package gittest builds throwaway repositories for tests.
package gittest

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Author identifies who makes a commit. A zero When defaults to a fixed date.
type Author struct {
	Name  string
	Email string
	When  time.Time
}

var defaultWhen = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type Repo struct {
	Dir  string
	t    testing.TB
	repo *gitlib.Repository
}

// New initializes an empty repository in a temporary directory.
func New(t testing.TB) *Repo {
	t.Helper()
	dir := t.TempDir()
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	repo, err := gitlib.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}
	return &Repo{Dir: dir, t: t, repo: repo}
}

// Path returns the absolute path of rel inside the working tree.
func (r *Repo) Path(rel string) string {
	return filepath.Join(r.Dir, filepath.FromSlash(rel))
}

// WriteFile writes content to rel without staging it.
func (r *Repo) WriteFile(rel, content string) {
	r.t.Helper()
	full := r.Path(rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatalf("write %s: %v", rel, err)
	}
}

// Commit writes files, stages them and commits as author. It returns the
// full commit hash.
func (r *Repo) Commit(author Author, message string, files map[string]string) string {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("worktree: %v", err)
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.WriteFile(name, files[name])
		if _, err := wt.Add(name); err != nil {
			r.t.Fatalf("add %s: %v", name, err)
		}
	}
	when := author.When
	if when.IsZero() {
		when = defaultWhen
	}
	sig := &object.Signature{Name: author.Name, Email: author.Email, When: when}
	hash, err := wt.Commit(message, &gitlib.CommitOptions{Author: sig, Committer: sig, AllowEmptyCommits: true})
	if err != nil {
		r.t.Fatalf("commit: %v", err)
	}
	return hash.String()
}

// Branch creates a branch pointing at HEAD.
func (r *Repo) Branch(name string) {
	r.t.Helper()
	head, err := r.repo.Head()
	if err != nil {
		r.t.Fatalf("resolve HEAD: %v", err)
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), head.Hash())
	if err := r.repo.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("create branch %s: %v", name, err)
	}
}

// HeadBranch returns the short name of the branch HEAD points to.
func (r *Repo) HeadBranch() string {
	r.t.Helper()
	head, err := r.repo.Head()
	if err != nil {
		r.t.Fatalf("resolve HEAD: %v", err)
	}
	return head.Name().Short()
}

// ThreeAuthors builds the canonical fixture: a five-line file touched by three
// commits from three authors. Lines 1 and 4 belong to the first commit, lines
// 2-3 to the second and line 5 to the third.
func ThreeAuthors(t testing.TB) (*Repo, []string) {
	t.Helper()
	r := New(t)
	first := r.Commit(Author{Name: "Alice", Email: "alice@example.com", When: defaultWhen},
		"add notes\n\nInitial content.\n", map[string]string{"notes.txt": "a\nb\nc\nd\ne\n"})
	second := r.Commit(Author{Name: "Bob", Email: "bob@example.com", When: defaultWhen.Add(24 * time.Hour)},
		"capitalize middle\n", map[string]string{"notes.txt": "a\nB\nC\nd\ne\n"})
	third := r.Commit(Author{Name: "Carol", Email: "carol@example.com", When: defaultWhen.Add(48 * time.Hour)},
		"capitalize last\n", map[string]string{"notes.txt": "a\nB\nC\nd\nE\n"})
	return r, []string{first, second, third}
}
