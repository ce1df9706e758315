package git

import (
	"errors"
	"sync/atomic"

	gitbackend "github.com/thiagokokada/gitblame-go/internal/git/backend"
)

type fakeBackend struct {
	repoPath string

	headStateFunc func() (hash string, headName string, ok bool, err error)
	blameFunc     func(relPath string) ([]gitbackend.Span, error)
	fileLogFunc   func(relPath string, limit int) ([]gitbackend.Commit, error)
	branchesFunc  func() ([]gitbackend.Branch, error)
	closeErr      error

	lastBlamePath string
	lastLogLimit  int
	closed        atomic.Int32
}

func (f *fakeBackend) RepoPath() string { return f.repoPath }

func (f *fakeBackend) HeadState() (hash string, headName string, ok bool, err error) {
	if f.headStateFunc != nil {
		return f.headStateFunc()
	}
	return "", "", false, errors.New("unexpected HeadState call")
}

func (f *fakeBackend) Blame(relPath string) ([]gitbackend.Span, error) {
	f.lastBlamePath = relPath
	if f.blameFunc != nil {
		return f.blameFunc(relPath)
	}
	return nil, errors.New("unexpected Blame call")
}

func (f *fakeBackend) FileLog(relPath string, limit int) ([]gitbackend.Commit, error) {
	f.lastLogLimit = limit
	if f.fileLogFunc != nil {
		return f.fileLogFunc(relPath, limit)
	}
	return nil, errors.New("unexpected FileLog call")
}

func (f *fakeBackend) Branches() ([]gitbackend.Branch, error) {
	if f.branchesFunc != nil {
		return f.branchesFunc()
	}
	return nil, errors.New("unexpected Branches call")
}

func (f *fakeBackend) Close() error {
	f.closed.Add(1)
	return f.closeErr
}
