package backend

import "errors"

// ErrNotFound is returned by Discover when no enclosing repository exists.
var ErrNotFound = errors.New("repository not found")

// Backend abstracts access to repository data.
//
// The default implementation uses go-git, but building with the gitcli tag
// shells out to the git executable instead. Callers only ever see the
// interface.
type Backend interface {
	RepoPath() string
	HeadState() (hash string, headName string, ok bool, err error)

	// Blame returns the attribution spans of relPath at HEAD, in file order.
	// relPath uses forward slashes and is relative to RepoPath.
	Blame(relPath string) ([]Span, error)
	FileLog(relPath string, limit int) ([]Commit, error)
	Branches() ([]Branch, error)

	Close() error
}

// Opener opens a backend for a canonical repository root.
type Opener func(root string) (Backend, error)
