package git

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	gitbackend "github.com/thiagokokada/gitblame-go/internal/git/backend"
)

// Resolver finds the repository owning a file and keeps it open. It holds at
// most one repository at a time.
type Resolver struct {
	// mu guards backend/root: reads hold it shared so a reopen cannot close
	// the handle underneath a running blame.
	mu      sync.RWMutex
	backend gitbackend.Backend
	root    string

	open     gitbackend.Opener
	discover func(path string) (string, error)
	log      *slog.Logger
}

type Option func(*Resolver)

func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// WithOpener overrides how repositories are opened once discovered.
func WithOpener(open gitbackend.Opener) Option {
	return func(r *Resolver) {
		if open != nil {
			r.open = open
		}
	}
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		open:     gitbackend.Default(),
		discover: gitbackend.Discover,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewWithBackend returns a resolver already holding b.
func NewWithBackend(b gitbackend.Backend, opts ...Option) *Resolver {
	r := NewResolver(opts...)
	if b != nil {
		r.backend = b
		r.root = b.RepoPath()
	}
	return r
}

// TryOpen discovers the repository containing filePath and makes it the
// current one. It reports whether a repository is open for the path
// afterwards; failures are logged, never returned.
func (r *Resolver) TryOpen(filePath string) bool {
	if strings.TrimSpace(filePath) == "" {
		r.log.Debug("TryOpen: empty path")
		return false
	}
	root, err := r.discover(filePath)
	if err != nil {
		if errors.Is(err, gitbackend.ErrNotFound) {
			r.log.Debug("TryOpen: no repository found", slog.String("path", filePath))
		} else {
			r.log.Error("TryOpen: discover failed", slog.String("path", filePath), slog.Any("error", err))
		}
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.backend != nil && sameRoot(r.root, root) {
		r.log.Debug("TryOpen: using existing repository", slog.String("root", root))
		return true
	}
	r.closeLocked()

	r.log.Info("opening repository", slog.String("root", root))
	b, err := r.open(root)
	if err != nil {
		r.log.Error("open repository failed", slog.String("root", root), slog.Any("error", err))
		if errors.Is(err, gitbackend.ErrDubiousOwnership) {
			r.log.Error("repository is owned by another user; to trust it run: git config --global --add safe.directory " + root)
		}
		return false
	}
	r.backend = b
	r.root = root
	return true
}

// closeLocked releases the held backend; callers hold mu.
func (r *Resolver) closeLocked() {
	if r.backend == nil {
		return
	}
	if err := r.backend.Close(); err != nil {
		r.log.Error("close repository", slog.String("root", r.root), slog.Any("error", err))
	}
	r.backend = nil
	r.root = ""
}

// Close releases the current repository, if any.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.backend == nil {
		return nil
	}
	err := r.backend.Close()
	r.backend = nil
	r.root = ""
	return err
}

func (r *Resolver) CurrentRoot() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.root
}

func (r *Resolver) IsOpen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.backend != nil
}

// CurrentBranchName returns the branch HEAD points to. It reports false when
// nothing is open, HEAD is detached or the branch has no commits yet.
func (r *Resolver) CurrentBranchName() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.backend == nil {
		return "", false
	}
	_, name, ok, err := r.backend.HeadState()
	if err != nil {
		r.log.Error("resolve HEAD", slog.Any("error", err))
		return "", false
	}
	if !ok || name == "" || name == "HEAD" {
		return "", false
	}
	return name, true
}

// Blame extracts blame for filePath from the current repository. It returns
// an empty result when no repository is open.
func (r *Resolver) Blame(filePath string) []BlameLine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.backend == nil {
		r.log.Debug("blame skipped: no repository open", slog.String("path", filePath))
		return nil
	}
	return extract(r.backend, filePath, r.log)
}

func sameRoot(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
