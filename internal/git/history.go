package git

import (
	"log/slog"
	"slices"
	"strings"
)

// DefaultHistoryLimit caps FileHistory when callers pass a non-positive limit.
const DefaultHistoryLimit = 1000

// FileHistory lists the commits that touched filePath, newest first.
func (r *Resolver) FileHistory(filePath string, limit int) []Commit {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.backend == nil || strings.TrimSpace(filePath) == "" {
		return nil
	}
	rel, ok := relativePath(r.backend.RepoPath(), filePath)
	if !ok {
		return nil
	}
	commits, err := r.backend.FileLog(rel, limit)
	if err != nil {
		r.log.Error("file history failed", slog.String("path", rel), slog.Any("error", err))
		return nil
	}
	return commits
}

// Branches lists local branches followed by remote-tracking ones, each group
// sorted by name.
func (r *Resolver) Branches() []Branch {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.backend == nil {
		return nil
	}
	branches, err := r.backend.Branches()
	if err != nil {
		r.log.Error("list branches failed", slog.Any("error", err))
		return nil
	}
	slices.SortStableFunc(branches, func(a, b Branch) int {
		if a.IsRemote != b.IsRemote {
			if a.IsRemote {
				return 1
			}
			return -1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return branches
}
