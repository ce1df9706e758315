package git

import (
	"log/slog"
	"path/filepath"
	"strings"

	gitbackend "github.com/thiagokokada/gitblame-go/internal/git/backend"
)

// Extract blames filePath against b and expands the result into one
// BlameLine per line. Files outside the working tree, untracked files and
// backend failures all yield an empty result.
func Extract(b gitbackend.Backend, filePath string) []BlameLine {
	return extract(b, filePath, slog.Default())
}

func extract(b gitbackend.Backend, filePath string, log *slog.Logger) []BlameLine {
	if b == nil || strings.TrimSpace(filePath) == "" {
		return nil
	}
	rel, ok := relativePath(b.RepoPath(), filePath)
	if !ok {
		log.Debug("blame skipped: path outside repository",
			slog.String("path", filePath),
			slog.String("root", b.RepoPath()),
		)
		return nil
	}
	log.Debug("blame start", slog.String("path", rel))
	spans, err := b.Blame(rel)
	if err != nil {
		log.Error("blame failed", slog.String("path", rel), slog.Any("error", err))
		return nil
	}
	lines := expandSpans(spans)
	log.Debug("blame done", slog.String("path", rel), slog.Int("lines", len(lines)))
	return lines
}

func expandSpans(spans []gitbackend.Span) []BlameLine {
	total := 0
	for _, span := range spans {
		total += max(span.Lines, 0)
	}
	if total == 0 {
		return nil
	}
	lines := make([]BlameLine, 0, total)
	for _, span := range spans {
		summary := gitbackend.Commit{Message: span.Message}.Summary()
		for range span.Lines {
			lines = append(lines, BlameLine{
				LineNumber:  len(lines) + 1,
				CommitID:    span.CommitID,
				Author:      span.Author.Name,
				AuthorEmail: span.Author.Email,
				AuthorTime:  span.Author.When,
				Summary:     summary,
				Message:     span.Message,
			})
		}
	}
	return lines
}

// relativePath returns filePath relative to root with forward slashes. The
// prefix comparison is case-insensitive and must end on a path separator.
func relativePath(root, filePath string) (string, bool) {
	if root == "" || filePath == "" {
		return "", false
	}
	root, err := gitbackend.Canonical(root)
	if err != nil {
		return "", false
	}
	abs, err := gitbackend.Canonical(filePath)
	if err != nil {
		return "", false
	}
	root = strings.TrimRight(root, string(filepath.Separator))
	if len(abs) <= len(root)+1 || !strings.EqualFold(abs[:len(root)], root) {
		return "", false
	}
	if abs[len(root)] != filepath.Separator {
		return "", false
	}
	rel := strings.TrimLeft(abs[len(root):], string(filepath.Separator))
	if rel == "" {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
