package backend

import (
	"os"
	"path/filepath"
	"strings"
)

const gitDirName = ".git"

// Discover walks upward from path to the nearest directory holding repository
// metadata and returns its canonical path. A .git entry may be a directory or
// a gitfile (worktrees and submodules).
func Discover(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrNotFound
	}
	dir, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, gitDirName)); err == nil {
			return Canonical(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Canonical returns the absolute, symlink-free form of path. Paths that do not
// exist yet are resolved through their deepest existing ancestor.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}
	parent := filepath.Dir(abs)
	if parent == abs {
		return abs, nil
	}
	canonicalParent, err := Canonical(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(canonicalParent, filepath.Base(abs)), nil
}
