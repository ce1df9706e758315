package backend

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrDubiousOwnership is returned when git refuses a repository owned by
// another user (safe.directory policy).
var ErrDubiousOwnership = errors.New("repository ownership rejected by git")

type gitCLI struct {
	path string
}

// OpenCLI opens the repository rooted at root using the git executable.
func OpenCLI(root string) (Backend, error) {
	if err := ensureMinGitVersion(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("repository root not set")
	}
	tmp := &gitCLI{path: root}
	top, err := tmp.runGitCommand([]string{"rev-parse", "--show-toplevel"}, false, "git rev-parse")
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	if strings.TrimSpace(top) == "" {
		return nil, fmt.Errorf("open repository: git rev-parse returned empty root")
	}
	return tmp, nil
}

func (g *gitCLI) RepoPath() string {
	if g == nil {
		return ""
	}
	return g.path
}

func (g *gitCLI) Close() error { return nil }

func (g *gitCLI) runGitCommand(args []string, allowExit1 bool, context string) (string, error) {
	if g == nil || g.path == "" {
		return "", fmt.Errorf("repository root not set")
	}
	cmdArgs := append([]string{"-C", g.path}, args...)
	cmd := exec.Command("git", cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if allowExit1 && errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && stderr.Len() == 0 {
			// -q lookups report "not found" through exit code 1
			return stdout.String(), nil
		}
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "dubious ownership") {
			return "", fmt.Errorf("%s: %w: %s", context, ErrDubiousOwnership, msg)
		}
		if msg != "" {
			return "", fmt.Errorf("%s: %v: %s", context, err, msg)
		}
		return "", fmt.Errorf("%s: %w", context, err)
	}
	return stdout.String(), nil
}
