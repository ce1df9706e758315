package backend

import (
	"cmp"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// minGitVersion is the oldest git that understands every command the CLI
// backend runs. "git -C" and the %(HEAD) atom of for-each-ref arrived in
// 1.8.5; symbolic-ref --short, show --format=%B, %(upstream:short) and
// blame --porcelain predate it.
var minGitVersion = gitVersion{major: 1, minor: 8, patch: 5}

type gitVersion struct {
	major, minor, patch int
}

func MinGitVersion() string {
	return minGitVersion.String()
}

func (v gitVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v gitVersion) compare(o gitVersion) int {
	return cmp.Or(
		cmp.Compare(v.major, o.major),
		cmp.Compare(v.minor, o.minor),
		cmp.Compare(v.patch, o.patch),
	)
}

// versionNumber matches the first dotted number, so vendor suffixes such as
// "2.39.3 (Apple Git-146)" or "2.45.1.windows.1" are ignored.
var versionNumber = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// parseGitVersion extracts the version from "git --version" output.
func parseGitVersion(out string) (gitVersion, bool) {
	s := strings.TrimSpace(out)
	if _, rest, ok := strings.Cut(s, "git version"); ok {
		s = rest
	}
	m := versionNumber.FindStringSubmatch(s)
	if m == nil {
		return gitVersion{}, false
	}
	var v gitVersion
	var err error
	if v.major, err = strconv.Atoi(m[1]); err != nil {
		return gitVersion{}, false
	}
	if v.minor, err = strconv.Atoi(m[2]); err != nil {
		return gitVersion{}, false
	}
	if m[3] != "" {
		v.patch, _ = strconv.Atoi(m[3])
	}
	return v, true
}

// checkGitVersion rejects output that does not parse or names a git older
// than minGitVersion.
func checkGitVersion(out string) error {
	v, ok := parseGitVersion(out)
	if !ok {
		return fmt.Errorf("unable to parse git version output: %q", strings.TrimSpace(out))
	}
	if v.compare(minGitVersion) < 0 {
		return fmt.Errorf("git %s is too old; gitblame-go requires git >= %s", v, minGitVersion)
	}
	return nil
}

type installedGit struct {
	out string
	err error
}

var detectGit = sync.OnceValue(func() installedGit {
	raw, err := exec.Command("git", "--version").CombinedOutput()
	out := strings.TrimSpace(string(raw))
	switch {
	case err != nil && out != "":
		return installedGit{out: out, err: fmt.Errorf("git --version: %v: %s", err, out)}
	case err != nil:
		return installedGit{err: fmt.Errorf("git --version: %w", err)}
	}
	return installedGit{out: out}
})

// GitVersion returns the output of "git --version", run once per process.
func GitVersion() (string, error) {
	info := detectGit()
	return info.out, info.err
}

var ensureMinGitVersion = sync.OnceValue(func() error {
	info := detectGit()
	if info.err != nil {
		return info.err
	}
	return checkGitVersion(info.out)
})
