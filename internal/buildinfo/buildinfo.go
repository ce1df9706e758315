// Package buildinfo reports how the binary was built.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Version returns the module version or "dev" when unset.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	version := info.Main.Version
	if version == "" || version == "(devel)" {
		return "dev"
	}
	return version
}

// Tags returns the build tags recorded at compile time, e.g. "gitcli".
func Tags() string {
	return setting("-tags")
}

// Revision returns the VCS revision the binary was built from, shortened.
func Revision() string {
	rev := setting("vcs.revision")
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if rev != "" && setting("vcs.modified") == "true" {
		rev += "+dirty"
	}
	return rev
}

func setting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// Describe returns "name version (backend: b, tags: t, rev: r)", leaving out
// empty parts.
func Describe(name, backend string) string {
	var extra []string
	if backend != "" {
		extra = append(extra, "backend: "+backend)
	}
	if tags := Tags(); tags != "" {
		extra = append(extra, "tags: "+tags)
	}
	if rev := Revision(); rev != "" {
		extra = append(extra, "rev: "+rev)
	}
	s := fmt.Sprintf("%s %s", name, Version())
	if len(extra) > 0 {
		s += " (" + strings.Join(extra, ", ") + ")"
	}
	return s
}
