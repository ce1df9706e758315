//go:build !gitcli

package backend

// Name identifies the backend compiled in as the default.
const Name = "go-git"

// Default returns the opener used when callers do not pick one.
func Default() Opener {
	return OpenNative
}
