// Package version holds build metadata injected at link time.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the wrapgen release, set with -ldflags "-X .../version.Version=v1.2.3".
var Version = "dev"

// Commit is the Git hash of the wrapgen binary which is executing.
var Commit = "<unknown>"

// Resolve returns the version, falling back to module build info for
// `go install` builds that carry no ldflags.
func Resolve() string {
	if Version != "dev" {
		return Version
	}

	info, ok := debug.ReadBuildInfo()
	if ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	return Version
}

// String formats the version line printed by `wrapgen version`.
func String() string {
	return fmt.Sprintf("wrapgen %s (commit %s, %s %s/%s)",
		Resolve(), Commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
