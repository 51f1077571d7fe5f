// Package version holds build metadata stamped in by the linker.
package version

import (
	"fmt"
	"runtime"
)

// Set with -ldflags "-X github.com/andywolf/ghreport/internal/version.Version=v1.0.0".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

const name = "ghreport"

// Short returns the bare version, e.g. "v1.2.3" or "dev".
func Short() string {
	return Version
}

// UserAgent identifies ghreport to the GitHub API.
func UserAgent() string {
	return name + "/" + Version
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}

// Info returns "ghreport v1.2.3 (commit: abc1234, built: ..., go: go1.24.x)".
func Info() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s)",
		name, Version, shortCommit(), BuildDate, runtime.Version())
}

// Full returns the multi-line output of "ghreport version --verbose".
func Full() string {
	return fmt.Sprintf(`%s %s
  Commit:     %s
  Built:      %s
  Go version: %s
  OS/Arch:    %s/%s`,
		name, Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
