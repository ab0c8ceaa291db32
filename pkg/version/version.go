// Package version exposes build metadata injected with -ldflags.
package version

import "fmt"

//nolint:gochecknoglobals // Set at link time.
var (
	version   = "dev"
	gitCommit = ""
	buildDate = ""
)

// GetVersion returns the release version, or "dev" for local builds.
func GetVersion() string {
	return version
}

// GetFullVersion returns the version with commit and build date when known.
func GetFullVersion() string {
	v := version
	if gitCommit != "" {
		v = fmt.Sprintf("%s (commit %s)", v, gitCommit)
	}
	if buildDate != "" {
		v = fmt.Sprintf("%s built %s", v, buildDate)
	}
	return v
}
