// Package version holds build information injected via ldflags.
package version

import "runtime"

var (
	// GitRelease is the release tag, set at build time.
	GitRelease = "dev"
	// GitCommit is the commit hash, set at build time.
	GitCommit = "unknown"
	// GitCommitDate is the commit date, set at build time.
	GitCommitDate = "unknown"
	// GoInfo is the Go toolchain version used for the build.
	GoInfo = runtime.Version()
)
