// Package version holds build information populated at link time.
package version

import "runtime"

var (
	// GitRelease is the release tag, set via -ldflags.
	GitRelease = "dev"

	// GitCommit is the commit hash, set via -ldflags.
	GitCommit = "unknown"

	// GitCommitDate is the commit date, set via -ldflags.
	GitCommitDate = "unknown"

	// GoInfo is the Go toolchain used for the build.
	GoInfo = runtime.Version()
)
