// Package version holds build metadata injected via ldflags.
package version

import "fmt"

// Set with -ldflags "-X github.com/Faultbox/orthoview/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Full returns the version with commit and build date. Development builds
// report just "dev".
func Full() string {
	if Version == "dev" {
		return Version
	}
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
