// Package version holds build metadata injected with -ldflags.
package version

import "fmt"

// Set at build time, e.g.
// -ldflags "-X aigateway/internal/version.Version=v1.2.0"
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns a one-line build description.
func Info() string {
	return fmt.Sprintf("aigateway %s (commit %s, built %s)", Version, Commit, Date)
}
