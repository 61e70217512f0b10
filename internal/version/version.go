// Package version exposes build metadata stamped through -ldflags.
package version

import "fmt"

// Overridden at release time via -ldflags "-X .../internal/version.Version=...".
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// String formats the stamped metadata, skipping fields the build left empty.
func String() string {
	out := Version
	if Commit != "" {
		out = fmt.Sprintf("%s commit=%s", out, Commit)
	}
	if Date != "" {
		out = fmt.Sprintf("%s date=%s", out, Date)
	}
	return out
}
