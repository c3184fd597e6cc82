// Package version holds build information.
package version

import (
	"fmt"
	"runtime/debug"
)

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/imgrename/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/arthur-debert/imgrename/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/arthur-debert/imgrename/internal/version.Date={{.Date}}
)

func init() {
	if Version != "dev" {
		return
	}
	// go install builds carry the module version instead of ldflags
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
}

// String formats the build information for the version command
func String() string {
	return fmt.Sprintf("imgrename %s\n  commit: %s\n  built:  %s\n", Version, Commit, Date)
}
