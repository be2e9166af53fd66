package version

import (
	"fmt"
	"runtime/debug"
)

// Version is set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/arxivbuilder/internal/version.Version=v0.3.0".
var Version = "unknown"

// Additional build metadata, set the same way.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version. When no ldflags were
// given it falls back to the module version recorded by go install.
func String() string {
	v := Version
	if v == "unknown" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	return fmt.Sprintf("arxivbuilder %s (commit %s, built %s)", v, GitCommit, BuildTime)
}
