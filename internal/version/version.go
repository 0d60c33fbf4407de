// Package version exposes build version metadata.
package version

import "runtime/debug"

// Version and Commit are set via ldflags on release builds. Dev builds
// fall back to the build info embedded by the Go toolchain.
var (
	Version = ""
	Commit  = ""
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "" {
		Version = info.Main.Version
	}

	if Commit == "" {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				Commit = s.Value
				break
			}
		}
	}
}
