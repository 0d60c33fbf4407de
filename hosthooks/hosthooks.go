// Package hosthooks wires bulwark into a Claude-compatible host by
// editing the host's settings.json: detection, install with backup and
// merge, uninstall, and status verification. Hook commands invoke the
// hidden `bulwark _hook` entrypoint for each lifecycle event.
package hosthooks

import (
	"fmt"
	"os"
	"path/filepath"
)

// Scope selects which settings.json the hook wiring targets.
type Scope string

const (
	// ScopeUser targets the per-user settings under the home directory.
	ScopeUser Scope = "user"
	// ScopeProject targets the settings checked into a project tree.
	ScopeProject Scope = "project"
)

// ParseScope converts a CLI flag value into a Scope.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeUser, ScopeProject:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("invalid scope %q (must be user or project)", s)
	}
}

// hookEvent binds a host lifecycle event to the engine phase it feeds.
type hookEvent struct {
	Event string
	Phase string
}

// hookEvents are the lifecycle events bulwark captures, in the order
// they appear in generated configuration.
var hookEvents = []hookEvent{
	{Event: "PreToolUse", Phase: "pre"},
	{Event: "PostToolUse", Phase: "post"},
}

// EventNames returns the lifecycle events bulwark wires, in order.
func EventNames() []string {
	names := make([]string, len(hookEvents))
	for i, ev := range hookEvents {
		names[i] = ev.Event
	}
	return names
}

// Detection describes whether a host configuration directory was found.
type Detection struct {
	// Installed is true when the host's config directory exists.
	Installed bool
	// ConfigDir is the host configuration directory.
	ConfigDir string
	// SettingsPath is the settings.json inside ConfigDir.
	SettingsPath string
	// Message explains a negative detection.
	Message string
}

// InstallOptions configures hook installation.
type InstallOptions struct {
	// Scope picks the user or project settings file.
	Scope Scope
	// ProjectDir is the project root for ScopeProject.
	ProjectDir string
	// Command is the binary invocation to embed, "bulwark" by default.
	Command string
	// DryRun reports what would change without writing.
	DryRun bool
	// Force reinstalls even when hooks are already present.
	Force bool
	// Backup copies the settings file aside before writing.
	Backup bool
}

// InstallResult reports what installation did.
type InstallResult struct {
	Success    bool
	Installed  []string
	BackupPath string
	Warnings   []string
}

// UninstallOptions configures hook removal.
type UninstallOptions struct {
	Scope      Scope
	ProjectDir string
	DryRun     bool
}

// UninstallResult reports what removal did.
type UninstallResult struct {
	Success bool
	Removed []string
}

// Status is the verified state of installed hooks.
type Status struct {
	// Installed is true when at least one bulwark hook is wired.
	Installed bool
	// Events lists the lifecycle events with a bulwark hook.
	Events []string
	// Valid is true when every expected event is wired.
	Valid bool
	// Issues lists missing or broken wiring.
	Issues []string
}

// configDir resolves the host configuration directory for a scope.
func configDir(scope Scope, projectDir string) (string, error) {
	switch scope {
	case ScopeProject:
		if projectDir == "" {
			var err error
			projectDir, err = os.Getwd()
			if err != nil {
				return "", fmt.Errorf("failed to resolve project directory: %w", err)
			}
		}
		return filepath.Join(projectDir, ".claude"), nil
	case ScopeUser, "":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, ".claude"), nil
	default:
		return "", fmt.Errorf("invalid scope %q", scope)
	}
}

// Detect reports whether the host's configuration directory exists for
// the given scope.
func Detect(scope Scope, projectDir string) (*Detection, error) {
	dir, err := configDir(scope, projectDir)
	if err != nil {
		return nil, err
	}

	det := &Detection{
		ConfigDir:    dir,
		SettingsPath: filepath.Join(dir, "settings.json"),
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		det.Message = fmt.Sprintf("host not detected (%s not found)", dir)
		return det, nil
	}

	det.Installed = true
	return det, nil
}
