package hosthooks

import (
	"fmt"
	"os"
	"sort"
	"time"
)

// Install wires bulwark's hook commands into the host's settings.json.
// Entries owned by other tools are preserved; stale bulwark entries are
// replaced rather than duplicated.
func Install(opts InstallOptions) (*InstallResult, error) {
	result := &InstallResult{}

	det, err := Detect(opts.Scope, opts.ProjectDir)
	if err != nil {
		return result, err
	}

	if !det.Installed {
		if opts.Scope != ScopeProject {
			return result, fmt.Errorf("%s", det.Message)
		}
		// Project settings start from an empty directory.
		if !opts.DryRun {
			if err := os.MkdirAll(det.ConfigDir, 0700); err != nil {
				return result, fmt.Errorf("failed to create %s: %w", det.ConfigDir, err)
			}
		}
	}

	settings, err := readSettings(det.SettingsPath)
	if err != nil {
		return result, fmt.Errorf("failed to read settings.json: %w", err)
	}

	if !opts.Force {
		if st := statusOf(settings); st.Valid {
			result.Success = true
			result.Warnings = append(result.Warnings, "hooks already installed (use --force to reinstall)")
			return result, nil
		}
	}

	if opts.DryRun {
		result.Success = true
		result.Installed = EventNames()
		return result, nil
	}

	if opts.Backup {
		backupPath, err := backupSettings(det.SettingsPath)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("backup failed: %v", err))
		} else {
			result.BackupPath = backupPath
		}
	}

	hooks, _ := hooksSection(settings, true)
	generated := GenerateHooksConfig(opts.Command)

	for _, ev := range hookEvents {
		ours, err := toJSONValue(generated[ev.Event])
		if err != nil {
			return result, fmt.Errorf("failed to encode hook config: %w", err)
		}
		oursList, _ := ours.([]interface{})

		existing, _ := hooks[ev.Event].([]interface{})
		kept, _ := stripBulwark(existing)
		hooks[ev.Event] = append(kept, oursList...)
		result.Installed = append(result.Installed, ev.Event)
	}

	if err := writeSettings(det.SettingsPath, settings); err != nil {
		return result, fmt.Errorf("failed to write settings.json: %w", err)
	}

	// Verify what was just written.
	st, err := GetStatus(opts.Scope, opts.ProjectDir)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("verification failed: %v", err))
	} else if !st.Valid {
		result.Warnings = append(result.Warnings, "hooks installed but verification failed")
		result.Warnings = append(result.Warnings, st.Issues...)
	}

	result.Success = true
	return result, nil
}

// Uninstall removes bulwark's hook commands from the host's
// settings.json, leaving entries owned by other tools in place.
func Uninstall(opts UninstallOptions) (*UninstallResult, error) {
	result := &UninstallResult{}

	det, err := Detect(opts.Scope, opts.ProjectDir)
	if err != nil {
		return result, err
	}
	if !det.Installed {
		result.Success = true
		return result, nil
	}

	settings, err := readSettings(det.SettingsPath)
	if err != nil {
		return result, fmt.Errorf("failed to read settings.json: %w", err)
	}

	hooks, ok := hooksSection(settings, false)
	if !ok {
		result.Success = true
		return result, nil
	}

	if opts.DryRun {
		for _, ev := range hookEvents {
			matchers, _ := hooks[ev.Event].([]interface{})
			if eventHasBulwark(matchers) {
				result.Removed = append(result.Removed, ev.Event)
			}
		}
		result.Success = true
		return result, nil
	}

	// Sweep every event key: stale bulwark entries can sit under events
	// later releases no longer wire.
	for event, raw := range hooks {
		matchers, ok := raw.([]interface{})
		if !ok {
			continue
		}
		kept, removed := stripBulwark(matchers)
		if !removed {
			continue
		}

		if len(kept) > 0 {
			hooks[event] = kept
		} else {
			delete(hooks, event)
		}
		result.Removed = append(result.Removed, event)
	}
	sort.Strings(result.Removed)

	if len(result.Removed) == 0 {
		result.Success = true
		return result, nil
	}

	if err := writeSettings(det.SettingsPath, settings); err != nil {
		return result, fmt.Errorf("failed to write settings.json: %w", err)
	}

	result.Success = true
	return result, nil
}

// GetStatus checks the current hook wiring for a scope.
func GetStatus(scope Scope, projectDir string) (*Status, error) {
	det, err := Detect(scope, projectDir)
	if err != nil {
		return nil, err
	}
	if !det.Installed {
		return &Status{Issues: []string{det.Message}}, nil
	}

	settings, err := readSettings(det.SettingsPath)
	if err != nil {
		return &Status{Issues: []string{fmt.Sprintf("cannot read settings.json: %v", err)}}, nil
	}
	return statusOf(settings), nil
}

// statusOf computes hook status from loaded settings.
func statusOf(settings map[string]interface{}) *Status {
	st := &Status{}
	hooks, _ := hooksSection(settings, false)

	for _, ev := range hookEvents {
		matchers, _ := hooks[ev.Event].([]interface{})
		if eventHasBulwark(matchers) {
			st.Installed = true
			st.Events = append(st.Events, ev.Event)
		} else {
			st.Issues = append(st.Issues, fmt.Sprintf("%s: hook not configured", ev.Event))
		}
	}

	st.Valid = st.Installed && len(st.Issues) == 0
	return st
}

// backupSettings copies the settings file aside with a timestamp suffix.
// A missing file needs no backup.
func backupSettings(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	backupPath := fmt.Sprintf("%s.backup.%s", path, time.Now().Format("20060102150405"))
	if err := os.WriteFile(backupPath, data, 0600); err != nil {
		return "", err
	}
	return backupPath, nil
}
