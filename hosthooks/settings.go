package hosthooks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// defaultCommand is the binary invocation embedded in generated hook
// commands when InstallOptions.Command is empty. The binary is assumed
// to be on PATH.
const defaultCommand = "bulwark"

// SettingsHooks is the hooks section of the host's settings.json.
type SettingsHooks map[string][]HookMatcher

// HookMatcher is one matcher entry under a lifecycle event.
type HookMatcher struct {
	Matcher string        `json:"matcher,omitempty"`
	Hooks   []HookCommand `json:"hooks"`
}

// HookCommand is one command the host runs for a matched event.
type HookCommand struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

// GenerateHooksConfig builds the hooks section bulwark installs. Every
// tool is matched; the engine's own matchers narrow from there, so
// custom checks can target any tool without reinstalling.
func GenerateHooksConfig(command string) SettingsHooks {
	if command == "" {
		command = defaultCommand
	}

	hooks := make(SettingsHooks)
	for _, ev := range hookEvents {
		hooks[ev.Event] = []HookMatcher{
			{
				Matcher: "*",
				Hooks: []HookCommand{
					{Type: "command", Command: fmt.Sprintf("%s _hook %s", command, ev.Phase)},
				},
			},
		}
	}
	return hooks
}

// readSettings loads settings.json as a generic map so fields bulwark
// does not manage survive a rewrite. A missing file is an empty map.
func readSettings(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return make(map[string]interface{}), nil
	}
	if err != nil {
		return nil, err
	}

	var settings map[string]interface{}
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// writeSettings writes settings.json with stable indentation.
func writeSettings(path string, settings map[string]interface{}) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// isBulwarkCommand reports whether a hook command line invokes bulwark's
// hook entrypoint, regardless of how the binary path is spelled.
func isBulwarkCommand(cmd string) bool {
	fields := strings.Fields(cmd)
	if len(fields) < 2 {
		return false
	}
	return filepath.Base(fields[0]) == defaultCommand && fields[1] == "_hook"
}

// stripBulwark removes bulwark-managed commands from a matcher list,
// dropping matchers that end up with no commands. Matchers owned by
// other tools pass through untouched.
func stripBulwark(matchers []interface{}) ([]interface{}, bool) {
	removed := false
	var kept []interface{}

	for _, m := range matchers {
		matcher, ok := m.(map[string]interface{})
		if !ok {
			kept = append(kept, m)
			continue
		}
		hooksList, ok := matcher["hooks"].([]interface{})
		if !ok {
			kept = append(kept, m)
			continue
		}

		var keptHooks []interface{}
		for _, h := range hooksList {
			hook, ok := h.(map[string]interface{})
			if !ok {
				keptHooks = append(keptHooks, h)
				continue
			}
			cmd, _ := hook["command"].(string)
			if isBulwarkCommand(cmd) {
				removed = true
				continue
			}
			keptHooks = append(keptHooks, h)
		}

		if len(keptHooks) == 0 {
			continue
		}
		matcher["hooks"] = keptHooks
		kept = append(kept, matcher)
	}

	return kept, removed
}

// eventHasBulwark reports whether any matcher under an event carries a
// bulwark hook command.
func eventHasBulwark(matchers []interface{}) bool {
	for _, m := range matchers {
		matcher, ok := m.(map[string]interface{})
		if !ok {
			continue
		}
		hooksList, ok := matcher["hooks"].([]interface{})
		if !ok {
			continue
		}
		for _, h := range hooksList {
			hook, ok := h.(map[string]interface{})
			if !ok {
				continue
			}
			if cmd, ok := hook["command"].(string); ok && isBulwarkCommand(cmd) {
				return true
			}
		}
	}
	return false
}

// hooksSection extracts the hooks map from loaded settings, creating it
// when asked.
func hooksSection(settings map[string]interface{}, create bool) (map[string]interface{}, bool) {
	hooks, ok := settings["hooks"].(map[string]interface{})
	if !ok {
		if !create {
			return nil, false
		}
		hooks = make(map[string]interface{})
		settings["hooks"] = hooks
	}
	return hooks, true
}

// toJSONValue round-trips a typed value through JSON so it can live in
// the generic settings map alongside unmanaged entries.
func toJSONValue(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
