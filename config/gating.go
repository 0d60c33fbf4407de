package config

import (
	"sort"
	"strings"
)

const (
	envBypass         = "BULWARK_BYPASS"
	envCategoryPrefix = "BULWARK_CATEGORY_"
)

// ResolveGating applies environment overrides to the file-level gating
// state and returns the resolved copy. environ takes os.Environ() form;
// the environment wins over the file. Unrecognized values are ignored.
func ResolveGating(g GatingConfig, environ []string) GatingConfig {
	resolved := GatingConfig{
		Bypass:     g.Bypass,
		Categories: make(map[string]bool, len(g.Categories)),
	}
	for name, enabled := range g.Categories {
		resolved.Categories[name] = enabled
	}

	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}

		if key == envBypass {
			if b, ok := envBool(value); ok {
				resolved.Bypass = b
			}
			continue
		}

		if name, ok := strings.CutPrefix(key, envCategoryPrefix); ok && name != "" {
			if b, ok := envBool(value); ok {
				resolved.Categories[categoryFromEnv(name)] = b
			}
		}
	}

	return resolved
}

// DisabledCategories returns the category names switched off in this
// gating state, sorted for stable display.
func (g GatingConfig) DisabledCategories() []string {
	var disabled []string
	for name, enabled := range g.Categories {
		if !enabled {
			disabled = append(disabled, name)
		}
	}
	sort.Strings(disabled)
	return disabled
}

// categoryFromEnv maps an environment suffix like AI_PATTERNS to the
// category name ai-patterns.
func categoryFromEnv(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "-")
}

// envBool parses common boolean spellings. The second return reports
// whether the value was recognized.
func envBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}
