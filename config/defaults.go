package config

import (
	"github.com/spf13/viper"
)

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	// Engine defaults
	v.SetDefault("engine.run_budget_ms", 5000)
	v.SetDefault("engine.check_timeout_ms", 1000)
	v.SetDefault("engine.emergency_check_timeout_ms", 50)
	v.SetDefault("engine.max_concurrency", 0) // 0 means unbounded
	v.SetDefault("engine.family_budgets_ms", map[string]int{})

	// Gating defaults
	v.SetDefault("gating.bypass", false)
	v.SetDefault("gating.categories", map[string]bool{})

	// Checks defaults. Empty lists select the built-in patterns.
	v.SetDefault("checks.sensitive_paths", []string{})
	v.SetDefault("checks.secret_patterns", []string{})

	// Journal defaults
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", "") // Empty means use platform default
	v.SetDefault("journal.retention_days", 90)

	// Display defaults
	v.SetDefault("display.colors", "auto")
	v.SetDefault("display.timezone", "local")
}
