package config

import (
	"fmt"
	"regexp"

	"github.com/bulwarkhq/bulwark/core/check"
)

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	// Validate engine budgets
	if cfg.Engine.RunBudgetMS < 0 {
		return fmt.Errorf("engine.run_budget_ms must be non-negative")
	}
	if cfg.Engine.CheckTimeoutMS < 0 {
		return fmt.Errorf("engine.check_timeout_ms must be non-negative")
	}
	if cfg.Engine.EmergencyCheckTimeoutMS < 0 {
		return fmt.Errorf("engine.emergency_check_timeout_ms must be non-negative")
	}
	if cfg.Engine.MaxConcurrency < 0 {
		return fmt.Errorf("engine.max_concurrency must be non-negative")
	}
	for family, budget := range cfg.Engine.FamilyBudgetsMS {
		if family == "" {
			return fmt.Errorf("engine.family_budgets_ms: family name must not be empty")
		}
		if budget <= 0 {
			return fmt.Errorf("engine.family_budgets_ms.%s must be positive", family)
		}
	}

	// Validate secret patterns are valid regex
	for i, pattern := range cfg.Checks.SecretPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid checks.secret_patterns[%d]: %s", i, err)
		}
	}

	// Validate built-in overrides
	for id, o := range cfg.Checks.Overrides {
		if err := validateOverride(o); err != nil {
			return fmt.Errorf("checks.overrides.%s: %w", id, err)
		}
	}

	// Validate custom pattern check records
	if err := validateCheckRecords(cfg.Checks.Custom); err != nil {
		return err
	}

	// Validate retention days
	if cfg.Journal.RetentionDays < 0 {
		return fmt.Errorf("journal.retention_days must be non-negative")
	}

	// Validate color mode
	if !isValidColorMode(cfg.Display.Colors) {
		return fmt.Errorf("invalid display.colors: %s (must be auto, always, or never)", cfg.Display.Colors)
	}

	// Validate timezone mode
	if !isValidTimezoneMode(cfg.Display.Timezone) {
		return fmt.Errorf("invalid display.timezone: %s (must be local or utc)", cfg.Display.Timezone)
	}

	return nil
}

func validateOverride(o OverrideConfig) error {
	if o.TimeoutMS < 0 {
		return fmt.Errorf("timeout_ms must be non-negative")
	}
	if o.Priority != "" {
		if _, err := check.ParsePriority(o.Priority); err != nil {
			return err
		}
	}
	if o.Blocking != "" {
		if _, err := check.ParseBlockingBehavior(o.Blocking); err != nil {
			return err
		}
	}
	return nil
}

func validateCheckRecords(records []CheckRecord) error {
	ids := make(map[string]bool, len(records))
	for i, r := range records {
		if r.ID == "" {
			return fmt.Errorf("checks.custom[%d]: id must not be empty", i)
		}
		if ids[r.ID] {
			return fmt.Errorf("checks.custom[%d]: duplicate id %q", i, r.ID)
		}
		ids[r.ID] = true

		if r.Matcher == "" {
			return fmt.Errorf("checks.custom[%d]: matcher must not be empty", i)
		}
		if _, err := regexp.Compile(r.Matcher); err != nil {
			return fmt.Errorf("checks.custom[%d]: invalid matcher: %s", i, err)
		}
		if r.Tools != "" {
			if _, err := regexp.Compile(r.Tools); err != nil {
				return fmt.Errorf("checks.custom[%d]: invalid tools: %s", i, err)
			}
		}
		switch r.Target {
		case "", "path", "content":
		default:
			return fmt.Errorf("checks.custom[%d]: invalid target %q (must be path or content)", i, r.Target)
		}
		if r.Priority != "" {
			if _, err := check.ParsePriority(r.Priority); err != nil {
				return fmt.Errorf("checks.custom[%d]: %w", i, err)
			}
		}
		if r.Blocking != "" {
			if _, err := check.ParseBlockingBehavior(r.Blocking); err != nil {
				return fmt.Errorf("checks.custom[%d]: %w", i, err)
			}
		}
		for _, p := range r.Phases {
			if _, err := check.ParsePhase(p); err != nil {
				return fmt.Errorf("checks.custom[%d]: %w", i, err)
			}
		}
		if r.TimeoutMS < 0 {
			return fmt.Errorf("checks.custom[%d]: timeout_ms must be non-negative", i)
		}
	}
	return nil
}

// isValidColorMode returns true if the given mode is valid.
func isValidColorMode(mode ColorMode) bool {
	switch mode {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	default:
		return false
	}
}

// isValidTimezoneMode returns true if the given mode is valid.
func isValidTimezoneMode(mode TimezoneMode) bool {
	switch mode {
	case TimezoneLocal, TimezoneUTC:
		return true
	default:
		return false
	}
}
