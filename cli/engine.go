package cli

import (
	"os"
	"time"

	"github.com/bulwarkhq/bulwark/checks"
	"github.com/bulwarkhq/bulwark/config"
	"github.com/bulwarkhq/bulwark/core/check"
	"github.com/bulwarkhq/bulwark/core/engine"
)

// buildEngine assembles the check registry and the engine from
// configuration. The gate is resolved against the process environment
// once, here; nothing reads ambient flags mid-run.
func buildEngine(cfg *config.Config) (*engine.Engine, error) {
	reg := check.NewRegistry()
	if err := checks.Register(reg, catalogConfig(cfg.Checks)); err != nil {
		return nil, err
	}

	gating := config.ResolveGating(cfg.Gating, os.Environ())

	eng := engine.New(reg, engine.Config{
		Gate:    gateConfig(gating),
		Budgets: budgets(cfg.Engine),
	}, engine.WithMaxConcurrency(cfg.Engine.MaxConcurrency))

	return eng, nil
}

// buildCatalog assembles the configured check set without an engine, for
// commands that only inspect it.
func buildCatalog(cfg *config.Config) ([]check.Check, error) {
	return checks.Catalog(catalogConfig(cfg.Checks))
}

// catalogConfig converts the file-level checks section into the catalog
// configuration.
func catalogConfig(c config.ChecksConfig) checks.CatalogConfig {
	overrides := make(map[string]checks.Override, len(c.Overrides))
	for id, o := range c.Overrides {
		overrides[id] = checks.Override{
			Disabled: o.Disabled,
			Timeout:  time.Duration(o.TimeoutMS) * time.Millisecond,
			Priority: o.Priority,
			Blocking: o.Blocking,
		}
	}

	custom := make([]checks.PatternSpec, 0, len(c.Custom))
	for _, r := range c.Custom {
		custom = append(custom, patternSpec(r))
	}

	return checks.CatalogConfig{
		SensitivePaths: c.SensitivePaths,
		SecretPatterns: c.SecretPatterns,
		Overrides:      overrides,
		Custom:         custom,
	}
}

// patternSpec converts one config check record into a pattern spec.
func patternSpec(r config.CheckRecord) checks.PatternSpec {
	return checks.PatternSpec{
		ID:       r.ID,
		Category: r.Category,
		Family:   r.Family,
		Priority: r.Priority,
		Blocking: r.Blocking,
		Target:   r.Target,
		Pattern:  r.Matcher,
		Tools:    r.Tools,
		Message:  r.Message,
		Timeout:  time.Duration(r.TimeoutMS) * time.Millisecond,
		Phases:   r.Phases,
	}
}

// gateConfig converts resolved gating state into the engine's gate.
func gateConfig(g config.GatingConfig) engine.GateConfig {
	disabled := make(map[check.Category]bool)
	for name, enabled := range g.Categories {
		if !enabled {
			disabled[check.Category(name)] = true
		}
	}
	return engine.GateConfig{
		Bypass:   g.Bypass,
		Disabled: disabled,
	}
}

// budgets converts the millisecond config fields into engine budgets.
// Zeroes pass through and take the engine defaults.
func budgets(e config.EngineConfig) engine.Budgets {
	var families map[string]time.Duration
	if len(e.FamilyBudgetsMS) > 0 {
		families = make(map[string]time.Duration, len(e.FamilyBudgetsMS))
		for name, ms := range e.FamilyBudgetsMS {
			families[name] = time.Duration(ms) * time.Millisecond
		}
	}
	return engine.Budgets{
		Run:                   time.Duration(e.RunBudgetMS) * time.Millisecond,
		DefaultCheckTimeout:   time.Duration(e.CheckTimeoutMS) * time.Millisecond,
		EmergencyCheckTimeout: time.Duration(e.EmergencyCheckTimeoutMS) * time.Millisecond,
		Families:              families,
	}
}
