package engine

import (
	"github.com/bulwarkhq/bulwark/core/check"
)

// GateConfig is the immutable environment gating state for a process. It is
// built once from config and environment variables and handed to the engine;
// nothing reads ambient flags mid-run.
type GateConfig struct {
	// Bypass disables all checks. A bypassed run is an unconditional allow.
	Bypass bool
	// Disabled holds categories explicitly switched off. Absence of a
	// category means enabled.
	Disabled map[check.Category]bool
}

// ActiveChecks filters the registered checks down to the active set for a
// run. Pure function: same inputs, same output, input order preserved.
func ActiveChecks(all []check.Check, cfg GateConfig) []check.Check {
	if cfg.Bypass {
		return nil
	}

	active := make([]check.Check, 0, len(all))
	for _, c := range all {
		if cfg.Disabled[c.Descriptor().Category] {
			continue
		}
		active = append(active, c)
	}
	return active
}
