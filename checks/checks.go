// Package checks holds the built-in policy checks and the catalog that
// assembles them, together with config-defined pattern checks, into the
// set an engine runs.
package checks

import (
	"fmt"
	"time"

	"github.com/bulwarkhq/bulwark/core/check"
)

// Override adjusts one check's descriptor from configuration. Zero values
// leave the built-in defaults untouched.
type Override struct {
	// Disabled removes the check from the catalog entirely.
	Disabled bool
	// Timeout replaces the check's individual timeout when positive.
	Timeout time.Duration
	// Priority replaces the execution tier when non-empty.
	Priority string
	// Blocking replaces the blocking behavior when non-empty.
	Blocking string
}

// CatalogConfig selects and tunes the checks an engine runs.
type CatalogConfig struct {
	// SensitivePaths overrides the built-in sensitive path globs. Empty
	// keeps the defaults.
	SensitivePaths []string
	// SecretPatterns overrides the built-in secret content patterns.
	// Empty keeps the defaults.
	SecretPatterns []string
	// Overrides adjusts built-in checks by ID.
	Overrides map[string]Override
	// Custom appends config-defined pattern checks.
	Custom []PatternSpec
}

// Catalog builds the full check set: built-ins, with overrides applied,
// followed by custom pattern checks.
func Catalog(cfg CatalogConfig) ([]check.Check, error) {
	secrets, err := NewSecretMaterialCheck(cfg.SecretPatterns)
	if err != nil {
		return nil, fmt.Errorf("secret-material: %w", err)
	}

	builtins := []check.Check{
		NewVersionedFileCheck(),
		NewSensitivePathCheck(cfg.SensitivePaths),
		secrets,
		NewBackupArtifactCheck(),
		NewPlaceholderStubCheck(),
		NewMixedNamingCheck(),
		NewTrailingWhitespaceCheck(),
	}

	out := make([]check.Check, 0, len(builtins)+len(cfg.Custom))
	for _, c := range builtins {
		adjusted, err := applyOverride(c, cfg.Overrides[c.Descriptor().ID])
		if err != nil {
			return nil, fmt.Errorf("override %s: %w", c.Descriptor().ID, err)
		}
		if adjusted != nil {
			out = append(out, adjusted)
		}
	}

	for _, spec := range cfg.Custom {
		pc, err := NewPatternCheck(spec)
		if err != nil {
			return nil, fmt.Errorf("custom check %s: %w", spec.ID, err)
		}
		out = append(out, pc)
	}

	return out, nil
}

// Register assembles the catalog and registers every check.
func Register(reg *check.Registry, cfg CatalogConfig) error {
	cs, err := Catalog(cfg)
	if err != nil {
		return err
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// overridden wraps a check with a replacement descriptor.
type overridden struct {
	check.Check
	desc check.Descriptor
}

func (o *overridden) Descriptor() check.Descriptor { return o.desc }

// applyOverride returns the check with the override applied, or nil when
// the override disables it.
func applyOverride(c check.Check, o Override) (check.Check, error) {
	if o.Disabled {
		return nil, nil
	}
	if o.Timeout == 0 && o.Priority == "" && o.Blocking == "" {
		return c, nil
	}

	desc := c.Descriptor()
	if o.Timeout > 0 {
		desc.Timeout = o.Timeout
	}
	if o.Priority != "" {
		p, err := check.ParsePriority(o.Priority)
		if err != nil {
			return nil, err
		}
		desc.Priority = p
	}
	if o.Blocking != "" {
		b, err := check.ParseBlockingBehavior(o.Blocking)
		if err != nil {
			return nil, err
		}
		desc.Blocking = b
	}
	return &overridden{Check: c, desc: desc}, nil
}
