package engine

import (
	"context"
	"runtime/debug"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/safedep/dry/log"

	"github.com/bulwarkhq/bulwark/core/check"
)

// Default budgets applied when the configuration leaves them zero.
const (
	DefaultRunBudget             = 5 * time.Second
	DefaultCheckTimeout          = 1 * time.Second
	DefaultEmergencyCheckTimeout = 50 * time.Millisecond
)

// Budgets bounds a run. Every wait inside the engine derives from one of
// these; nothing blocks unbounded.
type Budgets struct {
	// Run is the total budget for one strategy attempt.
	Run time.Duration
	// DefaultCheckTimeout applies to checks whose descriptor leaves the
	// timeout zero.
	DefaultCheckTimeout time.Duration
	// EmergencyCheckTimeout caps each check in the emergency strategy.
	EmergencyCheckTimeout time.Duration
	// Families maps family names to their cumulative per-tier budgets.
	// Families absent from the map are unbudgeted.
	Families map[string]time.Duration
}

// withDefaults fills zero budget fields.
func (b Budgets) withDefaults() Budgets {
	if b.Run <= 0 {
		b.Run = DefaultRunBudget
	}
	if b.DefaultCheckTimeout <= 0 {
		b.DefaultCheckTimeout = DefaultCheckTimeout
	}
	if b.EmergencyCheckTimeout <= 0 {
		b.EmergencyCheckTimeout = DefaultEmergencyCheckTimeout
	}
	return b
}

// Config holds the immutable engine configuration, constructed once at
// startup.
type Config struct {
	Gate    GateConfig
	Budgets Budgets
}

// Engine evaluates policy checks against proposed mutations. Construct it
// once and share it; Evaluate is safe for concurrent use.
type Engine struct {
	registry       *check.Registry
	gate           GateConfig
	budgets        Budgets
	maxConcurrency int
	metrics        Recorder
	runners        map[State]runnerFunc
}

// Option configures optional engine behavior.
type Option func(*Engine)

// WithMetrics injects an observability recorder.
func WithMetrics(rec Recorder) Option {
	return func(e *Engine) {
		if rec != nil {
			e.metrics = rec
		}
	}
}

// WithMaxConcurrency bounds how many checks of one tier run at once.
// Zero or negative means unbounded.
func WithMaxConcurrency(n int) Option {
	return func(e *Engine) {
		e.maxConcurrency = n
	}
}

// New creates an engine over the given registry and configuration.
func New(registry *check.Registry, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		gate:     cfg.Gate,
		budgets:  cfg.Budgets.withDefaults(),
		metrics:  nopRecorder{},
	}
	e.runners = map[State]runnerFunc{
		StateParallel:   e.runParallel,
		StateSequential: e.runSequential,
		StateEmergency:  e.runEmergency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs the full pipeline for one mutation and always returns a
// Decision: it has no error path to the caller, recovers its own panics,
// and degrades to allow when the engine itself misbehaves.
func (e *Engine) Evaluate(ctx context.Context, ec *check.Context) (dec *Decision) {
	started := time.Now()
	runID := uuid.New()

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("policy engine panic: %v\n%s", r, debug.Stack())
			dec = &Decision{
				RunID:     runID,
				Verdict:   VerdictAllow,
				Fallback:  FallbackEmergency,
				StartedAt: started,
				Elapsed:   time.Since(started),
			}
		}
		e.metrics.RunCompleted(dec.Verdict.String(), string(dec.Fallback), dec.Elapsed)
	}()

	if ec == nil {
		ec = &check.Context{}
	}

	if e.gate.Bypass {
		log.Debugf("policy checks bypassed for %s", ec.Path)
		return &Decision{
			RunID:     runID,
			Verdict:   VerdictAllow,
			Fallback:  FallbackNone,
			Bypassed:  true,
			StartedAt: started,
			Elapsed:   time.Since(started),
		}
	}

	active := ActiveChecks(e.registry.All(), e.gate)
	applicable := applicableChecks(active, ec)
	if len(applicable) == 0 {
		return &Decision{
			RunID:     runID,
			Verdict:   VerdictAllow,
			Fallback:  FallbackNone,
			StartedAt: started,
			Elapsed:   time.Since(started),
		}
	}

	tiers := tiersOf(applicable)
	descs := descriptorIndex(applicable)

	state, att, transitions := e.run(ctx, ec, tiers, descs)

	if state == StateAlwaysAllow {
		// Ultimate safety net: every strategy failed, allow outright.
		skipped := make([]check.Descriptor, 0, len(applicable))
		for _, c := range applicable {
			skipped = append(skipped, c.Descriptor())
		}
		return &Decision{
			RunID:       runID,
			Verdict:     VerdictAllow,
			Skipped:     skipped,
			SkippedIDs:  descriptorIDs(skipped),
			Fallback:    FallbackEmergency,
			Transitions: transitions,
			StartedAt:   started,
			Elapsed:     time.Since(started),
		}
	}

	outcome := aggregate(ec.Phase, att.tiers, descs)
	skipped := sortedDescriptors(att.skipped)

	dec = &Decision{
		RunID:         runID,
		Verdict:       outcome.verdict,
		TriggeringID:  outcome.triggeringID,
		Message:       outcome.message,
		Warnings:      outcome.warnings,
		Modifications: outcome.modifications,
		Skipped:       skipped,
		SkippedIDs:    descriptorIDs(skipped),
		Fallback:      state.fallbackTier(),
		Transitions:   transitions,
		Tiers:         att.tiers,
		StartedAt:     started,
		Elapsed:       time.Since(started),
	}
	if outcome.triggeringID != "" {
		if desc, ok := descs[outcome.triggeringID]; ok {
			dec.Triggering = &desc
		}
	}

	if dec.Verdict == VerdictBlock {
		log.Debugf("blocked %s: %s (check %s)", ec.Path, dec.Message, dec.TriggeringID)
	}
	return dec
}

// sortedDescriptors returns a copy ordered by ID.
func sortedDescriptors(descs []check.Descriptor) []check.Descriptor {
	out := make([]check.Descriptor, len(descs))
	copy(out, descs)
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// descriptorIDs projects descriptors to their IDs.
func descriptorIDs(descs []check.Descriptor) []string {
	if len(descs) == 0 {
		return nil
	}
	out := make([]string, 0, len(descs))
	for _, d := range descs {
		out = append(out, d.ID)
	}
	return out
}
