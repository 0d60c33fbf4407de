// Package engine orchestrates policy checks against a proposed mutation:
// it gates and schedules the registered checks into priority tiers, runs
// each tier concurrently under per-check and per-family deadlines, merges
// the results into a single allow/block decision, and degrades through
// fallback strategies instead of ever failing the caller. Infrastructure
// trouble never blocks a mutation; only a healthy check saying block does.
package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bulwarkhq/bulwark/core/check"
)

// Verdict is the final outcome of a run.
type Verdict int

const (
	// VerdictAllow lets the mutation proceed.
	VerdictAllow Verdict = iota
	// VerdictBlock stops the mutation.
	VerdictBlock
)

// String returns the string representation of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictAllow:
		return "allow"
	case VerdictBlock:
		return "block"
	default:
		return "unknown"
	}
}

// MarshalText encodes the Verdict as its string form.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// FallbackTier reports which degraded strategy, if any, produced the
// decision.
type FallbackTier string

const (
	// FallbackNone means the primary parallel strategy completed.
	FallbackNone FallbackTier = "none"
	// FallbackSequential means the one-at-a-time strategy completed.
	FallbackSequential FallbackTier = "sequential"
	// FallbackEmergency means the critical-only strategy completed, or
	// the terminal always-allow state was reached.
	FallbackEmergency FallbackTier = "emergency"
)

// TierResult collects the results produced by one executed tier.
type TierResult struct {
	Priority check.Priority  `json:"priority"`
	Results  []*check.Result `json:"results"`
}

// Decision is the terminal artifact of a run, returned to the caller and
// never mutated after construction.
type Decision struct {
	// RunID uniquely identifies this evaluation run.
	RunID uuid.UUID `json:"runId"`
	// Verdict is allow or block.
	Verdict Verdict `json:"verdict"`
	// Triggering is the descriptor of the check whose block result decided
	// the run; nil for allow decisions.
	Triggering *check.Descriptor `json:"-"`
	// TriggeringID is the triggering check's ID, kept alongside the
	// descriptor for encoding.
	TriggeringID string `json:"triggeringCheck,omitempty"`
	// Message is the human-readable reason for a block, or aggregated
	// advisory text for an allow.
	Message string `json:"message,omitempty"`
	// Warnings carries advisory messages from warn results and from block
	// results downgraded by a warning blocking behavior.
	Warnings []string `json:"warnings,omitempty"`
	// Modifications are the composed content patches from modify results,
	// in tier order then ascending check ID. Post phase only.
	Modifications []check.Patch `json:"modifications,omitempty"`
	// Skipped lists checks that were scheduled but never produced a
	// result: cancelled mid-tier, in tiers after an early exit, or outside
	// a fallback strategy's scope.
	Skipped []check.Descriptor `json:"-"`
	// SkippedIDs mirrors Skipped for encoding.
	SkippedIDs []string `json:"skippedChecks,omitempty"`
	// Fallback reports the degraded strategy used, if any.
	Fallback FallbackTier `json:"fallbackTierUsed"`
	// Transitions records every fallback state change with its reason.
	Transitions []Transition `json:"transitions,omitempty"`
	// Tiers holds the per-tier results for diagnostics.
	Tiers []TierResult `json:"tiers,omitempty"`
	// Bypassed is true when the environment gate short-circuited the run.
	Bypassed bool `json:"bypassed,omitempty"`
	// StartedAt and Elapsed time the whole run.
	StartedAt time.Time     `json:"startedAt"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Allowed returns true if the mutation may proceed.
func (d *Decision) Allowed() bool {
	return d.Verdict != VerdictBlock
}

// Results flattens the per-tier results in tier order.
func (d *Decision) Results() []*check.Result {
	var out []*check.Result
	for _, tr := range d.Tiers {
		out = append(out, tr.Results...)
	}
	return out
}

// FailedChecks returns the IDs of checks that erred or timed out.
func (d *Decision) FailedChecks() []string {
	var out []string
	for _, res := range d.Results() {
		if res.Failure.Failed() {
			out = append(out, res.CheckID)
		}
	}
	return out
}

// Reason returns the text to surface to the caller on a block: the
// triggering check's message, or a generic line naming the check.
func (d *Decision) Reason() string {
	if d.Allowed() {
		return ""
	}
	if d.Message != "" {
		return d.Message
	}
	return "blocked by check " + d.TriggeringID
}

// AdvisoryText joins collected warnings for display.
func (d *Decision) AdvisoryText() string {
	return strings.Join(d.Warnings, "\n")
}
