package journal

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bulwarkhq/bulwark/core/check"
	"github.com/bulwarkhq/bulwark/core/engine"
)

// Record is one journaled decision.
type Record struct {
	// ID is the engine run ID.
	ID uuid.UUID `json:"id"`
	// Timestamp is when the run started.
	Timestamp time.Time `json:"timestamp"`
	// Phase is pre or post.
	Phase string `json:"phase"`
	// ToolName is the tool that attempted the mutation.
	ToolName string `json:"toolName,omitempty"`
	// Path is the mutation target.
	Path string `json:"path,omitempty"`
	// Verdict is allow or block.
	Verdict string `json:"verdict"`
	// Triggering is the check whose block decided the run, if any.
	Triggering string `json:"triggeringCheck,omitempty"`
	// Message is the block reason or advisory summary.
	Message string `json:"message,omitempty"`
	// Fallback reports the degraded strategy used, if any.
	Fallback string `json:"fallbackTierUsed"`
	// Elapsed is the total run duration.
	Elapsed time.Duration `json:"elapsed"`
	// ChecksEvaluated counts the results the decision aggregated.
	ChecksEvaluated int `json:"checksEvaluated"`
	// ChecksFailed counts results synthesized for errors and timeouts.
	ChecksFailed int `json:"checksFailed"`
	// ChecksSkipped counts scheduled checks that never produced a result.
	ChecksSkipped int `json:"checksSkipped"`
	// Project is the detected project name, when known.
	Project string `json:"project,omitempty"`
	// Diagnostics carries the run's failure detail for inspection.
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
}

// Diagnostics is the JSON-encoded detail column of a record.
type Diagnostics struct {
	FailedChecks  []string `json:"failedChecks,omitempty"`
	SkippedChecks []string `json:"skippedChecks,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	Transitions   []string `json:"transitions,omitempty"`
}

// FromDecision builds the journal record for one evaluated mutation.
func FromDecision(ec *check.Context, dec *engine.Decision, project string) *Record {
	rec := &Record{
		ID:              dec.RunID,
		Timestamp:       dec.StartedAt,
		Verdict:         dec.Verdict.String(),
		Triggering:      dec.TriggeringID,
		Message:         dec.Message,
		Fallback:        string(dec.Fallback),
		Elapsed:         dec.Elapsed,
		ChecksEvaluated: len(dec.Results()),
		Project:         project,
	}
	if ec != nil {
		rec.Phase = ec.Phase.String()
		rec.ToolName = ec.ToolName
		rec.Path = ec.Path
	}

	failed := dec.FailedChecks()
	rec.ChecksFailed = len(failed)
	rec.ChecksSkipped = len(dec.SkippedIDs)

	diag := &Diagnostics{
		FailedChecks:  failed,
		SkippedChecks: dec.SkippedIDs,
		Warnings:      dec.Warnings,
	}
	for _, tr := range dec.Transitions {
		diag.Transitions = append(diag.Transitions,
			fmt.Sprintf("%s>%s: %s", tr.From, tr.To, tr.Reason))
	}
	if len(diag.FailedChecks) > 0 || len(diag.SkippedChecks) > 0 ||
		len(diag.Warnings) > 0 || len(diag.Transitions) > 0 {
		rec.Diagnostics = diag
	}

	return rec
}
