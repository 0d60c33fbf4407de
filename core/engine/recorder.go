package engine

import "time"

// Recorder receives engine observability events. Implementations must be
// safe for concurrent use; recording never influences a decision.
type Recorder interface {
	// CheckEvaluated fires once per collected or synthesized result.
	CheckEvaluated(checkID, status, failure string, elapsed time.Duration)
	// FamilyExhausted fires when a family's aggregate budget runs out.
	FamilyExhausted(family string)
	// FallbackTransition fires on every degradation step.
	FallbackTransition(from, to, reason string)
	// RunCompleted fires once per Evaluate call.
	RunCompleted(verdict, fallback string, elapsed time.Duration)
}

// nopRecorder discards every event. It is the default when no recorder
// is injected.
type nopRecorder struct{}

func (nopRecorder) CheckEvaluated(string, string, string, time.Duration) {}
func (nopRecorder) FamilyExhausted(string)                               {}
func (nopRecorder) FallbackTransition(string, string, string)            {}
func (nopRecorder) RunCompleted(string, string, time.Duration)           {}

// Ensure nopRecorder implements Recorder
var _ Recorder = nopRecorder{}
