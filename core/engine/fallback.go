package engine

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/safedep/dry/log"

	"github.com/bulwarkhq/bulwark/core/check"
)

// State is one stop in the degradation path. The engine attempts states in
// order and moves down one state per engine-level failure; it never moves
// back up within a run.
type State int

const (
	// StateParallel is the primary tiered concurrent strategy.
	StateParallel State = iota
	// StateSequential runs the same checks one at a time.
	StateSequential
	// StateEmergency runs only critical checks with tiny timeouts.
	StateEmergency
	// StateAlwaysAllow is terminal: allow unconditionally.
	StateAlwaysAllow
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateParallel:
		return "parallel"
	case StateSequential:
		return "sequential"
	case StateEmergency:
		return "emergency"
	case StateAlwaysAllow:
		return "always-allow"
	default:
		return "unknown"
	}
}

// MarshalText encodes the State as its string form.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// next returns the state after s in the degradation path.
func (s State) next() State {
	if s >= StateAlwaysAllow {
		return StateAlwaysAllow
	}
	return s + 1
}

// fallbackTier maps the state that produced a decision to the tier
// reported on it. The terminal always-allow state reports emergency.
func (s State) fallbackTier() FallbackTier {
	switch s {
	case StateParallel:
		return FallbackNone
	case StateSequential:
		return FallbackSequential
	default:
		return FallbackEmergency
	}
}

// TransitionReason says why the engine degraded a state.
type TransitionReason string

const (
	// ReasonFault marks an internal engine failure.
	ReasonFault TransitionReason = "fault"
	// ReasonOverrun marks a total-run budget overrun.
	ReasonOverrun TransitionReason = "overrun"
)

// Transition records one fallback state change.
type Transition struct {
	From   State            `json:"from"`
	To     State            `json:"to"`
	Reason TransitionReason `json:"reason"`
	Cause  string           `json:"cause,omitempty"`
}

// classifyFailure maps an attempt error to a transition reason.
func classifyFailure(err error) (TransitionReason, string) {
	if IsBudgetExceeded(err) {
		return ReasonOverrun, err.Error()
	}
	return ReasonFault, err.Error()
}

// run drives the degradation state machine: attempt each strategy in
// order, downgrade on fault or overrun, stop at the first state that
// completes. It returns the completing state, its attempt (nil only for
// the terminal always-allow state), and the transitions taken.
func (e *Engine) run(ctx context.Context, ec *check.Context, tiers []tier, descs map[string]check.Descriptor) (State, *attempt, []Transition) {
	var transitions []Transition

	for state := StateParallel; state != StateAlwaysAllow; state = state.next() {
		att, err := e.attemptState(ctx, state, ec, tiers, descs)
		if err == nil {
			return state, att, transitions
		}

		reason, cause := classifyFailure(err)
		next := state.next()
		log.Warnf("policy run degrading from %s to %s (%s): %s", state, next, reason, cause)
		e.metrics.FallbackTransition(state.String(), next.String(), string(reason))
		transitions = append(transitions, Transition{From: state, To: next, Reason: reason, Cause: cause})
	}

	return StateAlwaysAllow, nil, transitions
}

// attemptState runs one strategy under a fresh total-run budget, turning
// panics inside the engine into faults. Check-level panics never reach
// here; they are absorbed in invoke.
func (e *Engine) attemptState(ctx context.Context, state State, ec *check.Context, tiers []tier, descs map[string]check.Descriptor) (att *attempt, err error) {
	runCtx, cancel := context.WithTimeout(ctx, e.budgets.Run)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("engine panic in %s strategy: %v\n%s", state, r, debug.Stack())
			att = nil
			err = &FaultError{Stage: state.String(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	runner := e.runners[state]
	if runner == nil {
		return nil, &FaultError{Stage: state.String(), Err: fmt.Errorf("no runner configured")}
	}
	return runner(runCtx, ec, tiers, descs)
}
