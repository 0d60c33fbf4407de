package engine

import (
	"errors"
	"fmt"
	"time"
)

// FaultError is an internal engine failure not attributable to any single
// check. Check-level failures (errors, timeouts, family budget overruns)
// never surface as errors; they are absorbed into synthesized results. A
// FaultError only ever travels as far as the fallback controller, which
// downgrades the execution strategy instead of failing the run.
type FaultError struct {
	// Stage names where inside the engine the fault happened.
	Stage string
	// Err is the underlying cause.
	Err error
}

// Error returns the fault description.
func (e *FaultError) Error() string {
	return fmt.Sprintf("engine fault in %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FaultError) Unwrap() error {
	return e.Err
}

// BudgetError reports that a strategy attempt exceeded its total-run
// budget. Like FaultError, it only travels as far as the fallback
// controller.
type BudgetError struct {
	// Budget is the total-run budget that was exceeded.
	Budget time.Duration
}

// Error returns the overrun description.
func (e *BudgetError) Error() string {
	return fmt.Sprintf("run budget of %s exceeded", e.Budget)
}

// IsFault returns true if err is an internal engine fault.
func IsFault(err error) bool {
	var fe *FaultError
	return errors.As(err, &fe)
}

// IsBudgetExceeded returns true if err is a total-run budget overrun.
func IsBudgetExceeded(err error) bool {
	var be *BudgetError
	return errors.As(err, &be)
}
