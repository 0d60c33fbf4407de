package check

import (
	"fmt"
	"time"
)

// Status is the outcome a check reports for a mutation.
type Status string

const (
	// StatusAllow lets the mutation proceed.
	StatusAllow Status = "allow"
	// StatusBlock asks for the mutation to be stopped. Whether it actually
	// blocks depends on the check's BlockingBehavior and failure state.
	StatusBlock Status = "block"
	// StatusWarn allows the mutation but attaches advisory text.
	StatusWarn Status = "warn"
	// StatusModify allows the mutation with a proposed content patch.
	StatusModify Status = "modify"
)

// String returns the string representation of a Status.
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the Status is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusAllow, StatusBlock, StatusWarn, StatusModify:
		return true
	default:
		return false
	}
}

// FailureReason records why a check did not complete normally.
type FailureReason string

const (
	// FailureNone marks a check that completed normally.
	FailureNone FailureReason = "none"
	// FailureError marks a check that returned an error, panicked, or
	// produced malformed output.
	FailureError FailureReason = "error"
	// FailureTimeout marks a check abandoned on its own timeout or its
	// family's aggregate budget.
	FailureTimeout FailureReason = "timeout"
)

// String returns the string representation of a FailureReason.
func (f FailureReason) String() string {
	if f == "" {
		return string(FailureNone)
	}
	return string(f)
}

// Failed returns true if the check did not complete normally.
func (f FailureReason) Failed() bool {
	return f == FailureError || f == FailureTimeout
}

// Patch is a content modification proposed by a check. Target names the
// content being replaced; checks never apply patches themselves.
type Patch struct {
	Target     string `json:"target"`
	NewContent string `json:"newContent"`
}

// Result is what one check invocation produced. The engine's execution
// wrapper stamps CheckID, Elapsed, and Failure; check implementations fill
// only Status, Message, and Patch.
type Result struct {
	CheckID string        `json:"checkId"`
	Status  Status        `json:"status"`
	Message string        `json:"message,omitempty"`
	Patch   *Patch        `json:"patch,omitempty"`
	Elapsed time.Duration `json:"elapsed,omitempty"`
	Failure FailureReason `json:"failureReason,omitempty"`
}

// Allow creates a clean allow result.
func Allow() *Result {
	return &Result{Status: StatusAllow, Failure: FailureNone}
}

// Block creates a block result with the given reason. The reason is shown
// to the caller when this check ends up triggering the final decision.
func Block(format string, args ...any) *Result {
	return &Result{
		Status:  StatusBlock,
		Message: fmt.Sprintf(format, args...),
		Failure: FailureNone,
	}
}

// Warn creates an advisory result that never blocks.
func Warn(format string, args ...any) *Result {
	return &Result{
		Status:  StatusWarn,
		Message: fmt.Sprintf(format, args...),
		Failure: FailureNone,
	}
}

// Modify creates a result proposing a content patch.
func Modify(patch Patch, message string) *Result {
	return &Result{
		Status:  StatusModify,
		Message: message,
		Patch:   &patch,
		Failure: FailureNone,
	}
}
