// Package check defines the contract between the policy engine and the
// validation checks it orchestrates: the execution context handed to every
// check, the result a check produces, and the static descriptor metadata
// the engine schedules by.
package check

import "context"

// Check is a single validation unit evaluated against a proposed mutation.
// Implementations are black boxes to the engine: they receive a read-only
// Context and report back through a Result. They must be safe for concurrent
// use, must not mutate the Context, and should honor cancellation of the
// passed context; the engine enforces deadlines around Execute but relies on
// cooperative cancellation to stop work early.
type Check interface {
	// Descriptor returns the static metadata used for scheduling. It must
	// return the same value for the lifetime of the check.
	Descriptor() Descriptor
	// Execute evaluates the mutation described by ec. Returning an error,
	// a nil result, or panicking is absorbed by the engine and never
	// blocks the mutation.
	Execute(ctx context.Context, ec *Context) (*Result, error)
}

// Fn adapts a descriptor and a plain function into a Check.
type Fn struct {
	Desc Descriptor
	Run  func(ctx context.Context, ec *Context) (*Result, error)
}

// NewFn creates a function-backed check.
func NewFn(desc Descriptor, run func(ctx context.Context, ec *Context) (*Result, error)) *Fn {
	return &Fn{Desc: desc, Run: run}
}

// Descriptor returns the check's static metadata.
func (f *Fn) Descriptor() Descriptor {
	return f.Desc
}

// Execute invokes the wrapped function.
func (f *Fn) Execute(ctx context.Context, ec *Context) (*Result, error) {
	return f.Run(ctx, ec)
}

// Ensure Fn implements Check
var _ Check = (*Fn)(nil)
