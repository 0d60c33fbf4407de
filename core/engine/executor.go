package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/safedep/dry/log"
	"golang.org/x/sync/errgroup"

	"github.com/bulwarkhq/bulwark/core/check"
)

// attempt carries the artifacts of one strategy attempt.
type attempt struct {
	tiers   []TierResult
	skipped []check.Descriptor
}

// runnerFunc executes one fallback state's strategy over the scheduled
// tiers. It returns an error only for engine-level failures (fault or run
// budget overrun); check-level failures are absorbed into results.
type runnerFunc func(ctx context.Context, ec *check.Context, tiers []tier, descs map[string]check.Descriptor) (*attempt, error)

type invokeOutcome struct {
	res *check.Result
	err error
}

// invoke runs a single check under its individual timeout. It is the one
// place where check-level failures are absorbed: errors, panics, malformed
// results, and timeouts all come back as synthesized allows carrying a
// failure reason. It always returns a stamped result.
func (e *Engine) invoke(ctx context.Context, c check.Check, ec *check.Context, timeoutCap time.Duration) *check.Result {
	desc := c.Descriptor()

	timeout := desc.Timeout
	if timeout <= 0 {
		timeout = e.budgets.DefaultCheckTimeout
	}
	if timeoutCap > 0 && timeout > timeoutCap {
		timeout = timeoutCap
	}

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan invokeOutcome, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("check %s panicked: %v\n%s", desc.ID, r, debug.Stack())
				done <- invokeOutcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		res, err := c.Execute(checkCtx, ec)
		done <- invokeOutcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		return stamp(desc, out, time.Since(start))
	case <-checkCtx.Done():
		// Own deadline or a cancelled parent; either way the check did
		// not finish in time. If the tier was cancelled the collector
		// discards this result.
		return synthesize(desc.ID, check.FailureTimeout, time.Since(start))
	}
}

// stamp finalizes a check's raw outcome into a run result, absorbing
// errors and malformed output.
func stamp(desc check.Descriptor, out invokeOutcome, elapsed time.Duration) *check.Result {
	if out.err != nil {
		return synthesize(desc.ID, check.FailureError, elapsed)
	}

	res := out.res
	if res == nil || !res.Status.IsValid() {
		return synthesize(desc.ID, check.FailureError, elapsed)
	}
	if res.Status == check.StatusModify && res.Patch == nil {
		return synthesize(desc.ID, check.FailureError, elapsed)
	}

	res.CheckID = desc.ID
	res.Elapsed = elapsed
	if res.Failure == "" {
		res.Failure = check.FailureNone
	}
	return res
}

// synthesize builds the non-blocking stand-in result for a failed check.
func synthesize(checkID string, reason check.FailureReason, elapsed time.Duration) *check.Result {
	return &check.Result{
		CheckID: checkID,
		Status:  check.StatusAllow,
		Elapsed: elapsed,
		Failure: reason,
	}
}

// runEndedError classifies why the run context ended mid-attempt.
func runEndedError(ctx context.Context, budget time.Duration) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &BudgetError{Budget: budget}
	}
	return &FaultError{Stage: "run", Err: ctx.Err()}
}

// tierFamilyBudgets returns the budgeted families present in a tier.
func (e *Engine) tierFamilyBudgets(t tier) map[string]time.Duration {
	budgets := make(map[string]time.Duration)
	for _, c := range t.checks {
		fam := c.Descriptor().Family
		if fam == "" {
			continue
		}
		if b, ok := e.budgets.Families[fam]; ok && b > 0 {
			budgets[fam] = b
		}
	}
	return budgets
}

// runTier executes one tier concurrently. Every check is its own goroutine
// sending exactly one result into a channel buffered to the tier size, so
// no worker ever blocks and late results from cancelled or abandoned
// checks simply rest in the buffer. The collector loop is the only reader
// and the only place tier state changes.
func (e *Engine) runTier(ctx context.Context, t tier, ec *check.Context, descs map[string]check.Descriptor) (TierResult, []check.Descriptor, bool, error) {
	tierCtx, cancelTier := context.WithCancel(ctx)
	defer cancelTier()

	results := make(chan *check.Result, len(t.checks))

	famBudgets := e.tierFamilyBudgets(t)
	famStarted := make(map[string]chan struct{}, len(famBudgets))
	for name := range famBudgets {
		famStarted[name] = make(chan struct{}, 1)
	}

	var g errgroup.Group
	if e.maxConcurrency > 0 {
		g.SetLimit(e.maxConcurrency)
	}
	go func() {
		for _, c := range t.checks {
			g.Go(func() error {
				if ch, ok := famStarted[c.Descriptor().Family]; ok {
					select {
					case ch <- struct{}{}:
					default:
					}
				}
				results <- e.invoke(tierCtx, c, ec, 0)
				return nil
			})
		}
	}()

	// A family's budget clock starts when its first check starts, so time
	// spent queued behind the concurrency limit is never charged.
	abandonCh := make(chan string, len(famBudgets))
	watchStop := make(chan struct{})
	defer close(watchStop)
	for name, budget := range famBudgets {
		go func(name string, budget time.Duration) {
			select {
			case <-famStarted[name]:
			case <-watchStop:
				return
			}
			timer := time.NewTimer(budget)
			defer timer.Stop()
			select {
			case <-timer.C:
				select {
				case abandonCh <- name:
				case <-watchStop:
				}
			case <-watchStop:
			}
		}(name, budget)
	}

	tierStart := time.Now()
	pending := make(map[string]check.Check, len(t.checks))
	for _, c := range t.checks {
		pending[c.Descriptor().ID] = c
	}
	abandoned := make(map[string]bool)
	collected := make([]*check.Result, 0, len(t.checks))
	var skipped []check.Descriptor
	blocked := false

	for len(pending) > 0 {
		select {
		case res := <-results:
			if abandoned[res.CheckID] {
				continue
			}
			if _, ok := pending[res.CheckID]; !ok {
				continue
			}
			delete(pending, res.CheckID)
			collected = append(collected, res)
			e.metrics.CheckEvaluated(res.CheckID, res.Status.String(), res.Failure.String(), res.Elapsed)

			if qualifiesAsBlock(res, descs) {
				// Tier decided. Take whatever already finished, then
				// cancel the rest; their late results are discarded.
				blocked = true
				cancelTier()
				collected = e.drainBuffered(results, pending, abandoned, collected)
				for id, c := range pending {
					skipped = append(skipped, c.Descriptor())
					delete(pending, id)
				}
			}

		case fam := <-abandonCh:
			elapsed := time.Since(tierStart)
			for id, c := range pending {
				if c.Descriptor().Family != fam {
					continue
				}
				abandoned[id] = true
				delete(pending, id)
				res := synthesize(id, check.FailureTimeout, elapsed)
				collected = append(collected, res)
				e.metrics.CheckEvaluated(res.CheckID, res.Status.String(), res.Failure.String(), res.Elapsed)
			}
			e.metrics.FamilyExhausted(fam)
			log.Debugf("check family %s exhausted its budget after %s", fam, elapsed)

		case <-ctx.Done():
			return TierResult{}, nil, false, runEndedError(ctx, e.budgets.Run)
		}
	}

	return TierResult{Priority: t.priority, Results: collected}, skipped, blocked, nil
}

// drainBuffered collects results that completed before cancellation took
// hold, without waiting for anything still in flight.
func (e *Engine) drainBuffered(results <-chan *check.Result, pending map[string]check.Check, abandoned map[string]bool, collected []*check.Result) []*check.Result {
	for {
		select {
		case res := <-results:
			if abandoned[res.CheckID] {
				continue
			}
			if _, ok := pending[res.CheckID]; !ok {
				continue
			}
			delete(pending, res.CheckID)
			collected = append(collected, res)
			e.metrics.CheckEvaluated(res.CheckID, res.Status.String(), res.Failure.String(), res.Elapsed)
		default:
			return collected
		}
	}
}

// stopsRun reports whether a blocked tier of this priority ends the run.
// Lower tiers still run after a medium/low/background block so their
// advisory and modify results are collected; the earlier block stands.
func stopsRun(p check.Priority) bool {
	return p == check.PriorityCritical || p == check.PriorityHigh
}

// runParallel is the primary strategy: tiers in priority order, checks
// within each tier concurrent.
func (e *Engine) runParallel(ctx context.Context, ec *check.Context, tiers []tier, descs map[string]check.Descriptor) (*attempt, error) {
	att := &attempt{}
	for i, t := range tiers {
		tr, skippedInTier, blocked, err := e.runTier(ctx, t, ec, descs)
		if err != nil {
			return nil, err
		}
		att.tiers = append(att.tiers, tr)
		att.skipped = append(att.skipped, skippedInTier...)

		if blocked && stopsRun(t.priority) {
			for _, rest := range tiers[i+1:] {
				for _, c := range rest.checks {
					att.skipped = append(att.skipped, c.Descriptor())
				}
			}
			break
		}
	}
	return att, nil
}

// runSequential is the first fallback: the same checks one at a time in
// priority order then ID order, each under its own timeout. Family budgets
// apply per tier as the running sum of elapsed time, mirroring the
// parallel strategy's per-tier budgets.
func (e *Engine) runSequential(ctx context.Context, ec *check.Context, tiers []tier, descs map[string]check.Descriptor) (*attempt, error) {
	att := &attempt{}

	for i, t := range tiers {
		famElapsed := make(map[string]time.Duration)
		famExhausted := make(map[string]bool)
		collected := make([]*check.Result, 0, len(t.checks))
		blocked := false

		for j, c := range t.checks {
			if ctx.Err() != nil {
				return nil, runEndedError(ctx, e.budgets.Run)
			}

			desc := c.Descriptor()
			fam := desc.Family
			if fam != "" {
				if budget, ok := e.budgets.Families[fam]; ok && budget > 0 && famElapsed[fam] >= budget {
					res := synthesize(desc.ID, check.FailureTimeout, 0)
					collected = append(collected, res)
					e.metrics.CheckEvaluated(res.CheckID, res.Status.String(), res.Failure.String(), res.Elapsed)
					if !famExhausted[fam] {
						famExhausted[fam] = true
						e.metrics.FamilyExhausted(fam)
					}
					continue
				}
			}

			res := e.invoke(ctx, c, ec, 0)
			if fam != "" {
				famElapsed[fam] += res.Elapsed
			}
			collected = append(collected, res)
			e.metrics.CheckEvaluated(res.CheckID, res.Status.String(), res.Failure.String(), res.Elapsed)

			if qualifiesAsBlock(res, descs) {
				blocked = true
				for _, rest := range t.checks[j+1:] {
					att.skipped = append(att.skipped, rest.Descriptor())
				}
				break
			}
		}

		att.tiers = append(att.tiers, TierResult{Priority: t.priority, Results: collected})

		if blocked && stopsRun(t.priority) {
			for _, rest := range tiers[i+1:] {
				for _, c := range rest.checks {
					att.skipped = append(att.skipped, c.Descriptor())
				}
			}
			break
		}
	}
	return att, nil
}

// runEmergency is the last working fallback: only critical checks,
// sequential, each capped at the emergency timeout.
func (e *Engine) runEmergency(ctx context.Context, ec *check.Context, tiers []tier, descs map[string]check.Descriptor) (*attempt, error) {
	att := &attempt{}
	for _, t := range tiers {
		if t.priority != check.PriorityCritical {
			for _, c := range t.checks {
				att.skipped = append(att.skipped, c.Descriptor())
			}
			continue
		}

		collected := make([]*check.Result, 0, len(t.checks))
		for j, c := range t.checks {
			if ctx.Err() != nil {
				return nil, runEndedError(ctx, e.budgets.Run)
			}

			res := e.invoke(ctx, c, ec, e.budgets.EmergencyCheckTimeout)
			collected = append(collected, res)
			e.metrics.CheckEvaluated(res.CheckID, res.Status.String(), res.Failure.String(), res.Elapsed)

			if qualifiesAsBlock(res, descs) {
				for _, rest := range t.checks[j+1:] {
					att.skipped = append(att.skipped, rest.Descriptor())
				}
				break
			}
		}
		att.tiers = append(att.tiers, TierResult{Priority: t.priority, Results: collected})
	}
	return att, nil
}
