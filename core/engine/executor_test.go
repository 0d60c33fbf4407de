package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulwarkhq/bulwark/core/check"
)

func TestInvokeSynthesizesTimeout(t *testing.T) {
	d := testDescriptor("sleeper", check.PriorityHigh, check.BlockingHard)
	d.Timeout = 20 * time.Millisecond
	c := check.NewFn(d, func(ctx context.Context, ec *check.Context) (*check.Result, error) {
		time.Sleep(300 * time.Millisecond)
		return check.Allow(), nil
	})

	e := newEngine(t, Config{})
	start := time.Now()
	res := e.invoke(context.Background(), c, &check.Context{}, 0)

	require.NotNil(t, res)
	assert.Equal(t, "sleeper", res.CheckID)
	assert.Equal(t, check.StatusAllow, res.Status)
	assert.Equal(t, check.FailureTimeout, res.Failure)
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}

func TestInvokeDefaultTimeout(t *testing.T) {
	d := testDescriptor("untimed", check.PriorityHigh, check.BlockingHard)
	d.Timeout = 0
	c := check.NewFn(d, func(ctx context.Context, ec *check.Context) (*check.Result, error) {
		time.Sleep(30 * time.Millisecond)
		return check.Allow(), nil
	})

	e := newEngine(t, Config{})
	res := e.invoke(context.Background(), c, &check.Context{}, 0)

	assert.Equal(t, check.FailureNone, res.Failure)
	assert.GreaterOrEqual(t, res.Elapsed, 30*time.Millisecond)
}

func TestInvokeAppliesTimeoutCap(t *testing.T) {
	d := testDescriptor("capped", check.PriorityCritical, check.BlockingHard)
	d.Timeout = time.Hour
	c := check.NewFn(d, func(ctx context.Context, ec *check.Context) (*check.Result, error) {
		time.Sleep(300 * time.Millisecond)
		return check.Allow(), nil
	})

	e := newEngine(t, Config{})
	start := time.Now()
	res := e.invoke(context.Background(), c, &check.Context{}, 40*time.Millisecond)

	assert.Equal(t, check.FailureTimeout, res.Failure)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestStampAbsorbsMalformedOutcomes(t *testing.T) {
	d := testDescriptor("shape", check.PriorityHigh, check.BlockingHard)

	res := stamp(d, invokeOutcome{err: errors.New("boom")}, 5*time.Millisecond)
	assert.Equal(t, check.StatusAllow, res.Status)
	assert.Equal(t, check.FailureError, res.Failure)
	assert.Equal(t, "shape", res.CheckID)
	assert.Equal(t, 5*time.Millisecond, res.Elapsed)

	res = stamp(d, invokeOutcome{}, 0)
	assert.Equal(t, check.FailureError, res.Failure)

	res = stamp(d, invokeOutcome{res: &check.Result{Status: "bogus"}}, 0)
	assert.Equal(t, check.FailureError, res.Failure)

	res = stamp(d, invokeOutcome{res: &check.Result{Status: check.StatusModify}}, 0)
	assert.Equal(t, check.FailureError, res.Failure)

	res = stamp(d, invokeOutcome{res: &check.Result{Status: check.StatusAllow}}, 0)
	assert.Equal(t, check.FailureNone, res.Failure)

	res = stamp(d, invokeOutcome{res: check.Block("stop right there")}, 7*time.Millisecond)
	assert.Equal(t, check.StatusBlock, res.Status)
	assert.Equal(t, check.FailureNone, res.Failure)
	assert.Equal(t, "shape", res.CheckID)
	assert.Equal(t, 7*time.Millisecond, res.Elapsed)
}

func TestRunEndedErrorClassification(t *testing.T) {
	expired, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-expired.Done()
	err := runEndedError(expired, 5*time.Second)
	assert.True(t, IsBudgetExceeded(err))
	assert.False(t, IsFault(err))

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	err = runEndedError(cancelled, 5*time.Second)
	assert.True(t, IsFault(err))
	assert.False(t, IsBudgetExceeded(err))
}

func TestTierFamilyBudgets(t *testing.T) {
	a := &countingCheck{desc: testDescriptor("fam-a", check.PriorityHigh, check.BlockingHard)}
	a.desc.Family = "io"
	b := &countingCheck{desc: testDescriptor("fam-b", check.PriorityHigh, check.BlockingHard)}
	b.desc.Family = "net"
	solo := &countingCheck{desc: testDescriptor("solo", check.PriorityHigh, check.BlockingHard)}

	cfg := Config{Budgets: Budgets{Families: map[string]time.Duration{
		"io":     75 * time.Millisecond,
		"unused": time.Second,
	}}}
	e := newEngine(t, cfg, a, b, solo)

	budgets := e.tierFamilyBudgets(tier{priority: check.PriorityHigh, checks: []check.Check{a, b, solo}})
	assert.Equal(t, map[string]time.Duration{"io": 75 * time.Millisecond}, budgets)
}

func TestFamilyBudgetAbandonsSlowMembers(t *testing.T) {
	mk := func(id string) check.Check {
		d := testDescriptor(id, check.PriorityHigh, check.BlockingHard)
		d.Family = "remote-lint"
		return check.NewFn(d, func(ctx context.Context, ec *check.Context) (*check.Result, error) {
			select {
			case <-time.After(500 * time.Millisecond):
				return check.Allow(), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		})
	}

	rec := &captureRecorder{}
	reg := check.NewRegistry()
	for _, c := range []check.Check{mk("lint-a"), mk("lint-b"), mk("lint-c")} {
		require.NoError(t, reg.Register(c))
	}
	cfg := Config{Budgets: Budgets{Families: map[string]time.Duration{"remote-lint": 80 * time.Millisecond}}}
	e := New(reg, cfg, WithMetrics(rec))

	start := time.Now()
	dec := e.Evaluate(context.Background(), writeEvent("main.go"))
	wall := time.Since(start)

	require.Equal(t, VerdictAllow, dec.Verdict)
	// The family is abandoned at its budget, well before any member's own
	// timeout, and nowhere near the sum of the three.
	assert.Less(t, wall, 400*time.Millisecond)
	require.Len(t, dec.Results(), 3)
	for _, res := range dec.Results() {
		assert.Equal(t, check.FailureTimeout, res.Failure, res.CheckID)
	}
	assert.ElementsMatch(t, []string{"lint-a", "lint-b", "lint-c"}, dec.FailedChecks())

	_, exhausted, _, _ := rec.snap()
	assert.Equal(t, []string{"remote-lint"}, exhausted)
}

func TestSequentialFamilyBudgetSumsElapsed(t *testing.T) {
	mk := func(id string) *countingCheck {
		d := testDescriptor(id, check.PriorityMedium, check.BlockingSoft)
		d.Family = "fs-scan"
		return &countingCheck{desc: d, run: func(ctx context.Context, ec *check.Context) (*check.Result, error) {
			time.Sleep(60 * time.Millisecond)
			return check.Allow(), nil
		}}
	}
	a, b, c := mk("scan-a"), mk("scan-b"), mk("scan-c")

	cfg := Config{Budgets: Budgets{Families: map[string]time.Duration{"fs-scan": 100 * time.Millisecond}}}
	e := newEngine(t, cfg, a, b, c)

	checks := []check.Check{a, b, c}
	att, err := e.runSequential(context.Background(), writeEvent("main.go"), tiersOf(checks), descriptorIndex(checks))
	require.NoError(t, err)
	require.Len(t, att.tiers, 1)

	results := att.tiers[0].Results
	require.Len(t, results, 3)
	assert.Equal(t, check.FailureNone, results[0].Failure)
	assert.Equal(t, check.FailureNone, results[1].Failure)
	assert.Equal(t, check.FailureTimeout, results[2].Failure)
	assert.Zero(t, c.calls.Load())
}

func TestSequentialStopsAtRunBudget(t *testing.T) {
	slow := check.NewFn(testDescriptor("molasses", check.PriorityHigh, check.BlockingHard),
		func(ctx context.Context, ec *check.Context) (*check.Result, error) {
			select {
			case <-time.After(300 * time.Millisecond):
				return check.Allow(), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		})
	tail := &countingCheck{desc: testDescriptor("tail-sweep", check.PriorityLow, check.BlockingNone)}

	e := newEngine(t, Config{}, slow, tail)
	checks := []check.Check{slow, tail}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := e.runSequential(ctx, writeEvent("main.go"), tiersOf(checks), descriptorIndex(checks))

	require.Error(t, err)
	assert.True(t, IsBudgetExceeded(err))
	assert.Zero(t, tail.calls.Load())
}

func TestSequentialBlockSkipsRestOfTier(t *testing.T) {
	blocker := check.NewFn(testDescriptor("first-block", check.PriorityCritical, check.BlockingHard),
		func(ctx context.Context, ec *check.Context) (*check.Result, error) {
			return check.Block("halt"), nil
		})
	peer := &countingCheck{desc: testDescriptor("second-peer", check.PriorityCritical, check.BlockingHard)}

	e := newEngine(t, Config{}, blocker, peer)
	checks := []check.Check{blocker, peer}

	att, err := e.runSequential(context.Background(), writeEvent("main.go"), tiersOf(checks), descriptorIndex(checks))
	require.NoError(t, err)

	require.Len(t, att.tiers, 1)
	require.Len(t, att.tiers[0].Results, 1)
	assert.Equal(t, "first-block", att.tiers[0].Results[0].CheckID)
	assert.Zero(t, peer.calls.Load())
	require.Len(t, att.skipped, 1)
	assert.Equal(t, "second-peer", att.skipped[0].ID)
}

func TestEmergencyRunsCriticalOnly(t *testing.T) {
	crit := &countingCheck{desc: testDescriptor("crit-guard", check.PriorityCritical, check.BlockingHard)}
	high := &countingCheck{desc: testDescriptor("high-guard", check.PriorityHigh, check.BlockingHard)}

	e := newEngine(t, Config{}, crit, high)
	checks := []check.Check{crit, high}

	att, err := e.runEmergency(context.Background(), writeEvent("main.go"), tiersOf(checks), descriptorIndex(checks))
	require.NoError(t, err)

	require.Len(t, att.tiers, 1)
	assert.Equal(t, check.PriorityCritical, att.tiers[0].Priority)
	assert.Equal(t, int32(1), crit.calls.Load())
	assert.Zero(t, high.calls.Load())
	require.Len(t, att.skipped, 1)
	assert.Equal(t, "high-guard", att.skipped[0].ID)
}

func TestEmergencyCapsCheckTimeout(t *testing.T) {
	d := testDescriptor("slow-crit", check.PriorityCritical, check.BlockingHard)
	c := check.NewFn(d, func(ctx context.Context, ec *check.Context) (*check.Result, error) {
		time.Sleep(300 * time.Millisecond)
		return check.Allow(), nil
	})

	e := newEngine(t, Config{}, c)
	checks := []check.Check{c}

	start := time.Now()
	att, err := e.runEmergency(context.Background(), writeEvent("main.go"), tiersOf(checks), descriptorIndex(checks))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 200*time.Millisecond)

	require.Len(t, att.tiers, 1)
	require.Len(t, att.tiers[0].Results, 1)
	assert.Equal(t, check.FailureTimeout, att.tiers[0].Results[0].Failure)
}

func TestParallelTierRunsConcurrently(t *testing.T) {
	mk := func(id string) check.Check {
		d := testDescriptor(id, check.PriorityHigh, check.BlockingHard)
		return check.NewFn(d, func(ctx context.Context, ec *check.Context) (*check.Result, error) {
			time.Sleep(80 * time.Millisecond)
			return check.Allow(), nil
		})
	}
	a, b := mk("par-a"), mk("par-b")

	e := newEngine(t, Config{}, a, b)
	checks := []check.Check{a, b}

	start := time.Now()
	att, err := e.runParallel(context.Background(), writeEvent("main.go"), tiersOf(checks), descriptorIndex(checks))
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 160*time.Millisecond)
	require.Len(t, att.tiers, 1)
	assert.Len(t, att.tiers[0].Results, 2)
}

func TestMaxConcurrencySerializesTier(t *testing.T) {
	mk := func(id string) check.Check {
		d := testDescriptor(id, check.PriorityHigh, check.BlockingHard)
		return check.NewFn(d, func(ctx context.Context, ec *check.Context) (*check.Result, error) {
			time.Sleep(80 * time.Millisecond)
			return check.Allow(), nil
		})
	}
	a, b := mk("serial-a"), mk("serial-b")

	reg := check.NewRegistry()
	require.NoError(t, reg.Register(a))
	require.NoError(t, reg.Register(b))
	e := New(reg, Config{}, WithMaxConcurrency(1))

	checks := []check.Check{a, b}
	start := time.Now()
	att, err := e.runParallel(context.Background(), writeEvent("main.go"), tiersOf(checks), descriptorIndex(checks))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 160*time.Millisecond)
	assert.Len(t, att.tiers[0].Results, 2)
}

func TestBlockDoesNotWaitForTierPeers(t *testing.T) {
	var peerFinished atomic.Bool
	blocker := check.NewFn(testDescriptor("hard-stop", check.PriorityCritical, check.BlockingHard),
		func(ctx context.Context, ec *check.Context) (*check.Result, error) {
			return check.Block("sensitive path"), nil
		})
	peer := check.NewFn(testDescriptor("slow-peer", check.PriorityCritical, check.BlockingHard),
		func(ctx context.Context, ec *check.Context) (*check.Result, error) {
			select {
			case <-time.After(300 * time.Millisecond):
				peerFinished.Store(true)
				return check.Allow(), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		})

	e := newEngine(t, Config{}, blocker, peer)
	start := time.Now()
	dec := e.Evaluate(context.Background(), writeEvent("secrets.env"))

	require.Equal(t, VerdictBlock, dec.Verdict)
	assert.Equal(t, "hard-stop", dec.TriggeringID)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
	assert.False(t, peerFinished.Load())

	// The peer never completed: it was either cancelled and discarded or
	// synthesized as a failure, but it cannot have contributed an allow.
	outcome := append(append([]string{}, dec.SkippedIDs...), dec.FailedChecks()...)
	assert.Contains(t, outcome, "slow-peer")
}
