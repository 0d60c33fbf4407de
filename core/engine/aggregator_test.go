package engine

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulwarkhq/bulwark/core/check"
)

func TestQualifiesAsBlock(t *testing.T) {
	descs := map[string]check.Descriptor{
		"hard":   testDescriptor("hard", check.PriorityCritical, check.BlockingHard),
		"soft":   testDescriptor("soft", check.PriorityMedium, check.BlockingSoft),
		"advice": testDescriptor("advice", check.PriorityLow, check.BlockingWarning),
		"silent": testDescriptor("silent", check.PriorityBackground, check.BlockingNone),
	}

	timedOut := testResult("hard", check.StatusBlock)
	timedOut.Failure = check.FailureTimeout
	erred := testResult("hard", check.StatusBlock)
	erred.Failure = check.FailureError

	cases := []struct {
		name string
		res  *check.Result
		want bool
	}{
		{"hard block", testResult("hard", check.StatusBlock), true},
		{"soft block", testResult("soft", check.StatusBlock), true},
		{"warning behavior", testResult("advice", check.StatusBlock), false},
		{"none behavior", testResult("silent", check.StatusBlock), false},
		{"allow status", testResult("hard", check.StatusAllow), false},
		{"warn status", testResult("hard", check.StatusWarn), false},
		{"timed out", timedOut, false},
		{"erred", erred, false},
		{"unknown check", testResult("ghost", check.StatusBlock), false},
		{"nil result", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, qualifiesAsBlock(tc.res, descs))
		})
	}
}

func TestDecideTierSmallestIDWins(t *testing.T) {
	descs := map[string]check.Descriptor{
		"zeta":  testDescriptor("zeta", check.PriorityCritical, check.BlockingHard),
		"mid":   testDescriptor("mid", check.PriorityCritical, check.BlockingHard),
		"alpha": testDescriptor("alpha", check.PriorityCritical, check.BlockingHard),
		"aaa":   testDescriptor("aaa", check.PriorityCritical, check.BlockingWarning),
	}

	zeta := testResult("zeta", check.StatusBlock)
	zeta.Message = "zeta says no"
	mid := testResult("mid", check.StatusBlock)
	mid.Message = "mid says no"
	alpha := testResult("alpha", check.StatusBlock)
	alpha.Message = "alpha says no"
	// Smaller ID but warning behavior; it must not win the tie-break.
	aaa := testResult("aaa", check.StatusBlock)
	aaa.Message = "aaa grumbles"

	blocked, id, msg := decideTier([]*check.Result{zeta, mid, alpha, aaa}, descs)
	assert.True(t, blocked)
	assert.Equal(t, "alpha", id)
	assert.Equal(t, "alpha says no", msg)

	blocked, _, _ = decideTier([]*check.Result{testResult("zeta", check.StatusAllow)}, descs)
	assert.False(t, blocked)
}

func TestAggregateFirstBlockingTierWins(t *testing.T) {
	descs := map[string]check.Descriptor{
		"crit-ok":   testDescriptor("crit-ok", check.PriorityCritical, check.BlockingHard),
		"med-block": testDescriptor("med-block", check.PriorityMedium, check.BlockingSoft),
		"low-block": testDescriptor("low-block", check.PriorityLow, check.BlockingHard),
	}

	med := testResult("med-block", check.StatusBlock)
	med.Message = "medium finding"
	low := testResult("low-block", check.StatusBlock)
	low.Message = "low finding"

	tiers := []TierResult{
		{Priority: check.PriorityCritical, Results: []*check.Result{testResult("crit-ok", check.StatusAllow)}},
		{Priority: check.PriorityMedium, Results: []*check.Result{med}},
		{Priority: check.PriorityLow, Results: []*check.Result{low}},
	}

	out := aggregate(check.PhasePre, tiers, descs)
	assert.Equal(t, VerdictBlock, out.verdict)
	assert.Equal(t, "med-block", out.triggeringID)
	assert.Equal(t, "medium finding", out.message)
}

func TestAggregateCollectsWarnings(t *testing.T) {
	descs := map[string]check.Descriptor{
		"w-warn":   testDescriptor("w-warn", check.PriorityHigh, check.BlockingWarning),
		"w-block":  testDescriptor("w-block", check.PriorityHigh, check.BlockingWarning),
		"w-late":   testDescriptor("w-late", check.PriorityLow, check.BlockingWarning),
		"w-failed": testDescriptor("w-failed", check.PriorityHigh, check.BlockingWarning),
		"w-silent": testDescriptor("w-silent", check.PriorityHigh, check.BlockingWarning),
		"hard":     testDescriptor("hard", check.PriorityHigh, check.BlockingHard),
	}

	warn := testResult("w-warn", check.StatusWarn)
	warn.Message = "B advisory"
	downgraded := testResult("w-block", check.StatusBlock)
	downgraded.Message = "A downgraded"
	late := testResult("w-late", check.StatusWarn)
	late.Message = "C late tier"
	failed := testResult("w-failed", check.StatusWarn)
	failed.Message = "never shown"
	failed.Failure = check.FailureTimeout
	silent := testResult("w-silent", check.StatusWarn)
	hardBlock := testResult("hard", check.StatusBlock)
	hardBlock.Message = "stop"

	tiers := []TierResult{
		{Priority: check.PriorityHigh, Results: []*check.Result{warn, downgraded, failed, silent, hardBlock}},
		{Priority: check.PriorityLow, Results: []*check.Result{late}},
	}

	out := aggregate(check.PhasePre, tiers, descs)
	assert.Equal(t, VerdictBlock, out.verdict)
	assert.Equal(t, "hard", out.triggeringID)
	// Tier order first, then ascending check ID within the tier. Failed
	// and message-less results contribute nothing; the qualifying hard
	// block is a verdict, not a warning.
	assert.Equal(t, []string{"A downgraded", "B advisory", "C late tier"}, out.warnings)
}

func TestAggregateComposesModifications(t *testing.T) {
	descs := map[string]check.Descriptor{
		"m-a":    testDescriptor("m-a", check.PriorityMedium, check.BlockingNone),
		"m-z":    testDescriptor("m-z", check.PriorityMedium, check.BlockingNone),
		"x-1":    testDescriptor("x-1", check.PriorityBackground, check.BlockingNone),
		"m-dead": testDescriptor("m-dead", check.PriorityMedium, check.BlockingNone),
	}

	modRes := func(id, target, content string) *check.Result {
		return &check.Result{
			CheckID: id,
			Status:  check.StatusModify,
			Failure: check.FailureNone,
			Patch:   &check.Patch{Target: target, NewContent: content},
		}
	}

	dead := modRes("m-dead", "a.txt", "never")
	dead.Failure = check.FailureError

	tiers := []TierResult{
		{Priority: check.PriorityMedium, Results: []*check.Result{modRes("m-z", "a.txt", "z"), modRes("m-a", "b.txt", "a"), dead}},
		{Priority: check.PriorityBackground, Results: []*check.Result{modRes("x-1", "a.txt", "x")}},
	}

	out := aggregate(check.PhasePost, tiers, descs)
	require.Len(t, out.modifications, 3)
	assert.Equal(t, "b.txt", out.modifications[0].Target)
	assert.Equal(t, "z", out.modifications[1].NewContent)
	assert.Equal(t, "x", out.modifications[2].NewContent)

	effective := effectivePatches(out.modifications)
	require.Len(t, effective, 2)
	assert.Equal(t, check.Patch{Target: "b.txt", NewContent: "a"}, effective[0])
	assert.Equal(t, check.Patch{Target: "a.txt", NewContent: "x"}, effective[1])

	pre := aggregate(check.PhasePre, tiers, descs)
	assert.Empty(t, pre.modifications)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	descs := map[string]check.Descriptor{
		"b": testDescriptor("b", check.PriorityHigh, check.BlockingWarning),
		"a": testDescriptor("a", check.PriorityHigh, check.BlockingWarning),
	}
	rb := testResult("b", check.StatusWarn)
	rb.Message = "bee"
	ra := testResult("a", check.StatusWarn)
	ra.Message = "ay"

	tiers := []TierResult{{Priority: check.PriorityHigh, Results: []*check.Result{rb, ra}}}
	aggregate(check.PhasePre, tiers, descs)

	assert.Equal(t, "b", tiers[0].Results[0].CheckID)
	assert.Equal(t, "a", tiers[0].Results[1].CheckID)
}

func TestAggregateOrderIndependence(t *testing.T) {
	descs := map[string]check.Descriptor{
		"nf-a":   testDescriptor("nf-a", check.PriorityCritical, check.BlockingHard),
		"nf-b":   testDescriptor("nf-b", check.PriorityCritical, check.BlockingHard),
		"ok-a":   testDescriptor("ok-a", check.PriorityCritical, check.BlockingHard),
		"warn-a": testDescriptor("warn-a", check.PriorityCritical, check.BlockingWarning),
		"hi-z":   testDescriptor("hi-z", check.PriorityHigh, check.BlockingSoft),
	}

	mkTiers := func() []TierResult {
		ba := testResult("nf-a", check.StatusBlock)
		ba.Message = "versioned filename"
		bb := testResult("nf-b", check.StatusBlock)
		bb.Message = "other finding"
		wa := testResult("warn-a", check.StatusWarn)
		wa.Message = "advisory"
		bz := testResult("hi-z", check.StatusBlock)
		bz.Message = "late block"
		return []TierResult{
			{Priority: check.PriorityCritical, Results: []*check.Result{bb, ba, testResult("ok-a", check.StatusAllow), wa}},
			{Priority: check.PriorityHigh, Results: []*check.Result{bz}},
		}
	}

	baseline := aggregate(check.PhasePost, mkTiers(), descs)
	require.Equal(t, VerdictBlock, baseline.verdict)
	require.Equal(t, "nf-a", baseline.triggeringID)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("aggregation ignores completion order", prop.ForAll(
		func(seed int64) bool {
			tiers := mkTiers()
			rng := rand.New(rand.NewSource(seed))
			for i := range tiers {
				rng.Shuffle(len(tiers[i].Results), func(a, b int) {
					tiers[i].Results[a], tiers[i].Results[b] = tiers[i].Results[b], tiers[i].Results[a]
				})
			}
			return reflect.DeepEqual(aggregate(check.PhasePost, tiers, descs), baseline)
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}
