package engine

import (
	"sort"

	"github.com/bulwarkhq/bulwark/core/check"
)

// The aggregator is a pure function over collected results: no clock, no
// channels, no mutation of its inputs. Given the same tiers it must produce
// the same outcome regardless of the order results completed in.

// aggregateOutcome is the aggregator's contribution to a Decision.
type aggregateOutcome struct {
	verdict       Verdict
	triggeringID  string
	message       string
	warnings      []string
	modifications []check.Patch
}

// qualifiesAsBlock reports whether a single result can block a run: block
// status, a blocking behavior, and no failure. Failed checks never block.
func qualifiesAsBlock(res *check.Result, descs map[string]check.Descriptor) bool {
	if res == nil || res.Status != check.StatusBlock {
		return false
	}
	if res.Failure.Failed() {
		return false
	}
	desc, ok := descs[res.CheckID]
	return ok && desc.Blocking.Blocks()
}

// decideTier computes one tier's verdict. Among qualifying blocking results
// the lexicographically smallest check ID wins the tie-break, which keeps
// the outcome independent of completion order.
func decideTier(results []*check.Result, descs map[string]check.Descriptor) (blocked bool, triggeringID, message string) {
	for _, res := range results {
		if !qualifiesAsBlock(res, descs) {
			continue
		}
		if !blocked || res.CheckID < triggeringID {
			blocked = true
			triggeringID = res.CheckID
			message = res.Message
		}
	}
	return blocked, triggeringID, message
}

// aggregate merges executed tiers, in tier order, into a final outcome.
// The first blocked tier wins; later tiers cannot un-block. Warnings and
// modifications are collected in tier order then ascending check ID.
// Modifications compose only for post phase runs.
func aggregate(phase check.Phase, tiers []TierResult, descs map[string]check.Descriptor) aggregateOutcome {
	out := aggregateOutcome{verdict: VerdictAllow}

	for _, tr := range tiers {
		blocked, id, msg := decideTier(tr.Results, descs)
		if blocked && out.verdict == VerdictAllow {
			out.verdict = VerdictBlock
			out.triggeringID = id
			out.message = msg
		}
	}

	for _, tr := range tiers {
		for _, res := range sortedByID(tr.Results) {
			if res.Failure.Failed() || res.Message == "" {
				continue
			}
			switch res.Status {
			case check.StatusWarn:
				out.warnings = append(out.warnings, res.Message)
			case check.StatusBlock:
				// Block results from warning-behavior checks downgrade
				// to advisory text.
				if desc, ok := descs[res.CheckID]; ok && !desc.Blocking.Blocks() {
					out.warnings = append(out.warnings, res.Message)
				}
			}
		}
	}

	if phase == check.PhasePost {
		for _, tr := range tiers {
			for _, res := range sortedByID(tr.Results) {
				if res.Status == check.StatusModify && !res.Failure.Failed() && res.Patch != nil {
					out.modifications = append(out.modifications, *res.Patch)
				}
			}
		}
	}

	return out
}

// sortedByID returns a copy of results ordered by ascending check ID. The
// input is never reordered; aggregation must not mutate what it reads.
func sortedByID(results []*check.Result) []*check.Result {
	out := make([]*check.Result, len(results))
	copy(out, results)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CheckID < out[j].CheckID
	})
	return out
}

// effectivePatches folds composed modifications down to one patch per
// target. On overlap the later patch in composition order wins.
func effectivePatches(patches []check.Patch) []check.Patch {
	latest := make(map[string]check.Patch, len(patches))
	order := make([]string, 0, len(patches))
	for _, p := range patches {
		if _, seen := latest[p.Target]; !seen {
			order = append(order, p.Target)
		}
		latest[p.Target] = p
	}

	out := make([]check.Patch, 0, len(order))
	for _, target := range order {
		out = append(out, latest[target])
	}
	return out
}

// EffectivePatches returns the run's modifications folded to one patch per
// target, later patches winning on overlap.
func (d *Decision) EffectivePatches() []check.Patch {
	return effectivePatches(d.Modifications)
}
