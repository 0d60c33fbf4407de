package engine

import (
	"github.com/bulwarkhq/bulwark/core/check"
)

// tier is one priority bucket of scheduled checks. Checks within a tier run
// concurrently with no defined completion order; tiers run strictly in
// priority order.
type tier struct {
	priority check.Priority
	checks   []check.Check
}

// tiersOf partitions the active checks into execution tiers, ordered
// critical, high, medium, low, background. Empty tiers are omitted. The
// input's ID ordering is preserved within each tier so spawn order is
// reproducible, though nothing downstream may rely on completion order.
func tiersOf(active []check.Check) []tier {
	byPriority := make(map[check.Priority][]check.Check)
	for _, c := range active {
		p := c.Descriptor().Priority
		byPriority[p] = append(byPriority[p], c)
	}

	tiers := make([]tier, 0, len(byPriority))
	for _, p := range check.Priorities() {
		if checks, ok := byPriority[p]; ok {
			tiers = append(tiers, tier{priority: p, checks: checks})
		}
	}
	return tiers
}

// applicableChecks drops checks whose matcher does not cover this run.
// Non-matching checks are simply not scheduled; they are not counted as
// skipped.
func applicableChecks(active []check.Check, ec *check.Context) []check.Check {
	applicable := make([]check.Check, 0, len(active))
	for _, c := range active {
		if c.Descriptor().AppliesTo(ec) {
			applicable = append(applicable, c)
		}
	}
	return applicable
}

// descriptorIndex maps check IDs to descriptors for aggregation lookups.
func descriptorIndex(checks []check.Check) map[string]check.Descriptor {
	index := make(map[string]check.Descriptor, len(checks))
	for _, c := range checks {
		desc := c.Descriptor()
		index[desc.ID] = desc
	}
	return index
}
