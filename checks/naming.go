package checks

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bulwarkhq/bulwark/core/check"
)

var camelHump = regexp.MustCompile(`[a-z0-9][A-Z]`)

// MixedNamingCheck warns when a filename mixes snake_case and camelCase,
// a common artifact of edits that ignore surrounding conventions.
type MixedNamingCheck struct {
	desc check.Descriptor
}

// NewMixedNamingCheck creates the mixed-naming check.
func NewMixedNamingCheck() *MixedNamingCheck {
	return &MixedNamingCheck{
		desc: check.Descriptor{
			ID:       "mixed-naming",
			Category: check.CategoryConventions,
			Family:   "naming",
			Priority: check.PriorityLow,
			Blocking: check.BlockingWarning,
			Matcher:  check.MustMatcher([]string{"pre"}, "", ""),
		},
	}
}

// Descriptor returns the check metadata.
func (c *MixedNamingCheck) Descriptor() check.Descriptor {
	return c.desc
}

// Execute warns when the target basename carries both underscores and
// camelCase humps.
func (c *MixedNamingCheck) Execute(ctx context.Context, ec *check.Context) (*check.Result, error) {
	if ec.Path == "" {
		return check.Allow(), nil
	}

	base := filepath.Base(ec.Path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.Contains(name, "_") && camelHump.MatchString(name) {
		return check.Warn("%q mixes snake_case and camelCase; pick one convention", base), nil
	}
	return check.Allow(), nil
}

// Ensure MixedNamingCheck implements check.Check
var _ check.Check = (*MixedNamingCheck)(nil)
