package checks

import (
	"context"
	"path/filepath"
	"regexp"

	"github.com/bulwarkhq/bulwark/core/check"
)

var versionSuffix = regexp.MustCompile(`(_v\d+|_final)`)

// VersionedFileCheck blocks filenames carrying a version suffix like
// component_v2.tsx or report_final.md. Numbered copies are how
// unattended edits dodge conflicts; the original should be edited
// instead.
type VersionedFileCheck struct {
	desc    check.Descriptor
	pattern *regexp.Regexp
}

// NewVersionedFileCheck creates the no-versioned-files check.
func NewVersionedFileCheck() *VersionedFileCheck {
	return &VersionedFileCheck{
		desc: check.Descriptor{
			ID:       "no-versioned-files",
			Category: check.CategoryAIPatterns,
			Family:   "naming",
			Priority: check.PriorityCritical,
			Blocking: check.BlockingHard,
			Matcher:  check.MustMatcher([]string{"pre"}, "", ""),
		},
		pattern: regexp.MustCompile(`(_v\d+|_final)\.`),
	}
}

// Descriptor returns the check metadata.
func (c *VersionedFileCheck) Descriptor() check.Descriptor {
	return c.desc
}

// Execute blocks when the target basename carries a version suffix.
func (c *VersionedFileCheck) Execute(ctx context.Context, ec *check.Context) (*check.Result, error) {
	if ec.Path == "" {
		return check.Allow(), nil
	}

	base := filepath.Base(ec.Path)
	if !c.pattern.MatchString(base) {
		return check.Allow(), nil
	}

	original := versionSuffix.ReplaceAllString(base, "")
	return check.Block("versioned filename %q; edit %q instead of writing a numbered copy", base, original), nil
}

// Ensure VersionedFileCheck implements check.Check
var _ check.Check = (*VersionedFileCheck)(nil)
