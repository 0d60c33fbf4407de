package checks

import (
	"context"
	"path/filepath"
	"regexp"

	"github.com/bulwarkhq/bulwark/core/check"
)

// BackupArtifactCheck flags filenames that look like manual backup copies.
// Version control already keeps history; .bak files only accumulate.
type BackupArtifactCheck struct {
	desc     check.Descriptor
	suffixes *regexp.Regexp
	infixes  *regexp.Regexp
}

// NewBackupArtifactCheck creates the backup-artifacts check.
func NewBackupArtifactCheck() *BackupArtifactCheck {
	return &BackupArtifactCheck{
		desc: check.Descriptor{
			ID:       "backup-artifacts",
			Category: check.CategoryAIPatterns,
			Family:   "naming",
			Priority: check.PriorityMedium,
			Blocking: check.BlockingSoft,
			Matcher:  check.MustMatcher([]string{"pre"}, "", ""),
		},
		suffixes: regexp.MustCompile(`(?i)(\.(bak|backup|orig|old)|~)$`),
		infixes:  regexp.MustCompile(`(?i)(_backup|_old|_copy)\.| copy( \d+)?\.`),
	}
}

// Descriptor returns the check metadata.
func (c *BackupArtifactCheck) Descriptor() check.Descriptor {
	return c.desc
}

// Execute blocks when the target basename looks like a backup copy.
func (c *BackupArtifactCheck) Execute(ctx context.Context, ec *check.Context) (*check.Result, error) {
	if ec.Path == "" {
		return check.Allow(), nil
	}

	base := filepath.Base(ec.Path)
	if c.suffixes.MatchString(base) || c.infixes.MatchString(base) {
		return check.Block("backup artifact %q; rely on version control instead of copies", base), nil
	}
	return check.Allow(), nil
}

// Ensure BackupArtifactCheck implements check.Check
var _ check.Check = (*BackupArtifactCheck)(nil)
