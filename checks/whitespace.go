package checks

import (
	"context"
	"regexp"

	"github.com/bulwarkhq/bulwark/core/check"
)

var trailingWhitespace = regexp.MustCompile(`(?m)[ \t]+(\r?)$`)

// TrailingWhitespaceCheck proposes a rewrite stripping trailing spaces and
// tabs from completed mutations. It runs post phase only and never affects
// the verdict.
type TrailingWhitespaceCheck struct {
	desc check.Descriptor
}

// NewTrailingWhitespaceCheck creates the trailing-whitespace check.
func NewTrailingWhitespaceCheck() *TrailingWhitespaceCheck {
	return &TrailingWhitespaceCheck{
		desc: check.Descriptor{
			ID:       "trailing-whitespace",
			Category: check.CategoryFormatting,
			Family:   "rewrite",
			Priority: check.PriorityBackground,
			Blocking: check.BlockingNone,
			Matcher:  check.MustMatcher([]string{"post"}, "", ""),
		},
	}
}

// Descriptor returns the check metadata.
func (c *TrailingWhitespaceCheck) Descriptor() check.Descriptor {
	return c.desc
}

// Execute proposes the stripped content when any line carries trailing
// whitespace.
func (c *TrailingWhitespaceCheck) Execute(ctx context.Context, ec *check.Context) (*check.Result, error) {
	content := ec.MutatedContent()
	if content == "" {
		return check.Allow(), nil
	}

	stripped := trailingWhitespace.ReplaceAllString(content, "${1}")
	if stripped == content {
		return check.Allow(), nil
	}

	patch := check.Patch{Target: ec.Path, NewContent: stripped}
	return check.Modify(patch, "stripped trailing whitespace"), nil
}

// Ensure TrailingWhitespaceCheck implements check.Check
var _ check.Check = (*TrailingWhitespaceCheck)(nil)
