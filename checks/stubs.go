package checks

import (
	"context"
	"strings"

	"github.com/bulwarkhq/bulwark/core/check"
)

// stubMarkers are lowercase fragments that betray unfinished generated
// content.
var stubMarkers = []string{
	"todo: implement",
	"fixme: implement",
	"your code here",
	"implementation goes here",
	"not implemented yet",
	"... existing code",
	"rest of the code remains",
}

// PlaceholderStubCheck warns when content carries placeholder fragments
// instead of a finished implementation.
type PlaceholderStubCheck struct {
	desc check.Descriptor
}

// NewPlaceholderStubCheck creates the placeholder-stubs check.
func NewPlaceholderStubCheck() *PlaceholderStubCheck {
	return &PlaceholderStubCheck{
		desc: check.Descriptor{
			ID:       "placeholder-stubs",
			Category: check.CategoryAIPatterns,
			Family:   "quality",
			Priority: check.PriorityLow,
			Blocking: check.BlockingWarning,
			Matcher:  check.MustMatcher([]string{"pre"}, "", ""),
		},
	}
}

// Descriptor returns the check metadata.
func (c *PlaceholderStubCheck) Descriptor() check.Descriptor {
	return c.desc
}

// Execute warns on the first placeholder fragment found in the content.
func (c *PlaceholderStubCheck) Execute(ctx context.Context, ec *check.Context) (*check.Result, error) {
	content := strings.ToLower(ec.MutatedContent())
	if content == "" {
		return check.Allow(), nil
	}

	for _, marker := range stubMarkers {
		if strings.Contains(content, marker) {
			return check.Warn("%q contains placeholder fragment %q", ec.Path, marker), nil
		}
	}
	return check.Allow(), nil
}

// Ensure PlaceholderStubCheck implements check.Check
var _ check.Check = (*PlaceholderStubCheck)(nil)
