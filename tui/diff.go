package tui

import (
	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff produces a unified diff of a proposed content
// modification for the given file path.
func UnifiedDiff(path, oldContent, newContent string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return diff
}
