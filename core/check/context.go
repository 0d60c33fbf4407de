package check

import "fmt"

// Phase identifies when in the mutation lifecycle a check runs.
type Phase string

const (
	// PhasePre evaluates a mutation before it is applied.
	PhasePre Phase = "pre"
	// PhasePost evaluates a mutation after the tool has produced output.
	PhasePost Phase = "post"
)

// String returns the string representation of a Phase.
func (p Phase) String() string {
	return string(p)
}

// IsValid returns true if the Phase is a known phase.
func (p Phase) IsValid() bool {
	switch p {
	case PhasePre, PhasePost:
		return true
	default:
		return false
	}
}

// ParsePhase parses a string into a Phase.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid phase: %q", s)
	}
	return p, nil
}

// Context describes the proposed mutation under evaluation. It is built once
// per run and handed read-only to every concurrently running check; no check
// may mutate it. Optional fields are empty when the tool did not supply them.
type Context struct {
	// Phase is pre for proposed mutations, post for completed ones.
	Phase Phase `json:"eventPhase"`
	// ToolName is the tool attempting the mutation (e.g. Write, Edit).
	ToolName string `json:"toolName"`
	// Path is the file the mutation targets.
	Path string `json:"path"`
	// Content is the full content of a whole-file write.
	Content string `json:"content,omitempty"`
	// OldContent and NewContent carry the before/after of an edit.
	OldContent string `json:"oldContent,omitempty"`
	NewContent string `json:"newContent,omitempty"`
	// Prompt is the user instruction that led to the mutation, when known.
	Prompt string `json:"prompt,omitempty"`
	// OutputContent is the tool output, present only in the post phase.
	OutputContent string `json:"outputContent,omitempty"`
}

// MutatedContent returns the content the mutation would leave in place:
// NewContent for edits, otherwise Content for whole-file writes.
func (c *Context) MutatedContent() string {
	if c.NewContent != "" {
		return c.NewContent
	}
	return c.Content
}
