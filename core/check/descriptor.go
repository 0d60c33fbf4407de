package check

import (
	"fmt"
	"strings"
	"time"
)

// Priority orders checks into execution tiers. Tiers run in ascending
// Priority order; checks within one tier run concurrently.
type Priority int

const (
	// PriorityCritical checks run first and can stop the whole run.
	PriorityCritical Priority = iota
	// PriorityHigh checks run second and can also stop the run.
	PriorityHigh
	// PriorityMedium checks run after the blocking tiers.
	PriorityMedium
	// PriorityLow checks run late and are mostly advisory.
	PriorityLow
	// PriorityBackground checks run last.
	PriorityBackground
)

// priorityNames is the single source of truth mapping each Priority to its
// configuration name. String, IsValid, and ParsePriority derive from it.
var priorityNames = map[Priority]string{
	PriorityCritical:   "critical",
	PriorityHigh:       "high",
	PriorityMedium:     "medium",
	PriorityLow:        "low",
	PriorityBackground: "background",
}

// Priorities returns all priorities in tier execution order.
func Priorities() []Priority {
	return []Priority{
		PriorityCritical,
		PriorityHigh,
		PriorityMedium,
		PriorityLow,
		PriorityBackground,
	}
}

// String returns the configuration name of a Priority.
func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "unknown"
}

// IsValid returns true if the Priority is a known tier.
func (p Priority) IsValid() bool {
	_, ok := priorityNames[p]
	return ok
}

// ParsePriority parses a configuration name into a Priority.
func ParsePriority(s string) (Priority, error) {
	for p, name := range priorityNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("invalid priority: %q", s)
}

// MarshalText encodes the Priority as its configuration name.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a Priority from its configuration name.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// BlockingBehavior classifies the severity of a check's block result.
type BlockingBehavior string

const (
	// BlockingHard stops the mutation outright.
	BlockingHard BlockingBehavior = "hard-block"
	// BlockingSoft stops the mutation but signals it as overridable policy.
	BlockingSoft BlockingBehavior = "soft-block"
	// BlockingWarning never stops the mutation; block results downgrade
	// to advisory text.
	BlockingWarning BlockingBehavior = "warning"
	// BlockingNone marks a check whose results never affect the decision.
	BlockingNone BlockingBehavior = "none"
)

// String returns the string representation of a BlockingBehavior.
func (b BlockingBehavior) String() string {
	return string(b)
}

// IsValid returns true if the BlockingBehavior is a known behavior.
func (b BlockingBehavior) IsValid() bool {
	switch b {
	case BlockingHard, BlockingSoft, BlockingWarning, BlockingNone:
		return true
	default:
		return false
	}
}

// Blocks returns true if a block result with this behavior can stop a run.
func (b BlockingBehavior) Blocks() bool {
	return b == BlockingHard || b == BlockingSoft
}

// ParseBlockingBehavior parses a string into a BlockingBehavior.
func ParseBlockingBehavior(s string) (BlockingBehavior, error) {
	b := BlockingBehavior(s)
	if !b.IsValid() {
		return "", fmt.Errorf("invalid blocking behavior: %q", s)
	}
	return b, nil
}

// Category groups checks for environment gating. The engine treats
// categories as opaque names; the constants below cover the built-in set
// and custom categories are allowed.
type Category string

const (
	CategorySecurity    Category = "security"
	CategoryAIPatterns  Category = "ai-patterns"
	CategoryConventions Category = "conventions"
	CategoryFormatting  Category = "formatting"
	CategoryHygiene     Category = "hygiene"
)

// String returns the string representation of a Category.
func (c Category) String() string {
	return string(c)
}

// Descriptor is the static metadata of one check: identity, scheduling
// tier, timeout bounds, and blocking severity. Descriptors are created at
// startup and immutable for the process lifetime.
type Descriptor struct {
	// ID uniquely identifies the check within a registry.
	ID string
	// Category groups the check for environment gating.
	Category Category
	// Family groups checks sharing a cumulative time budget. Empty means
	// the check participates in no family budget.
	Family string
	// Priority selects the execution tier.
	Priority Priority
	// Timeout bounds a single invocation. Zero falls back to the engine's
	// default check timeout.
	Timeout time.Duration
	// Blocking classifies the severity of this check's block results.
	Blocking BlockingBehavior
	// Matcher restricts which runs the check applies to. Nil matches all.
	Matcher *Matcher
}

// Validate checks the descriptor for configuration errors.
func (d Descriptor) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("check id must not be empty")
	}
	if strings.ContainsAny(d.ID, " \t\n") {
		return fmt.Errorf("check id %q must not contain whitespace", d.ID)
	}
	if d.Category == "" {
		return fmt.Errorf("check %s: category must not be empty", d.ID)
	}
	if !d.Priority.IsValid() {
		return fmt.Errorf("check %s: invalid priority %d", d.ID, d.Priority)
	}
	if !d.Blocking.IsValid() {
		return fmt.Errorf("check %s: invalid blocking behavior %q", d.ID, d.Blocking)
	}
	if d.Timeout < 0 {
		return fmt.Errorf("check %s: timeout must not be negative", d.ID)
	}
	return nil
}

// AppliesTo reports whether the check should run for the given context.
func (d Descriptor) AppliesTo(ec *Context) bool {
	if d.Matcher == nil {
		return true
	}
	return d.Matcher.Matches(ec.Phase, ec.ToolName, ec.Path)
}
