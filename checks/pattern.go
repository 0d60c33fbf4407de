package checks

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/bulwarkhq/bulwark/core/check"
)

// Pattern check targets.
const (
	// TargetPath matches the pattern against the mutation path.
	TargetPath = "path"
	// TargetContent matches the pattern against the proposed content.
	TargetContent = "content"
)

// PatternSpec is the configuration record for a user-defined pattern
// check.
type PatternSpec struct {
	// ID uniquely identifies the check.
	ID string `json:"id" yaml:"id" mapstructure:"id"`
	// Category groups the check for gating. Empty defaults to conventions.
	Category string `json:"category,omitempty" yaml:"category,omitempty" mapstructure:"category"`
	// Family optionally joins a shared time budget.
	Family string `json:"family,omitempty" yaml:"family,omitempty" mapstructure:"family"`
	// Priority selects the tier. Empty defaults to medium.
	Priority string `json:"priority,omitempty" yaml:"priority,omitempty" mapstructure:"priority"`
	// Blocking selects the severity. Empty defaults to warning.
	Blocking string `json:"blocking,omitempty" yaml:"blocking,omitempty" mapstructure:"blocking"`
	// Target says what the pattern matches: path or content. Empty
	// defaults to path.
	Target string `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"`
	// Pattern is the regular expression to match.
	Pattern string `json:"pattern" yaml:"pattern" mapstructure:"pattern"`
	// Tools restricts the check to tool names matching this regular
	// expression. Empty matches every tool.
	Tools string `json:"tools,omitempty" yaml:"tools,omitempty" mapstructure:"tools"`
	// Message is the finding text. Empty gets a generic line.
	Message string `json:"message,omitempty" yaml:"message,omitempty" mapstructure:"message"`
	// Timeout bounds one invocation. Zero uses the engine default.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" mapstructure:"timeout"`
	// Phases restricts when the check runs. Empty means pre only.
	Phases []string `json:"phases,omitempty" yaml:"phases,omitempty" mapstructure:"phases"`
}

// PatternCheck is a config-defined check matching one regular expression
// against the mutation path or content. A match reports a block result;
// the configured blocking behavior decides whether that stops the run or
// only surfaces as advisory text.
type PatternCheck struct {
	desc    check.Descriptor
	target  string
	pattern *regexp.Regexp
	message string
}

// NewPatternCheck compiles a spec into a runnable check.
func NewPatternCheck(spec PatternSpec) (*PatternCheck, error) {
	if spec.Pattern == "" {
		return nil, fmt.Errorf("pattern must not be empty")
	}

	re, err := regexp.Compile(spec.Pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern: %w", err)
	}

	target := spec.Target
	switch target {
	case "":
		target = TargetPath
	case TargetPath, TargetContent:
	default:
		return nil, fmt.Errorf("invalid target %q", spec.Target)
	}

	priority := check.PriorityMedium
	if spec.Priority != "" {
		priority, err = check.ParsePriority(spec.Priority)
		if err != nil {
			return nil, err
		}
	}

	blocking := check.BlockingWarning
	if spec.Blocking != "" {
		blocking, err = check.ParseBlockingBehavior(spec.Blocking)
		if err != nil {
			return nil, err
		}
	}

	category := check.Category(spec.Category)
	if category == "" {
		category = check.CategoryConventions
	}

	phases := spec.Phases
	if len(phases) == 0 {
		phases = []string{string(check.PhasePre)}
	}
	matcher, err := check.CompileMatcher(phases, spec.Tools, "")
	if err != nil {
		return nil, err
	}

	desc := check.Descriptor{
		ID:       spec.ID,
		Category: category,
		Family:   spec.Family,
		Priority: priority,
		Timeout:  spec.Timeout,
		Blocking: blocking,
		Matcher:  matcher,
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	message := spec.Message
	if message == "" {
		message = fmt.Sprintf("matched pattern %q", spec.Pattern)
	}

	return &PatternCheck{
		desc:    desc,
		target:  target,
		pattern: re,
		message: message,
	}, nil
}

// Descriptor returns the check metadata.
func (c *PatternCheck) Descriptor() check.Descriptor {
	return c.desc
}

// Execute reports a block result when the configured subject matches.
func (c *PatternCheck) Execute(ctx context.Context, ec *check.Context) (*check.Result, error) {
	subject := ec.Path
	if c.target == TargetContent {
		subject = ec.MutatedContent()
	}
	if subject == "" {
		return check.Allow(), nil
	}

	if c.pattern.MatchString(subject) {
		return check.Block("%s: %s", ec.Path, c.message), nil
	}
	return check.Allow(), nil
}

// Ensure PatternCheck implements check.Check
var _ check.Check = (*PatternCheck)(nil)
