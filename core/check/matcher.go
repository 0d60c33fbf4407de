package check

import (
	"fmt"
	"regexp"
)

// Matcher restricts a check to the runs it applies to. A nil field matches
// everything on its axis, so the zero Matcher matches every run.
type Matcher struct {
	// Phases limits the check to specific phases. Empty means both.
	Phases []Phase
	// Tools matches against the tool name attempting the mutation.
	Tools *regexp.Regexp
	// Path matches against the mutation's target path.
	Path *regexp.Regexp
}

// Matches reports whether the run described by (phase, toolName, path)
// falls within this matcher.
func (m *Matcher) Matches(phase Phase, toolName, path string) bool {
	if m == nil {
		return true
	}
	if len(m.Phases) > 0 {
		found := false
		for _, p := range m.Phases {
			if p == phase {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if m.Tools != nil && !m.Tools.MatchString(toolName) {
		return false
	}
	if m.Path != nil && !m.Path.MatchString(path) {
		return false
	}
	return true
}

// CompileMatcher builds a Matcher from configuration strings. Empty pattern
// strings leave the corresponding axis unrestricted.
func CompileMatcher(phases []string, tools, path string) (*Matcher, error) {
	m := &Matcher{}

	for _, s := range phases {
		p, err := ParsePhase(s)
		if err != nil {
			return nil, err
		}
		m.Phases = append(m.Phases, p)
	}

	if tools != "" {
		re, err := regexp.Compile(tools)
		if err != nil {
			return nil, fmt.Errorf("invalid tools pattern %q: %w", tools, err)
		}
		m.Tools = re
	}

	if path != "" {
		re, err := regexp.Compile(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path pattern %q: %w", path, err)
		}
		m.Path = re
	}

	return m, nil
}

// MustMatcher is CompileMatcher for static built-in patterns; it panics on
// an invalid pattern.
func MustMatcher(phases []string, tools, path string) *Matcher {
	m, err := CompileMatcher(phases, tools, path)
	if err != nil {
		panic(err)
	}
	return m
}
