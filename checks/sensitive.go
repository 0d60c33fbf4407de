package checks

import (
	"context"
	"regexp"
	"strings"

	"github.com/bulwarkhq/bulwark/core/check"
)

// DefaultSensitivePatterns returns the default globs for paths no
// unattended mutation should touch.
func DefaultSensitivePatterns() []string {
	return []string{
		"**/.env",
		"**/.env.*",
		"**/secrets/**",
		"**/*.pem",
		"**/*.key",
		"**/*.p12",
		"**/.git/config",
		"**/.ssh/**",
		"**/.aws/**",
		"**/.npmrc",
		"**/.pypirc",
		"**/.netrc",
		"**/id_rsa*",
		"**/id_ed25519*",
	}
}

// SensitivePathCheck blocks mutations targeting credential stores, key
// material, and similar paths. Patterns are globs where ** crosses path
// segments and * stays within one.
type SensitivePathCheck struct {
	desc     check.Descriptor
	patterns []string
	compiled []*regexp.Regexp
}

// NewSensitivePathCheck creates the sensitive-paths check. An empty
// pattern list selects the defaults.
func NewSensitivePathCheck(patterns []string) *SensitivePathCheck {
	if len(patterns) == 0 {
		patterns = DefaultSensitivePatterns()
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, globRegexp(p))
	}

	return &SensitivePathCheck{
		desc: check.Descriptor{
			ID:       "sensitive-paths",
			Category: check.CategorySecurity,
			Family:   "secrets",
			Priority: check.PriorityCritical,
			Blocking: check.BlockingHard,
			Matcher:  check.MustMatcher([]string{"pre"}, "", ""),
		},
		patterns: patterns,
		compiled: compiled,
	}
}

// Descriptor returns the check metadata.
func (c *SensitivePathCheck) Descriptor() check.Descriptor {
	return c.desc
}

// Execute blocks when the target path matches any sensitive glob.
func (c *SensitivePathCheck) Execute(ctx context.Context, ec *check.Context) (*check.Result, error) {
	if ec.Path == "" {
		return check.Allow(), nil
	}

	path := strings.ReplaceAll(ec.Path, `\`, "/")
	for i, re := range c.compiled {
		if re.MatchString(path) {
			return check.Block("sensitive path %q matches %q", ec.Path, c.patterns[i]), nil
		}
	}
	return check.Allow(), nil
}

// Ensure SensitivePathCheck implements check.Check
var _ check.Check = (*SensitivePathCheck)(nil)

// globRegexp converts one glob pattern into an anchored regexp. A leading
// **/ also matches the bare name with no directory prefix. Backslash
// separators are normalized so Windows-originated paths match.
func globRegexp(pattern string) *regexp.Regexp {
	p := strings.ReplaceAll(pattern, `\`, "/")

	var b strings.Builder
	b.WriteString("^")
	if rest, ok := strings.CutPrefix(p, "**/"); ok {
		b.WriteString("(.*/)?")
		p = rest
	}

	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '*':
			if i+1 < len(p) && p[i+1] == '*' {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(p[i])))
		}
	}
	b.WriteString("$")

	return regexp.MustCompile(b.String())
}
