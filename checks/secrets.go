package checks

import (
	"context"
	"fmt"
	"regexp"

	"github.com/bulwarkhq/bulwark/core/check"
)

// DefaultSecretPatterns returns the default regexes for credential-shaped
// content.
func DefaultSecretPatterns() []string {
	return []string{
		`(?i)password\s*[=:]\s*\S+`,
		`(?i)api[_-]?key\s*[=:]\s*\S+`,
		`(?i)token\s*[=:]\s*\S+`,
		`(?i)secret(?:[_-]?key)?\s*[=:]\s*\S+`,
		`(?i)bearer\s+\S+`,
		`(?i)aws_access_key_id\s*[=:]\s*\S+`,
		`(?i)aws_secret_access_key\s*[=:]\s*\S+`,
		`AKIA[0-9A-Z]{16}`,
		`gh[pousr]_[A-Za-z0-9]{36,}`,
		`-----BEGIN (RSA |EC |OPENSSH |PGP )?PRIVATE KEY`,
	}
}

// SecretMaterialCheck flags mutations whose content looks like it embeds
// credentials: assignments of passwords, API keys and tokens, cloud key
// IDs, or private key blocks.
type SecretMaterialCheck struct {
	desc     check.Descriptor
	patterns []string
	compiled []*regexp.Regexp
}

// NewSecretMaterialCheck creates the secret-material check. An empty
// pattern list selects the defaults; invalid patterns fail construction.
func NewSecretMaterialCheck(patterns []string) (*SecretMaterialCheck, error) {
	if len(patterns) == 0 {
		patterns = DefaultSecretPatterns()
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling secret pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}

	return &SecretMaterialCheck{
		desc: check.Descriptor{
			ID:       "secret-material",
			Category: check.CategorySecurity,
			Family:   "secrets",
			Priority: check.PriorityHigh,
			Blocking: check.BlockingSoft,
			Matcher:  check.MustMatcher([]string{"pre"}, "", ""),
		},
		patterns: patterns,
		compiled: compiled,
	}, nil
}

// Descriptor returns the check metadata.
func (c *SecretMaterialCheck) Descriptor() check.Descriptor {
	return c.desc
}

// Execute blocks when the proposed content matches any secret pattern.
// The finding names the pattern, never the matched text.
func (c *SecretMaterialCheck) Execute(ctx context.Context, ec *check.Context) (*check.Result, error) {
	content := ec.MutatedContent()
	if content == "" {
		return check.Allow(), nil
	}

	for i, re := range c.compiled {
		if re.MatchString(content) {
			return check.Block("content for %q matches secret pattern %q", ec.Path, c.patterns[i]), nil
		}
	}
	return check.Allow(), nil
}

// Ensure SecretMaterialCheck implements check.Check
var _ check.Check = (*SecretMaterialCheck)(nil)
