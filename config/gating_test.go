package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveGating_NoEnvironment(t *testing.T) {
	g := ResolveGating(GatingConfig{}, nil)
	assert.False(t, g.Bypass)
	assert.Empty(t, g.Categories)
}

func TestResolveGating_BypassValues(t *testing.T) {
	testCases := []struct {
		value  string
		bypass bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"off", false},
		{"", false},
		{"banana", false},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			g := ResolveGating(GatingConfig{}, []string{"BULWARK_BYPASS=" + tc.value})
			assert.Equal(t, tc.bypass, g.Bypass)
		})
	}
}

func TestResolveGating_EnvironmentWinsOverFile(t *testing.T) {
	file := GatingConfig{
		Bypass:     true,
		Categories: map[string]bool{"security": false},
	}

	g := ResolveGating(file, []string{
		"BULWARK_BYPASS=off",
		"BULWARK_CATEGORY_SECURITY=on",
	})

	assert.False(t, g.Bypass)
	assert.True(t, g.Categories["security"])
}

func TestResolveGating_UnrecognizedValueKeepsFile(t *testing.T) {
	file := GatingConfig{Bypass: true}

	g := ResolveGating(file, []string{"BULWARK_BYPASS=maybe"})
	assert.True(t, g.Bypass)
}

func TestResolveGating_CategoryNames(t *testing.T) {
	g := ResolveGating(GatingConfig{}, []string{
		"BULWARK_CATEGORY_SECURITY=off",
		"BULWARK_CATEGORY_AI_PATTERNS=off",
		"BULWARK_CATEGORY_FORMATTING=on",
	})

	assert.False(t, g.Categories["security"])
	assert.False(t, g.Categories["ai-patterns"])
	assert.True(t, g.Categories["formatting"])
}

func TestResolveGating_IgnoresUnrelatedVariables(t *testing.T) {
	g := ResolveGating(GatingConfig{}, []string{
		"PATH=/usr/bin",
		"BULWARK_CONFIG=/tmp/config.yaml",
		"BULWARK_CATEGORY_=off",
		"NOTBULWARK_BYPASS=1",
	})

	assert.False(t, g.Bypass)
	assert.Empty(t, g.Categories)
}

func TestResolveGating_DoesNotMutateInput(t *testing.T) {
	file := GatingConfig{
		Categories: map[string]bool{"security": true},
	}

	_ = ResolveGating(file, []string{"BULWARK_CATEGORY_SECURITY=off"})
	assert.True(t, file.Categories["security"])
}

func TestDisabledCategories(t *testing.T) {
	g := GatingConfig{
		Categories: map[string]bool{
			"security":   true,
			"formatting": false,
			"hygiene":    false,
		},
	}

	disabled := g.DisabledCategories()
	assert.ElementsMatch(t, []string{"formatting", "hygiene"}, disabled)
}
