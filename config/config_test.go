package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)
	return configFile
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	// Verify engine defaults
	assert.Equal(t, 5000, cfg.Engine.RunBudgetMS)
	assert.Equal(t, 1000, cfg.Engine.CheckTimeoutMS)
	assert.Equal(t, 50, cfg.Engine.EmergencyCheckTimeoutMS)
	assert.Equal(t, 0, cfg.Engine.MaxConcurrency)
	assert.Empty(t, cfg.Engine.FamilyBudgetsMS)

	// Verify gating defaults
	assert.False(t, cfg.Gating.Bypass)
	assert.Empty(t, cfg.Gating.Categories)

	// Verify checks defaults
	assert.Empty(t, cfg.Checks.SensitivePaths)
	assert.Empty(t, cfg.Checks.SecretPatterns)
	assert.Empty(t, cfg.Checks.Overrides)
	assert.Empty(t, cfg.Checks.Custom)

	// Verify journal defaults
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, "", cfg.Journal.Path)
	assert.Equal(t, 90, cfg.Journal.RetentionDays)

	// Verify display defaults
	assert.Equal(t, ColorAuto, cfg.Display.Colors)
	assert.Equal(t, TimezoneLocal, cfg.Display.Timezone)
}

func TestLoad_ValidConfig(t *testing.T) {
	configFile := writeConfig(t, `
engine:
  run_budget_ms: 3000
  check_timeout_ms: 500
  emergency_check_timeout_ms: 25
  max_concurrency: 8
  family_budgets_ms:
    secrets: 800
gating:
  bypass: false
  categories:
    formatting: false
checks:
  sensitive_paths:
    - "**/.env"
  overrides:
    mixed-naming:
      disabled: true
    backup-artifacts:
      priority: high
      blocking: hard-block
      timeout_ms: 2000
  custom:
    - id: no-vendor-edits
      matcher: "^vendor/"
      priority: critical
      blocking: hard-block
      message: vendored code is generated
journal:
  enabled: false
  retention_days: 30
display:
  colors: always
  timezone: utc
`)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 3000, cfg.Engine.RunBudgetMS)
	assert.Equal(t, 500, cfg.Engine.CheckTimeoutMS)
	assert.Equal(t, 25, cfg.Engine.EmergencyCheckTimeoutMS)
	assert.Equal(t, 8, cfg.Engine.MaxConcurrency)
	assert.Equal(t, map[string]int{"secrets": 800}, cfg.Engine.FamilyBudgetsMS)

	assert.False(t, cfg.Gating.Bypass)
	require.Contains(t, cfg.Gating.Categories, "formatting")
	assert.False(t, cfg.Gating.Categories["formatting"])

	assert.Equal(t, []string{"**/.env"}, cfg.Checks.SensitivePaths)
	assert.True(t, cfg.Checks.Overrides["mixed-naming"].Disabled)
	assert.Equal(t, "high", cfg.Checks.Overrides["backup-artifacts"].Priority)
	assert.Equal(t, 2000, cfg.Checks.Overrides["backup-artifacts"].TimeoutMS)

	require.Len(t, cfg.Checks.Custom, 1)
	assert.Equal(t, "no-vendor-edits", cfg.Checks.Custom[0].ID)
	assert.Equal(t, "^vendor/", cfg.Checks.Custom[0].Matcher)
	assert.Equal(t, "critical", cfg.Checks.Custom[0].Priority)

	assert.False(t, cfg.Journal.Enabled)
	assert.Equal(t, 30, cfg.Journal.RetentionDays)
	assert.Equal(t, ColorAlways, cfg.Display.Colors)
	assert.Equal(t, TimezoneUTC, cfg.Display.Timezone)
}

func TestLoad_PartialConfig_MergesWithDefaults(t *testing.T) {
	configFile := writeConfig(t, `
engine:
  run_budget_ms: 2000
`)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Set value
	assert.Equal(t, 2000, cfg.Engine.RunBudgetMS)

	// Default values
	assert.Equal(t, 1000, cfg.Engine.CheckTimeoutMS)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, ColorAuto, cfg.Display.Colors)
}

func TestLoad_NegativeRunBudget(t *testing.T) {
	configFile := writeConfig(t, `
engine:
  run_budget_ms: -1
`)

	cfg, err := Load(configFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "engine.run_budget_ms must be non-negative")
}

func TestLoad_ZeroFamilyBudget(t *testing.T) {
	configFile := writeConfig(t, `
engine:
  family_budgets_ms:
    secrets: 0
`)

	cfg, err := Load(configFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "engine.family_budgets_ms.secrets must be positive")
}

func TestLoad_InvalidSecretPattern(t *testing.T) {
	configFile := writeConfig(t, `
checks:
  secret_patterns:
    - "[invalid"
`)

	cfg, err := Load(configFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid checks.secret_patterns[0]")
}

func TestLoad_InvalidOverridePriority(t *testing.T) {
	configFile := writeConfig(t, `
checks:
  overrides:
    mixed-naming:
      priority: urgent
`)

	cfg, err := Load(configFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "checks.overrides.mixed-naming")
}

func TestLoad_InvalidCustomRecords(t *testing.T) {
	testCases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			"missing id",
			"checks:\n  custom:\n    - matcher: a\n",
			"id must not be empty",
		},
		{
			"missing matcher",
			"checks:\n  custom:\n    - id: x\n",
			"matcher must not be empty",
		},
		{
			"bad matcher",
			"checks:\n  custom:\n    - id: x\n      matcher: '['\n",
			"invalid matcher",
		},
		{
			"bad tools",
			"checks:\n  custom:\n    - id: x\n      matcher: a\n      tools: '['\n",
			"invalid tools",
		},
		{
			"bad target",
			"checks:\n  custom:\n    - id: x\n      matcher: a\n      target: basename\n",
			"invalid target",
		},
		{
			"bad blocking",
			"checks:\n  custom:\n    - id: x\n      matcher: a\n      blocking: fatal\n",
			"invalid blocking",
		},
		{
			"bad phase",
			"checks:\n  custom:\n    - id: x\n      matcher: a\n      phases: [mid]\n",
			"invalid phase",
		},
		{
			"duplicate id",
			"checks:\n  custom:\n    - id: x\n      matcher: a\n    - id: x\n      matcher: b\n",
			"duplicate id",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			configFile := writeConfig(t, tc.yaml)
			cfg, err := Load(configFile)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_NegativeRetentionDays(t *testing.T) {
	configFile := writeConfig(t, `
journal:
  retention_days: -1
`)

	cfg, err := Load(configFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "journal.retention_days must be non-negative")
}

func TestLoad_ZeroRetentionDays_Valid(t *testing.T) {
	// Zero retention means no automatic cleanup
	configFile := writeConfig(t, `
journal:
  retention_days: 0
`)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 0, cfg.Journal.RetentionDays)
}

func TestLoad_InvalidColorMode(t *testing.T) {
	configFile := writeConfig(t, `
display:
  colors: invalid
`)

	cfg, err := Load(configFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid display.colors")
}

func TestLoad_InvalidTimezoneMode(t *testing.T) {
	configFile := writeConfig(t, `
display:
  timezone: invalid
`)

	cfg, err := Load(configFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid display.timezone")
}

func TestLoad_NonExistentFile_ReturnsError(t *testing.T) {
	nonExistentFile := filepath.Join(t.TempDir(), "nonexistent.yaml")

	// When an explicit config path is given, the file must exist
	cfg, err := Load(nonExistentFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_MalformedYAML(t *testing.T) {
	configFile := writeConfig(t, `
engine:
  run_budget_ms: 5000
  this is not valid yaml
`)

	cfg, err := Load(configFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestConfig_JournalPath_Default(t *testing.T) {
	cfg := Default()
	dbPath := cfg.JournalPath()
	assert.NotEmpty(t, dbPath)
	assert.Contains(t, dbPath, "bulwark.db")
}

func TestConfig_JournalPath_CustomPath(t *testing.T) {
	cfg := Default()
	cfg.Journal.Path = "/custom/path/journal.db"

	assert.Equal(t, "/custom/path/journal.db", cfg.JournalPath())
}

func TestConfig_ShouldUseColors_Always(t *testing.T) {
	cfg := Default()
	cfg.Display.Colors = ColorAlways
	assert.True(t, cfg.ShouldUseColors())
}

func TestConfig_ShouldUseColors_Never(t *testing.T) {
	cfg := Default()
	cfg.Display.Colors = ColorNever
	assert.False(t, cfg.ShouldUseColors())
}

func TestResolvePaths(t *testing.T) {
	paths := ResolvePaths()

	assert.NotEmpty(t, paths.ConfigFile)
	assert.NotEmpty(t, paths.ConfigDir)
	assert.NotEmpty(t, paths.DataDir)
	assert.NotEmpty(t, paths.DatabaseFile)
	assert.NotEmpty(t, paths.CacheDir)
	assert.NotEmpty(t, paths.BackupsDir)

	assert.Contains(t, paths.ConfigFile, "config.yaml")
	assert.Contains(t, paths.DatabaseFile, "bulwark.db")
	assert.Contains(t, paths.BackupsDir, "backups")
}

func TestEnsureDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("EnsureDirectories", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
		t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
		t.Setenv("XDG_CACHE_HOME", filepath.Join(tmpDir, "cache"))

		err := EnsureDirectories()
		require.NoError(t, err)
	})
}

func TestColorMode_Values(t *testing.T) {
	assert.Equal(t, ColorMode("auto"), ColorAuto)
	assert.Equal(t, ColorMode("always"), ColorAlways)
	assert.Equal(t, ColorMode("never"), ColorNever)
}

func TestTimezoneMode_Values(t *testing.T) {
	assert.Equal(t, TimezoneMode("local"), TimezoneLocal)
	assert.Equal(t, TimezoneMode("utc"), TimezoneUTC)
}

func TestIsValidColorMode(t *testing.T) {
	assert.True(t, isValidColorMode(ColorAuto))
	assert.True(t, isValidColorMode(ColorAlways))
	assert.True(t, isValidColorMode(ColorNever))
	assert.False(t, isValidColorMode(ColorMode("invalid")))
	assert.False(t, isValidColorMode(ColorMode("")))
}

func TestIsValidTimezoneMode(t *testing.T) {
	assert.True(t, isValidTimezoneMode(TimezoneLocal))
	assert.True(t, isValidTimezoneMode(TimezoneUTC))
	assert.False(t, isValidTimezoneMode(TimezoneMode("invalid")))
	assert.False(t, isValidTimezoneMode(TimezoneMode("")))
}
