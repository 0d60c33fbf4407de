// Package config provides configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ColorMode represents the color output mode.
type ColorMode string

const (
	// ColorAuto automatically detects terminal support.
	ColorAuto ColorMode = "auto"
	// ColorAlways always uses colors.
	ColorAlways ColorMode = "always"
	// ColorNever never uses colors.
	ColorNever ColorMode = "never"
)

// TimezoneMode represents the timezone display mode.
type TimezoneMode string

const (
	// TimezoneLocal uses the local timezone.
	TimezoneLocal TimezoneMode = "local"
	// TimezoneUTC uses UTC.
	TimezoneUTC TimezoneMode = "utc"
)

// Config holds all configuration values.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Gating  GatingConfig  `mapstructure:"gating"`
	Checks  ChecksConfig  `mapstructure:"checks"`
	Journal JournalConfig `mapstructure:"journal"`
	Display DisplayConfig `mapstructure:"display"`
}

// EngineConfig holds run budgets and concurrency settings. Durations are
// milliseconds; zero values fall back to the engine defaults.
type EngineConfig struct {
	RunBudgetMS             int            `mapstructure:"run_budget_ms"`
	CheckTimeoutMS          int            `mapstructure:"check_timeout_ms"`
	EmergencyCheckTimeoutMS int            `mapstructure:"emergency_check_timeout_ms"`
	MaxConcurrency          int            `mapstructure:"max_concurrency"`
	FamilyBudgetsMS         map[string]int `mapstructure:"family_budgets_ms"`
}

// GatingConfig holds the file-level gating state. Environment variables
// override it at resolution time.
type GatingConfig struct {
	// Bypass disables all checks when true.
	Bypass bool `mapstructure:"bypass"`
	// Categories maps category names to enabled state. Absence means
	// enabled.
	Categories map[string]bool `mapstructure:"categories"`
}

// ChecksConfig tunes the built-in check library and declares custom
// pattern checks.
type ChecksConfig struct {
	SensitivePaths []string                  `mapstructure:"sensitive_paths"`
	SecretPatterns []string                  `mapstructure:"secret_patterns"`
	Overrides      map[string]OverrideConfig `mapstructure:"overrides"`
	Custom         []CheckRecord             `mapstructure:"custom"`
}

// OverrideConfig adjusts one built-in check.
type OverrideConfig struct {
	Disabled  bool   `mapstructure:"disabled"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
	Priority  string `mapstructure:"priority"`
	Blocking  string `mapstructure:"blocking"`
}

// CheckRecord declares a pattern check with no code counterpart.
type CheckRecord struct {
	ID        string   `mapstructure:"id"`
	Category  string   `mapstructure:"category"`
	Family    string   `mapstructure:"family"`
	Priority  string   `mapstructure:"priority"`
	Blocking  string   `mapstructure:"blocking"`
	Target    string   `mapstructure:"target"`
	Matcher   string   `mapstructure:"matcher"`
	Tools     string   `mapstructure:"tools"`
	Message   string   `mapstructure:"message"`
	TimeoutMS int      `mapstructure:"timeout_ms"`
	Phases    []string `mapstructure:"phases"`
}

// JournalConfig holds decision journal settings.
type JournalConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// DisplayConfig holds display-related settings.
type DisplayConfig struct {
	Colors   ColorMode    `mapstructure:"colors"`
	Timezone TimezoneMode `mapstructure:"timezone"`
}

// Paths holds resolved filesystem paths.
type Paths struct {
	ConfigFile   string
	ConfigDir    string
	DataDir      string
	DatabaseFile string
	CacheDir     string
	BackupsDir   string
}

// Load loads configuration from the given path or default locations.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		paths := ResolvePaths()

		v.SetConfigName("config")
		v.AddConfigPath(paths.ConfigDir)
	}

	v.SetEnvPrefix("BULWARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a Config with all default values.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)

	return &cfg
}

// ResolvePaths returns the resolved filesystem paths for the current platform.
func ResolvePaths() *Paths {
	configDir := getConfigDir()
	dataDir := getDataDir()
	cacheDir := getCacheDir()

	return &Paths{
		ConfigFile:   filepath.Join(configDir, "config.yaml"),
		ConfigDir:    configDir,
		DataDir:      dataDir,
		DatabaseFile: filepath.Join(dataDir, "bulwark.db"),
		CacheDir:     cacheDir,
		BackupsDir:   filepath.Join(dataDir, "backups"),
	}
}

// JournalPath returns the resolved journal database path from config or
// default.
func (c *Config) JournalPath() string {
	if c.Journal.Path != "" {
		return c.Journal.Path
	}

	paths := ResolvePaths()
	return paths.DatabaseFile
}

// ShouldUseColors returns true if colors should be used based on config and terminal.
func (c *Config) ShouldUseColors() bool {
	switch c.Display.Colors {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		// Auto: check if stdout is a terminal
		fileInfo, _ := os.Stdout.Stat()
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
}
