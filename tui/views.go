package tui

import (
	"time"
)

// DecisionView represents an evaluated decision for display.
type DecisionView struct {
	RunID       string            `json:"runId"`
	Verdict     string            `json:"verdict"`
	Triggering  string            `json:"triggeringCheck,omitempty"`
	Message     string            `json:"message,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
	Skipped     []string          `json:"skippedChecks,omitempty"`
	Fallback    string            `json:"fallbackTierUsed"`
	Transitions []string          `json:"transitions,omitempty"`
	Bypassed    bool              `json:"bypassed,omitempty"`
	StartedAt   time.Time         `json:"startedAt"`
	Elapsed     time.Duration     `json:"elapsed"`
	Checks      []CheckResultView `json:"checks,omitempty"`
	Diffs       []DiffView        `json:"diffs,omitempty"`
}

// CheckResultView represents a single check's result row.
type CheckResultView struct {
	ID      string        `json:"checkId"`
	Status  string        `json:"status"`
	Failure string        `json:"failureReason,omitempty"`
	Message string        `json:"message,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// DiffView is a unified diff of one proposed content modification.
type DiffView struct {
	Path    string `json:"path"`
	CheckID string `json:"checkId,omitempty"`
	Content string `json:"content"`
}

// ChecksView represents the registered check catalog.
type ChecksView struct {
	Checks []CheckInfoView `json:"checks"`
}

// CheckInfoView represents one registered check.
type CheckInfoView struct {
	ID       string        `json:"id"`
	Category string        `json:"category"`
	Family   string        `json:"family,omitempty"`
	Priority string        `json:"priority"`
	Blocking string        `json:"blocking"`
	Timeout  time.Duration `json:"timeout,omitempty"`
	Phases   []string      `json:"phases"`
	Tools    string        `json:"tools,omitempty"`
}

// HistoryView represents queried journal records.
type HistoryView struct {
	Records []RecordView `json:"records"`
	// Total is the match count before limit and offset were applied.
	Total int `json:"total"`
}

// RecordView represents one journal record row.
type RecordView struct {
	ID         string        `json:"id"`
	ShortID    string        `json:"-"`
	Timestamp  time.Time     `json:"timestamp"`
	Phase      string        `json:"phase"`
	ToolName   string        `json:"toolName,omitempty"`
	Path       string        `json:"path,omitempty"`
	Verdict    string        `json:"verdict"`
	Triggering string        `json:"triggeringCheck,omitempty"`
	Message    string        `json:"message,omitempty"`
	Fallback   string        `json:"fallbackTierUsed"`
	Elapsed    time.Duration `json:"elapsed"`
	Project    string        `json:"project,omitempty"`
}

// InstallView represents hook installation results.
type InstallView struct {
	Scope        string   `json:"scope"`
	SettingsPath string   `json:"settingsPath"`
	DryRun       bool     `json:"dryRun,omitempty"`
	Installed    []string `json:"installed"`
	BackupPath   string   `json:"backupPath,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// UninstallView represents hook removal results.
type UninstallView struct {
	Scope        string   `json:"scope"`
	SettingsPath string   `json:"settingsPath"`
	DryRun       bool     `json:"dryRun,omitempty"`
	Removed      []string `json:"removed"`
}

// StatusView represents the status output data.
type StatusView struct {
	Version string          `json:"version"`
	Hooks   HookStatusView  `json:"hooks"`
	Journal JournalInfoView `json:"journal"`
	Config  ConfigInfoView  `json:"config"`
}

// HookStatusView represents the hook wiring state.
type HookStatusView struct {
	Scope        string   `json:"scope"`
	SettingsPath string   `json:"settingsPath"`
	Installed    bool     `json:"installed"`
	Valid        bool     `json:"valid"`
	Events       []string `json:"events,omitempty"`
	Issues       []string `json:"issues,omitempty"`
}

// JournalInfoView represents journal database information.
type JournalInfoView struct {
	Enabled   bool      `json:"enabled"`
	Location  string    `json:"location,omitempty"`
	SizeBytes int64     `json:"sizeBytes,omitempty"`
	SizeHuman string    `json:"sizeHuman,omitempty"`
	Records   int       `json:"records"`
	Oldest    time.Time `json:"oldest,omitempty"`
	Newest    time.Time `json:"newest,omitempty"`
}

// ConfigInfoView represents configuration summary information.
type ConfigInfoView struct {
	Location           string   `json:"location,omitempty"`
	ActiveChecks       int      `json:"activeChecks"`
	Bypass             bool     `json:"bypass,omitempty"`
	DisabledCategories []string `json:"disabledCategories,omitempty"`
	RetentionDays      int      `json:"retentionDays"`
}

// DoctorView represents doctor check results.
type DoctorView struct {
	Checks []DoctorCheck `json:"checks"`
	AllOK  bool          `json:"allOk"`
}

// DoctorCheck represents a single doctor check.
type DoctorCheck struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message,omitempty"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// CheckStatus represents the status of a doctor check.
type CheckStatus string

const (
	CheckOK   CheckStatus = "ok"
	CheckWarn CheckStatus = "warn"
	CheckFail CheckStatus = "fail"
)

// ConfigView represents configuration for display.
type ConfigView struct {
	Location string                 `json:"location"`
	Values   map[string]interface{} `json:"values"`
}
