// Package tui provides the presentation layer for terminal output.
package tui

import (
	"fmt"
	"io"
	"os"
)

// Format represents the output format.
type Format string

const (
	// FormatTable is the default human-readable format.
	FormatTable Format = "table"
	// FormatJSON is indented JSON format.
	FormatJSON Format = "json"
	// FormatJSONL is newline-delimited JSON format.
	FormatJSONL Format = "jsonl"
)

// ParseFormat converts a CLI flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatJSON, FormatJSONL:
		return Format(s), nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("invalid format %q (must be table, json, or jsonl)", s)
	}
}

// Presenter defines the interface for output rendering.
type Presenter interface {
	// RenderDecision renders an evaluated decision.
	RenderDecision(dec *DecisionView) error

	// RenderChecks renders the registered check catalog.
	RenderChecks(view *ChecksView) error

	// RenderHistory renders journal records.
	RenderHistory(view *HistoryView) error

	// RenderInstall renders the hook installation result.
	RenderInstall(result *InstallView) error

	// RenderUninstall renders the hook removal result.
	RenderUninstall(result *UninstallView) error

	// RenderStatus renders the tool status.
	RenderStatus(status *StatusView) error

	// RenderDoctor renders the doctor check results.
	RenderDoctor(result *DoctorView) error

	// RenderConfig renders the configuration.
	RenderConfig(config *ConfigView) error

	// RenderError renders an error message.
	RenderError(err error) error

	// RenderMessage renders a simple message.
	RenderMessage(message string) error
}

// PresenterOptions configures presenter behavior.
type PresenterOptions struct {
	// Writer is the output destination.
	Writer io.Writer
	// UseColors indicates if colors should be used.
	UseColors bool
	// Verbose includes per-check detail in decision output.
	Verbose bool
	// TerminalWidth is the width used for table rendering. If 0, the
	// width is detected from the writer.
	TerminalWidth int
}

// NewPresenter creates a new presenter for the given format.
func NewPresenter(format Format, opts PresenterOptions) Presenter {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch format {
	case FormatJSON:
		return NewJSONPresenter(opts)
	case FormatJSONL:
		return NewJSONLPresenter(opts)
	default:
		return NewTablePresenter(opts)
	}
}

// DefaultPresenter returns a table presenter on stdout.
func DefaultPresenter() Presenter {
	return NewPresenter(FormatTable, PresenterOptions{
		Writer:    os.Stdout,
		UseColors: true,
	})
}
