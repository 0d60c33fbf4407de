package tui

import (
	"encoding/json"
	"io"
)

// JSONPresenter renders output as indented JSON.
type JSONPresenter struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewJSONPresenter creates a new JSON presenter.
func NewJSONPresenter(opts PresenterOptions) *JSONPresenter {
	encoder := json.NewEncoder(opts.Writer)
	encoder.SetIndent("", "  ")
	return &JSONPresenter{
		w:       opts.Writer,
		encoder: encoder,
	}
}

// RenderDecision renders an evaluated decision as JSON.
func (p *JSONPresenter) RenderDecision(dec *DecisionView) error {
	return p.encoder.Encode(dec)
}

// RenderChecks renders the registered check catalog as JSON.
func (p *JSONPresenter) RenderChecks(view *ChecksView) error {
	return p.encoder.Encode(view)
}

// RenderHistory renders journal records as JSON.
func (p *JSONPresenter) RenderHistory(view *HistoryView) error {
	return p.encoder.Encode(view)
}

// RenderInstall renders the hook installation result as JSON.
func (p *JSONPresenter) RenderInstall(result *InstallView) error {
	return p.encoder.Encode(result)
}

// RenderUninstall renders the hook removal result as JSON.
func (p *JSONPresenter) RenderUninstall(result *UninstallView) error {
	return p.encoder.Encode(result)
}

// RenderStatus renders the tool status as JSON.
func (p *JSONPresenter) RenderStatus(status *StatusView) error {
	return p.encoder.Encode(status)
}

// RenderDoctor renders the doctor check results as JSON.
func (p *JSONPresenter) RenderDoctor(result *DoctorView) error {
	return p.encoder.Encode(result)
}

// RenderConfig renders the configuration as JSON.
func (p *JSONPresenter) RenderConfig(config *ConfigView) error {
	return p.encoder.Encode(config)
}

// RenderError renders an error message as JSON.
func (p *JSONPresenter) RenderError(err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return p.encoder.Encode(output)
}

// RenderMessage renders a simple message as JSON.
func (p *JSONPresenter) RenderMessage(message string) error {
	output := struct {
		Message string `json:"message"`
	}{
		Message: message,
	}
	return p.encoder.Encode(output)
}

// Ensure JSONPresenter implements Presenter
var _ Presenter = (*JSONPresenter)(nil)
