package tui

import (
	"encoding/json"
	"io"
)

// JSONLPresenter renders output as newline-delimited JSON: one object
// per line, lists emitted item by item for streaming consumers.
type JSONLPresenter struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewJSONLPresenter creates a new JSONL presenter.
func NewJSONLPresenter(opts PresenterOptions) *JSONLPresenter {
	return &JSONLPresenter{
		w:       opts.Writer,
		encoder: json.NewEncoder(opts.Writer),
	}
}

// RenderDecision renders an evaluated decision as one JSONL line.
func (p *JSONLPresenter) RenderDecision(dec *DecisionView) error {
	return p.encoder.Encode(dec)
}

// RenderChecks renders registered checks, one per line.
func (p *JSONLPresenter) RenderChecks(view *ChecksView) error {
	for _, c := range view.Checks {
		if err := p.encoder.Encode(c); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory renders journal records, one per line.
func (p *JSONLPresenter) RenderHistory(view *HistoryView) error {
	for _, rec := range view.Records {
		if err := p.encoder.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// RenderInstall renders the hook installation result as one line.
func (p *JSONLPresenter) RenderInstall(result *InstallView) error {
	return p.encoder.Encode(result)
}

// RenderUninstall renders the hook removal result as one line.
func (p *JSONLPresenter) RenderUninstall(result *UninstallView) error {
	return p.encoder.Encode(result)
}

// RenderStatus renders the tool status as one line.
func (p *JSONLPresenter) RenderStatus(status *StatusView) error {
	return p.encoder.Encode(status)
}

// RenderDoctor renders doctor checks, one per line.
func (p *JSONLPresenter) RenderDoctor(result *DoctorView) error {
	for _, check := range result.Checks {
		if err := p.encoder.Encode(check); err != nil {
			return err
		}
	}
	return nil
}

// RenderConfig renders the configuration as one line.
func (p *JSONLPresenter) RenderConfig(config *ConfigView) error {
	return p.encoder.Encode(config)
}

// RenderError renders an error message as one line.
func (p *JSONLPresenter) RenderError(err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return p.encoder.Encode(output)
}

// RenderMessage renders a simple message as one line.
func (p *JSONLPresenter) RenderMessage(message string) error {
	output := struct {
		Message string `json:"message"`
	}{
		Message: message,
	}
	return p.encoder.Encode(output)
}

// Ensure JSONLPresenter implements Presenter
var _ Presenter = (*JSONLPresenter)(nil)
