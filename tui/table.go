package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// TablePresenter renders output in table format.
type TablePresenter struct {
	w         io.Writer
	color     *Colorizer
	verbose   bool
	termWidth int
}

// NewTablePresenter creates a new table presenter.
func NewTablePresenter(opts PresenterOptions) *TablePresenter {
	termWidth := opts.TerminalWidth
	if termWidth == 0 {
		termWidth = TerminalWidth(opts.Writer)
	}
	return &TablePresenter{
		w:         opts.Writer,
		color:     NewColorizer(opts.UseColors),
		verbose:   opts.Verbose,
		termWidth: termWidth,
	}
}

// RenderDecision renders an evaluated decision.
func (p *TablePresenter) RenderDecision(dec *DecisionView) error {
	tw := &tableWriter{w: p.w}

	verdict := strings.ToUpper(dec.Verdict)
	headline := p.color.Success(verdict)
	if dec.Verdict == "block" {
		headline = p.color.Error(verdict)
	}
	tw.printf("%s  %s\n", headline,
		p.color.Dim(fmt.Sprintf("run %s  %s", FormatShortID(dec.RunID), FormatDuration(dec.Elapsed))))

	if dec.Bypassed {
		tw.println(p.color.Warning("Evaluation bypassed by environment gate."))
		return tw.Err()
	}

	if dec.Triggering != "" {
		tw.printf("  %-8s %s\n", "Check:", dec.Triggering)
	}
	if dec.Message != "" {
		tw.printf("  %-8s %s\n", "Reason:", dec.Message)
	}

	if len(dec.Warnings) > 0 {
		tw.println()
		tw.println(p.color.Warning("Warnings:"))
		for _, warning := range dec.Warnings {
			tw.printf("  - %s\n", warning)
		}
	}

	if len(dec.Diffs) > 0 {
		tw.println()
		tw.println(p.color.Header("Modifications:"))
		for _, diff := range dec.Diffs {
			tw.printf("  %s", p.color.Path(diff.Path))
			if diff.CheckID != "" {
				tw.printf("  %s", p.color.Dim("("+diff.CheckID+")"))
			}
			tw.println()
			p.renderDiffContent(tw, diff.Content)
		}
	}

	if len(dec.Skipped) > 0 {
		tw.println()
		tw.println(p.color.Dim("Skipped: " + strings.Join(dec.Skipped, ", ")))
	}

	if dec.Fallback != "" && dec.Fallback != "none" {
		tw.println()
		tw.printf("%s %s\n", p.color.Warning("Fallback:"), dec.Fallback)
		for _, tr := range dec.Transitions {
			tw.printf("  %s\n", p.color.Dim(tr))
		}
	}

	if p.verbose && len(dec.Checks) > 0 {
		tw.println()
		p.renderCheckResults(tw, dec.Checks)
	}

	return tw.Err()
}

// renderCheckResults renders the per-check result rows.
func (p *TablePresenter) renderCheckResults(tw *tableWriter, checks []CheckResultView) {
	idWidth := columnWidth(checks, 20, 36, func(c CheckResultView) string { return c.ID })

	tw.printf("Checks (%d)\n", len(checks))
	tw.println(HorizontalLine(p.termWidth))
	tw.printf("%s %-8s %-8s %s\n", PadRight("ID", idWidth), "Status", "Time", "Detail")

	for _, c := range checks {
		detail := c.Message
		if c.Failure != "" && c.Failure != "none" {
			detail = p.color.Error(c.Failure)
		}
		tw.printf("%s %s %-8s %s\n",
			PadRight(TruncateString(c.ID, idWidth), idWidth),
			p.color.CheckStatus(PadRight(c.Status, 8)),
			FormatDuration(c.Elapsed),
			detail)
	}
}

// renderDiffContent renders unified diff lines with colors.
func (p *TablePresenter) renderDiffContent(tw *tableWriter, content string) {
	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			tw.println(p.color.DiffHeader(line))
		case strings.HasPrefix(line, "+"):
			tw.println(p.color.DiffAdd(line))
		case strings.HasPrefix(line, "-"):
			tw.println(p.color.DiffRemove(line))
		case strings.HasPrefix(line, "@@"):
			tw.println(p.color.Cyan(line))
		default:
			tw.println(line)
		}
	}
}

// RenderChecks renders the registered check catalog.
func (p *TablePresenter) RenderChecks(view *ChecksView) error {
	tw := &tableWriter{w: p.w}

	if len(view.Checks) == 0 {
		tw.println("No checks registered.")
		return tw.Err()
	}

	idWidth := columnWidth(view.Checks, 18, 36, func(c CheckInfoView) string { return c.ID })

	tw.printf("Checks (%d)\n", len(view.Checks))
	tw.println(HorizontalLine(p.termWidth))
	tw.printf("%s %-11s %-14s %-12s %-9s %-8s %s\n",
		PadRight("ID", idWidth), "Tier", "Category", "Family", "Blocking", "Timeout", "Phases")
	tw.println(HorizontalLine(p.termWidth))

	for _, c := range view.Checks {
		timeout := "default"
		if c.Timeout > 0 {
			timeout = FormatDuration(c.Timeout)
		}

		phases := strings.Join(c.Phases, ",")
		if c.Tools != "" {
			phases += "  " + p.color.Dim("tools: "+c.Tools)
		}

		tw.printf("%s %-11s %-14s %-12s %-9s %-8s %s\n",
			PadRight(TruncateString(c.ID, idWidth), idWidth),
			c.Priority, c.Category, c.Family, c.Blocking, timeout, phases)
	}

	return tw.Err()
}

// historyColumnWidths holds the calculated widths for history columns.
type historyColumnWidths struct {
	time    int
	verdict int
	phase   int
	tool    int
	path    int
	total   int
}

// calculateHistoryColumnWidths computes column widths based on terminal
// width. Path absorbs the remaining space.
func (p *TablePresenter) calculateHistoryColumnWidths() historyColumnWidths {
	const (
		timeWidth    = 19
		verdictWidth = 7
		phaseWidth   = 5
		toolWidth    = 10
		minPathWidth = 15
		maxPathWidth = 70
		spacing      = 5
	)

	fixedWidth := timeWidth + verdictWidth + phaseWidth + toolWidth + spacing
	pathWidth := p.termWidth - fixedWidth - 16
	if pathWidth < minPathWidth {
		pathWidth = minPathWidth
	}
	if pathWidth > maxPathWidth {
		pathWidth = maxPathWidth
	}

	return historyColumnWidths{
		time:    timeWidth,
		verdict: verdictWidth,
		phase:   phaseWidth,
		tool:    toolWidth,
		path:    pathWidth,
		total:   fixedWidth + pathWidth,
	}
}

// RenderHistory renders journal records.
func (p *TablePresenter) RenderHistory(view *HistoryView) error {
	tw := &tableWriter{w: p.w}

	if len(view.Records) == 0 {
		tw.println("No journal records found.")
		return tw.Err()
	}

	cols := p.calculateHistoryColumnWidths()

	if view.Total > len(view.Records) {
		tw.printf("History (showing %d of %s)\n", len(view.Records), FormatNumber(view.Total))
	} else {
		tw.printf("History (%d records)\n", len(view.Records))
	}
	tw.println(HorizontalLine(p.termWidth))

	rowFmt := fmt.Sprintf("%%-%ds %%s %%-%ds %%-%ds %%-%ds %%s\n",
		cols.time, cols.phase, cols.tool, cols.path)
	tw.printf(rowFmt, "Time", PadRight("Verdict", cols.verdict), "Phase", "Tool", "Path", "Detail")
	tw.println(HorizontalLine(p.termWidth))

	for _, rec := range view.Records {
		detail := rec.Triggering
		if detail == "" && rec.Fallback != "" && rec.Fallback != "none" {
			detail = p.color.Dim("fallback: " + rec.Fallback)
		}

		tw.printf(rowFmt,
			FormatTime(rec.Timestamp),
			p.color.Verdict(PadRight(rec.Verdict, cols.verdict)),
			rec.Phase,
			TruncateString(rec.ToolName, cols.tool),
			TruncateString(rec.Path, cols.path),
			detail)
	}

	return tw.Err()
}

// RenderInstall renders the hook installation result.
func (p *TablePresenter) RenderInstall(result *InstallView) error {
	tw := &tableWriter{w: p.w}

	tw.printf("Installing hooks (%s scope)...\n\n", result.Scope)

	for _, event := range result.Installed {
		tw.printf("  %s  %s\n", p.color.StatusOK(), event)
	}
	if len(result.Installed) > 0 {
		tw.println()
	}

	tw.printf("  %-10s %s\n", "Settings:", p.color.Path(result.SettingsPath))
	if result.BackupPath != "" {
		tw.printf("  %-10s %s\n", "Backup:", p.color.Path(result.BackupPath))
	}

	for _, warning := range result.Warnings {
		tw.printf("  %s  %s\n", p.color.Warning("[!!]"), warning)
	}

	tw.println()
	if result.DryRun {
		tw.println(p.color.Warning("Dry run: no changes written."))
	} else {
		tw.println("Installation complete.")
	}

	return tw.Err()
}

// RenderUninstall renders the hook removal result.
func (p *TablePresenter) RenderUninstall(result *UninstallView) error {
	tw := &tableWriter{w: p.w}

	tw.printf("Uninstalling hooks (%s scope)...\n\n", result.Scope)

	if len(result.Removed) == 0 {
		tw.println("No hooks were installed.")
		return tw.Err()
	}

	for _, event := range result.Removed {
		tw.printf("  -> Removed %s hook\n", event)
	}

	tw.println()
	if result.DryRun {
		tw.println(p.color.Warning("Dry run: no changes written."))
	} else {
		tw.println("Uninstallation complete.")
	}

	return tw.Err()
}

// RenderStatus renders the tool status.
func (p *TablePresenter) RenderStatus(status *StatusView) error {
	tw := &tableWriter{w: p.w}

	tw.printf("%s\n\n", p.color.Header("bulwark "+status.Version))

	tw.printf("%s\n", p.color.Header("Hooks"))
	tw.printf("  %-14s %s\n", "Scope", status.Hooks.Scope)
	tw.printf("  %-14s %s\n", "Settings", p.color.Path(status.Hooks.SettingsPath))
	if status.Hooks.Installed {
		for _, event := range status.Hooks.Events {
			tw.printf("  %s  %s\n", p.color.StatusOK(), event)
		}
	}
	for _, issue := range status.Hooks.Issues {
		tw.printf("  %s  %s\n", p.color.StatusFail(), issue)
	}
	tw.println()

	tw.printf("%s\n", p.color.Header("Journal"))
	if !status.Journal.Enabled {
		tw.printf("  %s\n", p.color.Dim("disabled"))
	} else {
		tw.printf("  %-14s %s\n", "Location", p.color.Path(status.Journal.Location))
		if status.Journal.SizeHuman != "" {
			tw.printf("  %-14s %s\n", "Size", status.Journal.SizeHuman)
		}
		tw.printf("  %-14s %s\n", "Records", p.color.Number(FormatNumber(status.Journal.Records)))
		if !status.Journal.Oldest.IsZero() {
			tw.printf("  %-14s %s\n", "Oldest", FormatTime(status.Journal.Oldest))
			tw.printf("  %-14s %s\n", "Latest", FormatTime(status.Journal.Newest))
		}
	}
	tw.println()

	tw.printf("%s\n", p.color.Header("Config"))
	location := status.Config.Location
	if location == "" {
		location = p.color.Dim("defaults (no config file)")
	} else {
		location = p.color.Path(location)
	}
	tw.printf("  %-14s %s\n", "Location", location)
	tw.printf("  %-14s %d\n", "Active checks", status.Config.ActiveChecks)
	if status.Config.Bypass {
		tw.printf("  %-14s %s\n", "Bypass", p.color.Warning("enabled"))
	}
	if len(status.Config.DisabledCategories) > 0 {
		tw.printf("  %-14s %s\n", "Disabled", strings.Join(status.Config.DisabledCategories, ", "))
	}
	tw.printf("  %-14s %d days\n", "Retention", status.Config.RetentionDays)

	return tw.Err()
}

// RenderDoctor renders the doctor check results.
func (p *TablePresenter) RenderDoctor(result *DoctorView) error {
	tw := &tableWriter{w: p.w}

	tw.printf("%s\n", p.color.Header("Doctor"))
	tw.println(HorizontalLine(p.termWidth))
	tw.println()

	for _, check := range result.Checks {
		var statusStr string
		switch check.Status {
		case CheckOK:
			statusStr = p.color.StatusOK()
		case CheckWarn:
			statusStr = p.color.Warning("[!!]")
		case CheckFail:
			statusStr = p.color.StatusFail()
		}

		tw.printf("  %s  %s\n", statusStr, check.Name)
		if check.Message != "" {
			tw.printf("        %s\n", check.Message)
		}
		if check.Suggestion != "" && check.Status != CheckOK {
			tw.printf("        %s\n", p.color.Dim(check.Suggestion))
		}
	}
	tw.println()

	if result.AllOK {
		tw.println(p.color.Success("All checks passed."))
	} else {
		tw.println(p.color.Warning("Some checks failed. See suggestions above."))
	}

	return tw.Err()
}

// RenderConfig renders the configuration.
func (p *TablePresenter) RenderConfig(config *ConfigView) error {
	tw := &tableWriter{w: p.w}

	tw.printf("%s\n", p.color.Header("Configuration"))
	tw.printf("Location: %s\n", p.color.Path(config.Location))
	tw.println(HorizontalLine(p.termWidth))
	tw.println()

	p.renderConfigMap(tw, config.Values, "")

	return tw.Err()
}

// renderConfigMap renders nested config values as dotted keys, sorted
// for stable output.
func (p *TablePresenter) renderConfigMap(tw *tableWriter, m map[string]interface{}, prefix string) {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		switch v := m[key].(type) {
		case map[string]interface{}:
			p.renderConfigMap(tw, v, fullKey)
		default:
			tw.printf("  %-30s %v\n", fullKey, v)
		}
	}
}

// RenderError renders an error message.
func (p *TablePresenter) RenderError(err error) error {
	tw := &tableWriter{w: p.w}
	tw.printf("%s %s\n", p.color.Error("Error:"), err.Error())
	return tw.Err()
}

// RenderMessage renders a simple message.
func (p *TablePresenter) RenderMessage(message string) error {
	tw := &tableWriter{w: p.w}
	tw.println(message)
	return tw.Err()
}

// columnWidth sizes a flexible column to its longest value, clamped to
// the given bounds.
func columnWidth[T any](rows []T, min, max int, value func(T) string) int {
	width := min
	for _, row := range rows {
		if l := len(value(row)); l > width {
			width = l
		}
	}
	if width > max {
		width = max
	}
	return width
}

// Ensure TablePresenter implements Presenter
var _ Presenter = (*TablePresenter)(nil)
