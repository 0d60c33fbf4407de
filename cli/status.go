package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/bulwarkhq/bulwark/config"
	"github.com/bulwarkhq/bulwark/core/engine"
	"github.com/bulwarkhq/bulwark/hosthooks"
	"github.com/bulwarkhq/bulwark/internal/version"
	"github.com/bulwarkhq/bulwark/journal"
	"github.com/bulwarkhq/bulwark/tui"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show hook wiring, journal, and configuration state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			app, err := loadApp(cmd)
			if err != nil {
				return err
			}

			sc, err := hosthooks.ParseScope(scope)
			if err != nil {
				return err
			}

			view := &tui.StatusView{
				Version: version.Version,
				Hooks:   hookStatusView(sc),
				Journal: journalInfoView(ctx, app.Config),
				Config:  configInfoView(app),
			}

			return app.Presenter.RenderStatus(view)
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "user", "hook scope to inspect: user or project")

	return cmd
}

// hookStatusView inspects the host hook wiring for one scope.
func hookStatusView(sc hosthooks.Scope) tui.HookStatusView {
	view := tui.HookStatusView{Scope: string(sc)}

	if det, err := hosthooks.Detect(sc, ""); err == nil {
		view.SettingsPath = det.SettingsPath
	}

	st, err := hosthooks.GetStatus(sc, "")
	if err != nil {
		view.Issues = []string{err.Error()}
		return view
	}

	view.Installed = st.Installed
	view.Valid = st.Valid
	view.Events = st.Events
	view.Issues = st.Issues
	return view
}

// journalInfoView collects journal location, size, and record bounds.
// Everything here is best effort: a broken journal shows up as zeroes and
// is diagnosed by doctor, not status.
func journalInfoView(ctx context.Context, cfg *config.Config) tui.JournalInfoView {
	view := tui.JournalInfoView{Enabled: cfg.Journal.Enabled}
	if !view.Enabled {
		return view
	}

	view.Location = cfg.JournalPath()

	stat, err := os.Stat(view.Location)
	if err != nil {
		return view
	}
	view.SizeBytes = stat.Size()
	view.SizeHuman = tui.FormatBytes(stat.Size())

	store, err := journal.NewSQLiteStore(view.Location)
	if err != nil {
		return view
	}
	defer store.Close()

	total, err := store.Count(ctx, journal.Filter{})
	if err != nil || total == 0 {
		return view
	}
	view.Records = total

	if newest, err := store.Query(ctx, journal.Filter{Limit: 1}); err == nil && len(newest) > 0 {
		view.Newest = newest[0].Timestamp
	}
	if oldest, err := store.Query(ctx, journal.Filter{Limit: 1, Offset: total - 1}); err == nil && len(oldest) > 0 {
		view.Oldest = oldest[0].Timestamp
	}

	return view
}

// configInfoView summarizes the effective configuration.
func configInfoView(app *App) tui.ConfigInfoView {
	view := tui.ConfigInfoView{
		RetentionDays: app.Config.Journal.RetentionDays,
	}

	location := globalFlags.ConfigPath
	if location == "" {
		location = app.Paths.ConfigFile
	}
	if _, err := os.Stat(location); err == nil {
		view.Location = location
	}

	gating := config.ResolveGating(app.Config.Gating, os.Environ())
	view.Bypass = gating.Bypass
	view.DisabledCategories = gating.DisabledCategories()

	if catalog, err := buildCatalog(app.Config); err == nil {
		view.ActiveChecks = len(engine.ActiveChecks(catalog, gateConfig(gating)))
	}

	return view
}
