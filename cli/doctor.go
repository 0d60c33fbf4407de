package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bulwarkhq/bulwark/config"
	"github.com/bulwarkhq/bulwark/core/engine"
	"github.com/bulwarkhq/bulwark/hosthooks"
	"github.com/bulwarkhq/bulwark/journal"
	"github.com/bulwarkhq/bulwark/tui"
)

// NewDoctorCmd creates the doctor command.
func NewDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose issues with the installation",
		Long: `Diagnose issues with the installation.

Performs various health checks:
- Config file parses and the check catalog assembles
- Gate state (bypass, disabled categories)
- Host hooks are installed and valid
- Journal database is readable and within retention`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			format, err := tui.ParseFormat(globalFlags.Format)
			if err != nil {
				return err
			}

			// Load tolerantly. Doctor has to be able to diagnose a broken
			// config file, so a parse failure becomes a finding, not an
			// early exit.
			cfg, loadErr := config.Load(globalFlags.ConfigPath)
			if loadErr != nil {
				cfg = config.Default()
			}
			if globalFlags.NoColor {
				cfg.Display.Colors = config.ColorNever
			}

			presenter := tui.NewPresenter(format, tui.PresenterOptions{
				Writer:    cmd.OutOrStdout(),
				UseColors: cfg.ShouldUseColors(),
				Verbose:   globalFlags.Verbose,
			})

			view := runDoctor(ctx, cfg, loadErr)
			return presenter.RenderDoctor(view)
		},
	}

	return cmd
}

// runDoctor executes the health checks against the loaded configuration.
func runDoctor(ctx context.Context, cfg *config.Config, loadErr error) *tui.DoctorView {
	v := &tui.DoctorView{AllOK: true}
	paths := config.ResolvePaths()

	// Config file.
	configCheck := tui.DoctorCheck{Name: "Config file"}
	configPath := globalFlags.ConfigPath
	if configPath == "" {
		configPath = paths.ConfigFile
	}
	if loadErr != nil {
		configCheck.Status = tui.CheckFail
		configCheck.Message = "cannot load config: " + loadErr.Error()
		configCheck.Suggestion = "Fix the file or run 'bulwark config reset'"
		v.AllOK = false
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configCheck.Status = tui.CheckOK
		configCheck.Message = "using defaults (no config file)"
	} else if err != nil {
		configCheck.Status = tui.CheckFail
		configCheck.Message = "cannot access config file: " + err.Error()
		v.AllOK = false
	} else {
		configCheck.Status = tui.CheckOK
		configCheck.Message = configPath
	}
	v.Checks = append(v.Checks, configCheck)

	// Check catalog assembles: custom patterns and overrides compile.
	gating := config.ResolveGating(cfg.Gating, os.Environ())
	catalogCheck := tui.DoctorCheck{Name: "Check catalog"}
	catalog, err := buildCatalog(cfg)
	if err != nil {
		catalogCheck.Status = tui.CheckFail
		catalogCheck.Message = "cannot assemble checks: " + err.Error()
		catalogCheck.Suggestion = "Fix the custom check patterns in the config file"
		v.AllOK = false
	} else {
		active := engine.ActiveChecks(catalog, gateConfig(gating))
		catalogCheck.Status = tui.CheckOK
		catalogCheck.Message = fmt.Sprintf("%d registered, %d active", len(catalog), len(active))
	}
	v.Checks = append(v.Checks, catalogCheck)

	// Gate state.
	gateCheck := tui.DoctorCheck{Name: "Gate"}
	if gating.Bypass {
		gateCheck.Status = tui.CheckWarn
		gateCheck.Message = "bypass is on: every mutation is allowed unchecked"
		gateCheck.Suggestion = "Unset BULWARK_BYPASS or set gating.bypass to false"
	} else if disabled := gating.DisabledCategories(); len(disabled) > 0 {
		gateCheck.Status = tui.CheckWarn
		gateCheck.Message = "disabled categories: " + strings.Join(disabled, ", ")
	} else {
		gateCheck.Status = tui.CheckOK
		gateCheck.Message = "all categories enabled"
	}
	v.Checks = append(v.Checks, gateCheck)

	// Host hooks. Project scope is only worth reporting when a project
	// settings file exists in the working directory.
	v.Checks = append(v.Checks, hookCheck(hosthooks.ScopeUser, &v.AllOK))
	if det, err := hosthooks.Detect(hosthooks.ScopeProject, ""); err == nil && det.Installed {
		if _, err := os.Stat(det.SettingsPath); err == nil {
			v.Checks = append(v.Checks, hookCheck(hosthooks.ScopeProject, &v.AllOK))
		}
	}

	// Journal.
	journalCheck := tui.DoctorCheck{Name: "Journal"}
	var store journal.Store
	if !cfg.Journal.Enabled {
		journalCheck.Status = tui.CheckWarn
		journalCheck.Message = "journal disabled; decisions are not recorded"
		journalCheck.Suggestion = "Set journal.enabled to true to keep a decision history"
	} else if s, err := journal.NewSQLiteStore(cfg.JournalPath()); err != nil {
		journalCheck.Status = tui.CheckFail
		journalCheck.Message = "cannot open journal: " + err.Error()
		journalCheck.Suggestion = "Delete the journal file to start fresh"
		v.AllOK = false
	} else {
		store = s
		journalCheck.Status = tui.CheckOK
		journalCheck.Message = cfg.JournalPath()
	}
	v.Checks = append(v.Checks, journalCheck)

	if store != nil {
		defer store.Close()
		v.Checks = append(v.Checks, retentionCheck(ctx, store, cfg.Journal.RetentionDays))
	}

	return v
}

// hookCheck inspects the hook wiring for one scope.
func hookCheck(sc hosthooks.Scope, allOK *bool) tui.DoctorCheck {
	c := tui.DoctorCheck{Name: fmt.Sprintf("Hooks (%s)", sc)}

	st, err := hosthooks.GetStatus(sc, "")
	if err != nil {
		c.Status = tui.CheckFail
		c.Message = err.Error()
		*allOK = false
		return c
	}

	switch {
	case !st.Installed:
		c.Status = tui.CheckWarn
		c.Message = "hooks not installed"
		c.Suggestion = "run: bulwark install"
	case !st.Valid:
		c.Status = tui.CheckFail
		c.Message = "hooks are incomplete"
		if len(st.Issues) > 0 {
			c.Message += ": " + st.Issues[0]
		}
		c.Suggestion = "run: bulwark install --force"
		*allOK = false
	default:
		c.Status = tui.CheckOK
		c.Message = "installed for " + strings.Join(st.Events, ", ")
	}
	return c
}

// retentionCheck reports whether the journal holds records older than the
// retention window.
func retentionCheck(ctx context.Context, store journal.Store, days int) tui.DoctorCheck {
	c := tui.DoctorCheck{Name: "Journal retention"}

	cutoff, ok := journal.RetentionCutoff(time.Now(), days)
	if !ok {
		c.Status = tui.CheckOK
		c.Message = "retention disabled; records are kept forever"
		return c
	}

	total, err := store.Count(ctx, journal.Filter{})
	if err != nil {
		c.Status = tui.CheckWarn
		c.Message = "cannot count records: " + err.Error()
		return c
	}
	kept, err := store.Count(ctx, journal.Filter{Since: &cutoff})
	if err != nil {
		c.Status = tui.CheckWarn
		c.Message = "cannot count records: " + err.Error()
		return c
	}

	if stale := total - kept; stale > 0 {
		c.Status = tui.CheckWarn
		c.Message = fmt.Sprintf("%d records older than %d days", stale, days)
		c.Suggestion = "run: bulwark history --prune"
		return c
	}

	c.Status = tui.CheckOK
	c.Message = fmt.Sprintf("%d records within %d days", total, days)
	return c
}
