package cli

import (
	"github.com/spf13/cobra"

	"github.com/bulwarkhq/bulwark/hosthooks"
	"github.com/bulwarkhq/bulwark/tui"
)

// NewUninstallCmd creates the uninstall command.
func NewUninstallCmd() *cobra.Command {
	var (
		scope  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove hooks from the host agent",
		Long: `Remove hooks from the host agent.

Strips every bulwark hook entry from the host's settings.json. Hooks
belonging to other tools are left untouched. The decision journal and
configuration are kept.`,
		Example: `  bulwark uninstall
  bulwark uninstall --scope project
  bulwark uninstall --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}

			sc, err := hosthooks.ParseScope(scope)
			if err != nil {
				return err
			}

			result, err := hosthooks.Uninstall(hosthooks.UninstallOptions{
				Scope:  sc,
				DryRun: dryRun,
			})
			if err != nil {
				return ErrHookFailed("failed to remove hooks", err)
			}

			view := &tui.UninstallView{
				Scope:   string(sc),
				DryRun:  dryRun,
				Removed: result.Removed,
			}
			if det, err := hosthooks.Detect(sc, ""); err == nil {
				view.SettingsPath = det.SettingsPath
			}

			return app.Presenter.RenderUninstall(view)
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "user", "uninstall scope: user or project")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be removed")

	return cmd
}
