package cli

import (
	"github.com/spf13/cobra"

	"github.com/bulwarkhq/bulwark/hosthooks"
	"github.com/bulwarkhq/bulwark/tui"
)

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	var (
		scope    string
		dryRun   bool
		force    bool
		noBackup bool
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install hooks into the host agent",
		Long: `Install hooks into the host agent.

Wires the pre and post mutation hooks into the host's settings.json so
every proposed file mutation is evaluated. Existing settings are merged,
not replaced, and backed up by default.`,
		Example: `  bulwark install
  bulwark install --scope project
  bulwark install --dry-run
  bulwark install --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}

			sc, err := hosthooks.ParseScope(scope)
			if err != nil {
				return err
			}

			result, err := hosthooks.Install(hosthooks.InstallOptions{
				Scope:  sc,
				DryRun: dryRun,
				Force:  force,
				Backup: !noBackup,
			})
			if err != nil {
				return ErrHookFailed("failed to install hooks", err)
			}

			view := &tui.InstallView{
				Scope:      string(sc),
				DryRun:     dryRun,
				Installed:  result.Installed,
				BackupPath: result.BackupPath,
				Warnings:   result.Warnings,
			}
			if det, err := hosthooks.Detect(sc, ""); err == nil {
				view.SettingsPath = det.SettingsPath
			}

			return app.Presenter.RenderInstall(view)
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "user", "install scope: user or project")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be installed")
	cmd.Flags().BoolVar(&force, "force", false, "rewrite hook entries even when already wired")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "skip backup of existing settings")

	return cmd
}
