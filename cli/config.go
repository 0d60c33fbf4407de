package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bulwarkhq/bulwark/config"
	"github.com/bulwarkhq/bulwark/tui"
)

// NewConfigCmd creates the config command.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or modify configuration",
		Long: `View or modify configuration.

Keys use dotted paths:
  bulwark config get engine.run_budget_ms
  bulwark config set journal.retention_days 30
  bulwark config set gating.bypass true`,
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
		newConfigResetCmd(),
	)

	return cmd
}

// configManager opens a manager for the active config file.
func configManager() (*config.Manager, error) {
	path := globalFlags.ConfigPath
	if path == "" {
		path = config.ResolvePaths().ConfigFile
	}

	mgr, err := config.NewManager(path)
	if err != nil {
		return nil, ErrConfig("failed to load configuration", err)
	}
	return mgr, nil
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}

			mgr, err := configManager()
			if err != nil {
				return err
			}

			view := &tui.ConfigView{
				Location: mgr.ConfigPath(),
				Values:   mgr.AllSettings(),
			}

			return app.Presenter.RenderConfig(view)
		},
	}

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a specific config value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			mgr, err := configManager()
			if err != nil {
				return err
			}

			if !mgr.HasKey(key) {
				return fmt.Errorf("key not found: %s", key)
			}

			fmt.Fprintln(cmd.OutOrStdout(), mgr.Get(key))
			return nil
		},
	}

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := config.ParseValue(args[1])

			mgr, err := configManager()
			if err != nil {
				return err
			}

			if err := mgr.Set(key, value); err != nil {
				return ErrConfig("failed to save configuration", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, value)
			return nil
		},
	}

	return cmd
}

func newConfigResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset to default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := configManager()
			if err != nil {
				return err
			}

			if err := mgr.Reset(); err != nil {
				return ErrConfig("failed to reset configuration", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
			return nil
		},
	}

	return cmd
}
