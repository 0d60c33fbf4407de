// Package cli provides the command-line interface for bulwark.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/safedep/dry/log"
	"github.com/spf13/cobra"

	"github.com/bulwarkhq/bulwark/config"
	"github.com/bulwarkhq/bulwark/internal/version"
	"github.com/bulwarkhq/bulwark/tui"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Presenter tui.Presenter
	Paths     *config.Paths
}

// GlobalFlags holds the global command flags.
type GlobalFlags struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
	NoColor    bool
	Format     string
}

var globalFlags GlobalFlags

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bulwark",
		Short: "Policy checks for AI coding agent file mutations",
		Long: `Bulwark runs policy checks against file mutations proposed by AI
coding agents before they land.

It wires into the agent's hook system, evaluates every proposed write or
edit against a set of prioritized checks (secrets, versioned-file names,
sensitive paths, custom patterns), and blocks, warns, or allows. The
engine fails open: infrastructure trouble never stops a mutation, only a
healthy check saying block does.`,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if os.Getenv("NO_COLOR") != "" {
				globalFlags.NoColor = true
			}

			if os.Getenv("BULWARK_NO_COLOR") != "" {
				globalFlags.NoColor = true
			}

			setupInternalLogger()

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "increase output verbosity")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Format, "format", "", "output format: table, json, jsonl")

	rootCmd.AddCommand(
		NewHookCmd(),
		NewEvalCmd(),
		NewChecksCmd(),
		NewHistoryCmd(),
		NewInstallCmd(),
		NewUninstallCmd(),
		NewStatusCmd(),
		NewDoctorCmd(),
		NewConfigCmd(),
		NewVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := NewRootCmd().Execute()
	if err == nil {
		return ExitSuccess
	}

	var coder ExitCoder
	if errors.As(err, &coder) {
		if msg := coder.Message(); msg != "" {
			fmt.Fprint(os.Stderr, msg)
		}
		return coder.ExitCode()
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return ExitGeneral
}

// setupInternalLogger sets up the DRY logger.
func setupInternalLogger() {
	// Always skip the stdout logger: hook invocations speak an exit-code
	// protocol and the other commands render through the TUI.
	_ = os.Setenv("APP_LOG_SKIP_STDOUT_LOGGER", "true")

	log.Init("bulwark", "cli")
}

// loadApp loads configuration and builds the presenter for a command.
// An unreadable or invalid config file is a hard error here; only the
// hook command tolerates one.
func loadApp(cmd *cobra.Command) (*App, error) {
	cfg, err := config.Load(globalFlags.ConfigPath)
	if err != nil {
		return nil, ErrConfig("failed to load configuration", err)
	}

	if globalFlags.NoColor {
		cfg.Display.Colors = config.ColorNever
	}

	format, err := tui.ParseFormat(globalFlags.Format)
	if err != nil {
		return nil, err
	}

	presenter := tui.NewPresenter(format, tui.PresenterOptions{
		Writer:    cmd.OutOrStdout(),
		UseColors: cfg.ShouldUseColors(),
		Verbose:   globalFlags.Verbose,
	})

	return &App{
		Config:    cfg,
		Presenter: presenter,
		Paths:     config.ResolvePaths(),
	}, nil
}
