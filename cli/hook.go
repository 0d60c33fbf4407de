package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/safedep/dry/log"
	"github.com/spf13/cobra"

	"github.com/bulwarkhq/bulwark/config"
	"github.com/bulwarkhq/bulwark/core/check"
	"github.com/bulwarkhq/bulwark/core/engine"
	"github.com/bulwarkhq/bulwark/journal"
)

// NewHookCmd creates the internal _hook command: the process boundary the
// host invokes for every proposed mutation. The contract is exit-code
// based: 0 allows, 2 blocks with the decision message on stderr. Every
// internal failure fails open to 0; only a healthy check saying block
// produces 2.
func NewHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "_hook <pre|post>",
		Short:  "Internal command invoked by host hooks",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHook(cmd, args[0])
		},
	}

	return cmd
}

func runHook(cmd *cobra.Command, phaseArg string) error {
	ctx := context.Background()

	phase, err := check.ParsePhase(phaseArg)
	if err != nil {
		log.Warnf("hook invoked with unknown phase %q, allowing", phaseArg)
		return nil
	}

	cfg, err := config.Load(globalFlags.ConfigPath)
	if err != nil {
		log.Warnf("hook config load failed, using defaults: %v", err)
		cfg = config.Default()
	}

	rawData, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		log.Warnf("hook stdin read failed, allowing: %v", err)
		return nil
	}

	var ec check.Context
	if err := json.Unmarshal(rawData, &ec); err != nil {
		log.Warnf("hook input parse failed, allowing: %v", err)
		return nil
	}
	// The wired hook command is authoritative for the phase; the payload
	// field is informational.
	ec.Phase = phase

	eng, err := buildEngine(cfg)
	if err != nil {
		log.Warnf("hook engine setup failed, allowing: %v", err)
		return nil
	}

	dec := eng.Evaluate(ctx, &ec)

	journalDecision(ctx, cfg, &ec, dec)

	if !dec.Allowed() {
		fmt.Fprintln(cmd.ErrOrStderr(), dec.Reason())
		return ExitWithCode(ExitBlock)
	}

	if advisory := dec.AdvisoryText(); advisory != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), advisory)
	}

	return nil
}

// journalDecision records the decision, best effort. The journal is never
// allowed to change a verdict: every failure here is logged and dropped.
func journalDecision(ctx context.Context, cfg *config.Config, ec *check.Context, dec *engine.Decision) {
	if !cfg.Journal.Enabled {
		return
	}

	store, err := journal.NewSQLiteStore(cfg.JournalPath())
	if err != nil {
		log.Warnf("journal open failed, decision not recorded: %v", err)
		return
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warnf("journal close failed: %v", err)
		}
	}()

	var project string
	if cwd, err := os.Getwd(); err == nil {
		project = journal.DetectProject(cwd)
	}

	if err := store.Save(ctx, journal.FromDecision(ec, dec, project)); err != nil {
		log.Warnf("journal write failed, decision not recorded: %v", err)
	}
}
