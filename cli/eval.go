package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bulwarkhq/bulwark/core/check"
	"github.com/bulwarkhq/bulwark/core/engine"
	"github.com/bulwarkhq/bulwark/tui"
)

// evalInput holds the flag values describing the synthetic mutation.
type evalInput struct {
	phase       string
	tool        string
	path        string
	content     string
	contentFile string
	oldFile     string
	newFile     string
	prompt      string
}

// NewEvalCmd creates the eval command.
func NewEvalCmd() *cobra.Command {
	var in evalInput

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a synthetic mutation against the configured checks",
		Long: `Evaluate a synthetic mutation against the configured checks.

Builds a mutation context from flags, runs the full engine over it, and
renders the decision. Useful for testing configuration changes and custom
checks without a live agent. The exit code mirrors the hook contract:
0 for allow, 2 for block.`,
		Example: `  bulwark eval --path src/component_v2.tsx
  bulwark eval --path .env --tool Write
  bulwark eval --path main.go --content-file /tmp/proposed.go --verbose
  bulwark eval --phase post --path main.go --new-file /tmp/after.go`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}

			ec, err := in.toContext()
			if err != nil {
				return err
			}

			eng, err := buildEngine(app.Config)
			if err != nil {
				return ErrConfig("failed to assemble checks", err)
			}

			dec := eng.Evaluate(context.Background(), ec)

			if !globalFlags.Quiet {
				if err := app.Presenter.RenderDecision(decisionView(dec, ec)); err != nil {
					return err
				}
			}

			if !dec.Allowed() {
				return ExitWithCode(ExitBlock)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in.phase, "phase", "pre", "mutation phase: pre or post")
	cmd.Flags().StringVar(&in.tool, "tool", "Write", "tool name attempting the mutation")
	cmd.Flags().StringVar(&in.path, "path", "", "file path the mutation targets")
	cmd.Flags().StringVar(&in.content, "content", "", "proposed file content")
	cmd.Flags().StringVar(&in.contentFile, "content-file", "", "read proposed content from file")
	cmd.Flags().StringVar(&in.oldFile, "old-file", "", "read edit's before-content from file")
	cmd.Flags().StringVar(&in.newFile, "new-file", "", "read edit's after-content from file")
	cmd.Flags().StringVar(&in.prompt, "prompt", "", "user instruction that led to the mutation")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

// toContext builds the mutation context from the flag values.
func (in *evalInput) toContext() (*check.Context, error) {
	phase, err := check.ParsePhase(in.phase)
	if err != nil {
		return nil, err
	}

	ec := &check.Context{
		Phase:    phase,
		ToolName: in.tool,
		Path:     in.path,
		Content:  in.content,
		Prompt:   in.prompt,
	}

	if in.contentFile != "" {
		data, err := os.ReadFile(in.contentFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read content file: %w", err)
		}
		ec.Content = string(data)
	}
	if in.oldFile != "" {
		data, err := os.ReadFile(in.oldFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read old-content file: %w", err)
		}
		ec.OldContent = string(data)
	}
	if in.newFile != "" {
		data, err := os.ReadFile(in.newFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read new-content file: %w", err)
		}
		ec.NewContent = string(data)
	}

	return ec, nil
}

// decisionView converts a decision into its display form.
func decisionView(dec *engine.Decision, ec *check.Context) *tui.DecisionView {
	view := &tui.DecisionView{
		RunID:      dec.RunID.String(),
		Verdict:    dec.Verdict.String(),
		Triggering: dec.TriggeringID,
		Message:    dec.Message,
		Warnings:   dec.Warnings,
		Skipped:    dec.SkippedIDs,
		Fallback:   string(dec.Fallback),
		Bypassed:   dec.Bypassed,
		StartedAt:  dec.StartedAt,
		Elapsed:    dec.Elapsed,
	}

	for _, tr := range dec.Transitions {
		view.Transitions = append(view.Transitions,
			fmt.Sprintf("%s>%s: %s", tr.From, tr.To, tr.Reason))
	}

	for _, res := range dec.Results() {
		cv := tui.CheckResultView{
			ID:      res.CheckID,
			Status:  res.Status.String(),
			Message: res.Message,
			Elapsed: res.Elapsed,
		}
		if res.Failure.Failed() {
			cv.Failure = res.Failure.String()
		}
		view.Checks = append(view.Checks, cv)
	}

	view.Diffs = modificationDiffs(dec, ec)

	return view
}

// modificationDiffs renders the run's effective patches as unified
// diffs. The before-side is the proposed mutation content when the patch
// targets the mutated file, empty otherwise.
func modificationDiffs(dec *engine.Decision, ec *check.Context) []tui.DiffView {
	if len(dec.Modifications) == 0 {
		return nil
	}

	// The aggregator composes overlapping patches later-wins; credit each
	// surviving patch to the last check that proposed one for its target.
	winner := make(map[string]string)
	for _, res := range dec.Results() {
		if res.Patch != nil {
			winner[res.Patch.Target] = res.CheckID
		}
	}

	var diffs []tui.DiffView
	for _, patch := range dec.EffectivePatches() {
		var before string
		if ec != nil && patch.Target == ec.Path {
			before = ec.MutatedContent()
		}

		content := tui.UnifiedDiff(patch.Target, before, patch.NewContent)
		if content == "" {
			continue
		}

		diffs = append(diffs, tui.DiffView{
			Path:    patch.Target,
			CheckID: winner[patch.Target],
			Content: content,
		})
	}
	return diffs
}
