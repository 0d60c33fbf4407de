package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bulwarkhq/bulwark/journal"
	"github.com/bulwarkhq/bulwark/tui"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	var (
		limit   int
		since   string
		verdict string
		phase   string
		project string
		prune   bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled hook decisions",
		Long: `Show journaled hook decisions.

Queries the decision journal, newest first. Filters combine; --prune
deletes records older than the configured retention instead of listing.`,
		Example: `  bulwark history
  bulwark history --limit 50 --verdict block
  bulwark history --since 24h
  bulwark history --since 2026-08-01 --format jsonl
  bulwark history --prune`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			app, err := loadApp(cmd)
			if err != nil {
				return err
			}

			store, err := journal.NewSQLiteStore(app.Config.JournalPath())
			if err != nil {
				return ErrJournal("failed to open journal", err)
			}
			defer store.Close()

			if prune {
				cutoff, ok := journal.RetentionCutoff(time.Now(), app.Config.Journal.RetentionDays)
				if !ok {
					return app.Presenter.RenderMessage("Retention is disabled; nothing to prune.")
				}
				n, err := store.Prune(ctx, cutoff)
				if err != nil {
					return ErrJournal("failed to prune journal", err)
				}
				return app.Presenter.RenderMessage(
					fmt.Sprintf("Pruned %d records older than %s.", n, cutoff.Format("2006-01-02")))
			}

			filter := journal.Filter{
				Limit:   limit,
				Verdict: verdict,
				Phase:   phase,
				Project: project,
			}
			if since != "" {
				t, err := parseSince(since)
				if err != nil {
					return fmt.Errorf("invalid --since value %q: %w", since, err)
				}
				filter.Since = &t
			}

			records, err := store.Query(ctx, filter)
			if err != nil {
				return ErrJournal("failed to query journal", err)
			}

			countFilter := filter
			countFilter.Limit = 0
			countFilter.Offset = 0
			total, err := store.Count(ctx, countFilter)
			if err != nil {
				return ErrJournal("failed to count journal records", err)
			}

			view := &tui.HistoryView{Total: total}
			for _, rec := range records {
				view.Records = append(view.Records, recordView(rec))
			}

			return app.Presenter.RenderHistory(view)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum records")
	cmd.Flags().StringVar(&since, "since", "", "show decisions since (e.g. \"1h\", \"2d\", \"2026-08-01\")")
	cmd.Flags().StringVar(&verdict, "verdict", "", "filter by verdict: allow or block")
	cmd.Flags().StringVar(&phase, "phase", "", "filter by phase: pre or post")
	cmd.Flags().StringVar(&project, "project", "", "filter by detected project name")
	cmd.Flags().BoolVar(&prune, "prune", false, "delete records older than the configured retention")

	return cmd
}

// recordView converts a journal record into its display form.
func recordView(rec *journal.Record) tui.RecordView {
	return tui.RecordView{
		ID:         rec.ID.String(),
		ShortID:    tui.FormatShortID(rec.ID.String()),
		Timestamp:  rec.Timestamp,
		Phase:      rec.Phase,
		ToolName:   rec.ToolName,
		Path:       rec.Path,
		Verdict:    rec.Verdict,
		Triggering: rec.Triggering,
		Message:    rec.Message,
		Fallback:   rec.Fallback,
		Elapsed:    rec.Elapsed,
		Project:    rec.Project,
	}
}

// parseSince parses a relative duration like "1h", "2d", "1w", or an
// absolute date.
func parseSince(s string) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().Add(-d), nil
	}

	if len(s) > 1 {
		var unit time.Duration
		switch s[len(s)-1] {
		case 'd':
			unit = 24 * time.Hour
		case 'w':
			unit = 7 * 24 * time.Hour
		}
		if unit > 0 {
			if n, err := strconv.Atoi(s[:len(s)-1]); err == nil && n >= 0 {
				return time.Now().Add(-time.Duration(n) * unit), nil
			}
		}
	}

	layouts := []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("not a duration or date")
}
