// Package journal keeps a best-effort record of hook decisions for later
// inspection. It is never consulted during evaluation: a failed write is
// logged and dropped, and a missing journal never changes a verdict.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for persisting and querying decision
// records.
type Store interface {
	// Save persists one decision record.
	Save(ctx context.Context, rec *Record) error

	// Get retrieves a record by run ID. Returns nil when not found.
	Get(ctx context.Context, id uuid.UUID) (*Record, error)

	// Query retrieves records matching the filter, newest first.
	Query(ctx context.Context, filter Filter) ([]*Record, error)

	// Count returns the number of records matching the filter.
	Count(ctx context.Context, filter Filter) (int, error)

	// Prune deletes records older than the given time and reports how
	// many were removed.
	Prune(ctx context.Context, before time.Time) (int, error)

	// Close releases the store's resources.
	Close() error
}

// Filter narrows a journal query. Zero fields match everything.
type Filter struct {
	// Since keeps records at or after this time.
	Since *time.Time
	// Verdict keeps records with this verdict (allow or block).
	Verdict string
	// Phase keeps records from this phase (pre or post).
	Phase string
	// Project keeps records from this project.
	Project string
	// Limit bounds the result count. Zero means no limit.
	Limit int
	// Offset skips that many newest records.
	Offset int
}

// RetentionCutoff converts a retention policy in days to the prune
// cutoff time. Zero or negative days means keep everything.
func RetentionCutoff(now time.Time, retentionDays int) (time.Time, bool) {
	if retentionDays <= 0 {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -retentionDays), true
}
