package journal

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store in process memory. It is intended for tests
// and embedders that do not want a database on disk; records do not survive
// the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save persists one decision record.
func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil {
		return fmt.Errorf("record must not be nil")
	}
	if rec.ID == uuid.Nil {
		return fmt.Errorf("record id must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *rec
	s.records = append(s.records, &clone)
	return nil
}

// Get retrieves a record by run ID. Returns nil when not found.
func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.ID == id {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, nil
}

// Query retrieves records matching the filter, newest first.
func (s *MemoryStore) Query(ctx context.Context, filter Filter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Record
	for _, rec := range s.records {
		if matchesFilter(rec, filter) {
			clone := *rec
			matched = append(matched, &clone)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Count returns the number of records matching the filter.
func (s *MemoryStore) Count(ctx context.Context, filter Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, rec := range s.records {
		if matchesFilter(rec, filter) {
			count++
		}
	}
	return count, nil
}

// Prune deletes records older than the given time.
func (s *MemoryStore) Prune(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	deleted := 0
	for _, rec := range s.records {
		if rec.Timestamp.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept
	return deleted, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

func matchesFilter(rec *Record, filter Filter) bool {
	if filter.Since != nil && rec.Timestamp.Before(*filter.Since) {
		return false
	}
	if filter.Verdict != "" && rec.Verdict != filter.Verdict {
		return false
	}
	if filter.Phase != "" && rec.Phase != filter.Phase {
		return false
	}
	if filter.Project != "" && rec.Project != filter.Project {
		return false
	}
	return true
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
