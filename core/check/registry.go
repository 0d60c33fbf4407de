package check

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the set of declared checks. It is populated at startup and
// treated as read-only afterwards; All returns checks in ascending ID order
// so every consumer sees the same deterministic sequence.
type Registry struct {
	mu      sync.RWMutex
	byID    map[string]Check
	ordered []Check
}

// NewRegistry creates an empty check registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]Check),
	}
}

// Register adds a check to the registry. It fails on a nil check, an
// invalid descriptor, or a duplicate ID.
func (r *Registry) Register(c Check) error {
	if c == nil {
		return fmt.Errorf("cannot register nil check")
	}

	desc := c.Descriptor()
	if err := desc.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[desc.ID]; exists {
		return fmt.Errorf("check %q is already registered", desc.ID)
	}

	r.byID[desc.ID] = c
	r.ordered = append(r.ordered, c)
	sort.Slice(r.ordered, func(i, j int) bool {
		return r.ordered[i].Descriptor().ID < r.ordered[j].Descriptor().ID
	})

	return nil
}

// MustRegister is Register for startup wiring; it panics on error.
func (r *Registry) MustRegister(c Check) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// All returns every registered check in ascending ID order.
func (r *Registry) All() []Check {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Check, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Get returns the check with the given ID.
func (r *Registry) Get(id string) (Check, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	return c, ok
}

// Len returns the number of registered checks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byID)
}
