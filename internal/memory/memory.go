// Package memory provides process-local implementations of the
// repository interfaces, used for ":memory:" configurations and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rpggio/taskdesk/internal/domain/activity"
)

// Slot is an in-memory key-value store.
type Slot struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewSlot creates an empty Slot.
func NewSlot() *Slot {
	return &Slot{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *Slot) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *Slot) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete removes key.
func (s *Slot) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// ActivityRepository keeps activity entries in memory.
type ActivityRepository struct {
	mu      sync.Mutex
	entries []activity.ActivityEntry
	nextID  int64
}

// NewActivityRepository creates an empty ActivityRepository.
func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{}
}

// Log appends entry and assigns its ID.
func (r *ActivityRepository) Log(_ context.Context, entry *activity.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	entry.ID = r.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

// List returns matching entries, newest first.
func (r *ActivityRepository) List(_ context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []activity.ActivityEntry
	for _, e := range r.entries {
		if opts.SubjectID != nil && (e.SubjectID == nil || *e.SubjectID != *opts.SubjectID) {
			continue
		}
		if opts.ActivityType != nil && e.ActivityType != *opts.ActivityType {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}
