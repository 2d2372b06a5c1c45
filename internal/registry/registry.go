// Package registry holds the in-memory birthday record set shared by the
// command router and the daily trigger, and writes every mutation through
// to a storage backend.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/tazhate/birthdaybot/internal/domain"
	"github.com/tazhate/birthdaybot/internal/storage"
)

// Registry is safe for concurrent use. At most one record exists per
// user; Add overwrites. Iteration order is registration order, which is
// what makes tie-breaking in the resolver deterministic.
type Registry struct {
	store storage.Store

	mu      sync.Mutex
	records map[string]domain.BirthdayRecord
	order   []string
}

// Load builds a Registry from the persisted record set. A single
// malformed entry fails the whole load with domain.ErrCorruptState; the
// caller treats that as fatal at startup.
func Load(store storage.Store) (*Registry, error) {
	raw, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptState, err)
	}

	r := &Registry{
		store:   store,
		records: make(map[string]domain.BirthdayRecord, len(raw)),
	}
	for _, rec := range raw {
		birth, err := time.Parse(storage.DateLayout, rec.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("%w: record %q has bad birth date %q", domain.ErrCorruptState, rec.UserID, rec.BirthDate)
		}
		if _, ok := r.records[rec.UserID]; !ok {
			r.order = append(r.order, rec.UserID)
		}
		r.records[rec.UserID] = domain.BirthdayRecord{
			UserID:      rec.UserID,
			DisplayName: rec.DisplayName,
			BirthDate:   birth,
		}
	}
	return r, nil
}

// Add registers rec, replacing any existing record for the same user,
// and persists the full set.
func (r *Registry) Add(rec domain.BirthdayRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[rec.UserID]; !ok {
		r.order = append(r.order, rec.UserID)
	}
	r.records[rec.UserID] = rec
	return r.persistLocked()
}

// Remove deletes the record for userID and persists the full set.
// Returns domain.ErrNotFound if no record exists.
func (r *Registry) Remove(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[userID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.records, userID)
	for i, id := range r.order {
		if id == userID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return r.persistLocked()
}

// All returns a snapshot of every record in registration order.
func (r *Registry) All() []domain.BirthdayRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.BirthdayRecord, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id])
	}
	return out
}

// Len returns the number of registered birthdays.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *Registry) persistLocked() error {
	raw := make([]storage.Record, 0, len(r.order))
	for _, id := range r.order {
		rec := r.records[id]
		raw = append(raw, storage.Record{
			UserID:      rec.UserID,
			DisplayName: rec.DisplayName,
			BirthDate:   rec.BirthDate.Format(storage.DateLayout),
		})
	}
	if err := r.store.Save(raw); err != nil {
		return fmt.Errorf("persist records: %w", err)
	}
	return nil
}
