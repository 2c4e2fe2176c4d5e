// Package sponsor implements CRUD over the ordered sponsor list persisted in
// the shared store. Each Repository models one open view: it loads a snapshot
// when constructed, mutates that in-memory view, and persists the whole list
// on every mutation. Two repositories writing concurrently are not merged;
// the later write replaces the earlier one.
package sponsor

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"weather-dashboard/internal/domain"
	"weather-dashboard/internal/storage"
)

type Repository struct {
	store storage.Store

	mu      sync.Mutex
	records []domain.SponsorRecord
}

// NewRepository creates a repository seeded with the current stored list.
// Corrupt or absent stored data seeds an empty list.
func NewRepository(ctx context.Context, store storage.Store) *Repository {
	r := &Repository{store: store}
	r.records = r.load(ctx)
	return r
}

// List re-reads the stored list, refreshes the in-memory view and returns it.
// Corrupt data or a wrong shape reads as an empty list, never an error.
func (r *Repository) List(ctx context.Context) []domain.SponsorRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = r.load(ctx)
	return copyRecords(r.records)
}

// Create validates the record, appends it to the current view and persists
// the whole list. Nothing is written when validation fails.
func (r *Repository) Create(ctx context.Context, rec domain.SponsorRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := append(copyRecords(r.records), rec)
	if err := r.persist(ctx, next); err != nil {
		return err
	}
	r.records = next
	return nil
}

// Update replaces the record at index and persists the whole list.
func (r *Repository) Update(ctx context.Context, index int, rec domain.SponsorRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.records) {
		return domain.ErrIndexOutOfRange
	}

	next := copyRecords(r.records)
	next[index] = rec
	if err := r.persist(ctx, next); err != nil {
		return err
	}
	r.records = next
	return nil
}

// Delete removes the record at index, shifting subsequent indices down by
// one, and persists the whole list.
func (r *Repository) Delete(ctx context.Context, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.records) {
		return domain.ErrIndexOutOfRange
	}

	next := copyRecords(r.records)
	next = append(next[:index], next[index+1:]...)
	if err := r.persist(ctx, next); err != nil {
		return err
	}
	r.records = next
	return nil
}

// Get returns the record at index from the current view.
func (r *Repository) Get(ctx context.Context, index int) (domain.SponsorRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.records) {
		return domain.SponsorRecord{}, domain.ErrIndexOutOfRange
	}
	return r.records[index], nil
}

func (r *Repository) load(ctx context.Context) []domain.SponsorRecord {
	raw, ok, err := r.store.Read(ctx, storage.SponsorsKey)
	if err != nil {
		slog.Warn("sponsor list read failed, treating as empty",
			slog.String("error", err.Error()))
		return []domain.SponsorRecord{}
	}
	if !ok {
		return []domain.SponsorRecord{}
	}

	var records []domain.SponsorRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		slog.Warn("corrupt sponsor list, treating as empty",
			slog.String("error", err.Error()))
		return []domain.SponsorRecord{}
	}
	if records == nil {
		records = []domain.SponsorRecord{}
	}
	return records
}

func (r *Repository) persist(ctx context.Context, records []domain.SponsorRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return r.store.Write(ctx, storage.SponsorsKey, string(raw))
}

func copyRecords(records []domain.SponsorRecord) []domain.SponsorRecord {
	out := make([]domain.SponsorRecord, len(records))
	copy(out, records)
	return out
}
