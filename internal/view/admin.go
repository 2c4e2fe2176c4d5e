// Package view holds the controllers behind the dashboard's three views:
// the admin sponsor manager, the login form, and the public sponsor strip.
// Controllers own transient UI state (edit mode, held form fields) that is
// distinct from persisted data.
package view

import (
	"context"
	"sync"

	"weather-dashboard/internal/domain"
	"weather-dashboard/internal/sponsor"
)

// Admin drives the sponsor management view. Edit mode is positional: it
// tracks an index into the sponsor list, so a delete at or before that index
// invalidates the edit in progress.
type Admin struct {
	sponsors *sponsor.Repository

	mu      sync.Mutex
	editing *int
	form    domain.SponsorRecord
}

func NewAdmin(sponsors *sponsor.Repository) *Admin {
	return &Admin{sponsors: sponsors}
}

// BeginEdit enters edit mode for the record at index and pre-fills the form
// with it.
func (a *Admin) BeginEdit(ctx context.Context, index int) (domain.SponsorRecord, error) {
	rec, err := a.sponsors.Get(ctx, index)
	if err != nil {
		return domain.SponsorRecord{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	idx := index
	a.editing = &idx
	a.form = rec
	return rec, nil
}

// CancelEdit leaves edit mode and clears the form.
func (a *Admin) CancelEdit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clearEditLocked()
}

// Editing returns the index being edited, if any.
func (a *Admin) Editing() (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.editing == nil {
		return 0, false
	}
	return *a.editing, true
}

// Form returns the currently held form contents.
func (a *Admin) Form() domain.SponsorRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.form
}

// Submit creates a new record in add mode or replaces the edited record in
// edit mode. A successful edit submission leaves edit mode; a rejected one
// keeps it so the operator can correct the form.
func (a *Admin) Submit(ctx context.Context, rec domain.SponsorRecord) error {
	a.mu.Lock()
	editing := a.editing
	a.mu.Unlock()

	if editing == nil {
		return a.sponsors.Create(ctx, rec)
	}

	if err := a.sponsors.Update(ctx, *editing, rec); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.clearEditLocked()
	return nil
}

// Delete removes the record at index. When the edit in progress points at
// the deleted record, or at any record whose position shifted down as a
// result, edit mode is cancelled and the form cleared.
func (a *Admin) Delete(ctx context.Context, index int) error {
	if err := a.sponsors.Delete(ctx, index); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.editing != nil && *a.editing >= index {
		a.clearEditLocked()
	}
	return nil
}

// Sponsors returns the current list for rendering.
func (a *Admin) Sponsors(ctx context.Context) []domain.SponsorRecord {
	return a.sponsors.List(ctx)
}

func (a *Admin) clearEditLocked() {
	a.editing = nil
	a.form = domain.SponsorRecord{}
}
