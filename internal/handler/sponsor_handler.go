package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"weather-dashboard/internal/domain"
	"weather-dashboard/internal/sponsor"
	"weather-dashboard/internal/view"

	"github.com/go-chi/chi/v5"
)

// SponsorHandler handles sponsor CRUD endpoints
type SponsorHandler struct {
	admin    *view.Admin
	sponsors *sponsor.Repository
}

// NewSponsorHandler creates a new sponsor handler
func NewSponsorHandler(admin *view.Admin, sponsors *sponsor.Repository) *SponsorHandler {
	return &SponsorHandler{
		admin:    admin,
		sponsors: sponsors,
	}
}

// EditStateResponse represents the admin form state
type EditStateResponse struct {
	Editing bool                  `json:"editing"`
	Index   *int                  `json:"index,omitempty"`
	Form    *domain.SponsorRecord `json:"form,omitempty"`
}

// List retrieves all sponsors. Always an array, possibly empty.
func (h *SponsorHandler) List(w http.ResponseWriter, r *http.Request) {
	records := h.sponsors.List(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"sponsors": records,
	})
}

// Submit handles the admin form: appends a record, or replaces the record
// under edit when edit mode is active.
func (h *SponsorHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var rec domain.SponsorRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	_, wasEditing := h.admin.Editing()

	if err := h.admin.Submit(r.Context(), rec); err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyField):
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		case errors.Is(err, domain.ErrIndexOutOfRange):
			http.Error(w, `{"error":"Edited sponsor no longer exists"}`, http.StatusConflict)
		default:
			http.Error(w, `{"error":"Failed to save sponsor"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if !wasEditing {
		w.WriteHeader(http.StatusCreated)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"sponsors": h.sponsors.List(r.Context()),
	})
}

// Update replaces the sponsor at the given position
func (h *SponsorHandler) Update(w http.ResponseWriter, r *http.Request) {
	index, ok := parseIndex(w, r)
	if !ok {
		return
	}

	var rec domain.SponsorRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := h.sponsors.Update(r.Context(), index, rec); err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyField):
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		case errors.Is(err, domain.ErrIndexOutOfRange):
			http.Error(w, `{"error":"Sponsor not found"}`, http.StatusNotFound)
		default:
			http.Error(w, `{"error":"Failed to update sponsor"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// Delete removes the sponsor at the given position. Later records shift
// down, and an affected edit in progress is cancelled.
func (h *SponsorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	index, ok := parseIndex(w, r)
	if !ok {
		return
	}

	if err := h.admin.Delete(r.Context(), index); err != nil {
		switch {
		case errors.Is(err, domain.ErrIndexOutOfRange):
			http.Error(w, `{"error":"Sponsor not found"}`, http.StatusNotFound)
		default:
			http.Error(w, `{"error":"Failed to delete sponsor"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// BeginEdit enters edit mode for the sponsor at the given position and
// returns the pre-filled form
func (h *SponsorHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	index, ok := parseIndex(w, r)
	if !ok {
		return
	}

	form, err := h.admin.BeginEdit(r.Context(), index)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrIndexOutOfRange):
			http.Error(w, `{"error":"Sponsor not found"}`, http.StatusNotFound)
		default:
			http.Error(w, `{"error":"Failed to start edit"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(EditStateResponse{
		Editing: true,
		Index:   &index,
		Form:    &form,
	})
}

// EditState reports the current form state
func (h *SponsorHandler) EditState(w http.ResponseWriter, r *http.Request) {
	resp := EditStateResponse{}
	if index, editing := h.admin.Editing(); editing {
		form := h.admin.Form()
		resp.Editing = true
		resp.Index = &index
		resp.Form = &form
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CancelEdit leaves edit mode and clears the form
func (h *SponsorHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	h.admin.CancelEdit()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func parseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		http.Error(w, `{"error":"Invalid sponsor index"}`, http.StatusBadRequest)
		return 0, false
	}
	return index, true
}
