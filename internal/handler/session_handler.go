package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"weather-dashboard/internal/domain"
	"weather-dashboard/internal/session"
	"weather-dashboard/internal/view"
)

// SessionHandler handles admin session endpoints
type SessionHandler struct {
	login    *view.Login
	sessions *session.Manager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(login *view.Login, sessions *session.Manager) *SessionHandler {
	return &SessionHandler{
		login:    login,
		sessions: sessions,
	}
}

// LoginRequest represents login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse represents the current session state
type SessionResponse struct {
	Authenticated bool `json:"authenticated"`
}

// Login handles admin login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := h.login.Submit(r.Context(), req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, view.ErrMissingCredentials):
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		case errors.Is(err, domain.ErrInvalidCredentials):
			http.Error(w, `{"error":"Invalid username or password"}`, http.StatusUnauthorized)
		default:
			http.Error(w, `{"error":"Failed to login"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// Logout handles admin logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		http.Error(w, `{"error":"Failed to logout"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// State reports whether a valid admin session exists
func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	resp := SessionResponse{
		Authenticated: h.sessions.IsAuthenticated(r.Context()),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
