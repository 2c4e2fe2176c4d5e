package middleware

import (
	"net/http"

	"weather-dashboard/internal/session"
)

// Auth rejects requests unless a valid admin session exists in the store.
// The session is a shared presence marker, not a per-request credential, so
// there is no token to extract from the request itself.
func Auth(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.IsAuthenticated(r.Context()) {
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
