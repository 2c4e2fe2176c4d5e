package handler

import (
	"net/http"

	"weather-dashboard/internal/session"
)

// Pages serves the dashboard views. The admin page requires a session and
// the login page skips itself when a session already exists; every unknown
// path falls back to the dashboard.
type Pages struct {
	sessions  *session.Manager
	staticDir string
}

// NewPages creates a page handler serving files from staticDir
func NewPages(sessions *session.Manager, staticDir string) *Pages {
	return &Pages{
		sessions:  sessions,
		staticDir: staticDir,
	}
}

// Dashboard serves the public dashboard page
func (p *Pages) Dashboard(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, p.staticDir+"/index.html")
}

// Admin serves the sponsor administration page
func (p *Pages) Admin(w http.ResponseWriter, r *http.Request) {
	if !p.sessions.IsAuthenticated(r.Context()) {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	http.ServeFile(w, r, p.staticDir+"/admin.html")
}

// Login serves the login page
func (p *Pages) Login(w http.ResponseWriter, r *http.Request) {
	if p.sessions.IsAuthenticated(r.Context()) {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}
	http.ServeFile(w, r, p.staticDir+"/login.html")
}

// NotFound redirects unknown paths to the dashboard
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}
