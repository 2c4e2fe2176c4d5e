package view

import (
	"context"
	"errors"
	"strings"
	"sync"

	"weather-dashboard/internal/session"
)

// ErrMissingCredentials rejects a submission with an empty field before the
// session manager is consulted.
var ErrMissingCredentials = errors.New("please enter both username and password")

// Login drives the login form. On a failed attempt the held password is
// cleared while the username is retained for the next try.
type Login struct {
	sessions *session.Manager

	mu       sync.Mutex
	username string
	password string
}

func NewLogin(sessions *session.Manager) *Login {
	return &Login{sessions: sessions}
}

// Submit attempts a login with the given form fields.
func (l *Login) Submit(ctx context.Context, username, password string) error {
	l.mu.Lock()
	l.username = username
	l.password = password
	l.mu.Unlock()

	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return ErrMissingCredentials
	}

	if _, err := l.sessions.Login(ctx, username, password); err != nil {
		l.mu.Lock()
		l.password = ""
		l.mu.Unlock()
		return err
	}

	l.mu.Lock()
	l.username = ""
	l.password = ""
	l.mu.Unlock()
	return nil
}

// Form returns the held form fields.
func (l *Login) Form() (username, password string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.username, l.password
}

// Authenticated reports whether a valid session already exists, so the view
// can skip the form entirely.
func (l *Login) Authenticated(ctx context.Context) bool {
	return l.sessions.IsAuthenticated(ctx)
}
