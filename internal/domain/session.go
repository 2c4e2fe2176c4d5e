package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionNotFound    = errors.New("session not found")
)

// Session is the stored proof that the operator is authenticated. It is a
// presence marker with an absolute expiry, not a per-client credential.
// Expiration is milliseconds since epoch to stay wire-compatible with the
// records written by earlier releases.
type Session struct {
	Token      string `json:"token"`
	Expiration int64  `json:"expiration"`
}

// ExpiresAt returns the expiration as a time.Time.
func (s *Session) ExpiresAt() time.Time {
	return time.UnixMilli(s.Expiration)
}

// Valid reports whether the session is still live at the given instant.
// A session expiring exactly now is still valid.
func (s *Session) Valid(now time.Time) bool {
	return now.UnixMilli() <= s.Expiration
}
