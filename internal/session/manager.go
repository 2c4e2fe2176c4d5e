// Package session manages the single operator session persisted in the
// shared store. The stored record is a presence marker with an absolute
// expiry; there is no per-client credential and no background expiry timer.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"weather-dashboard/internal/domain"
	"weather-dashboard/internal/storage"

	"github.com/google/uuid"
)

// DefaultTTL matches the 24h login window of the original dashboard.
const DefaultTTL = 24 * time.Hour

type Manager struct {
	store storage.Store
	auth  Authenticator
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(store storage.Store, auth Authenticator, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store: store,
		auth:  auth,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Login checks the credentials and, on success, writes a fresh session
// record. On mismatch nothing is written and ErrInvalidCredentials is
// returned.
func (m *Manager) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	if err := m.auth.Authenticate(username, password); err != nil {
		return nil, err
	}

	sess := &domain.Session{
		Token:      uuid.New().String(),
		Expiration: m.now().Add(m.ttl).UnixMilli(),
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := m.store.Write(ctx, storage.SessionKey, string(raw)); err != nil {
		return nil, err
	}
	return sess, nil
}

// IsAuthenticated reports whether a valid session record exists. An absent
// or corrupt record reads as logged out. An expired record is deleted on
// first observation (lazy expiry); later calls simply see it as absent.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	raw, ok, err := m.store.Read(ctx, storage.SessionKey)
	if err != nil {
		slog.Warn("session read failed, treating as logged out",
			slog.String("error", err.Error()))
		return false
	}
	if !ok {
		return false
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		slog.Warn("corrupt session record, treating as logged out",
			slog.String("error", err.Error()))
		return false
	}

	if !sess.Valid(m.now()) {
		if err := m.store.Remove(ctx, storage.SessionKey); err != nil {
			slog.Warn("failed to delete expired session",
				slog.String("error", err.Error()))
		}
		return false
	}
	return true
}

// Logout deletes the session record unconditionally.
func (m *Manager) Logout(ctx context.Context) error {
	return m.store.Remove(ctx, storage.SessionKey)
}
