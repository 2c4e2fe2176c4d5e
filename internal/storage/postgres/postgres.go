// Package postgres implements the storage port on a single key-value table.
// Every server process opens its own Store; external mutations are observed
// through PostgreSQL LISTEN/NOTIFY (see listener.go), which stands in for the
// browser storage event of the original deployment.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"weather-dashboard/internal/observability"
	"weather-dashboard/internal/storage"

	"github.com/google/uuid"
)

// notifyChannel is the pg_notify channel carrying change events.
const notifyChannel = "kv_changes"

// changeEvent is the NOTIFY payload. Origin identifies the writing store so
// each store can drop notifications for its own writes.
type changeEvent struct {
	Key    string `json:"key"`
	Origin string `json:"origin"`
}

// Store implements storage.Store on PostgreSQL.
type Store struct {
	db         *sql.DB
	origin     string
	readStmt   *sql.Stmt
	writeStmt  *sql.Stmt
	removeStmt *sql.Stmt
	notifyStmt *sql.Stmt

	mu      sync.Mutex
	subs    map[string]map[int]func()
	nextSub int
}

var _ storage.Store = (*Store)(nil)

// EnsureSchema creates the key-value table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv_records (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure kv_records table: %w", err)
	}
	return nil
}

// NewStore creates a Store with prepared statements.
// Returns an error if statement preparation fails.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{
		db:     db,
		origin: uuid.New().String(),
		subs:   make(map[string]map[int]func()),
	}

	var err error
	s.readStmt, err = db.Prepare(`SELECT value FROM kv_records WHERE key = $1`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare read statement: %w", err)
	}

	s.writeStmt, err = db.Prepare(`
		INSERT INTO kv_records (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare write statement: %w", err)
	}

	s.removeStmt, err = db.Prepare(`DELETE FROM kv_records WHERE key = $1`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare remove statement: %w", err)
	}

	s.notifyStmt, err = db.Prepare(`SELECT pg_notify($1, $2)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare notify statement: %w", err)
	}

	return s, nil
}

// Origin returns the identity this store stamps on its change notifications.
func (s *Store) Origin() string {
	return s.origin
}

func (s *Store) Read(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	defer observeOp("read", key, start)

	var value string
	err := s.readStmt.QueryRowContext(ctx, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Write(ctx context.Context, key, value string) error {
	start := time.Now()
	defer observeOp("write", key, start)

	if _, err := s.writeStmt.ExecContext(ctx, key, value); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return s.notify(ctx, key)
}

func (s *Store) Remove(ctx context.Context, key string) error {
	start := time.Now()
	defer observeOp("remove", key, start)

	if _, err := s.removeStmt.ExecContext(ctx, key); err != nil {
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}
	return s.notify(ctx, key)
}

func (s *Store) Subscribe(key string, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs[key] == nil {
		s.subs[key] = make(map[int]func())
	}
	id := s.nextSub
	s.nextSub++
	s.subs[key][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[key], id)
	}
}

// notify publishes a change event for key. Peers listening on the channel
// re-read the fresh value; this store's listener drops its own origin.
func (s *Store) notify(ctx context.Context, key string) error {
	payload, err := json.Marshal(changeEvent{Key: key, Origin: s.origin})
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}
	if _, err := s.notifyStmt.ExecContext(ctx, notifyChannel, string(payload)); err != nil {
		return fmt.Errorf("failed to notify change on %q: %w", key, err)
	}
	return nil
}

// dispatch runs the subscribers registered for key.
func (s *Store) dispatch(key string) {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs[key]))
	for _, fn := range s.subs[key] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func observeOp(op, key string, start time.Time) {
	observability.StoreOperationDuration.WithLabelValues(op, key).
		Observe(time.Since(start).Seconds())
}
