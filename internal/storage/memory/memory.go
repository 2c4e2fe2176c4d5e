// Package memory provides an in-process storage backend. A Backend models the
// shared storage area; each handle opened from it models one view (a browser
// tab in the original deployment). Writes through one handle notify
// subscribers on every other handle, mirroring the browser storage event,
// which only fires in tabs other than the writer.
package memory

import (
	"context"
	"sync"

	"weather-dashboard/internal/storage"
)

// Backend is the shared value map plus the set of open handles.
type Backend struct {
	mu     sync.RWMutex
	values map[string]string
	stores map[*Store]struct{}
}

// NewBackend returns an empty shared backend.
func NewBackend() *Backend {
	return &Backend{
		values: make(map[string]string),
		stores: make(map[*Store]struct{}),
	}
}

// Open returns a new independent store handle attached to this backend.
func (b *Backend) Open() *Store {
	s := &Store{
		backend: b,
		subs:    make(map[string]map[int]func()),
	}
	b.mu.Lock()
	b.stores[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// notifyOthers runs the subscribers registered for key on every handle except
// the writer. Callbacks run synchronously on the writer's goroutine; they are
// expected to be short (the notifier re-reads and fans out on its own).
func (b *Backend) notifyOthers(origin *Store, key string) {
	b.mu.RLock()
	handles := make([]*Store, 0, len(b.stores))
	for s := range b.stores {
		if s != origin {
			handles = append(handles, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range handles {
		s.dispatch(key)
	}
}

// Store is one handle on the shared backend, implementing storage.Store.
type Store struct {
	backend *Backend
	mu      sync.Mutex
	subs    map[string]map[int]func()
	nextSub int
}

var _ storage.Store = (*Store)(nil)

func (s *Store) Read(ctx context.Context, key string) (string, bool, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()
	v, ok := s.backend.values[key]
	return v, ok, nil
}

func (s *Store) Write(ctx context.Context, key, value string) error {
	s.backend.mu.Lock()
	s.backend.values[key] = value
	s.backend.mu.Unlock()

	s.backend.notifyOthers(s, key)
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	s.backend.mu.Lock()
	delete(s.backend.values, key)
	s.backend.mu.Unlock()

	s.backend.notifyOthers(s, key)
	return nil
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

// Close detaches the handle from the backend. A closed handle no longer
// receives notifications for other handles' writes; its own reads and writes
// keep working against the shared values.
func (s *Store) Close() {
	s.backend.mu.Lock()
	delete(s.backend.stores, s)
	s.backend.mu.Unlock()
}

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
