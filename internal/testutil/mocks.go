// Package testutil provides shared test utilities, mocks, and fixtures
// for testing the weather dashboard application.
package testutil

import (
	"context"
	"errors"
	"sync"
)

// Common test errors
var (
	ErrMockNotImplemented = errors.New("mock function not implemented")
	ErrMockFailure        = errors.New("mock: simulated failure")
)

// MockStore implements storage.Store for testing
type MockStore struct {
	mu sync.RWMutex

	// Function overrides - set these to customize behavior
	ReadFunc   func(ctx context.Context, key string) (string, bool, error)
	WriteFunc  func(ctx context.Context, key, value string) error
	RemoveFunc func(ctx context.Context, key string) error

	// In-memory storage for simple tests
	Values map[string]string

	nextID int
	subs   map[string]map[int]func()
}

// NewMockStore creates a new MockStore with initialized maps
func NewMockStore() *MockStore {
	return &MockStore{
		Values: make(map[string]string),
		subs:   make(map[string]map[int]func()),
	}
}

func (m *MockStore) Read(ctx context.Context, key string) (string, bool, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.Values[key]
	return value, ok, nil
}

func (m *MockStore) Write(ctx context.Context, key, value string) error {
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Values == nil {
		m.Values = make(map[string]string)
	}
	m.Values[key] = value
	return nil
}

func (m *MockStore) Remove(ctx context.Context, key string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Values, key)
	return nil
}

func (m *MockStore) Subscribe(key string, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subs == nil {
		m.subs = make(map[string]map[int]func())
	}
	id := m.nextID
	m.nextID++
	if m.subs[key] == nil {
		m.subs[key] = make(map[int]func())
	}
	m.subs[key][id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs[key], id)
	}
}

// FireSubscribers invokes every subscriber registered for key, simulating an
// external mutation of the shared store.
func (m *MockStore) FireSubscribers(key string) {
	m.mu.RLock()
	fns := make([]func(), 0, len(m.subs[key]))
	for _, fn := range m.subs[key] {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// MockBroadcaster records hub broadcasts for testing
type MockBroadcaster struct {
	mu sync.Mutex

	// Call tracking
	Broadcasts []BroadcastCall
}

// BroadcastCall records a call to Broadcast
type BroadcastCall struct {
	Topic   string
	Payload []byte
}

// NewMockBroadcaster creates a new MockBroadcaster
func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{
		Broadcasts: make([]BroadcastCall, 0),
	}
}

func (m *MockBroadcaster) Broadcast(topic string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Broadcasts = append(m.Broadcasts, BroadcastCall{Topic: topic, Payload: payload})
}

// GetBroadcasts returns all recorded broadcast calls
func (m *MockBroadcaster) GetBroadcasts() []BroadcastCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]BroadcastCall{}, m.Broadcasts...)
}

// Reset clears all recorded calls
func (m *MockBroadcaster) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Broadcasts = make([]BroadcastCall, 0)
}
