package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"weather-dashboard/internal/observability"
	"weather-dashboard/internal/storage"
)

// Relay wraps a Store and mirrors its mutations over the broker. Local writes
// are published as storage events; events from other instances wake this
// instance's subscribers so they re-read the shared state.
type Relay struct {
	inner  storage.Store
	rmq    *RabbitMQ
	origin string

	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func()
}

func NewRelay(inner storage.Store, rmq *RabbitMQ) *Relay {
	return &Relay{
		inner:  inner,
		rmq:    rmq,
		origin: uuid.New().String(),
		subs:   make(map[string]map[int]func()),
	}
}

// Origin identifies this relay in published events.
func (r *Relay) Origin() string {
	return r.origin
}

// Start consumes storage events until the context is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	msgs, err := r.rmq.consumeEvents()
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				slog.Info("stopping storage event relay")
				return
			case msg, ok := <-msgs:
				if !ok {
					slog.Warn("storage event channel closed")
					return
				}

				var ev StorageEvent
				if err := json.Unmarshal(msg.Body, &ev); err != nil {
					slog.Error("error unmarshaling storage event",
						slog.String("error", err.Error()),
						slog.String("body", string(msg.Body)))
					continue
				}

				r.handleEvent(ev)
			}
		}
	}()

	return nil
}

func (r *Relay) handleEvent(ev StorageEvent) {
	if ev.Origin == r.origin {
		return
	}

	observability.StoreNotificationsTotal.WithLabelValues(ev.Key).Inc()

	r.mu.Lock()
	fns := make([]func(), 0, len(r.subs[ev.Key]))
	for _, fn := range r.subs[ev.Key] {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (r *Relay) Read(ctx context.Context, key string) (string, bool, error) {
	return r.inner.Read(ctx, key)
}

func (r *Relay) Write(ctx context.Context, key, value string) error {
	if err := r.inner.Write(ctx, key, value); err != nil {
		return err
	}
	r.publish(ctx, key)
	return nil
}

func (r *Relay) Remove(ctx context.Context, key string) error {
	if err := r.inner.Remove(ctx, key); err != nil {
		return err
	}
	r.publish(ctx, key)
	return nil
}

// Subscribe fires for mutations made by other handles on the inner store and
// for events relayed from other instances. Never for this relay's own writes.
func (r *Relay) Subscribe(key string, fn func()) func() {
	innerCancel := r.inner.Subscribe(key, fn)

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	if r.subs[key] == nil {
		r.subs[key] = make(map[int]func())
	}
	r.subs[key][id] = fn
	r.mu.Unlock()

	return func() {
		innerCancel()
		r.mu.Lock()
		delete(r.subs[key], id)
		r.mu.Unlock()
	}
}

// publish is best effort. The local write already succeeded and other
// instances converge on their next read even if the event is lost.
func (r *Relay) publish(ctx context.Context, key string) {
	ev := &StorageEvent{
		Key:       key,
		Origin:    r.origin,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := r.rmq.PublishEvent(ctx, ev); err != nil {
		slog.Warn("failed to relay storage event",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}
