package postgres

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"weather-dashboard/internal/observability"

	"github.com/lib/pq"
)

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
)

// StartListener opens a dedicated LISTEN connection and dispatches change
// events for other origins to this store's subscribers. It blocks until the
// listener is registered, then consumes in a background goroutine until ctx
// is cancelled.
func (s *Store) StartListener(ctx context.Context, conninfo string) error {
	listener := pq.NewListener(conninfo, minReconnectInterval, maxReconnectInterval,
		func(event pq.ListenerEventType, err error) {
			if err != nil {
				slog.Error("kv listener event",
					slog.Int("event", int(event)),
					slog.String("error", err.Error()))
			}
		})

	if err := listener.Listen(notifyChannel); err != nil {
		listener.Close()
		return err
	}

	go s.consume(ctx, listener)
	return nil
}

func (s *Store) consume(ctx context.Context, listener *pq.Listener) {
	defer listener.Close()

	for {
		select {
		case <-ctx.Done():
			slog.Info("kv listener stopping")
			return

		case n := <-listener.Notify:
			// n is nil when the connection was re-established; peers may
			// have written in the gap, so re-read both tracked keys.
			if n == nil {
				slog.Warn("kv listener reconnected, refreshing subscribers")
				s.dispatchAll()
				continue
			}

			var ev changeEvent
			if err := json.Unmarshal([]byte(n.Extra), &ev); err != nil {
				slog.Warn("invalid change event payload",
					slog.String("payload", n.Extra),
					slog.String("error", err.Error()))
				continue
			}
			if ev.Origin == s.origin {
				continue
			}

			observability.StoreNotificationsTotal.WithLabelValues(ev.Key).Inc()
			s.dispatch(ev.Key)
		}
	}
}

// dispatchAll notifies subscribers of every tracked key.
func (s *Store) dispatchAll() {
	s.mu.Lock()
	keys := make([]string, 0, len(s.subs))
	for key := range s.subs {
		keys = append(keys, key)
	}
	s.mu.Unlock()

	for _, key := range keys {
		s.dispatch(key)
	}
}
