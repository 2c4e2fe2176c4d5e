package view

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"weather-dashboard/internal/domain"
	"weather-dashboard/internal/notifier"
	"weather-dashboard/internal/sponsor"
	"weather-dashboard/internal/websocket"
)

// Broadcaster pushes rendered state to connected views.
type Broadcaster interface {
	Broadcast(topic string, payload []byte)
}

// Public drives the read-only sponsor strip. It follows the notifier for
// external changes and pushes the fresh rendering to every connected view.
type Public struct {
	sponsors *sponsor.Repository
	hub      Broadcaster

	mu      sync.Mutex
	current []domain.SponsorRecord
}

// NewPublic builds the controller with the current stored list and
// subscribes it to sponsor updates.
func NewPublic(ctx context.Context, sponsors *sponsor.Repository, n *notifier.Notifier, hub Broadcaster) *Public {
	p := &Public{
		sponsors: sponsors,
		hub:      hub,
		current:  sponsors.List(ctx),
	}
	n.SubscribeSponsors(p.onUpdate)
	return p
}

// Render returns the records to display, or nil when there are none (the
// sponsor strip renders nothing at all for an empty list).
func (p *Public) Render() []domain.SponsorRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.current) == 0 {
		return nil
	}
	return copyRecords(p.current)
}

func (p *Public) onUpdate(list []domain.SponsorRecord) {
	p.mu.Lock()
	p.current = list
	p.mu.Unlock()

	if p.hub == nil {
		return
	}
	payload, err := json.Marshal(list)
	if err != nil {
		slog.Error("failed to marshal sponsor list for push",
			slog.String("error", err.Error()))
		return
	}
	p.hub.Broadcast(websocket.TopicSponsors, payload)
}

func copyRecords(records []domain.SponsorRecord) []domain.SponsorRecord {
	out := make([]domain.SponsorRecord, len(records))
	copy(out, records)
	return out
}
