// Package notifier converges open views after external store mutations. It
// subscribes to the two tracked keys on the store port; when another view (or
// process) writes one of them, it re-reads the fresh state through the owning
// component and pushes it to every registered subscriber. Writes made through
// this view never arrive here; their callers update themselves at the call
// site.
package notifier

import (
	"context"
	"sync"

	"weather-dashboard/internal/domain"
	"weather-dashboard/internal/session"
	"weather-dashboard/internal/sponsor"
	"weather-dashboard/internal/storage"
)

type Notifier struct {
	store    storage.Store
	sessions *session.Manager
	sponsors *sponsor.Repository

	mu          sync.Mutex
	sponsorSubs map[int]func([]domain.SponsorRecord)
	sessionSubs map[int]func(bool)
	nextID      int
	cancels     []func()
}

func New(store storage.Store, sessions *session.Manager, sponsors *sponsor.Repository) *Notifier {
	return &Notifier{
		store:       store,
		sessions:    sessions,
		sponsors:    sponsors,
		sponsorSubs: make(map[int]func([]domain.SponsorRecord)),
		sessionSubs: make(map[int]func(bool)),
	}
}

// Start registers with the store for the two tracked keys. Changes to any
// other key are never delivered.
func (n *Notifier) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancels = append(n.cancels,
		n.store.Subscribe(storage.SponsorsKey, n.onSponsorsChanged),
		n.store.Subscribe(storage.SessionKey, n.onSessionChanged),
	)
}

// Stop cancels the store subscriptions.
func (n *Notifier) Stop() {
	n.mu.Lock()
	cancels := n.cancels
	n.cancels = nil
	n.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// SubscribeSponsors registers fn to receive the fresh sponsor list after an
// external change. The returned function cancels the subscription.
func (n *Notifier) SubscribeSponsors(fn func([]domain.SponsorRecord)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.sponsorSubs[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.sponsorSubs, id)
	}
}

// SubscribeSession registers fn to receive the fresh authentication state
// after an external change to the session record.
func (n *Notifier) SubscribeSession(fn func(bool)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.sessionSubs[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.sessionSubs, id)
	}
}

func (n *Notifier) onSponsorsChanged() {
	list := n.sponsors.List(context.Background())

	n.mu.Lock()
	subs := make([]func([]domain.SponsorRecord), 0, len(n.sponsorSubs))
	for _, fn := range n.sponsorSubs {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	for _, fn := range subs {
		fn(list)
	}
}

func (n *Notifier) onSessionChanged() {
	authenticated := n.sessions.IsAuthenticated(context.Background())

	n.mu.Lock()
	subs := make([]func(bool), 0, len(n.sessionSubs))
	for _, fn := range n.sessionSubs {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	for _, fn := range subs {
		fn(authenticated)
	}
}
