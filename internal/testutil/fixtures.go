package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"weather-dashboard/internal/domain"
	"weather-dashboard/internal/storage"
)

// Counter for generating unique fixture names
var idCounter atomic.Int64

func nextName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, idCounter.Add(1))
}

// SponsorOptions allows customizing sponsor fixture creation
type SponsorOptions struct {
	Name string
	Logo string
	Link string
}

// NewTestSponsor creates a sponsor record with sensible defaults
// Pass options to override specific fields
func NewTestSponsor(opts ...func(*SponsorOptions)) domain.SponsorRecord {
	name := nextName("sponsor")
	o := &SponsorOptions{
		Name: name,
		Logo: "https://cdn.example.com/" + name + ".png",
		Link: "https://" + name + ".example.com",
	}

	for _, opt := range opts {
		opt(o)
	}

	return domain.SponsorRecord{
		Name: o.Name,
		Logo: o.Logo,
		Link: o.Link,
	}
}

// Sponsor option functions

// WithSponsorName sets the sponsor name
func WithSponsorName(name string) func(*SponsorOptions) {
	return func(o *SponsorOptions) {
		o.Name = name
	}
}

// WithSponsorLogo sets the sponsor logo URL
func WithSponsorLogo(logo string) func(*SponsorOptions) {
	return func(o *SponsorOptions) {
		o.Logo = logo
	}
}

// WithSponsorLink sets the sponsor link URL
func WithSponsorLink(link string) func(*SponsorOptions) {
	return func(o *SponsorOptions) {
		o.Link = link
	}
}

// NewTestSponsors creates multiple test sponsors
func NewTestSponsors(count int) []domain.SponsorRecord {
	sponsors := make([]domain.SponsorRecord, count)
	for i := 0; i < count; i++ {
		sponsors[i] = NewTestSponsor()
	}
	return sponsors
}

// SessionRecordOptions allows customizing session fixture creation
type SessionRecordOptions struct {
	Token      string
	Expiration int64
}

// NewTestSessionRecord creates a session record with sensible defaults
func NewTestSessionRecord(opts ...func(*SessionRecordOptions)) domain.Session {
	o := &SessionRecordOptions{
		Token:      nextName("token"),
		Expiration: time.Now().Add(24 * time.Hour).UnixMilli(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return domain.Session{
		Token:      o.Token,
		Expiration: o.Expiration,
	}
}

// Session option functions

// WithToken sets the session token
func WithToken(token string) func(*SessionRecordOptions) {
	return func(o *SessionRecordOptions) {
		o.Token = token
	}
}

// WithExpiration sets the session expiration in milliseconds since epoch
func WithExpiration(ms int64) func(*SessionRecordOptions) {
	return func(o *SessionRecordOptions) {
		o.Expiration = ms
	}
}

// WithExpired creates an already expired session
func WithExpired() func(*SessionRecordOptions) {
	return func(o *SessionRecordOptions) {
		o.Expiration = time.Now().Add(-1 * time.Hour).UnixMilli()
	}
}

// Store seeding helpers

// SeedSponsors writes a sponsor list under the shared sponsors key
func SeedSponsors(t *testing.T, store storage.Store, sponsors []domain.SponsorRecord) {
	t.Helper()
	raw, err := json.Marshal(sponsors)
	if err != nil {
		t.Fatalf("failed to marshal sponsor fixtures: %v", err)
	}
	if err := store.Write(context.Background(), storage.SponsorsKey, string(raw)); err != nil {
		t.Fatalf("failed to seed sponsors: %v", err)
	}
}

// SeedSession writes a session record under the shared session key
func SeedSession(t *testing.T, store storage.Store, session domain.Session) {
	t.Helper()
	raw, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("failed to marshal session fixture: %v", err)
	}
	if err := store.Write(context.Background(), storage.SessionKey, string(raw)); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
}

// ResetIDCounter resets the fixture counter (useful for deterministic tests)
func ResetIDCounter() {
	idCounter.Store(0)
}
