// Package storage defines the key-value store port that the session manager
// and sponsor repository persist through. Implementations hold raw serialized
// strings only; typed validation lives with the owning component.
package storage

import "context"

// Well-known keys. The names are carried over from the browser-resident
// releases so existing persisted records keep working.
const (
	SessionKey  = "weatherDashboardAdminLogin"
	SponsorsKey = "weatherDashboardSponsors"
)

// Store is a whole-value key-value store shared between every open view of
// the dashboard. Read reports absence via ok=false; a missing key is an
// expected state (first run), never an error.
//
// Subscribe registers fn to run when key is mutated EXTERNALLY, i.e. by a
// different store handle or a different process. A handle never observes its
// own writes through Subscribe; callers that write update their own state at
// the call site. The returned function cancels the subscription.
type Store interface {
	Read(ctx context.Context, key string) (value string, ok bool, err error)
	Write(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Subscribe(key string, fn func()) (cancel func())
}
