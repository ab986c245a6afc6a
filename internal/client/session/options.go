package session

import (
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/storage"
	"github.com/dmitrijs2005/gophsession/internal/client/users"
	"github.com/dmitrijs2005/gophsession/internal/logging"
)

// DefaultAccessTokenTTL keeps access tokens short-lived so refresh is
// exercised during normal use.
const DefaultAccessTokenTTL = 60 * time.Second

type Option func(*Manager)

// WithStore mirrors tokens and users into s. Defaults to a MemoryStore.
func WithStore(s storage.Store) Option {
	return func(m *Manager) { m.store = s }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithAccessTokenTTL sets the validity window of issued access tokens.
// Non-positive values are ignored.
func WithAccessTokenTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock replaces time.Now for token issuance.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithRegistry shares an existing registry instead of creating an empty one.
func WithRegistry(r *users.Registry) Option {
	return func(m *Manager) { m.registry = r }
}
