package session

import (
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long an idle session survives before its history is
// dropped.
const DefaultTTL = 30 * time.Minute

// Manager tracks per-session stores with idle expiry. Every access to a
// session refreshes its timer; an expired or unknown session transparently
// starts a fresh, empty history.
type Manager struct {
	stores *cache.Cache
	max    int
}

// NewManager builds a manager whose sessions expire after ttl of inactivity
// and whose stores hold at most maxRecords each. A non-positive ttl falls
// back to DefaultTTL; a non-positive maxRecords means unbounded.
func NewManager(ttl time.Duration, maxRecords int) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{stores: cache.New(ttl, ttl/2), max: maxRecords}
}

// NewSessionID mints a fresh opaque session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Get returns the store for id, creating one on first use. The session's
// idle timer is reset on every call.
func (m *Manager) Get(id string) *Store {
	if v, ok := m.stores.Get(id); ok {
		store := v.(*Store)
		m.stores.SetDefault(id, store)
		return store
	}
	store := NewStore(m.max)
	if err := m.stores.Add(id, store, cache.DefaultExpiration); err != nil {
		// Lost a create race; use the winner's store.
		if v, ok := m.stores.Get(id); ok {
			return v.(*Store)
		}
	}
	return store
}

// Reset drops the session's history. The next access starts fresh.
func (m *Manager) Reset(id string) {
	m.stores.Delete(id)
}

// Active reports the number of live sessions. The count may briefly include
// expired entries the janitor has not swept yet.
func (m *Manager) Active() int {
	return m.stores.ItemCount()
}
