package session

import (
	"context"
	"sync"

	"storefront/internal/storage"
	"storefront/internal/upstream"
)

// Manager hands out one Store per session ID, restoring persisted identity
// on first access.
type Manager struct {
	store  storage.Store
	client *upstream.Client

	mu       sync.Mutex
	sessions map[string]*Store
}

// NewManager creates an empty session manager.
func NewManager(store storage.Store, client *upstream.Client) *Manager {
	return &Manager{
		store:    store,
		client:   client,
		sessions: make(map[string]*Store),
	}
}

// Get returns the session's store, creating and restoring it on first use.
func (m *Manager) Get(ctx context.Context, sid string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sid]; ok {
		return s
	}

	s := NewStore(sid, m.store, m.client)
	s.Restore(ctx)
	m.sessions[sid] = s
	return s
}
