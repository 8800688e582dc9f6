package cart

import (
	"context"
	"sync"

	"storefront/internal/storage"
)

// Manager hands out one Engine per session ID, restoring persisted state on
// first access. Deduplicating by session ID keeps concurrent browsing
// contexts on the same cart copy.
type Manager struct {
	store     storage.Store
	listeners []Listener

	mu      sync.Mutex
	engines map[string]*Engine
}

// NewManager creates an empty manager backed by the given store.
func NewManager(store storage.Store) *Manager {
	return &Manager{
		store:   store,
		engines: make(map[string]*Engine),
	}
}

// Subscribe registers a listener attached to every engine, existing and
// future. Must be called before engines are handed out.
func (m *Manager) Subscribe(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listeners = append(m.listeners, l)
	for _, e := range m.engines {
		e.Subscribe(l)
	}
}

// Get returns the session's engine, creating and restoring it on first use.
func (m *Manager) Get(ctx context.Context, sid string) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.engines[sid]; ok {
		return e
	}

	e := NewEngine(sid, m.store)
	for _, l := range m.listeners {
		e.Subscribe(l)
	}
	e.Restore(ctx)
	m.engines[sid] = e
	return e
}
