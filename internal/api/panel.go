package api

import (
	"sync"

	"storefront/internal/cart"
	"storefront/internal/models"
)

// panelState tracks the cart sidebar open/closed flag per session. It is
// presentation state, kept out of the cart engine: the engine emits a
// line-added event and this subscriber opens the panel for immediate
// feedback.
type panelState struct {
	mu   sync.Mutex
	open map[string]bool
}

func newPanelState() *panelState {
	return &panelState{open: make(map[string]bool)}
}

func (p *panelState) cartListener() cart.Listener {
	return func(ev cart.Event) {
		if ev.Type == models.EventTypeCartLineAdded {
			p.Open(ev.SessionID)
		}
	}
}

func (p *panelState) Open(sid string) {
	p.mu.Lock()
	p.open[sid] = true
	p.mu.Unlock()
}

func (p *panelState) Close(sid string) {
	p.mu.Lock()
	delete(p.open, sid)
	p.mu.Unlock()
}

func (p *panelState) IsOpen(sid string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open[sid]
}
