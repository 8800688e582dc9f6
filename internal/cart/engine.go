// Package cart implements the per-session shopping cart: an ordered line
// list with quantity invariants, persisted to the client-state store after
// every mutation.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"storefront/internal/models"
	"storefront/internal/storage"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// Event describes a cart mutation for subscribers (panel state, analytics
// relay). Adding an item is an event rather than a UI flag so the engine
// stays presentation-agnostic.
type Event struct {
	Type      string
	SessionID string
	Line      models.CartLine
	NewLine   bool
}

// Listener receives cart events. Listeners are invoked synchronously after
// the mutation commits and must not block.
type Listener func(Event)

// Engine holds one session's cart. All operations are safe for concurrent
// use; two tabs sharing a session cookie share one Engine.
type Engine struct {
	sid       string
	store     storage.Store
	logger    *zap.Logger
	listeners []Listener

	mu    sync.Mutex
	lines []models.CartLine
}

// NewEngine creates an empty cart for the session.
func NewEngine(sid string, store storage.Store) *Engine {
	return &Engine{
		sid:    sid,
		store:  store,
		logger: util.GetLogger(),
	}
}

// Subscribe registers a listener for cart events.
func (e *Engine) Subscribe(l Listener) {
	e.listeners = append(e.listeners, l)
}

// Restore loads the persisted line list. Absent or malformed data yields an
// empty cart, never an error; a malformed record is deleted.
func (e *Engine) Restore(ctx context.Context) {
	raw, err := e.store.Get(ctx, storage.CartKey(e.sid))
	if err != nil {
		return
	}

	var lines []models.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		e.logger.Warn("Discarding malformed persisted cart",
			zap.String("session_id", e.sid),
			zap.Error(err))
		_ = e.store.Del(ctx, storage.CartKey(e.sid))
		return
	}

	e.mu.Lock()
	e.lines = lines
	e.mu.Unlock()
}

// Add puts one unit of the product in the cart. An existing line has its
// quantity incremented; at most one line ever exists per product ID.
func (e *Engine) Add(ctx context.Context, p models.Product) {
	e.mu.Lock()

	var line models.CartLine
	newLine := true
	for i := range e.lines {
		if e.lines[i].ProductID == p.ID {
			e.lines[i].Quantity++
			line = e.lines[i]
			newLine = false
			break
		}
	}
	if newLine {
		line = models.CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Quantity:  1,
		}
		e.lines = append(e.lines, line)
	}

	e.persistLocked(ctx)
	e.mu.Unlock()

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	e.emit(Event{Type: models.EventTypeCartLineAdded, SessionID: e.sid, Line: line, NewLine: newLine})
}

// Remove deletes the line entirely, regardless of quantity.
func (e *Engine) Remove(ctx context.Context, productID int64) {
	e.mu.Lock()

	removed := false
	var line models.CartLine
	for i := range e.lines {
		if e.lines[i].ProductID == productID {
			line = e.lines[i]
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		e.persistLocked(ctx)
	}
	e.mu.Unlock()

	if removed {
		util.CartMutationsTotal.WithLabelValues("remove").Inc()
		e.emit(Event{Type: models.EventTypeCartLineRemoved, SessionID: e.sid, Line: line})
	}
}

// AdjustQuantity changes a line's quantity by delta (+1 or -1), clamped at a
// floor of 1. Decrementing a line at quantity 1 is a no-op; only Remove
// deletes a line. Unknown product IDs are ignored.
func (e *Engine) AdjustQuantity(ctx context.Context, productID int64, delta int) {
	if delta != 1 && delta != -1 {
		return
	}

	e.mu.Lock()
	changed := false
	for i := range e.lines {
		if e.lines[i].ProductID != productID {
			continue
		}
		next := e.lines[i].Quantity + delta
		if next < 1 {
			next = 1
		}
		if next != e.lines[i].Quantity {
			e.lines[i].Quantity = next
			changed = true
		}
		break
	}
	if changed {
		e.persistLocked(ctx)
	}
	e.mu.Unlock()

	if changed {
		util.CartMutationsTotal.WithLabelValues("adjust").Inc()
	}
}

// Clear empties the cart. Used after a successful checkout.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	e.lines = nil
	e.persistLocked(ctx)
	e.mu.Unlock()

	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	e.emit(Event{Type: models.EventTypeCartCleared, SessionID: e.sid})
}

// Lines returns the cart lines in insertion order.
func (e *Engine) Lines() []models.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.CartLine, len(e.lines))
	copy(out, e.lines)
	return out
}

// Total is the monetary total in centavos, recomputed from the lines on
// every call.
func (e *Engine) Total() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	var total int64
	for _, l := range e.lines {
		total += l.Subtotal()
	}
	return total
}

// Count is the sum of quantities, used for the badge indicator.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	var count int
	for _, l := range e.lines {
		count += l.Quantity
	}
	return count
}

// persistLocked writes the full line list to the store. A write failure is
// logged; the in-memory mutation stands.
func (e *Engine) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(e.lines)
	if err != nil {
		e.logger.Error("Failed to serialize cart", zap.String("session_id", e.sid), zap.Error(err))
		return
	}
	if err := e.store.Set(ctx, storage.CartKey(e.sid), string(raw)); err != nil {
		util.CartPersistFailuresTotal.Inc()
		e.logger.Error("Failed to persist cart", zap.String("session_id", e.sid), zap.Error(err))
	}
}

func (e *Engine) emit(ev Event) {
	for _, l := range e.listeners {
		l(ev)
	}
}
