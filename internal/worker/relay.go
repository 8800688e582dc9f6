// Package worker runs the background event relay: cart and checkout events
// are queued from the request path and drained to the broker without
// blocking request handling.
package worker

import (
	"context"
	"time"

	"storefront/internal/broker"
	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventRelay decouples in-process cart events from Kafka latency. Events are
// dropped when the queue is full rather than stalling a mutation.
type EventRelay struct {
	publisher *broker.EventPublisher
	queue     chan relayItem
	done      chan struct{}
	logger    *zap.Logger
}

type relayItem struct {
	key   string
	event interface{}
}

// NewEventRelay creates a relay with the given queue capacity.
func NewEventRelay(publisher *broker.EventPublisher, capacity int) *EventRelay {
	return &EventRelay{
		publisher: publisher,
		queue:     make(chan relayItem, capacity),
		done:      make(chan struct{}),
		logger:    util.GetLogger(),
	}
}

// CartListener returns a cart.Listener that converts engine events into
// analytics payloads and enqueues them.
func (r *EventRelay) CartListener() cart.Listener {
	return func(ev cart.Event) {
		base := models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: ev.Type,
			Timestamp: time.Now(),
		}

		switch ev.Type {
		case models.EventTypeCartLineAdded:
			r.Enqueue(ev.SessionID, &models.CartLineAddedEvent{
				BaseEvent: base,
				SessionID: ev.SessionID,
				ProductID: ev.Line.ProductID,
				Quantity:  ev.Line.Quantity,
				NewLine:   ev.NewLine,
			})
		case models.EventTypeCartLineRemoved:
			r.Enqueue(ev.SessionID, &models.CartLineRemovedEvent{
				BaseEvent: base,
				SessionID: ev.SessionID,
				ProductID: ev.Line.ProductID,
			})
		case models.EventTypeCartCleared:
			r.Enqueue(ev.SessionID, &models.CartClearedEvent{
				BaseEvent: base,
				SessionID: ev.SessionID,
			})
		}
	}
}

// Enqueue queues an event for publishing. Never blocks; the event is dropped
// when the queue is full.
func (r *EventRelay) Enqueue(key string, event interface{}) {
	if !r.publisher.Enabled() {
		return
	}
	select {
	case r.queue <- relayItem{key: key, event: event}:
	default:
		r.logger.Warn("Event relay queue full, dropping event",
			zap.String("key", key))
	}
}

// Start drains the queue until the context is cancelled.
func (r *EventRelay) Start(ctx context.Context) {
	defer close(r.done)

	for {
		select {
		case <-ctx.Done():
			return
		case item := <-r.queue:
			publishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := r.publisher.Publish(publishCtx, item.key, item.event); err != nil {
				r.logger.Error("Failed to publish event", zap.Error(err))
			}
			cancel()
		}
	}
}

// Stop waits for the relay loop to exit after its context is cancelled.
func (r *EventRelay) Stop() {
	<-r.done
}
