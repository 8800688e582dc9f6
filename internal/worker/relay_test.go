package worker

import (
	"context"
	"testing"
	"time"

	"storefront/internal/broker"
	"storefront/internal/cart"
	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRelayStopsAfterCancel(t *testing.T) {
	relay := NewEventRelay(broker.NewEventPublisher(nil), 4)

	ctx, cancel := context.WithCancel(context.Background())
	go relay.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		relay.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after context cancel")
	}
}

func TestEnqueueIsNoOpWhenPublishingDisabled(t *testing.T) {
	relay := NewEventRelay(broker.NewEventPublisher(nil), 1)

	// Without a broker nothing is queued, so a burst larger than the queue
	// capacity must not block the caller.
	listener := relay.CartListener()
	for i := 0; i < 10; i++ {
		listener(cart.Event{
			Type:      models.EventTypeCartLineAdded,
			SessionID: "sid-1",
			Line:      models.CartLine{ProductID: 1, Quantity: 1},
			NewLine:   i == 0,
		})
	}

	assert.Empty(t, relay.queue)
}
