package broker

import (
	"context"

	"storefront/internal/models"
)

// EventPublisher publishes typed storefront events. A nil producer makes
// every publish a no-op, which is how the service runs when no Kafka brokers
// are configured.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a publisher over the given producer (may be nil).
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// Enabled reports whether events will actually be written anywhere.
func (ep *EventPublisher) Enabled() bool {
	return ep.producer != nil
}

// PublishCartLineAdded publishes a cart line-added event keyed by session.
func (ep *EventPublisher) PublishCartLineAdded(ctx context.Context, event *models.CartLineAddedEvent) error {
	return ep.Publish(ctx, event.SessionID, event)
}

// PublishCartLineRemoved publishes a cart line-removed event.
func (ep *EventPublisher) PublishCartLineRemoved(ctx context.Context, event *models.CartLineRemovedEvent) error {
	return ep.Publish(ctx, event.SessionID, event)
}

// PublishCartCleared publishes a cart-cleared event.
func (ep *EventPublisher) PublishCartCleared(ctx context.Context, event *models.CartClearedEvent) error {
	return ep.Publish(ctx, event.SessionID, event)
}

// PublishCheckoutSucceeded publishes a successful checkout event.
func (ep *EventPublisher) PublishCheckoutSucceeded(ctx context.Context, event *models.CheckoutSucceededEvent) error {
	return ep.Publish(ctx, event.SessionID, event)
}

// PublishCheckoutFailed publishes a failed checkout event.
func (ep *EventPublisher) PublishCheckoutFailed(ctx context.Context, event *models.CheckoutFailedEvent) error {
	return ep.Publish(ctx, event.SessionID, event)
}

// Publish publishes an arbitrary event payload under the given key.
func (ep *EventPublisher) Publish(ctx context.Context, key string, event interface{}) error {
	if ep.producer == nil {
		return nil
	}
	return ep.producer.PublishEvent(ctx, key, event)
}
