package models

import "time"

// Event types emitted to the analytics stream
const (
	EventTypeCartLineAdded     = "CART_LINE_ADDED"
	EventTypeCartLineRemoved   = "CART_LINE_REMOVED"
	EventTypeCartCleared       = "CART_CLEARED"
	EventTypeCheckoutSucceeded = "CHECKOUT_SUCCEEDED"
	EventTypeCheckoutFailed    = "CHECKOUT_FAILED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CartLineAddedEvent published when a product is added to a cart
type CartLineAddedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	NewLine   bool   `json:"new_line"`
}

// CartLineRemovedEvent published when a line is removed from a cart
type CartLineRemovedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	ProductID int64  `json:"product_id"`
}

// CartClearedEvent published when a cart is emptied
type CartClearedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

// CheckoutSucceededEvent published when the backend returned a payment URL
type CheckoutSucceededEvent struct {
	BaseEvent
	SessionID     string `json:"session_id"`
	UserID        int64  `json:"user_id"`
	Total         int64  `json:"total"`
	PaymentMethod string `json:"payment_method"`
}

// CheckoutFailedEvent published when a checkout submission was rejected
type CheckoutFailedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}
