package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"storefront/internal/models"
)

// CheckoutRequest is the order-creation payload: the cart snapshot, the
// owning user and the chosen payment method. The idempotency key travels in
// the Idempotency-Key header, not the body.
type CheckoutRequest struct {
	Cart           []models.CartLine `json:"cart"`
	UserID         int64             `json:"userId"`
	PaymentMethod  string            `json:"paymentMethod"`
	IdempotencyKey string            `json:"-"`
}

// CheckoutResponse carries the external payment page URL on success.
type CheckoutResponse struct {
	PaymentURL string `json:"paymentUrl"`
}

// Checkout submits the order via POST /orders/checkout with bearer auth.
func (c *Client) Checkout(ctx context.Context, token string, req CheckoutRequest) (*CheckoutResponse, error) {
	headers := map[string]string{}
	if req.IdempotencyKey != "" {
		headers["Idempotency-Key"] = req.IdempotencyKey
	}

	var resp CheckoutResponse
	if err := c.doJSON(ctx, http.MethodPost, "/orders/checkout", token, headers, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type orderEntry struct {
	ID        int64       `json:"id"`
	Status    string      `json:"status"`
	Total     json.Number `json:"total"`
	CreatedAt string      `json:"createdAt"`
}

type orderListEnvelope struct {
	Data []orderEntry `json:"data"`
}

// Orders lists the user's past orders, newest first.
func (c *Client) Orders(ctx context.Context, token string, userID int64) ([]models.OrderSummary, error) {
	path := fmt.Sprintf("/orders?filters[user][id][$eq]=%d&sort=createdAt:desc", userID)

	var env orderListEnvelope
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, nil, &env); err != nil {
		return nil, err
	}

	orders := make([]models.OrderSummary, 0, len(env.Data))
	for _, e := range env.Data {
		total, _ := e.Total.Float64()
		orders = append(orders, models.OrderSummary{
			ID:        e.ID,
			Status:    e.Status,
			Total:     toCentavos(total),
			CreatedAt: e.CreatedAt,
		})
	}
	return orders, nil
}

func toCentavos(v float64) int64 {
	if v < 0 {
		return int64(v*100 - 0.5)
	}
	return int64(v*100 + 0.5)
}
