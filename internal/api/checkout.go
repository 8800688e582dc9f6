package api

import (
	"errors"
	"net/http"

	"storefront/internal/checkout"
	"storefront/internal/upstream"

	"github.com/gin-gonic/gin"
)

func (h *Handler) estimateCheckout(c *gin.Context) {
	eng := h.carts.Get(c.Request.Context(), sessionID(c))

	est, err := h.checkout.Estimate(eng, c.Query("method"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown payment method"})
		return
	}
	c.JSON(http.StatusOK, est)
}

type submitRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// submitCheckout runs the order submission. The response tells the client
// where to go: the payment URL opens in a new browsing context while the
// current one navigates to the account view.
func (h *Handler) submitCheckout(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	sid := sessionID(c)
	sess := h.sessions.Get(c.Request.Context(), sid)
	eng := h.carts.Get(c.Request.Context(), sid)

	result, err := h.checkout.Submit(c.Request.Context(), sid, sess, eng, req.PaymentMethod)
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment_url": result.PaymentURL,
		"redirect_to": result.RedirectTo,
		"open_in_new_context": true,
	})
}

func (h *Handler) respondCheckoutError(c *gin.Context, err error) {
	var submitErr *checkout.SubmitError

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusConflict, gin.H{"error": "Cart is empty", "redirect": "/"})
	case errors.Is(err, checkout.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "redirect": "/login"})
	case errors.Is(err, checkout.ErrSessionExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired, log in again", "redirect": "/login"})
	case errors.Is(err, checkout.ErrInvalidMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown payment method"})
	case errors.Is(err, checkout.ErrAlreadyInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "Checkout already in progress"})
	case errors.As(err, &submitErr):
		status := http.StatusBadGateway
		var apiErr *upstream.APIError
		if errors.As(submitErr.Err, &apiErr) && apiErr.Status >= 400 && apiErr.Status <= 599 {
			status = apiErr.Status
		}
		c.JSON(status, gin.H{"error": submitErr.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Checkout failed"})
	}
}

func (h *Handler) listOrders(c *gin.Context) {
	sess := h.sessions.Get(c.Request.Context(), sessionID(c))
	user, ok := sess.User()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "redirect": "/login"})
		return
	}

	orders, err := h.client.Orders(c.Request.Context(), sess.Token(), user.ID)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}
