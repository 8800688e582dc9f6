package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getCart(c *gin.Context) {
	sid := sessionID(c)
	eng := h.carts.Get(c.Request.Context(), sid)

	c.JSON(http.StatusOK, gin.H{
		"lines": eng.Lines(),
		"count": eng.Count(),
		"total": eng.Total(),
		"open":  h.panel.IsOpen(sid),
	})
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	product, ok := h.catalog.Product(req.ProductID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	sid := sessionID(c)
	eng := h.carts.Get(c.Request.Context(), sid)
	eng.Add(c.Request.Context(), product)

	c.JSON(http.StatusOK, gin.H{
		"lines": eng.Lines(),
		"count": eng.Count(),
		"total": eng.Total(),
		"open":  h.panel.IsOpen(sid),
	})
}

type adjustItemRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func (h *Handler) adjustCartItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req adjustItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.Delta != 1 && req.Delta != -1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Delta must be +1 or -1"})
		return
	}

	eng := h.carts.Get(c.Request.Context(), sessionID(c))
	eng.AdjustQuantity(c.Request.Context(), id, req.Delta)

	c.JSON(http.StatusOK, gin.H{
		"lines": eng.Lines(),
		"count": eng.Count(),
		"total": eng.Total(),
	})
}

func (h *Handler) removeCartItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	eng := h.carts.Get(c.Request.Context(), sessionID(c))
	eng.Remove(c.Request.Context(), id)

	c.JSON(http.StatusOK, gin.H{
		"lines": eng.Lines(),
		"count": eng.Count(),
		"total": eng.Total(),
	})
}

func (h *Handler) clearCart(c *gin.Context) {
	eng := h.carts.Get(c.Request.Context(), sessionID(c))
	eng.Clear(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *Handler) openCart(c *gin.Context) {
	h.panel.Open(sessionID(c))
	c.Status(http.StatusNoContent)
}

func (h *Handler) closeCart(c *gin.Context) {
	h.panel.Close(sessionID(c))
	c.Status(http.StatusNoContent)
}
