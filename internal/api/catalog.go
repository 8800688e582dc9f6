package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// listProducts serves the catalog, optionally filtered by ?category= or
// searched with ?q=.
func (h *Handler) listProducts(c *gin.Context) {
	if term := c.Query("q"); term != "" {
		c.JSON(http.StatusOK, gin.H{
			"loading": !h.catalog.Loaded(),
			"data":    h.catalog.Search(term),
		})
		return
	}
	if category := c.Query("category"); category != "" {
		c.JSON(http.StatusOK, gin.H{
			"loading": !h.catalog.Loaded(),
			"data":    h.catalog.ByCategory(category),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"loading": !h.catalog.Loaded(),
		"data":    h.catalog.Products(),
	})
}

func (h *Handler) featuredProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"loading": !h.catalog.Loaded(),
		"data":    h.catalog.Featured(h.featuredCount),
	})
}

func (h *Handler) getProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, ok := h.catalog.Product(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) listBanners(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"loading": !h.catalog.Loaded(),
		"data":    h.catalog.Banners(),
	})
}
