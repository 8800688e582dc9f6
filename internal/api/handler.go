// Package api exposes the storefront over HTTP. Handlers are thin: state
// lives in the session, cart and checkout components.
package api

import (
	"net/http"
	"strconv"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/session"
	"storefront/internal/upstream"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionCookie = "storefront_sid"

// Handler contains the HTTP handlers and their collaborators.
type Handler struct {
	catalog       *catalog.Cache
	sessions      *session.Manager
	carts         *cart.Manager
	checkout      *checkout.Orchestrator
	client        *upstream.Client
	panel         *panelState
	featuredCount int
}

// NewHandler creates the HTTP handler set. The cart panel open/closed state
// subscribes to cart events so that adding an item opens the panel.
func NewHandler(
	cat *catalog.Cache,
	sessions *session.Manager,
	carts *cart.Manager,
	orch *checkout.Orchestrator,
	client *upstream.Client,
	featuredCount int,
) *Handler {
	h := &Handler{
		catalog:       cat,
		sessions:      sessions,
		carts:         carts,
		checkout:      orch,
		client:        client,
		panel:         newPanelState(),
		featuredCount: featuredCount,
	}
	carts.Subscribe(h.panel.cartListener())
	return h
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(h.sessionMiddleware())
	{
		catalogGroup := v1.Group("/catalog")
		{
			catalogGroup.GET("/products", h.listProducts)
			catalogGroup.GET("/products/featured", h.featuredProducts)
			catalogGroup.GET("/products/:id", h.getProduct)
			catalogGroup.GET("/banners", h.listBanners)
		}

		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.login)
			auth.POST("/register", h.register)
			auth.POST("/logout", h.logout)
			auth.GET("/me", h.me)
			auth.PUT("/profile", h.updateProfile)
			auth.GET("/email-confirmation", h.confirmEmail)
			auth.POST("/forgot-password", h.forgotPassword)
			auth.POST("/reset-password", h.resetPassword)
		}

		cartGroup := v1.Group("/cart")
		{
			cartGroup.GET("", h.getCart)
			cartGroup.POST("/items", h.addCartItem)
			cartGroup.PATCH("/items/:id", h.adjustCartItem)
			cartGroup.DELETE("/items/:id", h.removeCartItem)
			cartGroup.POST("/clear", h.clearCart)
			cartGroup.POST("/open", h.openCart)
			cartGroup.POST("/close", h.closeCart)
		}

		v1.GET("/checkout/estimate", h.estimateCheckout)
		v1.POST("/checkout", h.submitCheckout)
		v1.GET("/orders", h.listOrders)
	}
}

// sessionMiddleware issues the session cookie identifying the browsing
// context. Everything stateful is keyed by it.
func (h *Handler) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(sessionCookie)
		if err != nil || sid == "" {
			sid = uuid.New().String()
			c.SetCookie(sessionCookie, sid, 0, "/", "", false, true)
		}
		c.Set("sid", sid)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString("sid")
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready once the catalog load has completed.
func (h *Handler) readinessCheck(c *gin.Context) {
	if !h.catalog.Loaded() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "loading",
			"time":   time.Now().Unix(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
