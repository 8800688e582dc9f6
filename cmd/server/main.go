package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/internal/api"
	"storefront/internal/broker"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/redisclient"
	"storefront/internal/session"
	"storefront/internal/storage"
	"storefront/internal/upstream"
	"storefront/internal/util"
	"storefront/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront service")

	tp, err := util.InitTracer("storefront", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	// Durable client-state store: Redis when configured, otherwise an
	// in-process store that does not survive restarts.
	var store storage.Store
	if cfg.Redis.Addr != "" {
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		store = redisClient
		log.Println("Redis connected")
	} else {
		store = storage.NewMemoryStore()
		log.Println("No Redis configured, using in-memory client state")
	}

	var producer *broker.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		defer producer.Close()
		log.Println("Kafka producer initialized")
	}
	eventPublisher := broker.NewEventPublisher(producer)

	client := upstream.NewClient(cfg.Upstream.APIURL)
	catalogCache := catalog.NewCache(client, cfg.Upstream.AssetURL)
	cartManager := cart.NewManager(store)
	sessionManager := session.NewManager(store, client)
	orchestrator := checkout.NewOrchestrator(
		client,
		store,
		eventPublisher,
		cfg.Checkout.PixDiscountPercent,
		cfg.Checkout.MaxInstallments,
		cfg.Checkout.AccountRoute,
	)

	relayCtx, relayCancel := context.WithCancel(context.Background())
	defer relayCancel()

	relay := worker.NewEventRelay(eventPublisher, 256)
	cartManager.Subscribe(relay.CartListener())
	go relay.Start(relayCtx)

	// The catalog is fetched once per process; the API serves whatever is
	// loaded so startup is not blocked on the backend.
	go catalogCache.Load(context.Background())

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(
		catalogCache,
		sessionManager,
		cartManager,
		orchestrator,
		client,
		cfg.Catalog.FeaturedCount,
	)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	relayCancel()
	relay.Stop()

	log.Println("Server exited")
}
