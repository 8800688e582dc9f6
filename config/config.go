package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Observ   ObservabilityConfig
	Checkout CheckoutConfig
	Catalog  CatalogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// UpstreamConfig points at the headless commerce backend. APIURL always ends
// in /api; AssetURL is the same host without the suffix and is used to
// resolve relative image paths.
type UpstreamConfig struct {
	APIURL   string
	AssetURL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers     []string
	TopicEvents string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

type CheckoutConfig struct {
	// PixDiscountPercent is display-only; the backend computes the
	// authoritative charge.
	PixDiscountPercent int
	MaxInstallments    int
	AccountRoute       string
}

type CatalogConfig struct {
	FeaturedCount int
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	pixDiscount, _ := strconv.Atoi(getEnv("CHECKOUT_PIX_DISCOUNT_PERCENT", "5"))
	installments, _ := strconv.Atoi(getEnv("CHECKOUT_MAX_INSTALLMENTS", "10"))
	featured, _ := strconv.Atoi(getEnv("CATALOG_FEATURED_COUNT", "4"))

	apiURL := NormalizeAPIURL(getEnv("UPSTREAM_API_URL", "http://127.0.0.1:1337"))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Upstream: UpstreamConfig{
			APIURL:   apiURL,
			AssetURL: strings.TrimSuffix(apiURL, "/api"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:     splitNonEmpty(getEnv("KAFKA_BROKERS", "")),
			TopicEvents: getEnv("KAFKA_TOPIC_STOREFRONT_EVENTS", "storefront-events"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
		Checkout: CheckoutConfig{
			PixDiscountPercent: pixDiscount,
			MaxInstallments:    installments,
			AccountRoute:       getEnv("CHECKOUT_ACCOUNT_ROUTE", "/account/orders"),
		},
		Catalog: CatalogConfig{
			FeaturedCount: featured,
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, upstream=%s", cfg.Server.Env, cfg.Server.Port, cfg.Upstream.APIURL)
	return cfg
}

// NormalizeAPIURL trims trailing slashes and guarantees the /api suffix the
// backend mounts its routes under.
func NormalizeAPIURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if !strings.HasSuffix(u, "/api") {
		u += "/api"
	}
	return u
}

func splitNonEmpty(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
