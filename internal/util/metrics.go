package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart mutations",
	}, []string{"op"})

	CartPersistFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Total number of failed cart persistence writes",
	})

	CheckoutAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Total number of checkout submissions attempted",
	})

	CheckoutSucceededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_succeeded_total",
		Help: "Total number of checkouts that produced a payment URL",
	})

	CheckoutFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failed_total",
		Help: "Total number of failed checkout submissions",
	}, []string{"reason"})

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_latency_seconds",
		Help:    "Latency of checkout submissions to the upstream backend",
		Buckets: prometheus.DefBuckets,
	})

	CatalogLoadFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_load_failures_total",
		Help: "Total number of failed catalog fetches",
	}, []string{"resource"})

	CatalogLoadLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_load_latency_seconds",
		Help:    "Latency of the catalog load",
		Buckets: prometheus.DefBuckets,
	})

	SessionLoginsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_logins_total",
		Help: "Total number of successful logins",
	})

	SessionRestoresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_restores_total",
		Help: "Total number of session restores",
	}, []string{"result"})

	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Latency of calls to the commerce backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
