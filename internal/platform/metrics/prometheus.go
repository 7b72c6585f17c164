package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fwwzhai/thrifty-backend/internal/platform/logger"
)

// Manager holds the service's custom Prometheus metrics.
type Manager struct {
	Registry *prometheus.Registry

	OrdersPlacedTotal    prometheus.Counter
	OrderRacesLostTotal  prometheus.Counter
	FanoutFailuresTotal  *prometheus.CounterVec
	FollowSagaFailsTotal prometheus.Counter
	APIErrorsTotal       *prometheus.CounterVec
	APILatency           *prometheus.HistogramVec
}

func NewManager(namespace string) *Manager {
	registry := prometheus.NewRegistry()

	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Total number of listings sold through PlaceOrder.",
	})
	racesLost := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_races_lost_total",
		Help:      "PlaceOrder calls that lost the sold-transition race.",
	})
	fanoutFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_fanout_failures_total",
		Help:      "Fan-out steps that failed after retries, by step.",
	}, []string{"step"})
	followSagaFails := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "follow_saga_failures_total",
		Help:      "Follow/unfollow mirror writes abandoned after retries.",
	})
	apiErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_errors_total",
		Help:      "API errors by route and error type.",
	}, []string{"route", "error_type"})
	apiLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_latency_seconds",
		Help:      "Latency of API requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	registry.MustRegister(
		ordersPlaced,
		racesLost,
		fanoutFailures,
		followSagaFails,
		apiErrors,
		apiLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:             registry,
		OrdersPlacedTotal:    ordersPlaced,
		OrderRacesLostTotal:  racesLost,
		FanoutFailuresTotal:  fanoutFailures,
		FollowSagaFailsTotal: followSagaFails,
		APIErrorsTotal:       apiErrors,
		APILatency:           apiLatency,
	}
}

// StartServer exposes /metrics on its own port. Blocks like
// http.ListenAndServe.
func StartServer(port string, log logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		log.Info("metrics server port not configured, server will not start")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	log.Infof("metrics server starting on :%s", port)
	server := &http.Server{Addr: ":" + port, Handler: mux}
	return server.ListenAndServe()
}
