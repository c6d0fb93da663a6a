// Package metrics provides the Prometheus collectors for route registration
// and request-time outcomes.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Suhaibinator/SRegistrar/pkg/common"
	"github.com/Suhaibinator/SRegistrar/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures a Collector.
type Config struct {
	// Namespace prefixes every metric name. Defaults to "sregistrar".
	Namespace string

	// Buckets are the request duration histogram buckets.
	// Defaults to prometheus.DefBuckets.
	Buckets []float64

	// Registry receives the collectors. Defaults to a new private registry,
	// which is also what Handler serves.
	Registry *prometheus.Registry
}

// Collector holds the collectors shared by every route mounted on a router.
// All methods are safe on a nil *Collector, which records nothing.
type Collector struct {
	registry *prometheus.Registry

	routes         *prometheus.CounterVec
	stages         *prometheus.CounterVec
	authMethods    prometheus.Gauge
	validationFail *prometheus.CounterVec
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	inFlight       prometheus.Gauge
}

// New creates a Collector and registers its collectors.
func New(cfg Config) (*Collector, error) {
	if cfg.Namespace == "" {
		cfg.Namespace = "sregistrar"
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = prometheus.DefBuckets
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: cfg.Registry,
		routes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "routes_registered_total",
			Help:      "Number of routes registered, by HTTP method.",
		}, []string{"method"}),
		stages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "route_stages_total",
			Help:      "Number of registered routes whose pipeline includes a stage.",
		}, []string{"stage"}),
		authMethods: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "auth_methods",
			Help:      "Number of registered authentication methods.",
		}),
		validationFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "validation_failures_total",
			Help:      "Number of requests rejected by a validation stage.",
		}, []string{"stage", "route"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "http_requests_total",
			Help:      "Number of HTTP requests served, by route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   cfg.Buckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),
	}

	for _, collector := range []prometheus.Collector{
		c.routes, c.stages, c.authMethods, c.validationFail, c.requests, c.duration, c.inFlight,
	} {
		if err := cfg.Registry.Register(collector); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Registry returns the registry holding the collectors.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RouteRegistered records a mounted route and the names of its pipeline stages.
func (c *Collector) RouteRegistered(method string, stages []string) {
	if c == nil {
		return
	}
	c.routes.WithLabelValues(method).Inc()
	for _, stage := range stages {
		c.stages.WithLabelValues(stage).Inc()
	}
}

// AuthMethodRegistered records a newly registered authentication method.
func (c *Collector) AuthMethodRegistered() {
	if c == nil {
		return
	}
	c.authMethods.Inc()
}

// ValidationFailed records a request rejected by a validation stage.
func (c *Collector) ValidationFailed(stage, route string) {
	if c == nil {
		return
	}
	c.validationFail.WithLabelValues(stage, route).Inc()
}

// Middleware records count, status and latency of requests to route.
// It returns nil for a nil Collector.
func (c *Collector) Middleware(method, route string) common.Middleware {
	if c == nil {
		return nil
	}

	duration := c.duration.WithLabelValues(method, route)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.inFlight.Inc()
			defer c.inFlight.Dec()

			// Create a response writer wrapper to capture the status code
			rw := middleware.NewStatusRecorder(w)
			start := time.Now()

			next.ServeHTTP(rw, r)

			duration.Observe(time.Since(start).Seconds())
			c.requests.WithLabelValues(method, route, strconv.Itoa(rw.Status())).Inc()
		})
	}
}
