// Package metrics exposes Prometheus counters for the GraphQL surface and
// the token gate. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Token verification results.
const (
	TokenValid     = "valid"
	TokenMalformed = "malformed"
	TokenInvalid   = "invalid"
	TokenExpired   = "expired"
)

// OutcomeOK labels an operation that returned without error.
const OutcomeOK = "ok"

// Metrics holds all Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// GraphQL metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Auth metrics
	TokenVerificationsTotal *prometheus.CounterVec
}

// New creates and registers all metrics on registry, along with the
// standard Go runtime and process collectors.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookshelf_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bookshelf_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookshelf_graphql_operations_total",
				Help: "Total number of resolved GraphQL fields by outcome",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bookshelf_graphql_operation_duration_seconds",
				Help:    "GraphQL resolver duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		TokenVerificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookshelf_token_verifications_total",
				Help: "Total number of bearer tokens checked, by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.OperationsTotal,
		m.OperationDuration,
		m.TokenVerificationsTotal,
	)

	return m
}

// ObserveOperation records one resolver call. outcome is OutcomeOK or the
// error code returned to the client.
func (m *Metrics) ObserveOperation(operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveToken records the result of verifying a presented bearer token.
func (m *Metrics) ObserveToken(result string) {
	if m == nil {
		return
	}
	m.TokenVerificationsTotal.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware instruments HTTP requests. Requests are labeled with the chi
// route pattern rather than the raw path to keep label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
