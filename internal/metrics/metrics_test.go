package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOperation("saveBook", OutcomeOK, 5*time.Millisecond)
	m.ObserveOperation("saveBook", OutcomeOK, 5*time.Millisecond)
	m.ObserveOperation("me", "UNAUTHENTICATED", time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("saveBook", OutcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("me", "UNAUTHENTICATED")), 0)
}

func TestObserveToken(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveToken(TokenValid)
	m.ObserveToken(TokenExpired)
	m.ObserveToken(TokenExpired)

	assert.InDelta(t, 1, testutil.ToFloat64(m.TokenVerificationsTotal.WithLabelValues(TokenValid)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.TokenVerificationsTotal.WithLabelValues(TokenExpired)), 0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveOperation("me", OutcomeOK, time.Millisecond)
		m.ObserveToken(TokenValid)
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	m.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	r.Handle("/metrics", m.Handler())

	for _, path := range []string{"/items/1", "/items/2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusAccepted, rec.Code)
	}

	assert.InDelta(t, 2, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/items/{id}", "202")), 0)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "bookshelf_http_requests_total")
	assert.Contains(t, string(body), "go_goroutines")
}
