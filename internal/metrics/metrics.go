// Package metrics exposes Prometheus collectors for the catalog service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouteKey is the echo context key under which a handler stores a finer
// route label than the registered echo path.
const RouteKey = "metrics.route"

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	storeMutationsTotal        *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codex_http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "codex_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"method", "route"},
		)

		storeMutationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codex_store_mutations_total",
				Help: "Total number of entry store mutations, labeled by kind and result.",
			},
			[]string{"kind", "result"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveStoreMutation counts an upsert or delete and whether it succeeded.
func ObserveStoreMutation(kind string, err error) {
	Init()
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeMutationsTotal.WithLabelValues(kind, result).Inc()
}

// Middleware records request count and latency for every request.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if httpErr, ok := err.(*echo.HTTPError); ok {
					status = httpErr.Code
				}
			}
			ObserveHTTPRequest(c.Request().Method, routeLabel(c), status, time.Since(start))
			return err
		}
	}
}

// routeLabel prefers the label set under RouteKey over the echo route path.
func routeLabel(c echo.Context) string {
	if route, ok := c.Get(RouteKey).(string); ok && route != "" {
		return route
	}
	return c.Path()
}
