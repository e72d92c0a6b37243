package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/localeroute/pkg/router"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "localeroute").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "localeroute",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors for route resolution, view
// loading and the HTTP host. It implements router.Observer and
// views.Observer.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	resolutionsTotal *prometheus.CounterVec
	viewLoadsTotal   *prometheus.CounterVec
	viewLoadDuration prometheus.Histogram
	viewCacheHits    prometheus.Counter
	wsConnections    prometheus.Gauge
	wsErrors         *prometheus.CounterVec
	reloadsTotal     *prometheus.CounterVec
}

// NewMetrics registers the collectors.
//
// Metrics collected:
//   - localeroute_http_requests_total: requests by route pattern, method and status
//   - localeroute_http_request_duration_seconds: request duration by route pattern
//   - localeroute_resolutions_total: resolutions by outcome and language
//   - localeroute_view_loads_total: view loader calls by result
//   - localeroute_view_load_duration_seconds: view loader duration
//   - localeroute_view_cache_hits_total: loads served from the cache
//   - localeroute_websocket_connections: open soft-navigation connections
//   - localeroute_websocket_errors_total: WebSocket errors by type
//   - localeroute_route_reloads_total: route tree reloads by result
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "method", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		resolutionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resolutions_total",
			Help:        "Total number of path resolutions by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome", "lang"}),

		viewLoadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "view_loads_total",
			Help:        "Total number of view loader calls",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		viewLoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "view_load_duration_seconds",
			Help:        "View loader duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		viewCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "view_cache_hits_total",
			Help:        "Total number of view loads served from the cache",
			ConstLabels: config.ConstLabels,
		}),

		wsConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_connections",
			Help:        "Number of open soft-navigation WebSocket connections",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		reloadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_reloads_total",
			Help:        "Total number of route tree reloads",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),
	}
}

// Handler records request count and duration, labelled by the chi route
// pattern to keep cardinality bounded.
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
	})
}

// ObserveResolution implements router.Observer.
func (m *Metrics) ObserveResolution(outcome router.Outcome, lang string) {
	if lang == "" {
		lang = "none"
	}
	m.resolutionsTotal.WithLabelValues(outcome.String(), lang).Inc()
}

// ObserveCacheHit implements views.Observer.
func (m *Metrics) ObserveCacheHit(string) {
	m.viewCacheHits.Inc()
}

// ObserveLoad implements views.Observer.
func (m *Metrics) ObserveLoad(_ string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.viewLoadsTotal.WithLabelValues(result).Inc()
	m.viewLoadDuration.Observe(d.Seconds())
}

// RecordWebSocketConnect records a new soft-navigation connection.
func (m *Metrics) RecordWebSocketConnect() {
	m.wsConnections.Inc()
}

// RecordWebSocketDisconnect records a closed soft-navigation connection.
func (m *Metrics) RecordWebSocketDisconnect() {
	m.wsConnections.Dec()
}

// RecordWebSocketError records a WebSocket error.
func (m *Metrics) RecordWebSocketError(errorType string) {
	m.wsErrors.WithLabelValues(errorType).Inc()
}

// RecordReload records a route tree reload attempt.
func (m *Metrics) RecordReload(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.reloadsTotal.WithLabelValues(result).Inc()
}

// routePattern returns the matched chi pattern, or "unmatched".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
