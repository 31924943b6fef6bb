package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	aperrors "github.com/vango-dev/assetpath/internal/errors"
	"github.com/vango-dev/assetpath/pkg/assets"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "assetpath").
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

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "assetpath",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics collects resolution and HTTP metrics. It implements
// assets.Observer. A registry can hold only one Metrics; create one per
// process and share it.
type Metrics struct {
	resolutionsTotal   *prometheus.CounterVec
	resolutionDuration *prometheus.HistogramVec
	expandedPaths      prometheus.Histogram
	errorsTotal        *prometheus.CounterVec
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	wsMessagesTotal    *prometheus.CounterVec
}

var _ assets.Observer = (*Metrics)(nil)

// NewMetrics registers the metrics with the configured registry.
//
// Metrics collected:
//   - assetpath_resolutions_total: Counter of resolutions by strategy
//   - assetpath_resolution_duration_seconds: Histogram of resolution time by strategy
//   - assetpath_resolution_paths: Histogram of paths returned per resolution
//   - assetpath_errors_total: Counter of rejected resolutions by error code
//   - assetpath_http_requests_total: Counter of HTTP requests by route and status
//   - assetpath_http_request_duration_seconds: Histogram of HTTP request time by route
//   - assetpath_websocket_messages_total: Counter of WebSocket messages by result
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	helper, _ := assets.New(settings, assets.WithObserver(m))
//
//	r := chi.NewRouter()
//	r.Use(m.Handler)
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		resolutionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resolutions_total",
			Help:        "Total number of asset resolutions",
			ConstLabels: config.ConstLabels,
		}, []string{"strategy"}),

		resolutionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resolution_duration_seconds",
			Help:        "Asset resolution duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"strategy"}),

		expandedPaths: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resolution_paths",
			Help:        "Number of paths returned per resolution",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 5, 10, 25, 50, 100},
		}),

		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "errors_total",
			Help:        "Total number of rejected resolutions by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		wsMessagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_messages_total",
			Help:        "Total WebSocket resolve messages by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),
	}
}

// ObserveResolution records a completed resolution.
func (m *Metrics) ObserveResolution(strategy assets.Strategy, _ string, paths int, elapsed time.Duration) {
	m.resolutionsTotal.WithLabelValues(string(strategy)).Inc()
	m.resolutionDuration.WithLabelValues(string(strategy)).Observe(elapsed.Seconds())
	m.expandedPaths.Observe(float64(paths))
}

// ObserveError records a rejected resolution under its error code.
func (m *Metrics) ObserveError(err error) {
	m.errorsTotal.WithLabelValues(errorCode(err)).Inc()
}

// RecordWebSocketMessage records one WebSocket resolve message.
// result is "ok", "error" or "invalid".
func (m *Metrics) RecordWebSocketMessage(result string) {
	m.wsMessagesTotal.WithLabelValues(result).Inc()
}

// Handler is chi-compatible middleware recording request counts and
// durations. Requests are labelled by route pattern, never by raw path.
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
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

// routePattern returns the matched chi route, or "unmatched".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// errorCode returns the registry code of err, which keeps the label
// cardinality bounded.
func errorCode(err error) string {
	var ae *aperrors.AssetError
	if errors.As(err, &ae) && ae.Code != "" {
		return ae.Code
	}
	return "unknown"
}
