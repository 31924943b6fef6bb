// Package middleware provides observability for asset resolution and the
// asset server.
//
// This package includes:
//   - Prometheus metrics, usable as an assets.Observer and as HTTP middleware
//   - OpenTelemetry tracing middleware for net/http and chi
//
// # Prometheus Metrics
//
// Metrics implements assets.Observer, so every resolution made through a
// Helper is counted by strategy, and rejected calls by error code:
//
//	reg := prometheus.NewRegistry()
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	helper, _ := assets.New(settings, assets.WithObserver(m))
//
// The same value wraps HTTP handlers:
//
//	r := chi.NewRouter()
//	r.Use(m.Handler)
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # OpenTelemetry Middleware
//
// Tracing opens a server span per request. Handlers that resolve assets
// attach the outcome with AnnotateResolution:
//
//	r.Use(middleware.Tracing(middleware.WithTracerName("assets")))
//
//	func resolve(w http.ResponseWriter, r *http.Request) {
//	    res, err := helper.Resolve(source, opts)
//	    if err == nil {
//	        middleware.AnnotateResolution(r.Context(), res)
//	    }
//	}
package middleware
