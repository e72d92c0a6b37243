// Package middleware provides the observability layer of the localeroute
// HTTP host.
//
// # OpenTelemetry
//
// OpenTelemetry opens a server span per request. Route resolution and view
// loads start child spans from the request context.
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-site"),
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
//
// # Prometheus
//
// Metrics is both an HTTP middleware and an observer for the router and the
// view loader:
//
//	m := middleware.NewMetrics(middleware.WithNamespace("site"))
//	r.Use(m.Handler)
//
//	rt, _ := router.New(cfg,
//	    router.WithObserver(m),
//	    router.WithLoaderOptions(views.WithObserver(m)),
//	)
//
// Expose the registry with promhttp:
//
//	r.Handle("/metrics", promhttp.Handler())
package middleware
