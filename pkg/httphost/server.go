package httphost

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/localeroute/pkg/middleware"
	"github.com/vango-dev/localeroute/pkg/router"
)

// Router is the router type served by the host.
type Router = router.Router[Page]

// Server serves resolved views over HTTP. The router can be swapped while
// requests are in flight.
type Server struct {
	router atomic.Pointer[Router]

	logger     *slog.Logger
	authCookie string
	authFunc   func(*http.Request) bool

	metrics  *middleware.Metrics
	gatherer prometheus.Gatherer

	tracing        bool
	tracerName     string
	tracerProvider trace.TracerProvider

	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration

	upgrader websocket.Upgrader
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAuthCookie names the cookie whose presence authorizes auth routes.
func WithAuthCookie(name string) Option {
	return func(s *Server) {
		s.authCookie = name
	}
}

// WithAuthFunc replaces the cookie check for auth routes.
func WithAuthFunc(fn func(*http.Request) bool) Option {
	return func(s *Server) {
		s.authFunc = fn
	}
}

// WithMetrics records requests in m and exposes gatherer on /metrics.
func WithMetrics(m *middleware.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithTracing opens a server span per request.
func WithTracing(tracerName string, tp trace.TracerProvider) Option {
	return func(s *Server) {
		s.tracing = true
		s.tracerName = tracerName
		s.tracerProvider = tp
	}
}

// WithTimeouts sets the HTTP read and write timeouts.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = read
		s.writeTimeout = write
	}
}

// New creates a server for rt.
func New(rt *Router, opts ...Option) *Server {
	s := &Server{
		logger:          slog.Default(),
		authCookie:      "session",
		readTimeout:     10 * time.Second,
		writeTimeout:    10 * time.Second,
		shutdownTimeout: 5 * time.Second,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "httphost")
	s.router.Store(rt)
	return s
}

// Router returns the router currently serving requests.
func (s *Server) Router() *Router {
	return s.router.Load()
}

// SetRouter swaps the router. Requests already resolving keep the old one.
func (s *Server) SetRouter(rt *Router) {
	s.router.Store(rt)
}

// Handler returns the chi mux with every endpoint mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	if s.tracing {
		r.Use(middleware.OpenTelemetry(
			middleware.WithTracerName(s.tracerName),
			middleware.WithTracerProvider(s.tracerProvider),
			middleware.WithRequestFilter(func(r *http.Request) bool {
				return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
			}),
		))
	}
	if s.metrics != nil {
		r.Use(s.metrics.Handler)
		gatherer := s.gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/translate", s.handleTranslate)
	r.Get("/api/routes", s.handleRoutes)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/*", s.handlePage)
	return r
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.readTimeout,
		ReadTimeout:       s.readTimeout,
		WriteTimeout:      s.writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}
	s.logger.Info("server shutdown complete")
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) authorized(r *http.Request) bool {
	if s.authFunc != nil {
		return s.authFunc(r)
	}
	c, err := r.Cookie(s.authCookie)
	return err == nil && c.Value != ""
}
