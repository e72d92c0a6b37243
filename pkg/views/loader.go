package views

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vango-dev/localeroute/pkg/views"

// Loader resolves view identifiers to modules and memoizes successful loads.
//
// The cache is unbounded and entries are never evicted. Lookups and stores
// are guarded by a RWMutex, but two goroutines that miss the cache for the
// same view at the same time will both run its LoadFunc; the last store wins.
type Loader[M any] struct {
	registry Registry[M]
	ext      string
	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer

	mu    sync.RWMutex
	cache map[string]M
}

// LoaderOption configures a Loader.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	ext      string
	logger   *slog.Logger
	observer Observer
	tracer   trace.TracerProvider
}

// WithExtension sets the view file extension used to build view paths.
func WithExtension(ext string) LoaderOption {
	return func(o *loaderOptions) {
		o.ext = ext
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) LoaderOption {
	return func(o *loaderOptions) {
		o.logger = l
	}
}

// WithObserver registers an Observer for cache hits and loads.
func WithObserver(obs Observer) LoaderOption {
	return func(o *loaderOptions) {
		o.observer = obs
	}
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) LoaderOption {
	return func(o *loaderOptions) {
		o.tracer = tp
	}
}

// NewLoader creates a Loader over registry.
func NewLoader[M any](registry Registry[M], opts ...LoaderOption) *Loader[M] {
	o := loaderOptions{ext: DefaultExtension}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = otel.GetTracerProvider()
	}
	if o.ext == "" {
		o.ext = DefaultExtension
	}

	return &Loader[M]{
		registry: registry,
		ext:      o.ext,
		logger:   o.logger,
		observer: o.observer,
		tracer:   o.tracer.Tracer(tracerName),
		cache:    make(map[string]M),
	}
}

// Registry returns the registry the loader reads from.
func (l *Loader[M]) Registry() Registry[M] {
	return l.registry
}

// Extension returns the view file extension.
func (l *Loader[M]) Extension() string {
	return l.ext
}

// Path returns the view path of a view identifier.
func (l *Loader[M]) Path(view string) string {
	return ViewPath(view, l.ext)
}

// Has reports whether the registry knows view.
func (l *Loader[M]) Has(view string) bool {
	_, ok := l.registry[l.Path(view)]
	return ok
}

// Load returns the module for view. A cached module is returned without
// calling the registry. ErrViewNotFound is returned for unknown views;
// errors from the LoadFunc are returned wrapped and are not cached.
func (l *Loader[M]) Load(ctx context.Context, view string) (M, error) {
	path := l.Path(view)

	if m, ok := l.Cached(path); ok {
		if l.observer != nil {
			l.observer.ObserveCacheHit(path)
		}
		return m, nil
	}

	var zero M
	load, ok := l.registry[path]
	if !ok {
		return zero, fmt.Errorf("%s: %w", path, ErrViewNotFound)
	}

	ctx, span := l.tracer.Start(ctx, "views.load",
		trace.WithAttributes(
			attribute.String("view.id", view),
			attribute.String("view.path", path),
		),
	)
	defer span.End()

	start := time.Now()
	m, err := load(ctx)
	d := time.Since(start)
	if l.observer != nil {
		l.observer.ObserveLoad(path, d, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return zero, fmt.Errorf("load %s: %w", path, err)
	}

	l.mu.Lock()
	l.cache[path] = m
	l.mu.Unlock()

	l.logger.Debug("view loaded", "path", path, "duration", d)
	return m, nil
}

// Cached returns the cached module for a view path.
func (l *Loader[M]) Cached(path string) (M, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.cache[path]
	return m, ok
}

// Len returns the number of cached modules.
func (l *Loader[M]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cache)
}
