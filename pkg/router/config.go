package router

import (
	"fmt"
	"log/slog"

	"dario.cat/mergo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/localeroute/pkg/routetree"
	"github.com/vango-dev/localeroute/pkg/views"
)

// Config holds the router settings. Zero-valued fields fall back to
// DefaultConfig when passed to New.
type Config[M any] struct {
	// DefaultLang is the redirect target for paths without a supported language.
	DefaultLang string

	// CurrentLang is the default target language of GetRouter.
	CurrentLang string

	// SupportedLangs lists the language codes accepted in paths.
	SupportedLangs []string

	// Routes is the route tree used when RouteModules is empty.
	Routes *routetree.Tree

	// RouteModules are merged into the route tree when non-empty.
	RouteModules map[string]*routetree.Tree

	// Views maps view paths to loaders.
	Views views.Registry[M]

	// ViewsExtension is the extension used to build view paths.
	ViewsExtension string
}

// DefaultConfig returns the settings applied under every Config.
func DefaultConfig[M any]() Config[M] {
	return Config[M]{
		DefaultLang:    "en",
		CurrentLang:    "en",
		SupportedLangs: []string{"en"},
		ViewsExtension: views.DefaultExtension,
	}
}

// Option configures a Router.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	observer   Observer
	tracer     trace.TracerProvider
	nullModule any
	loaderOpts []views.LoaderOption
}

// WithLogger sets the logger. It is also handed to the view loader.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver registers an Observer notified after every resolution.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracer = tp
	}
}

// WithNullModule sets the module of the null view. It must have the router's
// module type; otherwise the zero value is used.
func WithNullModule(m any) Option {
	return func(o *options) {
		o.nullModule = m
	}
}

// WithLoaderOptions passes options through to the view loader.
func WithLoaderOptions(opts ...views.LoaderOption) Option {
	return func(o *options) {
		o.loaderOpts = append(o.loaderOpts, opts...)
	}
}

// New creates a Router from cfg merged over DefaultConfig.
func New[M any](cfg Config[M], opts ...Option) (*Router[M], error) {
	if err := mergo.Merge(&cfg, DefaultConfig[M]()); err != nil {
		return nil, fmt.Errorf("merge router config: %w", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = otel.GetTracerProvider()
	}

	var null M
	if m, ok := o.nullModule.(M); ok {
		null = m
	}

	loaderOpts := append([]views.LoaderOption{
		views.WithExtension(cfg.ViewsExtension),
		views.WithLogger(o.logger),
		views.WithTracerProvider(o.tracer),
	}, o.loaderOpts...)

	r := &Router[M]{
		cfg:      cfg,
		loader:   views.NewLoader(cfg.Views, loaderOpts...),
		null:     null,
		logger:   o.logger,
		observer: o.observer,
		tracer:   o.tracer.Tracer(tracerName),
	}
	r.tree = r.GetRoutes(nil)
	return r, nil
}
