package main

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/localeroute/internal/config"
	"github.com/vango-dev/localeroute/internal/errors"
	"github.com/vango-dev/localeroute/internal/logging"
	"github.com/vango-dev/localeroute/pkg/httphost"
	"github.com/vango-dev/localeroute/pkg/middleware"
	"github.com/vango-dev/localeroute/pkg/router"
	"github.com/vango-dev/localeroute/pkg/routetree"
	"github.com/vango-dev/localeroute/pkg/views"
	"github.com/vango-dev/localeroute/pkg/views/s3source"
)

// app holds everything a command builds from the configuration.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *middleware.Metrics
	tracer   trace.TracerProvider
}

// loadApp reads the configuration and sets up logging and observability.
// An explicit --config must exist; without one a missing localeroute.yaml
// falls back to defaults and the environment.
func loadApp(configPath string, logOut io.Writer) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(".")
		var e *errors.Error
		if stderrors.As(err, &e) && e.Code == errors.CodeConfigNotFound {
			cfg, err = config.Parse(nil)
		}
	}
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, logOut)
	if err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	a := &app{cfg: cfg, logger: logger, tracer: noop.NewTracerProvider()}
	if cfg.Tracing.Enabled {
		a.tracer = otel.GetTracerProvider()
	}
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts := []middleware.MetricsOption{
			middleware.WithNamespace(cfg.Metrics.Namespace),
			middleware.WithSubsystem(cfg.Metrics.Subsystem),
			middleware.WithRegistry(a.registry),
		}
		if len(cfg.Metrics.Buckets) > 0 {
			opts = append(opts, middleware.WithBuckets(cfg.Metrics.Buckets))
		}
		if len(cfg.Metrics.ConstLabels) > 0 {
			opts = append(opts, middleware.WithConstLabels(prometheus.Labels(cfg.Metrics.ConstLabels)))
		}
		a.metrics = middleware.NewMetrics(opts...)
	}
	return a, nil
}

// loadRoutes builds the route tree from routes.file, or from every module
// in routes.dir merged in file order.
func (a *app) loadRoutes() (*routetree.Tree, error) {
	if a.cfg.Routes.File != "" {
		path := a.cfg.Resolve(a.cfg.Routes.File)
		tree, err := routetree.LoadFile(os.DirFS(filepath.Dir(path)), filepath.Base(path))
		if err != nil {
			return nil, errors.New(errors.CodeInvalidRouteFile).Wrap(err).
				WithDetail("Failed to load route file " + path)
		}
		return tree, nil
	}

	dir := a.cfg.Resolve(a.cfg.Routes.Dir)
	modules, err := routetree.LoadDir(os.DirFS(dir), ".")
	if err != nil {
		return nil, errors.New(errors.CodeInvalidRouteFile).Wrap(err).
			WithDetail("Failed to load route modules from " + dir)
	}
	return routetree.Merge(modules), nil
}

// loadViews builds the view registry from the configured source.
func (a *app) loadViews(ctx context.Context) (views.Registry[httphost.Page], error) {
	ext := a.cfg.Views.Extension

	switch a.cfg.Views.Source {
	case config.SourceS3:
		var opts []func(*awsconfig.LoadOptions) error
		if a.cfg.Views.S3.Region != "" {
			opts = append(opts, awsconfig.WithRegion(a.cfg.Views.S3.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, errors.New(errors.CodeConfigInvalid).Wrap(err).
				WithDetail("Failed to load AWS configuration")
		}
		client := s3.NewFromConfig(awsCfg)
		return s3source.Registry[httphost.Page](ctx, client, a.cfg.Views.S3.Bucket, a.cfg.Views.S3.Prefix, ext, httphost.DecodeTemplate)

	default:
		dir := a.cfg.Resolve(a.cfg.Views.Dir)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			a.logger.Warn("views directory does not exist", "dir", dir)
			return views.Registry[httphost.Page]{}, nil
		}
		return views.FSRegistry[httphost.Page](os.DirFS(dir), ".", ext, httphost.DecodeTemplate)
	}
}

// newRouter wires the router to the app's logger, metrics and tracer.
func (a *app) newRouter(tree *routetree.Tree, reg views.Registry[httphost.Page]) (*httphost.Router, error) {
	opts := []router.Option{
		router.WithLogger(a.logger),
		router.WithTracerProvider(a.tracer),
	}
	if a.metrics != nil {
		opts = append(opts,
			router.WithObserver(a.metrics),
			router.WithLoaderOptions(views.WithObserver(a.metrics)),
		)
	}

	return router.New(router.Config[httphost.Page]{
		DefaultLang:    a.cfg.DefaultLang,
		CurrentLang:    a.cfg.CurrentLang,
		SupportedLangs: a.cfg.SupportedLangs,
		Routes:         tree,
		Views:          reg,
		ViewsExtension: a.cfg.Views.Extension,
	}, opts...)
}

// routesOnly builds a router without views, for commands that only match
// and translate paths.
func (a *app) routesOnly() (*httphost.Router, error) {
	tree, err := a.loadRoutes()
	if err != nil {
		return nil, err
	}
	return a.newRouter(tree, nil)
}
