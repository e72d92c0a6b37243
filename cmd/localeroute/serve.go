package main

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/localeroute/internal/errors"
	"github.com/vango-dev/localeroute/internal/reload"
	"github.com/vango-dev/localeroute/pkg/httphost"
	"github.com/vango-dev/localeroute/pkg/routetree"
)

func serveCmd(configPath func() string) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve resolved views over HTTP",
		Long: `Serve resolves every request path against the route tree and renders
the matched view. Paths without a supported language are redirected to
the default language; unknown paths are redirected to /{lang}/404.

Examples:
  localeroute serve
  localeroute serve --listen :3000
  localeroute serve --config site/localeroute.yaml`,
		Args: checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(configPath(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if listen != "" {
				a.cfg.Server.Listen = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Address to listen on (default from localeroute.yaml)")
	return cmd
}

// newServer builds the HTTP host for a.
func newServer(ctx context.Context, a *app) (*httphost.Server, error) {
	tree, err := a.loadRoutes()
	if err != nil {
		return nil, err
	}
	reg, err := a.loadViews(ctx)
	if err != nil {
		return nil, err
	}
	rt, err := a.newRouter(tree, reg)
	if err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	opts := []httphost.Option{
		httphost.WithLogger(a.logger),
		httphost.WithAuthCookie(a.cfg.Server.AuthCookie),
		httphost.WithTimeouts(a.cfg.ReadTimeout(), a.cfg.WriteTimeout()),
	}
	if a.metrics != nil {
		opts = append(opts, httphost.WithMetrics(a.metrics, a.registry))
	}
	if a.cfg.Tracing.Enabled {
		opts = append(opts, httphost.WithTracing(a.cfg.Tracing.TracerName, a.tracer))
	}
	return httphost.New(rt, opts...), nil
}

// watchRoutes reloads the route tree into srv whenever routes.dir changes.
func watchRoutes(ctx context.Context, a *app, srv *httphost.Server) (*reload.Watcher, error) {
	reloader := &reload.RoutesReloader{
		Load: a.loadRoutes,
		Apply: func(tree *routetree.Tree) {
			srv.SetRouter(srv.Router().WithRoutes(tree))
		},
		Logger: a.logger,
	}
	if a.metrics != nil {
		reloader.Record = a.metrics.RecordReload
	}

	w := reload.NewWatcher(reload.Config{
		Paths:    []string{a.cfg.Resolve(a.cfg.Routes.Dir)},
		Debounce: a.cfg.Debounce(),
	}, a.logger)
	w.OnChange(reloader.OnChange)

	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(ctx) }()
	select {
	case <-w.Ready():
		return w, nil
	case err := <-errCh:
		return nil, err
	}
}

func runServe(ctx context.Context, a *app, out io.Writer) error {
	srv, err := newServer(ctx, a)
	if err != nil {
		return err
	}

	if a.cfg.Routes.AutoReload.Enabled {
		if a.cfg.Routes.File != "" {
			a.logger.Warn("route auto-reload watches routes.dir only; routes.file is set")
		} else {
			w, err := watchRoutes(ctx, a, srv)
			if err != nil {
				return err
			}
			defer w.Stop()
		}
	}

	success(out, "serving %d routes in %v on %s",
		srv.Router().Tree().Len(), a.cfg.SupportedLangs, a.cfg.Server.Listen)
	return srv.ListenAndServe(ctx, a.cfg.Server.Listen)
}
