package router

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	rerrors "github.com/vango-dev/localeroute/internal/errors"
	"github.com/vango-dev/localeroute/pkg/routetree"
	"github.com/vango-dev/localeroute/pkg/views"
)

const tracerName = "github.com/vango-dev/localeroute/pkg/router"

// NotFoundSegment is the path segment of the not-found page.
const NotFoundSegment = "404"

var langPrefix = regexp.MustCompile(`^/([a-z]{2})(?:/|$)`)

// Router resolves navigation paths to views. It is safe for concurrent use;
// the route tree is never modified after construction.
type Router[M any] struct {
	cfg      Config[M]
	tree     *routetree.Tree
	loader   *views.Loader[M]
	null     M
	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer
}

// Config returns the merged configuration.
func (r *Router[M]) Config() Config[M] {
	return r.cfg
}

// Tree returns the active route tree.
func (r *Router[M]) Tree() *routetree.Tree {
	return r.tree
}

// Loader returns the view loader.
func (r *Router[M]) Loader() *views.Loader[M] {
	return r.loader
}

// Supports reports whether lang is one of the supported languages.
func (r *Router[M]) Supports(lang string) bool {
	return slices.Contains(r.cfg.SupportedLangs, lang)
}

// WithRoutes returns a copy of the router that serves tree. The copy shares
// the view loader, so modules cached so far stay cached.
func (r *Router[M]) WithRoutes(tree *routetree.Tree) *Router[M] {
	cp := *r
	cp.cfg.Routes = tree
	cp.cfg.RouteModules = nil
	cp.tree = tree
	return &cp
}

// GetRoutes returns the merged modules when any are given, otherwise the
// configured route modules, otherwise the configured route tree.
func (r *Router[M]) GetRoutes(modules map[string]*routetree.Tree) *routetree.Tree {
	if len(modules) > 0 {
		return routetree.Merge(modules)
	}
	if len(r.cfg.RouteModules) > 0 {
		return routetree.Merge(r.cfg.RouteModules)
	}
	if r.cfg.Routes != nil {
		return r.cfg.Routes
	}
	return routetree.NewTree()
}

// GetViews returns the view registry. An empty registry is reported on doc
// and nil is returned.
func (r *Router[M]) GetViews(doc Document) views.Registry[M] {
	if r.cfg.Views.Len() == 0 {
		e := rerrors.New(rerrors.CodeEmptyViewRegistry)
		r.logger.Error(e.Message, "code", e.Code)
		if doc != nil {
			doc.ShowError(e.Message, e.PanelMessage())
		}
		return nil
	}
	return r.cfg.Views
}

// FindRoute resolves uri within lang against the router's tree.
func (r *Router[M]) FindRoute(uri, lang string) routetree.Resolved {
	return FindRoute(r.tree, uri, lang, "")
}

// Translate converts uri from one language to another against the router's tree.
func (r *Router[M]) Translate(uri, fromLang, toLang string, extra map[string]string) string {
	return Translate(r.tree, uri, fromLang, toLang, extra)
}

// NullView returns the view used when nothing can be rendered.
func (r *Router[M]) NullView() View[M] {
	return View[M]{Module: r.null, Null: true}
}

// SplitLang splits a path into its language code and the remainder after it.
// ok is false when the path does not start with a two-letter lowercase code.
func SplitLang(path string) (lang, rest string, ok bool) {
	m := langPrefix.FindStringSubmatch(path)
	if m == nil {
		return "", "", false
	}
	return m[1], path[len(m[0]):], true
}

// Resolve runs the resolution state machine for path without side effects.
func (r *Router[M]) Resolve(ctx context.Context, path string) Result[M] {
	ctx, span := r.tracer.Start(ctx, "router.resolve",
		trace.WithAttributes(attribute.String("route.path", path)),
	)
	defer span.End()

	res := r.resolve(ctx, path)

	span.SetAttributes(
		attribute.String("route.outcome", res.Outcome.String()),
		attribute.String("route.lang", res.Lang),
		attribute.String("route.key", res.Route.FullPath),
	)
	if res.Code != "" {
		span.SetAttributes(attribute.String("route.code", res.Code))
	}
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	}
	if r.observer != nil {
		r.observer.ObserveResolution(res.Outcome, res.Lang)
	}

	switch res.Outcome {
	case Rendered:
		r.logger.Debug("route resolved", "path", path, "route", res.Route.FullPath, "view", res.Route.Node.View)
	case Failed, Fatal:
		r.logger.Error("route resolution failed", "path", path, "outcome", res.Outcome.String(), "code", res.Code, "error", res.Err)
	default:
		r.logger.Debug("route redirect", "path", path, "outcome", res.Outcome.String(), "code", res.Code, "to", res.Redirect)
	}
	return res
}

func (r *Router[M]) resolve(ctx context.Context, path string) Result[M] {
	lang, rest, ok := SplitLang(path)
	if !ok || !r.Supports(lang) {
		if rest == "" {
			rest = strings.TrimPrefix(path, "/")
		}
		return Result[M]{
			Outcome:  RedirectLanguage,
			View:     r.NullView(),
			Redirect: "/" + r.cfg.DefaultLang + "/" + rest,
			Code:     rerrors.CodeUnsupportedLanguage,
		}
	}

	notFoundPath := "/" + lang + "/" + NotFoundSegment
	atNotFound := strings.HasSuffix(path, notFoundPath)

	route := FindRoute(r.tree, rest, lang, "")
	if route.NotFound && !atNotFound {
		return Result[M]{
			Outcome:  RedirectNotFound,
			Lang:     lang,
			Route:    route,
			View:     r.NullView(),
			Redirect: notFoundPath,
			Code:     rerrors.CodeRouteNotFound,
		}
	}

	module, err := r.loader.Load(ctx, route.Node.View)
	if err != nil {
		res := Result[M]{Lang: lang, Route: route, View: r.NullView()}
		switch {
		case errors.Is(err, views.ErrViewNotFound) && !atNotFound:
			res.Outcome = RedirectNotFound
			res.Redirect = notFoundPath
			res.Code = rerrors.CodeViewNotFound
		case errors.Is(err, views.ErrViewNotFound):
			res.Outcome = Fatal
			res.Code = rerrors.CodeNoNotFoundView
			res.Err = rerrors.New(res.Code).Wrap(err)
		default:
			res.Outcome = Failed
			res.Code = rerrors.CodeViewLoadFailed
			res.Err = rerrors.New(res.Code).Wrap(err)
		}
		return res
	}

	return Result[M]{
		Outcome: Rendered,
		Lang:    lang,
		Route:   route,
		View: View[M]{
			Module: module,
			Auth:   route.Node.Auth,
			Props:  route.Node.Props,
			Params: Params(route.Params),
		},
	}
}

// ResolveCurrentView resolves nav's current path and applies the outcome:
// the document language is synced, redirects are issued through nav and a
// missing not-found view is reported on doc. It always returns a usable view.
func (r *Router[M]) ResolveCurrentView(ctx context.Context, nav Navigation, doc Document) View[M] {
	res := r.Resolve(ctx, nav.CurrentPath())

	if res.Lang != "" && doc != nil && doc.Lang() != res.Lang {
		doc.SetLang(res.Lang)
	}

	switch res.Outcome {
	case RedirectLanguage, RedirectNotFound:
		nav.Redirect(res.Redirect)
	case Fatal:
		var e *rerrors.Error
		if doc != nil && errors.As(res.Err, &e) {
			doc.ShowError(e.Message, e.PanelMessage())
		}
	}
	return res.View
}
