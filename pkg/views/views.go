// Package views loads view modules lazily and caches them for the lifetime
// of the process.
//
// A view is addressed by its logical identifier ("blog/Post"). The identifier
// is turned into a view path with ViewPath, which is both the key of the
// Registry and the key of the Loader's cache:
//
//	reg := views.Registry[Page]{
//	    views.ViewPath("Home", "html"): func(ctx context.Context) (Page, error) { ... },
//	}
//	loader := views.NewLoader(reg)
//	page, err := loader.Load(ctx, "Home")
package views

import (
	"context"
	"errors"
	"sort"
	"time"
)

// DefaultExtension is used when no view extension is configured.
const DefaultExtension = "html"

// ErrViewNotFound is returned when the registry has no entry for a view path.
var ErrViewNotFound = errors.New("view not found")

// ViewPath builds the registry key of a view.
func ViewPath(view, ext string) string {
	if ext == "" {
		ext = DefaultExtension
	}
	return "./views/" + view + "." + ext
}

// LoadFunc produces a view module. It is the only operation in view
// resolution that may block.
type LoadFunc[M any] func(ctx context.Context) (M, error)

// Registry maps view paths to their loaders.
type Registry[M any] map[string]LoadFunc[M]

// Len returns the number of registered views.
func (r Registry[M]) Len() int {
	return len(r)
}

// Keys returns the registered view paths in sorted order.
func (r Registry[M]) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Static returns a LoadFunc that always yields m.
func Static[M any](m M) LoadFunc[M] {
	return func(context.Context) (M, error) {
		return m, nil
	}
}

// Observer receives loader events, typically to record metrics.
type Observer interface {
	ObserveCacheHit(path string)
	ObserveLoad(path string, d time.Duration, err error)
}
