package reload

import (
	"log/slog"

	"github.com/vango-dev/localeroute/internal/errors"
	"github.com/vango-dev/localeroute/pkg/routetree"
)

// RoutesReloader rebuilds the route tree after a batch of changes.
type RoutesReloader struct {
	// Load builds a fresh tree from the route modules.
	Load func() (*routetree.Tree, error)

	// Apply installs a successfully loaded tree.
	Apply func(*routetree.Tree)

	// Record, if set, is told about every reload attempt.
	Record func(error)

	Logger *slog.Logger
}

// OnChange reloads the tree. A failed load keeps the previous tree.
func (r *RoutesReloader) OnChange(changed []string) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tree, err := r.Load()
	if r.Record != nil {
		r.Record(err)
	}
	if err != nil {
		logger.Error("route reload failed; keeping previous routes",
			"changed", changed,
			"error", errors.Compact(err))
		return
	}
	r.Apply(tree)
	logger.Info("routes reloaded",
		"changed", changed,
		"routes", tree.Len())
}
