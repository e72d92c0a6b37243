// Package reload watches the route module directory with fsnotify and swaps
// in a rebuilt route tree after a debounce window.
//
//	w := reload.NewWatcher(reload.Config{
//	    Paths:    []string{cfg.Resolve(cfg.Routes.Dir)},
//	    Debounce: cfg.Debounce(),
//	}, logger)
//	w.OnChange((&reload.RoutesReloader{
//	    Load:  loadRoutes,
//	    Apply: func(t *routetree.Tree) { host.SetRouter(rt.WithRoutes(t)) },
//	}).OnChange)
//	go w.Start(ctx)
package reload
