package reload

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config configures the watcher.
type Config struct {
	// Paths are the directories to watch, recursively.
	Paths []string

	// Ignore patterns matched against base names and path segments.
	Ignore []string

	// Debounce is the quiet period before OnChange fires.
	Debounce time.Duration
}

// DefaultIgnore skips dotfiles and editor leftovers.
var DefaultIgnore = []string{
	".*",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher reports batches of changed files under its paths.
type Watcher struct {
	config   Config
	logger   *slog.Logger
	onChange func(changed []string)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}

	ready     chan struct{}
	readyOnce sync.Once
}

// NewWatcher creates a watcher. A nil logger uses slog.Default().
func NewWatcher(config Config, logger *slog.Logger) *Watcher {
	if config.Debounce <= 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		config: config,
		logger: logger,
		ready:  make(chan struct{}),
	}
}

// OnChange sets the callback. It receives the sorted set of paths that
// changed during one debounce window.
func (w *Watcher) OnChange(fn func(changed []string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Ready is closed once every path is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Start watches until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, root := range w.config.Paths {
		if err := w.addRecursive(watcher, root); err != nil {
			return err
		}
	}
	w.readyOnce.Do(func() { close(w.ready) })
	w.logger.Info("route auto-reload enabled",
		"paths", w.config.Paths,
		"debounce", w.config.Debounce)

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending = make(map[string]struct{})
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	resetTimer := func() {
		if timer == nil {
			timer = time.NewTimer(w.config.Debounce)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.config.Debounce)
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-timerC:
			timerC = nil
			w.fire(pending)
			pending = make(map[string]struct{})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("route watcher error", "error", err)
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Op&fsnotify.Create != 0 {
				if fi, statErr := os.Stat(evt.Name); statErr == nil && fi.IsDir() && !w.shouldIgnore(evt.Name) {
					if addErr := w.addRecursive(watcher, evt.Name); addErr != nil {
						w.logger.Warn("route watcher add failed", "path", evt.Name, "error", addErr)
					}
				}
			}
			if w.shouldTrigger(evt) {
				pending[evt.Name] = struct{}{}
				resetTimer()
			}
		}
	}
}

// Stop stops a running watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning reports whether Start is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) fire(pending map[string]struct{}) {
	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()
	if callback == nil || len(pending) == 0 {
		return
	}

	changed := make([]string, 0, len(pending))
	for p := range pending {
		changed = append(changed, p)
	}
	sort.Strings(changed)
	callback(changed)
}

func (w *Watcher) shouldTrigger(evt fsnotify.Event) bool {
	if strings.TrimSpace(evt.Name) == "" {
		return false
	}
	if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return !w.shouldIgnore(evt.Name)
}

func (w *Watcher) addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && w.shouldIgnore(p) {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}

// shouldIgnore matches the base name against glob patterns and plain
// patterns against every path segment.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	segments := splitPathSegments(filepath.ToSlash(fullPath))

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if strings.ContainsAny(pattern, "*?[") {
			if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
			continue
		}
		for _, seg := range segments {
			if seg == pattern {
				return true
			}
		}
	}
	return false
}

func splitPathSegments(p string) []string {
	parts := strings.Split(p, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
