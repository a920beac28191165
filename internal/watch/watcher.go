// Package watch triggers rescans when source files settle after a change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"tcpl/internal/scan"
)

// tickInterval is how often settled events are flushed.
const tickInterval = 100 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Root is the directory tree to watch.
	Root string
	// Extensions lists the file suffixes that matter. Defaults to .php.
	Extensions []string
	// IgnorePatterns skips matching paths, same syntax as the scanner.
	IgnorePatterns []string
	// Debounce is how long a path must stay quiet before it is reported.
	Debounce time.Duration
	// OnSettle receives the settled paths. It runs on the watch loop, so
	// long work should move to its own goroutine.
	OnSettle func(paths []string)
	Logger   *zap.Logger
}

// Watcher watches a codebase and reports files whose changes have settled.
// Directories created while watching are picked up automatically.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	root        string
	extensions  []string
	ignore      []string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	onSettle    func(paths []string)
	log         *zap.Logger
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks watcher activity.
type Stats struct {
	Created       int
	Modified      int
	Deleted       int
	Rescans       int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
}

// New builds a Watcher over root. Start must be called before events flow.
func New(opts Options) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".php"}
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		watcher:     watcher,
		root:        opts.Root,
		extensions:  exts,
		ignore:      opts.IgnorePatterns,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		onSettle:    opts.OnSettle,
		log:         log,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start watches root and every directory below it, then runs the event
// loop in a goroutine. Calling Start on a running watcher does nothing.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addTree(w.root); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.log.Info("Watching for changes", zap.String("root", w.root))

	go w.run(ctx)
	return nil
}

// Stop ends the event loop, waits for it to drain and releases the
// underlying watcher. Safe to call twice, or on a watcher that never
// started.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.log.Warn("Error closing watcher", zap.Error(err))
	}
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// WatchedDirs returns the directories currently being watched.
func (w *Watcher) WatchedDirs() []string {
	return w.watcher.WatchList()
}

// GetStats returns a copy of the current statistics.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// addTree registers root and every non-ignored directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && scan.Ignored(root, path, w.ignore) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.log.Warn("Could not watch directory", zap.String("dir", path), zap.Error(err))
		}
		return nil
	})
}

// run is the main event loop.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("Watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.flushSettled()
		}
	}
}

// handleEvent records one filesystem event for debouncing. New directories
// are added to the watch set instead.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !scan.Ignored(w.root, event.Name, w.ignore) {
				if err := w.watcher.Add(event.Name); err != nil {
					w.log.Warn("Could not watch new directory",
						zap.String("dir", event.Name), zap.Error(err))
				}
			}
			return
		}
	}

	if !w.wantsExtension(event.Name) {
		return
	}
	if scan.Ignored(w.root, event.Name, w.ignore) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case event.Op&fsnotify.Create != 0:
		w.stats.Created++
	case event.Op&fsnotify.Write != 0:
		w.stats.Modified++
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		w.stats.Deleted++
	default:
		return // chmod and friends
	}
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.debounceMap[event.Name] = time.Now()
}

// flushSettled reports every path that has stayed quiet for the debounce
// window.
func (w *Watcher) flushSettled() {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	if len(settled) > 0 {
		w.stats.Rescans++
	}
	w.mu.Unlock()

	if len(settled) > 0 && w.onSettle != nil {
		w.onSettle(settled)
	}
}

func (w *Watcher) wantsExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range w.extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}
