// Package watcher marks the index stale when source documents change
// on disk while the service is running.
package watcher

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/credostack/underwrite/internal/logger"
)

// StalenessWatcher watches the documents directory and flips a stale
// flag on any create, write, remove, or rename. It never rebuilds the
// index itself; callers decide when to act on staleness.
type StalenessWatcher struct {
	fw    *fsnotify.Watcher
	dir   string
	stale atomic.Bool
}

// New creates a watcher over dir.
func New(dir string) (*StalenessWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &StalenessWatcher{fw: fw, dir: dir}, nil
}

// Run processes events until the context is cancelled. Watch errors
// are logged, not fatal; a missed event at worst delays staleness.
func (w *StalenessWatcher) Run(ctx context.Context) {
	logger.Debug("Watching %s for document changes", w.dir)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				if w.stale.CompareAndSwap(false, true) {
					logger.Info("Documents changed (%s); index is stale, rebuild to pick up changes", event.Name)
				}
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// Stale reports whether a document change was seen since the last
// MarkFresh.
func (w *StalenessWatcher) Stale() bool {
	return w.stale.Load()
}

// MarkFresh clears the stale flag, typically after a rebuild.
func (w *StalenessWatcher) MarkFresh() {
	w.stale.Store(false)
}

// Close stops watching.
func (w *StalenessWatcher) Close() error {
	return w.fw.Close()
}
