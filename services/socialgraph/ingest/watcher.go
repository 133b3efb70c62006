// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadHandler receives the outcome of each rebuild triggered by the watcher.
// Exactly one of result and err is non-nil.
type ReloadHandler func(result *LoadResult, err error)

// RebuildFunc builds a fresh graph from the file at path.
type RebuildFunc func(ctx context.Context, path string) (*LoadResult, error)

// WatcherOptions configures the Watcher.
type WatcherOptions struct {
	// DebounceWindow is how long to wait for more changes before rebuilding.
	// Default: 500ms
	DebounceWindow time.Duration

	// LoadOptions are passed to LoadFile on every rebuild.
	LoadOptions []LoadOption

	// Rebuild replaces the default LoadFile call, for callers that must
	// serialize rebuilds with their own loads. LoadOptions is ignored when
	// Rebuild is set.
	Rebuild RebuildFunc

	// Logger receives watcher errors. Default: slog.Default()
	Logger *slog.Logger
}

// DefaultWatcherOptions returns sensible defaults.
func DefaultWatcherOptions() WatcherOptions {
	return WatcherOptions{
		DebounceWindow: 500 * time.Millisecond,
		Logger:         slog.Default(),
	}
}

// Watcher rebuilds a graph whenever its edge-list file changes.
//
// # Description
//
// Watches the directory containing the edge-list file, so that editors and
// tools that replace the file by rename are seen as well as in-place writes.
// Changes are debounced; when the window expires without new changes the
// whole file is loaded again with LoadFile and the fresh frozen graph is
// handed to the handler. Existing graphs are never modified.
//
// # Thread Safety
//
// Safe for concurrent use. The handler is called from a single goroutine.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	handler  ReloadHandler
	rebuild  RebuildFunc
	debounce time.Duration
	logger   *slog.Logger

	changes  chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	watching bool
}

// NewWatcher creates a watcher for the edge-list file at path.
//
// # Inputs
//
//   - path: Edge-list file to watch.
//   - handler: Called with each rebuild outcome after debounce.
//   - opts: Optional configuration (nil uses defaults).
//
// # Outputs
//
//   - *Watcher: Ready-to-use watcher (call Start to begin watching).
//   - error: Non-nil if the path is empty or fsnotify could not start.
func NewWatcher(path string, handler ReloadHandler, opts *WatcherOptions) (*Watcher, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if opts == nil {
		defaults := DefaultWatcherOptions()
		opts = &defaults
	}
	debounce := opts.DebounceWindow
	if debounce <= 0 {
		debounce = DefaultWatcherOptions().DebounceWindow
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	rebuild := opts.Rebuild
	if rebuild == nil {
		loadOpts := opts.LoadOptions
		rebuild = func(ctx context.Context, path string) (*LoadResult, error) {
			return LoadFile(ctx, path, loadOpts...)
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		path:     abs,
		watcher:  fw,
		handler:  handler,
		rebuild:  rebuild,
		debounce: debounce,
		logger:   logger,
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching for changes to the edge-list file.
//
// Spawns an event processor and a debouncer. Both exit when Stop() is
// called or ctx is canceled; cancellation also stops the watcher.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
		return err
	}

	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
	return nil
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching returns true if the watcher is currently active.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// relevant reports whether event changes the contents of the watched file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			// A pending signal already covers this change.
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", slog.String("path", w.path), slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return
		case <-w.done:
			stopTimer()
			return
		case <-w.changes:
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			stopTimer()
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	result, err := w.rebuild(ctx, w.path)
	if w.handler != nil {
		w.handler(result, err)
	}
}
