package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// TableWatcher triggers a reload whenever the route table file is written or
// replaced. Bursts of events within the debounce period collapse into one
// reload.
type TableWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	reload   func(ctx context.Context) error
	logger   *slog.Logger
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
	ctx   context.Context
}

// NewTableWatcher watches the directory holding path, so that files replaced
// by rename are still picked up.
func NewTableWatcher(path string, reload func(ctx context.Context) error, logger *slog.Logger) (*TableWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve table path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &TableWatcher{
		path:     abs,
		watcher:  w,
		reload:   reload,
		logger:   logger.With("component", "table_watcher", "path", abs),
		debounce: defaultDebounce,
	}, nil
}

// SetDebounce overrides the debounce period. Call it before Start.
func (tw *TableWatcher) SetDebounce(d time.Duration) {
	tw.debounce = d
}

// Start watches until ctx is cancelled or Close is called.
func (tw *TableWatcher) Start(ctx context.Context) {
	tw.mu.Lock()
	tw.ctx = ctx
	tw.mu.Unlock()
	go tw.loop(ctx)
}

func (tw *TableWatcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			tw.stopTimer()
			return
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != tw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			tw.logger.Debug("route table changed", "op", event.Op.String())
			tw.schedule()
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			tw.logger.Warn("table watcher error", "error", err)
		}
	}
}

func (tw *TableWatcher) schedule() {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timer != nil {
		tw.timer.Stop()
	}
	ctx := tw.ctx
	tw.timer = time.AfterFunc(tw.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		if err := tw.reload(ctx); err != nil {
			tw.logger.Error("reload after table change failed", "error", err)
			return
		}
		tw.logger.Info("reloaded after table change")
	})
}

func (tw *TableWatcher) stopTimer() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timer != nil {
		tw.timer.Stop()
	}
}

// Close stops watching. A reload already running is not interrupted.
func (tw *TableWatcher) Close() error {
	tw.stopTimer()
	return tw.watcher.Close()
}
