package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is the quiet period Watcher waits after the last
// file event before reloading, so editor save sequences (write + rename)
// trigger a single reload.
const DefaultDebounceInterval = 100 * time.Millisecond

// Watcher reloads a pricing file into a Table whenever it changes on disk.
// It watches the file's parent directory because many editors replace files
// by rename, which drops a watch registered on the file itself.
type Watcher struct {
	table    *Table
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher that keeps table in sync with the pricing
// file at path. Run must be called to start watching.
func NewWatcher(table *Table, path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		table:    table,
		path:     filepath.Clean(path),
		debounce: DefaultDebounceInterval,
		watcher:  fsw,
		logger:   logger.With("component", "pricing.watcher"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Run watches for changes until the context is cancelled or Stop is called.
// It is a blocking call intended to run in its own goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("pricing watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %q: %w", filepath.Dir(w.path), err)
	}

	w.logger.Info("pricing watcher started",
		"path", w.path,
		"debounce_ms", w.debounce.Milliseconds(),
	)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("pricing watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("pricing watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("pricing file event", "path", event.Name, "op", event.Op.String())
			pending = time.After(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			// Keep watching; a transient error must not kill hot reload.
			w.logger.Error("pricing watcher error", "error", err)

		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

// Stop stops the watcher and waits for Run to return.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	return w.watcher.Close()
}

// relevant filters directory events down to content changes of the watched
// file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// reload re-parses the pricing file and swaps the table contents. A parse
// failure keeps the previous table so a half-written file never zeroes
// live pricing.
func (w *Watcher) reload() {
	entries, err := LoadFile(w.path)
	if err != nil {
		w.logger.Error("pricing reload failed, keeping previous table", "error", err)
		return
	}

	w.table.Replace(entries)
	w.logger.Info("pricing table reloaded", "path", w.path, "models", len(entries))
}
