package audit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Snapshot kinds.
const (
	KindPrompt   = "prompt"
	KindResponse = "response"
)

// timestampLayout sorts lexicographically, so a directory listing reads in
// write order.
const timestampLayout = "20060102T150405.000000000"

// Config contains configuration for the snapshot writer.
type Config struct {
	// Dir is the directory snapshots are written to.
	Dir string

	// Enabled enables snapshot writing. A disabled writer accepts and
	// discards snapshots.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 64
	AsyncBuffer int
}

// DefaultConfig returns the default audit configuration.
func DefaultConfig() *Config {
	return &Config{
		Dir:         "data/audit",
		Enabled:     true,
		AsyncBuffer: 128,
	}
}

// Writer persists prompt and response snapshots to disk on a background
// worker. All methods are fire-and-forget: errors are logged, never
// returned.
type Writer struct {
	config *Config
	index  *Index
	queue  chan *snapshot
	wg     sync.WaitGroup
	done   chan struct{}
	logger *slog.Logger
}

type snapshot struct {
	kind      string
	operation string
	content   string
	at        time.Time
}

// NewWriter creates a snapshot writer rooted at config.Dir. The index is
// optional; when non-nil every written snapshot is also cataloged there.
func NewWriter(config *Config, index *Index) (*Writer, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if config.Enabled {
		if err := os.MkdirAll(config.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create audit directory %q: %w", config.Dir, err)
		}
	}

	w := &Writer{
		config: config,
		index:  index,
		queue:  make(chan *snapshot, config.AsyncBuffer),
		done:   make(chan struct{}),
		logger: slog.Default().With("component", "audit"),
	}

	w.wg.Add(1)
	go w.worker()

	return w, nil
}

// Dir returns the directory snapshots are written to.
func (w *Writer) Dir() string {
	return w.config.Dir
}

// SnapshotPrompt records the outgoing prompt for a live call.
func (w *Writer) SnapshotPrompt(operation, content string) {
	w.snapshot(KindPrompt, operation, content)
}

// SnapshotResponse records the response text of a successful live call.
func (w *Writer) SnapshotResponse(operation, content string) {
	w.snapshot(KindResponse, operation, content)
}

// snapshot hands one snapshot to the background worker. The send never
// blocks the completion path: a full queue drops the snapshot with an error
// log.
func (w *Writer) snapshot(kind, operation, content string) {
	if !w.config.Enabled {
		return
	}

	s := &snapshot{
		kind:      kind,
		operation: operation,
		content:   content,
		at:        time.Now(),
	}

	select {
	case w.queue <- s:
	case <-w.done:
		w.logger.Warn("audit writer shutting down, dropping snapshot",
			"operation", operation,
			"kind", kind,
		)
	default:
		w.logger.Error("audit queue full, dropping snapshot",
			"operation", operation,
			"kind", kind,
			"queue_capacity", w.config.AsyncBuffer,
		)
	}
}

// Close drains queued snapshots and stops the background worker.
func (w *Writer) Close() error {
	close(w.done)
	w.wg.Wait()
	return nil
}

func (w *Writer) worker() {
	defer w.wg.Done()

	for {
		select {
		case s := <-w.queue:
			w.write(s)

		case <-w.done:
			// Drain remaining snapshots before exit
			for {
				select {
				case s := <-w.queue:
					w.write(s)
				default:
					return
				}
			}
		}
	}
}

// write persists one snapshot. Filesystem and index errors are logged and
// swallowed.
func (w *Writer) write(s *snapshot) {
	id := uuid.New().String()
	name := fmt.Sprintf("%s-%s-%s-%s.txt",
		s.at.UTC().Format(timestampLayout),
		Slug(s.operation),
		s.kind,
		id[:8],
	)
	path := filepath.Join(w.config.Dir, name)

	if err := os.WriteFile(path, []byte(s.content), 0o644); err != nil {
		w.logger.Error("failed to write audit snapshot",
			"path", path,
			"error", err,
		)
		return
	}

	w.logger.Debug("audit snapshot written",
		"path", path,
		"kind", s.kind,
		"bytes", len(s.content),
	)

	if w.index == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := w.index.Insert(ctx, &IndexEntry{
		ID:        id,
		CreatedAt: s.at,
		Operation: s.operation,
		Kind:      s.kind,
		Path:      path,
	})
	if err != nil {
		w.logger.Error("failed to index audit snapshot",
			"path", path,
			"error", err,
		)
	}
}
