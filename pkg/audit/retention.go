package audit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig controls scheduled pruning of old snapshots.
type RetentionConfig struct {
	// MaxAge is how long snapshots are kept. 0 keeps them forever.
	MaxAge time.Duration

	// Schedule is a cron expression for when pruning runs.
	// Example: "0 3 * * *" (daily at 3 AM). Empty disables the scheduler;
	// Prune can still be called directly.
	Schedule string
}

// DefaultRetentionConfig returns the default retention configuration:
// snapshots kept 30 days, pruned daily at 3 AM.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		MaxAge:   30 * 24 * time.Hour,
		Schedule: "0 3 * * *",
	}
}

// Retention prunes old snapshot files, and their index entries when an
// index is attached, on a cron schedule.
type Retention struct {
	dir     string
	index   *Index
	config  *RetentionConfig
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewRetention creates a retention pruner for the snapshot directory. The
// index is optional.
func NewRetention(dir string, index *Index, config *RetentionConfig) *Retention {
	if config == nil {
		config = DefaultRetentionConfig()
	}

	return &Retention{
		dir:    dir,
		index:  index,
		config: config,
		cron:   cron.New(),
		logger: slog.Default().With("component", "audit.retention"),
	}
}

// Start begins scheduled pruning. If no schedule is configured the
// scheduler does nothing.
func (r *Retention) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.config.Schedule == "" {
		r.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	// Validate cron expression
	if _, err := cron.ParseStandard(r.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", r.config.Schedule, err)
	}

	_, err := r.cron.AddFunc(r.config.Schedule, func() {
		r.runPruning(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	r.cron.Start()
	r.running = true

	r.logger.Info("audit retention scheduler started",
		"schedule", r.config.Schedule,
		"max_age", r.config.MaxAge,
	)

	// Wait for context cancellation in background
	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	return nil
}

// runPruning executes a pruning cycle.
func (r *Retention) runPruning(ctx context.Context) {
	deleted, err := r.Prune(ctx)
	if err != nil {
		r.logger.Error("scheduled audit pruning failed",
			"error", err,
		)
		return
	}

	if deleted > 0 {
		r.logger.Info("scheduled audit pruning completed",
			"deleted_count", deleted,
		)
	} else {
		r.logger.Debug("scheduled audit pruning completed, no snapshots deleted")
	}
}

// Prune deletes snapshot files older than MaxAge and returns how many were
// removed. A MaxAge of 0 keeps everything. Individual removal failures are
// logged and skipped.
func (r *Retention) Prune(ctx context.Context) (int, error) {
	if r.config.MaxAge <= 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-r.config.MaxAge)

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read audit directory %q: %w", r.dir, err)
	}

	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			r.logger.Warn("failed to stat snapshot",
				"name", entry.Name(),
				"error", err,
			)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(r.dir, entry.Name())); err != nil {
			r.logger.Warn("failed to remove snapshot",
				"name", entry.Name(),
				"error", err,
			)
			continue
		}
		deleted++
	}

	if r.index != nil {
		if _, err := r.index.DeleteOlderThan(ctx, cutoff); err != nil {
			r.logger.Warn("failed to prune snapshot index",
				"error", err,
			)
		}
	}

	return deleted, nil
}

// Stop stops the scheduler and waits for any running prune to complete.
func (r *Retention) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil && r.running {
		ctx := r.cron.Stop()
		<-ctx.Done() // Wait for running jobs to finish
		r.running = false
		r.logger.Info("audit retention scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (r *Retention) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.running
}

// NextRun returns the next scheduled pruning time.
func (r *Retention) NextRun() *time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
