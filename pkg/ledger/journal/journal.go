package journal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/callisto/pkg/ledger"
)

// Config contains configuration for the activity journal.
type Config struct {
	// Enabled enables activity journaling.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 256
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default journal configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  256,
		WriteTimeout: 5 * time.Second,
	}
}

// Journal brackets live provider calls and writes finalized records to a
// ledger store asynchronously.
type Journal struct {
	store      ledger.Store
	config     *Config
	recordChan chan *ledger.Record
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger

	// pending tracks activities that have been opened but not yet finalized
	pending sync.Map // map[activityID]*pendingActivity
}

type pendingActivity struct {
	activity  ledger.Activity
	startedAt time.Time
}

// NewJournal creates a new activity journal writing through the provided
// store.
func NewJournal(store ledger.Store, config *Config) *Journal {
	if config == nil {
		config = DefaultConfig()
	}

	j := &Journal{
		store:      store,
		config:     config,
		recordChan: make(chan *ledger.Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "ledger.journal"),
	}

	// Background worker drains the channel
	j.wg.Add(1)
	go j.worker()

	j.logger.Info("activity journal initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return j
}

// OpenActivity registers the start of one live provider call and returns
// the activity ID used to finalize the bracket. Returns an empty ID when
// journaling is disabled; the finalizing methods treat an empty ID as a
// no-op.
func (j *Journal) OpenActivity(ctx context.Context, activity ledger.Activity) string {
	if !j.config.Enabled {
		return ""
	}

	id := uuid.New().String()
	j.pending.Store(id, &pendingActivity{
		activity:  activity,
		startedAt: time.Now(),
	})

	j.logger.Debug("activity opened",
		"activity_id", id,
		"session", activity.Session,
		"operation", activity.Operation,
		"model", activity.Model,
	)

	return id
}

// CloseActivity finalizes the bracket for a call that ended. A nil callErr
// means the call succeeded and a usage record is still expected, so the
// activity stays pending for RecordUsage. A non-nil callErr finalizes the
// bracket immediately as a failure with zero usage.
func (j *Journal) CloseActivity(ctx context.Context, activityID string, callErr error) {
	if activityID == "" {
		return
	}

	if callErr == nil {
		j.logger.Debug("activity closed, awaiting usage", "activity_id", activityID)
		return
	}

	value, ok := j.pending.LoadAndDelete(activityID)
	if !ok {
		j.logger.Warn("no pending activity for close", "activity_id", activityID)
		return
	}
	p := value.(*pendingActivity)

	now := time.Now()
	j.enqueue(&ledger.Record{
		ID:          activityID,
		Session:     p.activity.Session,
		Turn:        p.activity.Turn,
		Operation:   p.activity.Operation,
		Tier:        p.activity.Tier,
		Model:       p.activity.Model,
		Duration:    now.Sub(p.startedAt),
		Outcome:     ledger.OutcomeFailure,
		Error:       callErr.Error(),
		StartedAt:   p.startedAt,
		CompletedAt: now,
	})
}

// RecordUsage finalizes a successful bracket with the usage and cost
// observed for the call.
func (j *Journal) RecordUsage(ctx context.Context, activityID string, usage ledger.Usage, cost float64) {
	if activityID == "" {
		return
	}

	value, ok := j.pending.LoadAndDelete(activityID)
	if !ok {
		j.logger.Warn("no pending activity for usage record", "activity_id", activityID)
		return
	}
	p := value.(*pendingActivity)

	now := time.Now()
	j.enqueue(&ledger.Record{
		ID:          activityID,
		Session:     p.activity.Session,
		Turn:        p.activity.Turn,
		Operation:   p.activity.Operation,
		Tier:        p.activity.Tier,
		Model:       p.activity.Model,
		Usage:       usage,
		Cost:        cost,
		Duration:    now.Sub(p.startedAt),
		Outcome:     ledger.OutcomeSuccess,
		StartedAt:   p.startedAt,
		CompletedAt: now,
	})
}

// Close gracefully shuts down the journal by draining the async channel and
// waiting for all pending writes to complete.
func (j *Journal) Close() error {
	j.logger.Info("shutting down activity journal")

	close(j.done)
	j.wg.Wait()

	j.logger.Info("activity journal shut down complete")
	return nil
}

// enqueue hands a finalized record to the background worker. The send never
// blocks the completion path: a full channel drops the record with an error
// log.
func (j *Journal) enqueue(record *ledger.Record) {
	select {
	case j.recordChan <- record:
		j.logger.Debug("record enqueued for writing",
			"record_id", record.ID,
			"outcome", record.Outcome,
		)
	case <-j.done:
		j.logger.Warn("journal shutting down, dropping record", "record_id", record.ID)
	default:
		j.logger.Error("journal channel full, dropping record",
			"record_id", record.ID,
			"channel_capacity", j.config.AsyncBuffer,
		)
	}
}

// worker is the background goroutine that drains the record channel and
// writes records to storage.
func (j *Journal) worker() {
	defer j.wg.Done()

	for {
		select {
		case record := <-j.recordChan:
			j.writeRecord(record)

		case <-j.done:
			// Drain remaining records before exit
			for {
				select {
				case record := <-j.recordChan:
					j.writeRecord(record)
				default:
					j.logger.Info("journal channel drained")
					return
				}
			}
		}
	}
}

// writeRecord writes a single finalized record to storage.
func (j *Journal) writeRecord(record *ledger.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), j.config.WriteTimeout)
	defer cancel()

	if err := j.store.Insert(ctx, record); err != nil {
		j.logger.Error("failed to store ledger record",
			"record_id", record.ID,
			"error", err,
		)
		return
	}

	j.logger.Info("activity recorded",
		"record_id", record.ID,
		"operation", record.Operation,
		"model", record.Model,
		"outcome", record.Outcome,
		"cost_usd", record.Cost,
		"duration_ms", record.Duration.Milliseconds(),
	)
}
