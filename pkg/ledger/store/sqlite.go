package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/callisto/pkg/ledger"
)

// SQLiteConfig contains configuration for the SQLite ledger backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/ledger.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements the ledger.Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite ledger backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "ledger.store.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, ledger.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite ledger store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return ledger.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return ledger.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return ledger.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return ledger.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return ledger.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return ledger.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Insert persists one finalized record.
func (s *SQLiteStore) Insert(ctx context.Context, record *ledger.Record) error {
	query := `
		INSERT INTO ledger (
			id, session_id, turn_id, operation,
			tier, model,
			input_tokens, output_tokens, cache_read_tokens, cache_write_tokens,
			cost_usd,
			duration_ms, outcome, error,
			started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errorVal interface{}
	if record.Error != "" {
		errorVal = record.Error
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.Session, record.Turn, record.Operation,
		record.Tier, record.Model,
		record.Usage.InputTokens, record.Usage.OutputTokens, record.Usage.CacheReadTokens, record.Usage.CacheWriteTokens,
		record.Cost,
		record.Duration.Milliseconds(), record.Outcome, errorVal,
		record.StartedAt, record.CompletedAt,
	)
	if err != nil {
		return ledger.NewStorageError("sqlite", "insert", err)
	}

	return nil
}

// Query retrieves records matching the filter, newest first.
func (s *SQLiteStore) Query(ctx context.Context, filter *ledger.Filter) ([]*ledger.Record, error) {
	whereClause, args := buildWhereClause(filter)

	sqlQuery := `
		SELECT id, session_id, turn_id, operation,
		       tier, model,
		       input_tokens, output_tokens, cache_read_tokens, cache_write_tokens,
		       cost_usd,
		       duration_ms, outcome, error,
		       started_at, completed_at
		FROM ledger
	`
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY completed_at DESC"

	limit := 100
	if filter != nil && filter.Limit > 0 {
		limit = filter.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if filter != nil && filter.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, ledger.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*ledger.Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, ledger.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Summarize aggregates matching records by (operation, model).
func (s *SQLiteStore) Summarize(ctx context.Context, filter *ledger.Filter) ([]*ledger.Summary, error) {
	whereClause, args := buildWhereClause(filter)

	sqlQuery := `
		SELECT operation, model, COUNT(*),
		       SUM(input_tokens), SUM(output_tokens), SUM(cache_read_tokens), SUM(cache_write_tokens),
		       SUM(cost_usd)
		FROM ledger
	`
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " GROUP BY operation, model ORDER BY SUM(cost_usd) DESC"

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, ledger.NewStorageError("sqlite", "summarize", err)
	}
	defer rows.Close()

	summaries := []*ledger.Summary{}
	for rows.Next() {
		sum := &ledger.Summary{}
		err := rows.Scan(
			&sum.Operation, &sum.Model, &sum.Calls,
			&sum.Usage.InputTokens, &sum.Usage.OutputTokens, &sum.Usage.CacheReadTokens, &sum.Usage.CacheWriteTokens,
			&sum.Cost,
		)
		if err != nil {
			return nil, ledger.NewStorageError("sqlite", "scan", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.NewStorageError("sqlite", "summarize", err)
	}

	return summaries, nil
}

// Count returns the number of records matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter *ledger.Filter) (int64, error) {
	whereClause, args := buildWhereClause(filter)

	sqlQuery := "SELECT COUNT(*) FROM ledger"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, ledger.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Prune deletes records completed before the cutoff.
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM ledger WHERE completed_at < ?", olderThan)
	if err != nil {
		return 0, ledger.NewStorageError("sqlite", "prune", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, ledger.NewStorageError("sqlite", "prune", err)
	}

	return count, nil
}

// Close releases resources held by the store.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return ledger.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite ledger store closed")
	return nil
}

// buildWhereClause builds a SQL WHERE clause from filter fields.
// Returns the clause (without the "WHERE" keyword) and the query arguments.
func buildWhereClause(filter *ledger.Filter) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}

	var conditions []string
	var args []interface{}

	if filter.Session != "" {
		conditions = append(conditions, "session_id = ?")
		args = append(args, filter.Session)
	}
	if filter.Operation != "" {
		conditions = append(conditions, "operation = ?")
		args = append(args, filter.Operation)
	}
	if filter.Model != "" {
		conditions = append(conditions, "model = ?")
		args = append(args, filter.Model)
	}
	if filter.Tier != "" {
		conditions = append(conditions, "tier = ?")
		args = append(args, filter.Tier)
	}
	if filter.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, filter.Outcome)
	}
	if filter.Since != nil {
		conditions = append(conditions, "completed_at >= ?")
		args = append(args, *filter.Since)
	}
	if filter.Until != nil {
		conditions = append(conditions, "completed_at <= ?")
		args = append(args, *filter.Until)
	}

	clause := ""
	for i, cond := range conditions {
		if i > 0 {
			clause += " AND "
		}
		clause += cond
	}
	return clause, args
}

// scanRecord scans one ledger row into a record.
func scanRecord(rows *sql.Rows) (*ledger.Record, error) {
	record := &ledger.Record{}
	var durationMs int64
	var errorVal sql.NullString

	err := rows.Scan(
		&record.ID, &record.Session, &record.Turn, &record.Operation,
		&record.Tier, &record.Model,
		&record.Usage.InputTokens, &record.Usage.OutputTokens, &record.Usage.CacheReadTokens, &record.Usage.CacheWriteTokens,
		&record.Cost,
		&durationMs, &record.Outcome, &errorVal,
		&record.StartedAt, &record.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Duration = time.Duration(durationMs) * time.Millisecond
	if errorVal.Valid {
		record.Error = errorVal.String
	}

	return record, nil
}
