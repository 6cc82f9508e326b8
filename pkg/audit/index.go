package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// indexSchema is the snapshot catalog schema.
const indexSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	operation  TEXT NOT NULL,
	kind       TEXT NOT NULL,
	path       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);
CREATE INDEX IF NOT EXISTS idx_snapshots_operation ON snapshots(operation);
`

// IndexEntry is one cataloged snapshot file.
type IndexEntry struct {
	ID        string
	CreatedAt time.Time
	Operation string
	Kind      string
	Path      string
}

// Index catalogs written snapshots in a CGO-free SQLite database so they can
// be listed without walking the audit directory.
type Index struct {
	db        *sql.DB
	mu        sync.Mutex
	closeOnce sync.Once

	insertStmt *sql.Stmt
	listStmt   *sql.Stmt
	deleteStmt *sql.Stmt
}

// NewIndex opens the snapshot index at path, creating it if needed.
func NewIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("index path cannot be empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot index: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ix := &Index{db: db}
	if err := ix.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return ix, nil
}

func (ix *Index) initialize() error {
	if _, err := ix.db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := ix.db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := ix.db.Exec(indexSchema); err != nil {
		return fmt.Errorf("failed to create snapshot index schema: %w", err)
	}

	var err error

	ix.insertStmt, err = ix.db.Prepare(`
		INSERT INTO snapshots (id, created_at, operation, kind, path)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	ix.listStmt, err = ix.db.Prepare(`
		SELECT id, created_at, operation, kind, path
		FROM snapshots
		ORDER BY created_at DESC
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	ix.deleteStmt, err = ix.db.Prepare(`
		DELETE FROM snapshots
		WHERE created_at < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	return nil
}

// Insert catalogs one written snapshot.
func (ix *Index) Insert(ctx context.Context, entry *IndexEntry) error {
	if entry == nil {
		return fmt.Errorf("entry cannot be nil")
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	_, err := ix.insertStmt.ExecContext(ctx,
		entry.ID,
		entry.CreatedAt.UnixNano(),
		entry.Operation,
		entry.Kind,
		entry.Path,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot entry: %w", err)
	}

	return nil
}

// List returns the most recent entries, newest first. A non-positive limit
// defaults to 50.
func (ix *Index) List(ctx context.Context, limit int) ([]*IndexEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	rows, err := ix.listStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot entries: %w", err)
	}
	defer rows.Close()

	var entries []*IndexEntry
	for rows.Next() {
		var (
			entry IndexEntry
			ns    int64
		)
		if err := rows.Scan(&entry.ID, &ns, &entry.Operation, &entry.Kind, &entry.Path); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot entry: %w", err)
		}
		entry.CreatedAt = time.Unix(0, ns)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot entries: %w", err)
	}

	return entries, nil
}

// Count returns the number of cataloged snapshots.
func (ix *Index) Count(ctx context.Context) (int64, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	var count int64
	if err := ix.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM snapshots").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count snapshot entries: %w", err)
	}
	return count, nil
}

// DeleteOlderThan removes catalog entries recorded before the cutoff and
// returns how many were removed.
func (ix *Index) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	result, err := ix.deleteStmt.ExecContext(ctx, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to delete snapshot entries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// Close releases the database. Close is idempotent and safe to call multiple
// times.
func (ix *Index) Close() error {
	var closeErr error

	ix.closeOnce.Do(func() {
		if ix.insertStmt != nil {
			ix.insertStmt.Close()
		}
		if ix.listStmt != nil {
			ix.listStmt.Close()
		}
		if ix.deleteStmt != nil {
			ix.deleteStmt.Close()
		}
		if ix.db != nil {
			closeErr = ix.db.Close()
		}
	})

	return closeErr
}
