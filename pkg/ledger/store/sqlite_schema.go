package store

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the ledger database schema.
const Schema = `
-- Finalized ledger records, one row per bracketed provider call
CREATE TABLE IF NOT EXISTS ledger (
    id TEXT PRIMARY KEY,

    -- Attribution
    session_id TEXT NOT NULL,
    turn_id TEXT NOT NULL,
    operation TEXT NOT NULL,

    -- Routing
    tier TEXT NOT NULL,
    model TEXT NOT NULL,

    -- Usage classes
    input_tokens INTEGER NOT NULL,
    output_tokens INTEGER NOT NULL,
    cache_read_tokens INTEGER NOT NULL,
    cache_write_tokens INTEGER NOT NULL,

    -- Pricing
    cost_usd REAL NOT NULL,

    -- Outcome
    duration_ms INTEGER NOT NULL,
    outcome TEXT NOT NULL,
    error TEXT,

    -- Timestamps
    started_at TIMESTAMP NOT NULL,
    completed_at TIMESTAMP NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_ledger_session ON ledger(session_id);
CREATE INDEX IF NOT EXISTS idx_ledger_operation ON ledger(operation);
CREATE INDEX IF NOT EXISTS idx_ledger_model ON ledger(model);
CREATE INDEX IF NOT EXISTS idx_ledger_completed_at ON ledger(completed_at);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
