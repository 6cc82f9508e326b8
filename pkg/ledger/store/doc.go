// Package store provides ledger.Store implementations: a SQLite backend for
// durable cost accounting and an in-memory backend for tests.
//
// The SQLite backend runs in WAL mode with a busy timeout so the journal's
// background writer and CLI readers can share one database file.
package store
