package sqlite

import (
	"database/sql"
	"fmt"
)

// Schema DDL. Statements are idempotent so Attach can run them on every
// start.
const (
	createSessions = `CREATE TABLE IF NOT EXISTS sessions (
    session_id TEXT PRIMARY KEY,
    record TEXT NOT NULL,
    list_count INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);`

	idxSessionsUpdated = `CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);`
)

// upsertSession inserts or replaces a session row. Timestamps are unix
// nanoseconds so ordering and pruning compare integers.
const upsertSession = `INSERT INTO sessions (session_id, record, list_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(session_id) DO UPDATE SET
    record = excluded.record,
    list_count = excluded.list_count,
    updated_at = excluded.updated_at;`

// schemaDDL lists all statements in dependency order.
var schemaDDL = []string{
	createSessions,
	idxSessionsUpdated,
}

// migrate applies the schema.
func migrate(db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt, err)
		}
	}
	return nil
}
