package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// SchemaVersion is the current ledger schema version.
const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    network TEXT NOT NULL,
    mode TEXT NOT NULL,              -- 'simple' or 'competitive'
    infection_prob REAL NOT NULL,
    inoculation_prob REAL NOT NULL,
    patient_zero TEXT NOT NULL,
    inoculator TEXT,
    seed INTEGER NOT NULL,
    rounds INTEGER NOT NULL,
    outcome TEXT NOT NULL,
    node_count INTEGER NOT NULL,
    infected_count INTEGER NOT NULL,
    inoculated_count INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// InitSchema creates the ledger tables and records the schema version.
func InitSchema(ctx context.Context, db *sql.DB) error {
	var current int
	err := db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&current)
	if err == nil && current >= SchemaVersion {
		return nil
	}

	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return errors.Wrap(err, "failed to create schema")
	}
	if _, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO schema_version (version) VALUES (?)`, SchemaVersion); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}
	return nil
}
