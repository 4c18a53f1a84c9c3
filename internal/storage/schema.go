package storage

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables and indexes for the document store.
// All schema creation succeeds or fails together.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"metadata", createMetadataTable},
		{"runs", createRunsTable},
		{"documents", createDocumentsTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range schemaIndexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)",
		schemaVersion,
	); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return tx.Commit()
}

// GetSchemaVersion returns the stored schema version, "0" for a fresh
// database.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var exists int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='metadata'",
	).Scan(&exists)
	if err != nil {
		return "", err
	}
	if exists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM metadata WHERE key='schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "0", nil
	}
	if err != nil {
		return "", err
	}
	return version, nil
}

const schemaVersion = "1"

const createMetadataTable = `
CREATE TABLE IF NOT EXISTS metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
    run_id     TEXT PRIMARY KEY,
    root       TEXT NOT NULL,
    started_at TEXT NOT NULL,
    file_count INTEGER NOT NULL DEFAULT 0
)`

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS documents (
    uri              TEXT PRIMARY KEY,
    language         TEXT NOT NULL,
    md5              TEXT NOT NULL,
    occurrence_count INTEGER NOT NULL,
    symbol_count     INTEGER NOT NULL,
    payload          TEXT NOT NULL,
    run_id           TEXT NOT NULL REFERENCES runs(run_id),
    indexed_at       TEXT NOT NULL
)`

var schemaIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_documents_run ON documents(run_id)",
	"CREATE INDEX IF NOT EXISTS idx_documents_language ON documents(language)",
}
