// Package storage persists index documents in SQLite. JSON payloads keep
// the full document; denormalized columns support cheap listing without
// unmarshaling.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/semdex/internal/semdb"
)

// Store is a SQLite-backed document store with replace-by-URI semantics.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at dbPath and ensures the schema
// exists.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}
	if version == "0" {
		if err := CreateSchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun records the start of an indexing run.
func (s *Store) BeginRun(runID, root string, startedAt time.Time) error {
	_, err := sq.Insert("runs").
		Columns("run_id", "root", "started_at").
		Values(runID, root, startedAt.UTC().Format(time.RFC3339)).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", runID, err)
	}
	return nil
}

// FinishRun stores the final file count of a run.
func (s *Store) FinishRun(runID string, fileCount int) error {
	_, err := sq.Update("runs").
		Set("file_count", fileCount).
		Where(sq.Eq{"run_id": runID}).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	return nil
}

// SaveDocument replaces any stored document with the same URI. The delete
// and insert are atomic.
func (s *Store) SaveDocument(doc *semdb.Document, runID string) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", doc.URI, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := sq.Delete("documents").Where(sq.Eq{"uri": doc.URI}).RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("failed to clear document %s: %w", doc.URI, err)
	}

	_, err = sq.Insert("documents").
		Columns("uri", "language", "md5", "occurrence_count", "symbol_count", "payload", "run_id", "indexed_at").
		Values(
			doc.URI,
			doc.Language,
			doc.MD5,
			len(doc.Occurrences),
			len(doc.Symbols),
			string(payload),
			runID,
			time.Now().UTC().Format(time.RFC3339),
		).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert document %s: %w", doc.URI, err)
	}

	return tx.Commit()
}

// GetDocument loads a document by URI. A missing URI returns nil.
func (s *Store) GetDocument(uri string) (*semdb.Document, error) {
	var payload string
	err := sq.Select("payload").
		From("documents").
		Where(sq.Eq{"uri": uri}).
		RunWith(s.db).
		QueryRow().
		Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", uri, err)
	}

	var doc semdb.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document %s: %w", uri, err)
	}
	return &doc, nil
}

// DocumentSummary is one row of ListDocuments.
type DocumentSummary struct {
	URI         string
	Language    string
	MD5         string
	Occurrences int
	Symbols     int
}

// ListDocuments returns stored document summaries ordered by URI.
func (s *Store) ListDocuments() ([]DocumentSummary, error) {
	rows, err := sq.Select("uri", "language", "md5", "occurrence_count", "symbol_count").
		From("documents").
		OrderBy("uri").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentSummary
	for rows.Next() {
		var d DocumentSummary
		if err := rows.Scan(&d.URI, &d.Language, &d.MD5, &d.Occurrences, &d.Symbols); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
