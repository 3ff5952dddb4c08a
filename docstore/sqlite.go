package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/kiezwerk/kiez/catalog"
)

// SQLite persists the catalog as a single row holding the JSON document.
// The relational engine serves purely as an implementation of the document
// contract: load reads the one row, save replaces it in a transaction.
type SQLite struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS catalog_document (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	revision   TEXT NOT NULL,
	body       TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// NewSQLite opens (creating if needed) a SQLite-backed document store at path.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("docstore: sqlite path required")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("docstore: open sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("docstore: create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Load reads the document row. No row yet means an empty catalog.
func (s *SQLite) Load(ctx context.Context) (catalog.Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM catalog_document WHERE id = 1`).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Document{}, nil
	}
	if err != nil {
		return catalog.Document{}, fmt.Errorf("%w: read document row: %v", catalog.ErrStorageUnavailable, err)
	}
	var doc catalog.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return catalog.Document{}, fmt.Errorf("%w: parse document row: %v", catalog.ErrStorageUnavailable, err)
	}
	return doc, nil
}

// Save replaces the document row transactionally.
func (s *SQLite) Save(ctx context.Context, doc catalog.Document) error {
	doc.Revision = uuid.New().String()
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode document: %v", catalog.ErrStorageUnavailable, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", catalog.ErrStorageUnavailable, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO catalog_document (id, revision, body, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET revision = excluded.revision,
			body = excluded.body, updated_at = excluded.updated_at`,
		doc.Revision, string(b), time.Now().UTC())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: write document row: %v", catalog.ErrStorageUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", catalog.ErrStorageUnavailable, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
