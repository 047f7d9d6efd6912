// Package sqlite keeps a local, queryable copy of the document streams in a
// single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/climbr-etl/internal/domain"

	_ "modernc.org/sqlite"
)

// Store upserts documents keyed by (index_name, id).
// It implements pipeline.StreamLoader.
type Store struct {
	db     *sql.DB
	runID  string
	logger *slog.Logger
}

// Open creates the database directory and schema if needed.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases
	// shared across calls.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, runID: uuid.NewString(), logger: logger}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
  index_name TEXT NOT NULL,
  id INTEGER NOT NULL,
  body TEXT NOT NULL,
  run_id TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  PRIMARY KEY (index_name, id)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

// Name identifies the sink in logs and metrics.
func (s *Store) Name() string { return "sqlite" }

// LoadStream replaces the stored copy of an index in one transaction. Rows
// beyond the new stream length are removed so a shorter rerun leaves no
// stale documents behind.
func (s *Store) LoadStream(ctx context.Context, stream domain.Stream) error {
	const upsert = `
INSERT INTO documents (index_name, id, body, run_id, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(index_name, id) DO UPDATE SET
  body=excluded.body,
  run_id=excluded.run_id,
  updated_at=excluded.updated_at;
`
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	updatedAt := time.Now().UTC().Format(time.RFC3339)
	for _, doc := range stream.Documents {
		body, err := json.Marshal(doc.Body)
		if err != nil {
			return fmt.Errorf("serialize %s document %d: %w", doc.Index, doc.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, stream.Index, doc.ID, string(body), s.runID, updatedAt); err != nil {
			return fmt.Errorf("upsert %s document %d: %w", stream.Index, doc.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE index_name = ? AND id >= ?`,
		stream.Index, len(stream.Documents)); err != nil {
		return fmt.Errorf("prune %s: %w", stream.Index, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", stream.Index, err)
	}
	s.logger.Debug("stream stored", "index", stream.Index, "documents", len(stream.Documents))
	return nil
}

// Count returns the number of stored documents for index.
func (s *Store) Count(ctx context.Context, index string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE index_name = ?`, index).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", index, err)
	}
	return n, nil
}

// Body returns the stored JSON body of one document.
func (s *Store) Body(ctx context.Context, index string, id int) (json.RawMessage, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE index_name = ? AND id = ?`, index, id).Scan(&body)
	if err != nil {
		return nil, fmt.Errorf("read %s document %d: %w", index, id, err)
	}
	return json.RawMessage(body), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
