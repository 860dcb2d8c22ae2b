// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Offline/development backend with automatic schema creation

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"database/sql"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS chat_messages (
			id TEXT PRIMARY KEY,
			owner TEXT NOT NULL,
			sender TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_chat_messages_owner
			ON chat_messages(owner);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

// LoadAll fetches every record for the owner.
// The query deliberately filters on owner equality only and issues no
// ORDER BY: the store contract leaves ordering to the caller, which keeps
// this backend interchangeable with the document store.
func (s *SQLiteStore) LoadAll(ctx context.Context, owner string) ([]*Record, error) {
	query := `
		SELECT id, owner, sender, text, created_at
		FROM chat_messages
		WHERE owner = ?
	`

	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		var createdAtStr string

		if err := rows.Scan(&rec.ID, &rec.Owner, &rec.Sender, &rec.Text, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}

		rec.CreatedAt, err = coerceTimestamp(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing message created_at: %w", err)
		}

		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}

	return records, nil
}

// Append creates one durable record and returns its store-assigned id
func (s *SQLiteStore) Append(ctx context.Context, rec *Record) (string, error) {
	id := uuid.New().String()

	query := `
		INSERT INTO chat_messages (id, owner, sender, text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		id,
		rec.Owner,
		rec.Sender,
		rec.Text,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("inserting message: %w", err)
	}

	s.logger.Debug("saved message", "id", id, "owner", rec.Owner, "sender", rec.Sender)
	return id, nil
}

// DeleteAll removes every record for the owner.
// Each record is deleted independently, mirroring the document store's
// per-document delete; failures are aggregated and the rest proceed.
func (s *SQLiteStore) DeleteAll(ctx context.Context, owner string) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM chat_messages WHERE owner = ?`, owner)
	if err != nil {
		return fmt.Errorf("querying message ids: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scanning message id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterating message ids: %w", err)
	}
	rows.Close()

	var errs []error
	deleted := 0
	for _, id := range ids {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE id = ?`, id); err != nil {
			errs = append(errs, fmt.Errorf("deleting message %s: %w", id, err))
			continue
		}
		deleted++
	}

	s.logger.Debug("deleted messages", "owner", owner, "deleted", deleted, "failed", len(errs))
	return errors.Join(errs...)
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
