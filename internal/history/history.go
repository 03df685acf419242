// Package history keeps a persistent ledger of every file placement the
// tool performs, so past runs can be audited after the fact.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry describes a single completed placement.
type Entry struct {
	ID         int64
	Pipeline   string
	Link       string
	Author     string
	SourcePath string
	FinalPath  string
	SHA256     string
	Outcome    string
	OccurredAt time.Time
}

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS placements (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    pipeline TEXT NOT NULL,
    link TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL DEFAULT '',
    source_path TEXT NOT NULL,
    final_path TEXT NOT NULL,
    sha256 TEXT NOT NULL DEFAULT '',
    outcome TEXT NOT NULL,
    occurred_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_placements_occurred_at ON placements(occurred_at);
`

// Open initializes or connects to the ledger database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply ledger schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Record appends a placement entry to the ledger.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	occurred := entry.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO placements (
            pipeline, link, author, source_path, final_path, sha256, outcome, occurred_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Pipeline,
		entry.Link,
		entry.Author,
		entry.SourcePath,
		entry.FinalPath,
		entry.SHA256,
		entry.Outcome,
		occurred.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert placement: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, pipeline, link, author, source_path, final_path, sha256, outcome, occurred_at
         FROM placements ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var occurred string
		if err := rows.Scan(
			&entry.ID,
			&entry.Pipeline,
			&entry.Link,
			&entry.Author,
			&entry.SourcePath,
			&entry.FinalPath,
			&entry.SHA256,
			&entry.Outcome,
			&occurred,
		); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, occurred); parseErr == nil {
			entry.OccurredAt = parsed
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate placements: %w", err)
	}
	return entries, nil
}
