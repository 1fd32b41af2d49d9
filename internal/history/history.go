// Package history persists one row per completion round trip in a local
// SQLite database. It implements llm.RequestLog; failures here are
// logged by the caller and never interrupt a request.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/studykit/studykit/internal/llm"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS llm_requests (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at        TEXT    NOT NULL,
	provider          TEXT    NOT NULL,
	model             TEXT    NOT NULL,
	purpose           TEXT    NOT NULL,
	latency_ms        INTEGER NOT NULL,
	prompt_tokens     INTEGER NOT NULL,
	completion_tokens INTEGER NOT NULL,
	success           INTEGER NOT NULL,
	error             TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_llm_requests_created_at ON llm_requests (created_at);
`

// Store is the SQLite-backed request log.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at dsn, applies pragmas and
// creates the table when missing.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append records one completion round trip.
func (s *Store) Append(ctx context.Context, entry llm.LogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO llm_requests
			(created_at, provider, model, purpose, latency_ms, prompt_tokens, completion_tokens, success, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano),
		string(entry.Provider),
		entry.Model,
		string(entry.Purpose),
		entry.LatencyMs,
		entry.PromptTokens,
		entry.CompletionTokens,
		boolToInt(entry.Success),
		entry.Error,
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

// Record is one persisted request with its timestamp.
type Record struct {
	CreatedAt time.Time
	llm.LogEntry
}

// Recent returns the latest n requests, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT created_at, provider, model, purpose, latency_ms, prompt_tokens, completion_tokens, success, error
		FROM llm_requests
		ORDER BY id DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r       Record
			created string
			success int
		)
		if err := rows.Scan(&created, &r.Provider, &r.Model, &r.Purpose,
			&r.LatencyMs, &r.PromptTokens, &r.CompletionTokens, &success, &r.Error); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		r.Success = success != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// applyPragmas configures SQLite for single-user local use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultPath resolves the database file path in priority order:
// 1. STUDYKIT_DB environment variable
// 2. $XDG_DATA_HOME/studykit/history.db
// 3. ~/.local/share/studykit/history.db
func DefaultPath() (string, error) {
	if p := os.Getenv("STUDYKIT_DB"); p != "" {
		return p, ensureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "studykit", "history.db")
	return p, ensureDir(p)
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
