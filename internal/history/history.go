// Package history appends every completed editor mutation to an audit table,
// so operators can answer "who changed the home page and when". sqlite is
// the default backing store; postgres is selectable for shared deployments.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/toolsuite/pagebuilder/internal/editor"
)

// Entry is one recorded operation outcome.
type Entry struct {
	ID        int64
	PageKey   string
	SectionID int64
	Operation string
	Level     string
	Message   string
	CreatedAt time.Time
}

// Store persists history entries.
type Store struct {
	db     *sql.DB
	driver string
}

const schema = `
CREATE TABLE IF NOT EXISTS editor_history (
	id %s,
	page_key TEXT NOT NULL,
	section_id BIGINT NOT NULL DEFAULT 0,
	operation TEXT NOT NULL,
	level TEXT NOT NULL,
	message TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
)`

// Open connects to the history store. driver is "sqlite" or "postgres"; dsn
// is a file path or a conninfo string respectively.
func Open(driver, dsn string) (*Store, error) {
	var db *sql.DB
	var err error
	var idColumn string

	switch driver {
	case "sqlite":
		db, err = sql.Open("sqlite", dsn)
		idColumn = "INTEGER PRIMARY KEY AUTOINCREMENT"
	case "postgres":
		db, err = sql.Open("postgres", dsn)
		idColumn = "BIGSERIAL PRIMARY KEY"
	default:
		return nil, fmt.Errorf("history: unsupported driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", driver, err)
	}

	if _, err := db.Exec(fmt.Sprintf(schema, idColumn)); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create table: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind converts ? placeholders to $N for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

// Record appends one entry.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO editor_history (page_key, section_id, operation, level, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		entry.PageKey, entry.SectionID, entry.Operation, entry.Level, entry.Message, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	return nil
}

// Recent returns the newest entries for a page, most recent first.
func (s *Store) Recent(ctx context.Context, pageKey string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, page_key, section_id, operation, level, message, created_at
		 FROM editor_history WHERE page_key = ?
		 ORDER BY id DESC LIMIT ?`),
		pageKey, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.PageKey, &e.SectionID, &e.Operation, &e.Level, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Recorder adapts the store to the editor's notification channel. Only
// settled mutation outcomes are recorded; info-level notices (e.g. "no
// changes") are skipped.
func (s *Store) Recorder() editor.Notifier {
	return editor.NotifierFunc(func(n editor.Notice) {
		if n.Level == editor.LevelInfo {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Record(ctx, Entry{
			PageKey:   n.PageKey,
			SectionID: n.SectionID,
			Operation: n.Operation,
			Level:     string(n.Level),
			Message:   n.Message,
			CreatedAt: n.At,
		})
	})
}
