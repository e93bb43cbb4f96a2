// Package history persists accepted clipboard snapshots in a local SQLite
// database: a size-bounded, searchable history with favorites and tags.
//
// The database file is owned by a single process. All operations serialize
// on an internal mutex held for their full duration, so multi-statement
// sequences never interleave between concurrent callers.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// timeLayout is a fixed-width RFC 3339 UTC format so that lexicographic
// ordering of stored created_at values matches chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Item is a persisted clipboard history entry.
type Item struct {
	ID          int64    `json:"id"`
	ContentType string   `json:"content_type"`
	Content     string   `json:"content"`
	Preview     string   `json:"preview"`
	IsFavorite  bool     `json:"is_favorite"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"created_at"`
}

// Store is a SQLite-backed clipboard history store.
type Store struct {
	mu sync.Mutex
	db *sql.DB

	now func() time.Time
}

// Open creates or opens the history database at path, configures pragmas
// and applies the schema: the history table, the tag relation and a
// full-text index kept synchronized by triggers.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The store serializes access anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
