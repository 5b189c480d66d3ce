// Package store persists the entities in internal/entities to an embedded
// SQLite database (spec §3, §5), following the teacher's LocalStore
// opening idiom in internal/store/local_core.go: single-connection WAL
// mode, busy_timeout, synchronous=NORMAL, with mattn/go-sqlite3 as the
// primary driver.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"anamnesis/internal/logging"
)

// Store owns the project's SQLite connection and exposes the per-entity
// CRUD façades in concepts.go, patterns.go, insights.go, sessions.go.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Open creates (if absent) and opens the database at path, applying the
// embedded schema and any pending migrations.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: creating %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 30000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			logging.Get(logging.CategoryStore).Warn("failed to apply %q: %v", pragma, err)
		}
	}

	s := &Store{db: db, dbPath: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrating: %w", err)
	}
	logging.Store("opened database at %s", path)
	return s, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the raw connection for packages (services) that need
// transaction-scoped access beyond the per-entity façades.
func (s *Store) DB() *sql.DB { return s.db }
