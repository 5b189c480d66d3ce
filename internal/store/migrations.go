package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"anamnesis/internal/logging"
)

// Migration is one versioned, checksummed schema step (spec §5). DownSQL
// is optional — a migration with no DownSQL cannot be rolled back.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

func (m Migration) checksum() string {
	sum := sha256.Sum256([]byte(m.UpSQL))
	return hex.EncodeToString(sum[:])
}

// RollbackUnsupportedError is returned by Rollback when the target
// migration has no DownSQL.
type RollbackUnsupportedError struct {
	Version int
	Name    string
}

func (e *RollbackUnsupportedError) Error() string {
	return fmt.Sprintf("store: migration %d (%s) has no down migration", e.Version, e.Name)
}

// MigrationStatus reports the applied/pending state of the schema.
type MigrationStatus struct {
	CurrentVersion int
	Applied        []int
	Pending        []int
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		UpSQL: `
CREATE TABLE IF NOT EXISTS semantic_concepts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	concept_type TEXT NOT NULL,
	file_path TEXT NOT NULL,
	description TEXT,
	line_start INTEGER,
	line_end INTEGER,
	relationships TEXT,
	confidence REAL DEFAULT 1.0,
	metadata TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_concepts_file ON semantic_concepts(file_path);
CREATE INDEX IF NOT EXISTS idx_concepts_name ON semantic_concepts(name);

CREATE TABLE IF NOT EXISTS developer_patterns (
	id TEXT PRIMARY KEY,
	pattern_type TEXT NOT NULL,
	name TEXT NOT NULL,
	frequency INTEGER DEFAULT 1,
	examples TEXT,
	file_paths TEXT,
	confidence REAL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS ai_insights (
	id TEXT PRIMARY KEY,
	insight_type TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	affected_files TEXT,
	confidence REAL DEFAULT 0,
	severity TEXT,
	suggested_action TEXT,
	metadata TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS work_sessions (
	id TEXT PRIMARY KEY,
	name TEXT,
	feature TEXT,
	files TEXT,
	tasks TEXT,
	notes TEXT,
	metadata TEXT,
	started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	ended_at DATETIME
);

CREATE TABLE IF NOT EXISTS project_decisions (
	id TEXT PRIMARY KEY,
	decision TEXT NOT NULL,
	context TEXT,
	rationale TEXT,
	session_id TEXT,
	related_files TEXT,
	tags TEXT,
	metadata TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`,
		DownSQL: `
DROP TABLE IF EXISTS semantic_concepts;
DROP TABLE IF EXISTS developer_patterns;
DROP TABLE IF EXISTS ai_insights;
DROP TABLE IF EXISTS work_sessions;
DROP TABLE IF EXISTS project_decisions;
`,
	},
	{
		Version: 2,
		Name:    "architectural_decisions_and_file_intelligence",
		UpSQL: `
CREATE TABLE IF NOT EXISTS architectural_decisions (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	context TEXT,
	decision TEXT,
	status TEXT DEFAULT 'PROPOSED',
	consequences TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS file_intelligence (
	id TEXT PRIMARY KEY,
	file_path TEXT NOT NULL UNIQUE,
	metadata TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`,
		// no DownSQL: this migration is intentionally one-way once ADRs exist.
	},
	{
		Version: 3,
		Name:    "project_metadata_and_maps",
		UpSQL: `
CREATE TABLE IF NOT EXISTS project_metadata (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	metadata TEXT,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS feature_maps (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	metadata TEXT,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS entry_points (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	file_path TEXT NOT NULL,
	metadata TEXT
);

CREATE TABLE IF NOT EXISTS key_directories (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	metadata TEXT
);
`,
		DownSQL: `
DROP TABLE IF EXISTS project_metadata;
DROP TABLE IF EXISTS feature_maps;
DROP TABLE IF EXISTS entry_points;
DROP TABLE IF EXISTS key_directories;
`,
	},
}

// migrate applies every pending migration in version order inside its own
// transaction, recording it in _migrations with a checksum of its UpSQL —
// grounded on the teacher's migrations.go tableExists/columnExists
// idempotence idiom, generalized from column-add migrations to full
// versioned schema steps.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS _migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`); err != nil {
		return fmt.Errorf("creating _migrations table: %w", err)
	}

	applied, err := s.appliedVersions()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := s.applyMigration(m); err != nil {
			return fmt.Errorf("applying migration %d (%s): %w", m.Version, m.Name, err)
		}
		logging.Store("applied migration %d: %s", m.Version, m.Name)
	}
	return nil
}

func (s *Store) applyMigration(m Migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.UpSQL); err != nil {
		return err
	}
	if _, err := tx.Exec(
		`INSERT INTO _migrations (version, name, checksum) VALUES (?, ?, ?)`,
		m.Version, m.Name, m.checksum(),
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) appliedVersions() (map[int]bool, error) {
	rows, err := s.db.Query(`SELECT version FROM _migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// Rollback reverts every migration above targetVersion, in descending
// version order, failing with *RollbackUnsupportedError on the first
// migration with no DownSQL.
func (s *Store) Rollback(targetVersion int) error {
	applied, err := s.appliedVersions()
	if err != nil {
		return err
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		if m.Version <= targetVersion || !applied[m.Version] {
			continue
		}
		if m.DownSQL == "" {
			return &RollbackUnsupportedError{Version: m.Version, Name: m.Name}
		}
		if err := s.revertMigration(m); err != nil {
			return fmt.Errorf("reverting migration %d (%s): %w", m.Version, m.Name, err)
		}
		logging.Store("reverted migration %d: %s", m.Version, m.Name)
	}
	return nil
}

func (s *Store) revertMigration(m Migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.DownSQL); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM _migrations WHERE version = ?`, m.Version); err != nil {
		return err
	}
	return tx.Commit()
}

// CurrentSchemaVersion returns the highest version number this binary
// knows how to migrate to.
func CurrentSchemaVersion() int {
	max := 0
	for _, m := range migrations {
		if m.Version > max {
			max = m.Version
		}
	}
	return max
}

// Status reports the current schema version plus applied/pending lists.
func (s *Store) Status() (MigrationStatus, error) {
	applied, err := s.appliedVersions()
	if err != nil {
		return MigrationStatus{}, err
	}

	status := MigrationStatus{}
	for _, m := range migrations {
		if applied[m.Version] {
			status.Applied = append(status.Applied, m.Version)
			if m.Version > status.CurrentVersion {
				status.CurrentVersion = m.Version
			}
		} else {
			status.Pending = append(status.Pending, m.Version)
		}
	}
	return status, nil
}
