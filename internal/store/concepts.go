package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"anamnesis/internal/entities"
)

// ErrNotFound is returned by Get-style lookups when no row matches.
var ErrNotFound = errors.New("store: not found")

// UpsertConcept inserts or replaces a SemanticConcept by ID. A blank ID
// mints a new one.
func (s *Store) UpsertConcept(c *entities.SemanticConcept) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = newID(prefixConcept)
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	rels, err := marshalJSON(c.Relationships)
	if err != nil {
		return fmt.Errorf("store: marshaling relationships: %w", err)
	}
	meta, err := marshalJSON(c.Metadata)
	if err != nil {
		return fmt.Errorf("store: marshaling metadata: %w", err)
	}

	_, err = s.db.Exec(`
INSERT INTO semantic_concepts (id, name, concept_type, file_path, description, line_start, line_end, relationships, confidence, metadata, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name=excluded.name, concept_type=excluded.concept_type, file_path=excluded.file_path,
	description=excluded.description, line_start=excluded.line_start, line_end=excluded.line_end,
	relationships=excluded.relationships, confidence=excluded.confidence, metadata=excluded.metadata,
	updated_at=excluded.updated_at
`, c.ID, c.Name, string(c.ConceptType), c.FilePath, c.Description, c.LineStart, c.LineEnd, rels, c.Confidence, meta, c.CreatedAt, c.UpdatedAt)
	return err
}

// GetConcept fetches one SemanticConcept by ID.
func (s *Store) GetConcept(id string) (*entities.SemanticConcept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
SELECT id, name, concept_type, file_path, description, line_start, line_end, relationships, confidence, metadata, created_at, updated_at
FROM semantic_concepts WHERE id = ?`, id)
	return scanConcept(row)
}

// ListConceptsByFile returns every concept recorded for filePath.
func (s *Store) ListConceptsByFile(filePath string) ([]entities.SemanticConcept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
SELECT id, name, concept_type, file_path, description, line_start, line_end, relationships, confidence, metadata, created_at, updated_at
FROM semantic_concepts WHERE file_path = ? ORDER BY line_start`, filePath)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConcepts(rows)
}

// SearchConceptsByName returns concepts whose name contains query
// (case-insensitive substring match — spec §4.7's search boundary, no FTS
// dependency required for the base case). A non-positive limit returns
// every match.
func (s *Store) SearchConceptsByName(query string, limit int) ([]entities.SemanticConcept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1 // SQLite reads a negative LIMIT as "no limit"
	}

	rows, err := s.db.Query(`
SELECT id, name, concept_type, file_path, description, line_start, line_end, relationships, confidence, metadata, created_at, updated_at
FROM semantic_concepts WHERE name LIKE ? COLLATE NOCASE ORDER BY confidence DESC LIMIT ?`,
		"%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConcepts(rows)
}

// ListAllConcepts returns every stored concept, ordered by file path then
// line — used by IntelligenceService.LoadFromBackend to rebuild the
// in-memory embedding index on startup.
func (s *Store) ListAllConcepts() ([]entities.SemanticConcept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
SELECT id, name, concept_type, file_path, description, line_start, line_end, relationships, confidence, metadata, created_at, updated_at
FROM semantic_concepts ORDER BY file_path, line_start`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConcepts(rows)
}

// CountConceptsByPathPrefix counts concepts whose file_path starts with
// prefix, used by the learning service to decide whether a path already
// has non-empty intelligence (spec §4.7's force-short-circuit check).
func (s *Store) CountConceptsByPathPrefix(prefix string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM semantic_concepts WHERE file_path LIKE ?`, prefix+"%").Scan(&n)
	return n, err
}

// DeleteConceptsByFile removes every concept recorded for filePath (used
// when re-learning a changed file).
func (s *Store) DeleteConceptsByFile(filePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM semantic_concepts WHERE file_path = ?`, filePath)
	return err
}

func scanConcept(row *sql.Row) (*entities.SemanticConcept, error) {
	var c entities.SemanticConcept
	var conceptType, rels, meta string
	if err := row.Scan(&c.ID, &c.Name, &conceptType, &c.FilePath, &c.Description, &c.LineStart, &c.LineEnd, &rels, &c.Confidence, &meta, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.ConceptType = entities.ConceptType(conceptType)
	if err := unmarshalJSON(rels, &c.Relationships); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(meta, &c.Metadata); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanConcepts(rows *sql.Rows) ([]entities.SemanticConcept, error) {
	var out []entities.SemanticConcept
	for rows.Next() {
		var c entities.SemanticConcept
		var conceptType, rels, meta string
		if err := rows.Scan(&c.ID, &c.Name, &conceptType, &c.FilePath, &c.Description, &c.LineStart, &c.LineEnd, &rels, &c.Confidence, &meta, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.ConceptType = entities.ConceptType(conceptType)
		if err := unmarshalJSON(rels, &c.Relationships); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(meta, &c.Metadata); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
