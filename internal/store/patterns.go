package store

import (
	"database/sql"
	"errors"
	"time"

	"anamnesis/internal/entities"
)

// UpsertPattern inserts a new DeveloperPattern, or — when one with the same
// PatternType+Name already exists — increments its frequency and keeps the
// higher confidence, matching spec §4.6's learning-accumulates-not-
// overwrites semantics. The stored examples and file_paths of an existing
// record are left as first inserted; later calls do not merge into them.
func (s *Store) UpsertPattern(p *entities.DeveloperPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existingID string
	err := s.db.QueryRow(`SELECT id FROM developer_patterns WHERE pattern_type = ? AND name = ?`, string(p.PatternType), p.Name).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if p.ID == "" {
			p.ID = newID(prefixPattern)
		}
		now := time.Now().UTC()
		p.CreatedAt, p.UpdatedAt = now, now
		examples, _ := marshalJSON(p.Examples)
		paths, _ := marshalJSON(p.FilePaths)
		_, err := s.db.Exec(`
INSERT INTO developer_patterns (id, pattern_type, name, frequency, examples, file_paths, confidence, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, string(p.PatternType), p.Name, p.Frequency, examples, paths, p.Confidence, p.CreatedAt, p.UpdatedAt)
		return err
	case err != nil:
		return err
	default:
		p.ID = existingID
		_, err := s.db.Exec(`
UPDATE developer_patterns SET frequency = frequency + ?, confidence = MAX(confidence, ?), updated_at = ?
WHERE id = ?`, maxInt(p.Frequency, 1), p.Confidence, time.Now().UTC(), existingID)
		return err
	}
}

// ListPatterns returns every recorded pattern, optionally filtered by kind.
func (s *Store) ListPatterns(kind entities.PatternType) ([]entities.DeveloperPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, pattern_type, name, frequency, examples, file_paths, confidence, created_at, updated_at FROM developer_patterns`
	args := []any{}
	if kind != "" {
		query += ` WHERE pattern_type = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY frequency DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.DeveloperPattern
	for rows.Next() {
		var p entities.DeveloperPattern
		var kindStr, examples, paths string
		if err := rows.Scan(&p.ID, &kindStr, &p.Name, &p.Frequency, &examples, &paths, &p.Confidence, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.PatternType = entities.PatternType(kindStr)
		unmarshalJSON(examples, &p.Examples)
		unmarshalJSON(paths, &p.FilePaths)
		out = append(out, p)
	}
	return out, rows.Err()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
