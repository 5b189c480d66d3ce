package store

import (
	"time"

	"anamnesis/internal/entities"
)

// AddInsight persists a new AIInsight contributed by an external agent
// (spec §4.7 `contribute_insights`).
func (s *Store) AddInsight(i *entities.AIInsight) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i.ID == "" {
		i.ID = newID(prefixInsight)
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now().UTC()
	}
	files, err := marshalJSON(i.AffectedFiles)
	if err != nil {
		return err
	}
	meta, err := marshalJSON(i.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
INSERT INTO ai_insights (id, insight_type, title, description, affected_files, confidence, severity, suggested_action, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, string(i.InsightType), i.Title, i.Description, files, i.Confidence, i.Severity, i.SuggestedAction, meta, i.CreatedAt)
	return err
}

// ListInsights returns insights in descending recency order, optionally
// filtered by type.
func (s *Store) ListInsights(kind entities.InsightType, limit int) ([]entities.AIInsight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, insight_type, title, description, affected_files, confidence, severity, suggested_action, metadata, created_at FROM ai_insights`
	args := []any{}
	if kind != "" {
		query += ` WHERE insight_type = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.AIInsight
	for rows.Next() {
		var rec entities.AIInsight
		var kindStr, files, meta string
		if err := rows.Scan(&rec.ID, &kindStr, &rec.Title, &rec.Description, &files, &rec.Confidence, &rec.Severity, &rec.SuggestedAction, &meta, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.InsightType = entities.InsightType(kindStr)
		unmarshalJSON(files, &rec.AffectedFiles)
		unmarshalJSON(meta, &rec.Metadata)
		out = append(out, rec)
	}
	return out, rows.Err()
}
