package store

import (
	"database/sql"
	"errors"
	"time"

	"anamnesis/internal/entities"
)

// StartSession creates a new active WorkSession (spec §4.9's `start_session`).
func (s *Store) StartSession(sess *entities.WorkSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.ID == "" {
		sess.ID = newID(prefixSession)
	}
	now := time.Now().UTC()
	sess.StartedAt, sess.UpdatedAt = now, now

	files, _ := marshalJSON(sess.Files)
	tasks, _ := marshalJSON(sess.Tasks)
	notes, _ := marshalJSON(sess.Notes)
	meta, err := marshalJSON(sess.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
INSERT INTO work_sessions (id, name, feature, files, tasks, notes, metadata, started_at, updated_at, ended_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		sess.ID, sess.Name, sess.Feature, files, tasks, notes, meta, sess.StartedAt, sess.UpdatedAt)
	return err
}

// UpdateSession overwrites files/tasks/notes/metadata on an existing
// session by id, bumping updated_at. Distinct from StartSession, which
// always INSERTs a fresh row and would violate the primary key on reuse.
func (s *Store) UpdateSession(sess *entities.WorkSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.UpdatedAt = time.Now().UTC()
	files, _ := marshalJSON(sess.Files)
	tasks, _ := marshalJSON(sess.Tasks)
	notes, _ := marshalJSON(sess.Notes)
	meta, err := marshalJSON(sess.Metadata)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`
UPDATE work_sessions SET files = ?, tasks = ?, notes = ?, metadata = ?, updated_at = ?
WHERE id = ?`, files, tasks, notes, meta, sess.UpdatedAt, sess.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// EndSession marks a session ended, setting EndedAt.
func (s *Store) EndSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	res, err := s.db.Exec(`UPDATE work_sessions SET ended_at = ?, updated_at = ? WHERE id = ? AND ended_at IS NULL`, now, now, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSession fetches one session by ID.
func (s *Store) GetSession(id string) (*entities.WorkSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRow(`SELECT id, name, feature, files, tasks, notes, metadata, started_at, updated_at, ended_at FROM work_sessions WHERE id = ?`, id)
	return scanSession(row)
}

// ListSessions returns sessions, most recently started first.
func (s *Store) ListSessions(activeOnly bool, limit int) ([]entities.WorkSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, name, feature, files, tasks, notes, metadata, started_at, updated_at, ended_at FROM work_sessions`
	if activeOnly {
		query += ` WHERE ended_at IS NULL`
	}
	query += ` ORDER BY started_at DESC LIMIT ?`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.WorkSession
	for rows.Next() {
		sess, err := scanSessionRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sess)
	}
	return out, rows.Err()
}

// RecordDecision journals a ProjectDecision, optionally linked to a session
// (spec §4.9's `record_decision`).
func (s *Store) RecordDecision(d *entities.ProjectDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = newID(prefixDecision)
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	files, _ := marshalJSON(d.RelatedFiles)
	tags, _ := marshalJSON(d.Tags)
	meta, err := marshalJSON(d.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
INSERT INTO project_decisions (id, decision, context, rationale, session_id, related_files, tags, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Decision, d.Context, d.Rationale, d.SessionID, files, tags, meta, d.CreatedAt)
	return err
}

// GetDecisions returns decisions for a session, or every decision when
// sessionID is "".
func (s *Store) GetDecisions(sessionID string, limit int) ([]entities.ProjectDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, decision, context, rationale, session_id, related_files, tags, metadata, created_at FROM project_decisions`
	args := []any{}
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.ProjectDecision
	for rows.Next() {
		var d entities.ProjectDecision
		var files, tags, meta string
		if err := rows.Scan(&d.ID, &d.Decision, &d.Context, &d.Rationale, &d.SessionID, &files, &tags, &meta, &d.CreatedAt); err != nil {
			return nil, err
		}
		unmarshalJSON(files, &d.RelatedFiles)
		unmarshalJSON(tags, &d.Tags)
		unmarshalJSON(meta, &d.Metadata)
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanSession(row *sql.Row) (*entities.WorkSession, error) {
	var sess entities.WorkSession
	var files, tasks, notes, meta string
	var endedAt sql.NullTime
	if err := row.Scan(&sess.ID, &sess.Name, &sess.Feature, &files, &tasks, &notes, &meta, &sess.StartedAt, &sess.UpdatedAt, &endedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if endedAt.Valid {
		sess.EndedAt = &endedAt.Time
	}
	unmarshalJSON(files, &sess.Files)
	unmarshalJSON(tasks, &sess.Tasks)
	unmarshalJSON(notes, &sess.Notes)
	unmarshalJSON(meta, &sess.Metadata)
	return &sess, nil
}

func scanSessionRow(rows *sql.Rows) (*entities.WorkSession, error) {
	var sess entities.WorkSession
	var files, tasks, notes, meta string
	var endedAt sql.NullTime
	if err := rows.Scan(&sess.ID, &sess.Name, &sess.Feature, &files, &tasks, &notes, &meta, &sess.StartedAt, &sess.UpdatedAt, &endedAt); err != nil {
		return nil, err
	}
	if endedAt.Valid {
		sess.EndedAt = &endedAt.Time
	}
	unmarshalJSON(files, &sess.Files)
	unmarshalJSON(tasks, &sess.Tasks)
	unmarshalJSON(notes, &sess.Notes)
	unmarshalJSON(meta, &sess.Metadata)
	return &sess, nil
}
