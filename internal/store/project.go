package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"anamnesis/internal/entities"
)

// UpsertADR inserts or replaces an ArchitecturalDecision by ID.
func (s *Store) UpsertADR(a *entities.ArchitecturalDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = newID(prefixADR)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = entities.ADRProposed
	}

	_, err := s.db.Exec(`
INSERT INTO architectural_decisions (id, title, context, decision, status, consequences, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title=excluded.title, context=excluded.context, decision=excluded.decision,
	status=excluded.status, consequences=excluded.consequences
`, a.ID, a.Title, a.Context, a.Decision, string(a.Status), a.Consequences, a.CreatedAt)
	return err
}

// GetADR fetches one ArchitecturalDecision by ID.
func (s *Store) GetADR(id string) (*entities.ArchitecturalDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
SELECT id, title, context, decision, status, consequences, created_at
FROM architectural_decisions WHERE id = ?`, id)

	var a entities.ArchitecturalDecision
	var status string
	if err := row.Scan(&a.ID, &a.Title, &a.Context, &a.Decision, &status, &a.Consequences, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.Status = entities.ADRStatus(status)
	return &a, nil
}

// ListADRs returns every recorded architectural decision, newest first.
func (s *Store) ListADRs(limit int) ([]entities.ArchitecturalDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
SELECT id, title, context, decision, status, consequences, created_at
FROM architectural_decisions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.ArchitecturalDecision
	for rows.Next() {
		var a entities.ArchitecturalDecision
		var status string
		if err := rows.Scan(&a.ID, &a.Title, &a.Context, &a.Decision, &status, &a.Consequences, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Status = entities.ADRStatus(status)
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpsertFileIntelligence inserts or updates the per-file intelligence
// record, keyed on file_path rather than ID — re-learning a file always
// overwrites its prior record.
func (s *Store) UpsertFileIntelligence(f *entities.FileIntelligence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == "" {
		f.ID = newID(prefixFileIntel)
	}
	now := time.Now().UTC()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now

	meta, err := marshalJSON(f.Metadata)
	if err != nil {
		return fmt.Errorf("store: marshaling metadata: %w", err)
	}

	_, err = s.db.Exec(`
INSERT INTO file_intelligence (id, file_path, metadata, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(file_path) DO UPDATE SET
	metadata=excluded.metadata, updated_at=excluded.updated_at
`, f.ID, f.FilePath, meta, f.CreatedAt, f.UpdatedAt)
	return err
}

// GetFileIntelligence fetches the intelligence record for filePath.
func (s *Store) GetFileIntelligence(filePath string) (*entities.FileIntelligence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
SELECT id, file_path, metadata, created_at, updated_at
FROM file_intelligence WHERE file_path = ?`, filePath)

	var f entities.FileIntelligence
	var meta string
	if err := row.Scan(&f.ID, &f.FilePath, &meta, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := unmarshalJSON(meta, &f.Metadata); err != nil {
		return nil, err
	}
	return &f, nil
}

// SetProjectMetadata upserts the single named project-metadata record.
func (s *Store) SetProjectMetadata(m *entities.ProjectMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		if err := s.db.QueryRow(`SELECT id FROM project_metadata WHERE name = ?`, m.Name).Scan(&m.ID); err != nil {
			m.ID = newID(prefixMetadata)
		}
	}
	m.UpdatedAt = time.Now().UTC()

	meta, err := marshalJSON(m.Metadata)
	if err != nil {
		return fmt.Errorf("store: marshaling metadata: %w", err)
	}

	_, err = s.db.Exec(`
INSERT INTO project_metadata (id, name, metadata, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET name=excluded.name, metadata=excluded.metadata, updated_at=excluded.updated_at
`, m.ID, m.Name, meta, m.UpdatedAt)
	return err
}

// GetProjectMetadata fetches the named project-metadata record.
func (s *Store) GetProjectMetadata(name string) (*entities.ProjectMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT id, name, metadata, updated_at FROM project_metadata WHERE name = ?`, name)
	var m entities.ProjectMetadata
	var meta string
	if err := row.Scan(&m.ID, &m.Name, &meta, &m.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := unmarshalJSON(meta, &m.Metadata); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpsertFeatureMap upserts a feature-to-files mapping by name.
func (s *Store) UpsertFeatureMap(f *entities.FeatureMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == "" {
		if err := s.db.QueryRow(`SELECT id FROM feature_maps WHERE name = ?`, f.Name).Scan(&f.ID); err != nil {
			f.ID = newID(prefixFeatureMap)
		}
	}
	f.UpdatedAt = time.Now().UTC()

	meta, err := marshalJSON(f.Metadata)
	if err != nil {
		return fmt.Errorf("store: marshaling metadata: %w", err)
	}

	_, err = s.db.Exec(`
INSERT INTO feature_maps (id, name, metadata, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET name=excluded.name, metadata=excluded.metadata, updated_at=excluded.updated_at
`, f.ID, f.Name, meta, f.UpdatedAt)
	return err
}

// ListFeatureMaps returns every recorded feature map.
func (s *Store) ListFeatureMaps() ([]entities.FeatureMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, name, metadata, updated_at FROM feature_maps ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.FeatureMap
	for rows.Next() {
		var f entities.FeatureMap
		var meta string
		if err := rows.Scan(&f.ID, &f.Name, &meta, &f.UpdatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(meta, &f.Metadata); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// AddEntryPoint records a detected program entry point.
func (s *Store) AddEntryPoint(e *entities.EntryPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = newID(prefixEntryPoint)
	}
	meta, err := marshalJSON(e.Metadata)
	if err != nil {
		return fmt.Errorf("store: marshaling metadata: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO entry_points (id, name, file_path, metadata) VALUES (?, ?, ?, ?)`,
		e.ID, e.Name, e.FilePath, meta)
	return err
}

// ListEntryPoints returns every recorded entry point.
func (s *Store) ListEntryPoints() ([]entities.EntryPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, name, file_path, metadata FROM entry_points ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.EntryPoint
	for rows.Next() {
		var e entities.EntryPoint
		var meta string
		if err := rows.Scan(&e.ID, &e.Name, &e.FilePath, &meta); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(meta, &e.Metadata); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AddKeyDirectory records a directory judged architecturally significant.
func (s *Store) AddKeyDirectory(k *entities.KeyDirectory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if k.ID == "" {
		k.ID = newID(prefixKeyDir)
	}
	meta, err := marshalJSON(k.Metadata)
	if err != nil {
		return fmt.Errorf("store: marshaling metadata: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO key_directories (id, name, metadata) VALUES (?, ?, ?)`, k.ID, k.Name, meta)
	return err
}

// ListKeyDirectories returns every recorded key directory.
func (s *Store) ListKeyDirectories() ([]entities.KeyDirectory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, name, metadata FROM key_directories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.KeyDirectory
	for rows.Next() {
		var k entities.KeyDirectory
		var meta string
		if err := rows.Scan(&k.ID, &k.Name, &meta); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(meta, &k.Metadata); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
