package services

import (
	"sync"

	"anamnesis/internal/entities"
	"anamnesis/internal/store"
)

// SessionManager journals work sessions and decisions over the backend
// (spec §4.7). It tracks the active session id itself — last-writer-wins,
// per spec §5's ordering guarantees — since the backend only records
// ended_at, not which session is "current".
type SessionManager struct {
	store *store.Store

	mu       sync.Mutex
	activeID string
}

// NewSessionManager wraps a store with active-session tracking.
func NewSessionManager(s *store.Store) *SessionManager {
	return &SessionManager{store: s}
}

// StartSession creates a new session and makes it the active one.
func (m *SessionManager) StartSession(name, feature string, files, tasks, notes []string, metadata map[string]any) (*entities.WorkSession, error) {
	sess := &entities.WorkSession{
		Name: name, Feature: feature, Files: files, Tasks: tasks, Notes: notes, Metadata: metadata,
	}
	if err := m.store.StartSession(sess); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.activeID = sess.ID
	m.mu.Unlock()
	return sess, nil
}

// EndSession ends sessionID, or the active session when sessionID is "".
// The active pointer is cleared only when it matches the ended session.
func (m *SessionManager) EndSession(sessionID string) (bool, error) {
	id := sessionID
	if id == "" {
		m.mu.Lock()
		id = m.activeID
		m.mu.Unlock()
		if id == "" {
			return false, nil
		}
	}
	if err := m.store.EndSession(id); err != nil {
		if err == store.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	m.mu.Lock()
	if m.activeID == id {
		m.activeID = ""
	}
	m.mu.Unlock()
	return true, nil
}

// GetSession fetches sessionID, or the active session when sessionID is "".
func (m *SessionManager) GetSession(sessionID string) (*entities.WorkSession, error) {
	id := sessionID
	if id == "" {
		m.mu.Lock()
		id = m.activeID
		m.mu.Unlock()
		if id == "" {
			return nil, store.ErrNotFound
		}
	}
	return m.store.GetSession(id)
}

// GetActiveSessions returns every session that has not ended.
func (m *SessionManager) GetActiveSessions() ([]entities.WorkSession, error) {
	return m.store.ListSessions(true, 100)
}

// GetRecentSessions returns the most recently started sessions, started or
// ended, newest first.
func (m *SessionManager) GetRecentSessions(limit int) ([]entities.WorkSession, error) {
	if limit <= 0 {
		limit = 10
	}
	return m.store.ListSessions(false, limit)
}

// UpdateSession replaces files/tasks/notes/metadata on an existing
// session, leaving any nil argument untouched.
func (m *SessionManager) UpdateSession(sessionID string, files, tasks, notes []string, metadata map[string]any) (*entities.WorkSession, error) {
	sess, err := m.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if files != nil {
		sess.Files = files
	}
	if tasks != nil {
		sess.Tasks = tasks
	}
	if notes != nil {
		sess.Notes = notes
	}
	if metadata != nil {
		sess.Metadata = metadata
	}
	if err := m.store.UpdateSession(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// AddFileToSession appends path to a session's file list, deduplicated.
func (m *SessionManager) AddFileToSession(path, sessionID string) (*entities.WorkSession, error) {
	sess, err := m.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if !containsString(sess.Files, path) {
		sess.Files = append(sess.Files, path)
	}
	return m.UpdateSession(sess.ID, sess.Files, nil, nil, nil)
}

// AddTaskToSession appends a task description to a session.
func (m *SessionManager) AddTaskToSession(text, sessionID string) (*entities.WorkSession, error) {
	sess, err := m.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Tasks = append(sess.Tasks, text)
	return m.UpdateSession(sess.ID, nil, sess.Tasks, nil, nil)
}

// RecordDecision journals a decision, linked to sessionID or the active
// session when sessionID is "" (a standalone decision if none is active).
func (m *SessionManager) RecordDecision(decision, context, rationale, sessionID string, relatedFiles, tags []string, metadata map[string]any) (*entities.ProjectDecision, error) {
	id := sessionID
	if id == "" {
		m.mu.Lock()
		id = m.activeID
		m.mu.Unlock()
	}
	d := &entities.ProjectDecision{
		Decision: decision, Context: context, Rationale: rationale, SessionID: id,
		RelatedFiles: relatedFiles, Tags: tags, Metadata: metadata,
	}
	if err := m.store.RecordDecision(d); err != nil {
		return nil, err
	}
	return d, nil
}

// allDecisionsLimit stands in for "no limit" against store.GetDecisions,
// whose LIMIT clause treats 0 as zero rows rather than unbounded.
const allDecisionsLimit = 1_000_000

// GetDecision fetches one decision by id.
func (m *SessionManager) GetDecision(id string) (*entities.ProjectDecision, error) {
	decisions, err := m.store.GetDecisions("", allDecisionsLimit)
	if err != nil {
		return nil, err
	}
	for _, d := range decisions {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, store.ErrNotFound
}

// GetDecisionsBySession returns every decision linked to sessionID.
func (m *SessionManager) GetDecisionsBySession(sessionID string) ([]entities.ProjectDecision, error) {
	return m.store.GetDecisions(sessionID, 1000)
}

// GetRecentDecisions returns the most recently recorded decisions.
func (m *SessionManager) GetRecentDecisions(limit int) ([]entities.ProjectDecision, error) {
	if limit <= 0 {
		limit = 10
	}
	return m.store.GetDecisions("", limit)
}
