package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesis/internal/store"
)

func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "anamnesis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewSessionManager(s)
}

func TestStartSessionBecomesActive(t *testing.T) {
	m := newTestSessionManager(t)
	sess, err := m.StartSession("feature work", "auth", nil, nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, sess.IsActive())

	active, err := m.GetSession("")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, active.ID)
}

func TestEndSessionClearsActivePointer(t *testing.T) {
	m := newTestSessionManager(t)
	sess, err := m.StartSession("feature work", "", nil, nil, nil, nil)
	require.NoError(t, err)

	ok, err := m.EndSession("")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = m.GetSession("")
	assert.ErrorIs(t, err, store.ErrNotFound)

	ended, err := m.GetSession(sess.ID)
	require.NoError(t, err)
	assert.False(t, ended.IsActive())
}

func TestAddFileAndTaskToSession(t *testing.T) {
	m := newTestSessionManager(t)
	sess, err := m.StartSession("feature work", "", nil, nil, nil, nil)
	require.NoError(t, err)

	updated, err := m.AddFileToSession("a.go", sess.ID)
	require.NoError(t, err)
	assert.Contains(t, updated.Files, "a.go")

	updated, err = m.AddTaskToSession("write tests", sess.ID)
	require.NoError(t, err)
	assert.Contains(t, updated.Tasks, "write tests")
}

func TestRecordDecisionLinksActiveSession(t *testing.T) {
	m := newTestSessionManager(t)
	sess, err := m.StartSession("feature work", "", nil, nil, nil, nil)
	require.NoError(t, err)

	d, err := m.RecordDecision("use sqlite", "needed embedded storage", "", "", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, d.SessionID)

	decisions, err := m.GetDecisionsBySession(sess.ID)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
}

func TestRecordDecisionStandaloneWithoutActiveSession(t *testing.T) {
	m := newTestSessionManager(t)
	d, err := m.RecordDecision("use sqlite", "", "", "", nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, d.SessionID)
}
