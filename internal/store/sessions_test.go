package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesis/internal/entities"
)

func TestSessionLifecycle(t *testing.T) {
	s := openTestStore(t)

	sess := &entities.WorkSession{Name: "feature work", Feature: "anamnesis-store"}
	require.NoError(t, s.StartSession(sess))
	require.NotEmpty(t, sess.ID)

	active, err := s.ListSessions(true, 10)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.NoError(t, s.RecordDecision(&entities.ProjectDecision{
		Decision:  "use sqlite for storage",
		SessionID: sess.ID,
	}))
	decisions, err := s.GetDecisions(sess.ID, 10)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, "use sqlite for storage", decisions[0].Decision)

	require.NoError(t, s.EndSession(sess.ID))
	got, err := s.GetSession(sess.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive())

	err = s.EndSession(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
