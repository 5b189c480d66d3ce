package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "anamnesis.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenAppliesMigrations(t *testing.T) {
	s := openTestStore(t)
	status, err := s.Status()
	require.NoError(t, err)
	require.Equal(t, CurrentSchemaVersion(), status.CurrentVersion)
	require.Empty(t, status.Pending)
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anamnesis.db")
	s1, err := Open(path)
	require.NoError(t, err)
	s1.Close()

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	status, err := s2.Status()
	require.NoError(t, err)
	require.Equal(t, CurrentSchemaVersion(), status.CurrentVersion)
}

func TestRollbackUnsupportedWithoutDownSQL(t *testing.T) {
	s := openTestStore(t)
	err := s.Rollback(0)
	require.Error(t, err)
	var unsupported *RollbackUnsupportedError
	require.ErrorAs(t, err, &unsupported)
}
