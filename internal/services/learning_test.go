package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesis/internal/config"
	"anamnesis/internal/extract"
	"anamnesis/internal/intelligence"
	"anamnesis/internal/intelligence/embedding"
	"anamnesis/internal/store"
)

func newTestLearningService(t *testing.T) (*LearningService, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "anamnesis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cfg := config.Default()
	index := intelligence.NewConceptIndex(embedding.NewFallbackEngine(true))
	patterns := intelligence.NewPatternEngine(extract.DefaultPatternConfig())
	return NewLearningService(s, cfg, index, patterns), s
}

func writeTestRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "greeter.go"), []byte(`package main

import "fmt"

func Greet(name string) string {
	if name == "" {
		return "hello, stranger"
	}
	return fmt.Sprintf("hello, %s", name)
}
`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "ignored.go"), []byte("package ignored"), 0o644))
	return root
}

func TestLearnFromCodebasePersistsConceptsAndPatterns(t *testing.T) {
	svc, s := newTestLearningService(t)
	root := writeTestRepo(t)

	result := svc.LearnFromCodebase(context.Background(), root, LearnOptions{Force: true})

	require.True(t, result.Success, result.Error)
	assert.Greater(t, result.ConceptsLearned, 0)
	assert.NotNil(t, result.Blueprint)
	assert.Contains(t, result.Blueprint.TechStack, "go")

	n, err := s.CountConceptsByPathPrefix(root)
	require.NoError(t, err)
	assert.Greater(t, n, 0)
}

func TestLearnFromCodebaseSkipsIgnoredDirectories(t *testing.T) {
	svc, _ := newTestLearningService(t)
	root := writeTestRepo(t)

	result := svc.LearnFromCodebase(context.Background(), root, LearnOptions{Force: true})

	require.True(t, result.Success, result.Error)
	for _, c := range result.Blueprint.TechStack {
		assert.NotContains(t, c, "node_modules")
	}
	// Only greeter.go gets a file-intelligence record; node_modules/ignored.go
	// is never discovered.
	assert.Equal(t, 1, result.FeaturesLearned)
}

func TestLearnFromCodebaseShortCircuitsWithoutForce(t *testing.T) {
	svc, _ := newTestLearningService(t)
	root := writeTestRepo(t)

	first := svc.LearnFromCodebase(context.Background(), root, LearnOptions{Force: true})
	require.True(t, first.Success)

	second := svc.LearnFromCodebase(context.Background(), root, LearnOptions{})
	require.True(t, second.Success)
	assert.Contains(t, second.Insights, "Using existing intelligence")
	assert.Zero(t, second.ConceptsLearned)
}

func TestDiscoverFilesHonorsMaxFiles(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, string(rune('a'+i))+".go"), []byte("package p"), 0o644))
	}
	files, err := discoverFiles(root, nil, nil, 2)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
