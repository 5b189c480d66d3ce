package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesis/internal/config"
)

func writeCodebaseFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte(`package main

func Complicated(n int) int {
	if n > 0 {
		for i := 0; i < n; i++ {
			if i%2 == 0 {
				n--
			}
		}
	}
	return n
}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "util.go"), []byte(`package main

import "fmt"

func Greet(name string) string {
	return fmt.Sprintf("hello %s", name)
}
`), 0o644))
	return root
}

func newTestCodebaseService(t *testing.T) *CodebaseService {
	t.Helper()
	return NewCodebaseService(config.Default())
}

func TestAnalyzeCodebaseCountsFilesAndLanguages(t *testing.T) {
	svc := newTestCodebaseService(t)
	root := writeCodebaseFixture(t)

	result, err := svc.AnalyzeCodebase(context.Background(), root, 0, false, false, false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.FilesAnalyzed)
	assert.Equal(t, 0, result.FilesFailed)
	assert.Equal(t, 2, result.Languages["go"])
}

func TestAnalyzeCodebaseWithComplexityFindsHotspotFreeSummary(t *testing.T) {
	svc := newTestCodebaseService(t)
	root := writeCodebaseFixture(t)

	result, err := svc.AnalyzeCodebase(context.Background(), root, 0, true, true, false)
	require.NoError(t, err)
	require.NotNil(t, result.Complexity)
	assert.Greater(t, result.Complexity.TotalCyclomatic, 0)
	assert.Empty(t, result.Complexity.Hotspots)
	require.NotNil(t, result.DependencyGraph)
	require.NotNil(t, result.GraphMetrics)
}

func TestAnalyzeCodebaseCachesResult(t *testing.T) {
	svc := newTestCodebaseService(t)
	root := writeCodebaseFixture(t)

	first, err := svc.AnalyzeCodebase(context.Background(), root, 0, false, false, true)
	require.NoError(t, err)

	// Remove a file; a cached result should still be served unchanged.
	require.NoError(t, os.Remove(filepath.Join(root, "util.go")))

	second, err := svc.AnalyzeCodebase(context.Background(), root, 0, false, false, true)
	require.NoError(t, err)
	assert.Equal(t, first.FilesAnalyzed, second.FilesAnalyzed)
}

func TestAnalyzeFileReturnsSymbolsAndComplexity(t *testing.T) {
	svc := newTestCodebaseService(t)
	root := writeCodebaseFixture(t)

	fa, err := svc.AnalyzeFile(context.Background(), filepath.Join(root, "main.go"), true, false)
	require.NoError(t, err)
	assert.Empty(t, fa.Error)
	assert.NotEmpty(t, fa.Symbols)
	require.NotNil(t, fa.Complexity)
	assert.Greater(t, fa.Complexity.TotalCyclomatic, 1)
}

func TestAnalyzeFileUnsupportedExtensionReportsError(t *testing.T) {
	svc := newTestCodebaseService(t)
	root := t.TempDir()
	path := filepath.Join(root, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just notes"), 0o644))

	fa, err := svc.AnalyzeFile(context.Background(), path, false, false)
	require.NoError(t, err)
	assert.NotEmpty(t, fa.Error)
}

func TestGetCodebaseHealthScoresCleanRepoHigh(t *testing.T) {
	svc := newTestCodebaseService(t)
	root := writeCodebaseFixture(t)

	health, err := svc.GetCodebaseHealth(context.Background(), root)
	require.NoError(t, err)
	assert.True(t, health.Healthy)
	assert.GreaterOrEqual(t, health.Score, 60.0)
}

func TestGetFileStatsCountsByExtension(t *testing.T) {
	svc := newTestCodebaseService(t)
	root := writeCodebaseFixture(t)

	stats, err := svc.GetFileStats(root)
	require.NoError(t, err)
	assert.Equal(t, 2, stats["go"])
}
