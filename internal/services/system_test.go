package services

import (
	"context"
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

func newTestSystemService(t *testing.T) *SystemService {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "anamnesis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	index := intelligence.NewConceptIndex(embedding.NewFallbackEngine(true))
	patterns := intelligence.NewPatternEngine(extract.DefaultPatternConfig())
	return NewSystemService(s, config.Default(), index, patterns)
}

func TestHealthCheckReportsHealthyFreshStore(t *testing.T) {
	svc := newTestSystemService(t)
	healthy, checks, issues := svc.HealthCheck("/tmp/project")
	assert.True(t, healthy)
	assert.Empty(t, issues)
	assert.Equal(t, "ok", checks["database"])
}

func TestGetSystemStatusIncludesMetricsWhenRequested(t *testing.T) {
	svc := newTestSystemService(t)
	out := svc.GetSystemStatus(true, true)
	assert.Equal(t, "healthy", out["status"])
	assert.Contains(t, out, "metrics")
	assert.Contains(t, out, "diagnostics")
}

func TestGetIntelligenceMetricsReportsZeroOnEmptyStore(t *testing.T) {
	svc := newTestSystemService(t)
	out, err := svc.GetIntelligenceMetrics(true)
	require.NoError(t, err)
	assert.Equal(t, 0, out["total_concepts"])
	assert.Equal(t, false, out["has_intelligence"])
	assert.Contains(t, out, "breakdown")
}

func TestGetPerformanceStatusRunsBenchmark(t *testing.T) {
	svc := newTestSystemService(t)
	out := svc.GetPerformanceStatus(context.Background(), true)
	assert.Equal(t, "healthy", out["status"])
	bench, ok := out["benchmark"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, bench["succeeded"])
}
