package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesis/internal/entities"
	"anamnesis/internal/extract"
	"anamnesis/internal/intelligence"
	"anamnesis/internal/intelligence/embedding"
	"anamnesis/internal/store"
)

func newTestIntelligenceService(t *testing.T) (*IntelligenceService, *store.Store, *intelligence.PatternEngine) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "anamnesis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	index := intelligence.NewConceptIndex(embedding.NewFallbackEngine(true))
	patterns := intelligence.NewPatternEngine(extract.DefaultPatternConfig())
	predictor := intelligence.NewPredictor(patterns, index)
	return NewIntelligenceService(s, index, patterns, predictor), s, patterns
}

func TestLoadFromBackendRebuildsIndex(t *testing.T) {
	svc, s, _ := newTestIntelligenceService(t)
	require.NoError(t, s.UpsertConcept(&entities.SemanticConcept{
		Name: "UserService", ConceptType: entities.ConceptClass, FilePath: "user.go",
	}))

	require.NoError(t, svc.LoadFromBackend(context.Background()))

	results, total, err := svc.GetSemanticInsights("UserService", "", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, results, 1)
	assert.Equal(t, "UserService", results[0].Concept.Name)
}

func TestGetSemanticInsightsFiltersByType(t *testing.T) {
	svc, s, _ := newTestIntelligenceService(t)
	require.NoError(t, s.UpsertConcept(&entities.SemanticConcept{Name: "A", ConceptType: entities.ConceptClass, FilePath: "a.go"}))
	require.NoError(t, s.UpsertConcept(&entities.SemanticConcept{Name: "B", ConceptType: entities.ConceptFunction, FilePath: "b.go"}))

	results, total, err := svc.GetSemanticInsights("", entities.ConceptFunction, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, results, 1)
	assert.Equal(t, "B", results[0].Concept.Name)
}

func TestContributeInsightPersists(t *testing.T) {
	svc, s, _ := newTestIntelligenceService(t)

	ok, id, msg := svc.ContributeInsight(entities.InsightBestPractice, "use context.Context", 0.8, "reviewer-agent", []string{"a.go"})
	assert.True(t, ok)
	assert.NotEmpty(t, id)
	assert.NotEmpty(t, msg)

	stored, err := s.ListInsights("", 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "reviewer-agent", stored[0].Metadata["source_agent"])
}

func TestGetProjectBlueprintReflectsLearningStatus(t *testing.T) {
	svc, s, _ := newTestIntelligenceService(t)
	require.NoError(t, s.UpsertConcept(&entities.SemanticConcept{Name: "A", ConceptType: entities.ConceptClass, FilePath: "proj/a.go"}))

	bp, err := svc.GetProjectBlueprint("proj")
	require.NoError(t, err)
	assert.True(t, bp.LearningStatus.HasIntelligence)
	assert.Equal(t, 1, bp.LearningStatus.ConceptsStored)
}

func TestGetPatternRecommendationsIncludesRelatedFiles(t *testing.T) {
	svc, _, patterns := newTestIntelligenceService(t)
	patterns.Learn("repo.go", []entities.DetectedPattern{
		{Kind: entities.PatternRepository, Name: "UserRepository", Evidence: []entities.EvidenceContribution{{Confidence: 0.9}}},
	})

	recs, reasoning, related := svc.GetPatternRecommendations("repository for users", "", true)
	assert.NotEmpty(t, recs)
	assert.NotEmpty(t, reasoning)
	assert.Contains(t, related, "repo.go")
}
