package intelligence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesis/internal/entities"
	"anamnesis/internal/extract"
	"anamnesis/internal/intelligence/embedding"
)

func TestPredictorMatchesRepositoryKeyword(t *testing.T) {
	patterns := NewPatternEngine(extract.DefaultPatternConfig())
	index := NewConceptIndex(embedding.NewFallbackEngine(true))
	predictor := NewPredictor(patterns, index)

	pred := predictor.Predict(context.Background(), "I need a repository for loading user accounts", "")
	assert.Equal(t, "repository-backed data access", pred.Approach)
	assert.NotEmpty(t, pred.Reasoning)
	assert.Greater(t, pred.Confidence, 0.3)
}

func TestPredictorDefaultsWithoutKeywordMatch(t *testing.T) {
	patterns := NewPatternEngine(extract.DefaultPatternConfig())
	index := NewConceptIndex(embedding.NewFallbackEngine(true))
	predictor := NewPredictor(patterns, index)

	pred := predictor.Predict(context.Background(), "something", "")
	assert.Equal(t, "general-purpose implementation", pred.Approach)
	assert.Equal(t, entities.ComplexityLow, pred.EstimatedComplexity)
}

func TestPredictorRoutesToIndexedFiles(t *testing.T) {
	patterns := NewPatternEngine(extract.DefaultPatternConfig())
	index := NewConceptIndex(embedding.NewFallbackEngine(true))
	ctx := context.Background()

	_, err := index.AddConcept(ctx, entities.SemanticConcept{
		Name: "UserRepository", ConceptType: entities.ConceptClass, FilePath: "repo.go",
	})
	require.NoError(t, err)

	predictor := NewPredictor(patterns, index)
	pred := predictor.Predict(ctx, "repository user", "")
	assert.NotEmpty(t, pred.FileRouting)
}
