package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackEngineDeterministic(t *testing.T) {
	eng := NewFallbackEngine(true)
	ctx := context.Background()

	v1, err := eng.Embed(ctx, "the quick brown fox")
	require.NoError(t, err)
	v2, err := eng.Embed(ctx, "the quick brown fox")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Len(t, v1, fallbackDims)
}

func TestFallbackEngineSimilarTextsAreCloser(t *testing.T) {
	eng := NewFallbackEngine(true)
	ctx := context.Background()

	base, _ := eng.Embed(ctx, "user repository service layer")
	similar, _ := eng.Embed(ctx, "user repository service implementation")
	unrelated, _ := eng.Embed(ctx, "totally different unrelated vocabulary here")

	simToBase, err := CosineSimilarity(base, similar)
	require.NoError(t, err)
	unrelatedToBase, err := CosineSimilarity(base, unrelated)
	require.NoError(t, err)
	assert.Greater(t, simToBase, unrelatedToBase)
}

func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
	assert.Error(t, err)
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	sim, err := CosineSimilarity([]float32{0, 0}, []float32{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

func TestFindTopK(t *testing.T) {
	query := []float32{1, 0}
	corpus := [][]float32{{1, 0}, {0, 1}, {0.9, 0.1}}
	top := FindTopK(query, corpus, 2)
	require.Len(t, top, 2)
	assert.Equal(t, 0, top[0].Index)
}

func TestLazyEngineResolvesOnceToFallback(t *testing.T) {
	le := NewLazyEngine(DefaultConfig())
	assert.Equal(t, "fallback:hashed-bow", le.Name())
	_, err := le.Embed(context.Background(), "hello")
	require.NoError(t, err)
}

func TestLazyEngineFallsBackWithoutAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "genai"
	le := NewLazyEngine(cfg)
	assert.Equal(t, "fallback:hashed-bow", le.Name())
}

func TestTextSearchScore(t *testing.T) {
	assert.Greater(t, TextSearchScore("user repository", "UserRepository implements persistence"), 0.0)
	assert.Equal(t, 0.0, TextSearchScore("user repository", "totally unrelated text"))
}
