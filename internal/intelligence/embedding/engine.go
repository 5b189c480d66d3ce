// Package embedding generates vector embeddings for semantic concept
// search and provides an in-memory index over them. Instantiation of the
// remote backend is lazy and singleflight-guarded so concurrent first
// callers share one client rather than racing to build it.
package embedding

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/singleflight"

	"anamnesis/internal/logging"
)

// Engine generates vector embeddings for text.
type Engine interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Name() string
}

// Config controls which Engine LazyEngine builds on first use.
type Config struct {
	// Provider selects the backend: "genai" or "fallback" (deterministic
	// local, no network). Empty defaults to "fallback".
	Provider string
	GenAIAPIKey string
	GenAIModel  string // default "gemini-embedding-001"
	TaskType    string // default "SEMANTIC_SIMILARITY"

	// NormalizeEmbeddings matches the fallback engine's vectors to unit
	// length, mirroring the conventional sentence-embedding default.
	NormalizeEmbeddings bool
}

// DefaultConfig returns the fallback-provider default: no network calls,
// usable with zero setup.
func DefaultConfig() Config {
	return Config{
		Provider:             "fallback",
		GenAIModel:           "gemini-embedding-001",
		TaskType:             "SEMANTIC_SIMILARITY",
		NormalizeEmbeddings:  true,
	}
}

// LazyEngine defers constructing the real Engine until first use, then
// caches it. A remote provider that fails to construct (e.g. missing API
// key) permanently falls back to the deterministic local engine rather
// than erroring on every subsequent call.
type LazyEngine struct {
	cfg   Config
	group singleflight.Group

	mu  sync.RWMutex
	eng Engine
}

// NewLazyEngine returns an Engine that builds its real backend on first
// Embed/EmbedBatch/Dimensions/Name call.
func NewLazyEngine(cfg Config) *LazyEngine {
	return &LazyEngine{cfg: cfg}
}

func (l *LazyEngine) resolve() Engine {
	l.mu.RLock()
	if l.eng != nil {
		defer l.mu.RUnlock()
		return l.eng
	}
	l.mu.RUnlock()

	v, _, _ := l.group.Do("resolve", func() (any, error) {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.eng != nil {
			return l.eng, nil
		}
		l.eng = l.build()
		return l.eng, nil
	})
	return v.(Engine)
}

func (l *LazyEngine) build() Engine {
	switch l.cfg.Provider {
	case "genai":
		eng, err := NewGenAIEngine(l.cfg.GenAIAPIKey, l.cfg.GenAIModel, l.cfg.TaskType)
		if err != nil {
			logging.Get(logging.CategoryIntelligence).Warn("genai engine unavailable, falling back to local: %v", err)
			return NewFallbackEngine(l.cfg.NormalizeEmbeddings)
		}
		logging.Intel("embedding engine ready: provider=genai model=%s", l.cfg.GenAIModel)
		return eng
	default:
		logging.Intel("embedding engine ready: provider=fallback")
		return NewFallbackEngine(l.cfg.NormalizeEmbeddings)
	}
}

func (l *LazyEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	return l.resolve().Embed(ctx, text)
}

func (l *LazyEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return l.resolve().EmbedBatch(ctx, texts)
}

func (l *LazyEngine) Dimensions() int { return l.resolve().Dimensions() }
func (l *LazyEngine) Name() string    { return l.resolve().Name() }

// CosineSimilarity computes cosine similarity in [-1, 1]; a zero-magnitude
// vector yields 0 rather than NaN.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding: vector dimension mismatch: %d != %d", len(a), len(b))
	}
	var dot, aMag, bMag float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		aMag += float64(a[i]) * float64(a[i])
		bMag += float64(b[i]) * float64(b[i])
	}
	if aMag == 0 || bMag == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(aMag) * math.Sqrt(bMag)), nil
}

// SimilarityResult pairs a corpus index with its similarity score.
type SimilarityResult struct {
	Index      int
	Similarity float64
}

// FindTopK returns the k highest-similarity entries in corpus relative to
// query, sorted descending.
func FindTopK(query []float32, corpus [][]float32, k int) []SimilarityResult {
	if k <= 0 {
		k = 10
	}
	results := make([]SimilarityResult, 0, len(corpus))
	for i, vec := range corpus {
		sim, err := CosineSimilarity(query, vec)
		if err != nil {
			continue
		}
		results = append(results, SimilarityResult{Index: i, Similarity: sim})
	}
	for i := 0; i < len(results) && i < k; i++ {
		for j := i + 1; j < len(results); j++ {
			if results[j].Similarity > results[i].Similarity {
				results[i], results[j] = results[j], results[i]
			}
		}
	}
	if len(results) > k {
		results = results[:k]
	}
	return results
}
