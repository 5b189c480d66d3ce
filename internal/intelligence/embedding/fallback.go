package embedding

import (
	"context"
	"math"
	"regexp"
	"strings"
)

// fallbackDims matches the 384-dimension multilingual sentence-embedding
// model this package lazily prefers when a remote provider is reachable.
const fallbackDims = 384

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9_]+`)

// FallbackEngine is a deterministic, offline embedding engine: it hashes
// each token of the input into one of fallbackDims buckets and
// accumulates term frequency, so identical or overlapping vocabularies
// produce similar vectors without any model download or network call.
type FallbackEngine struct {
	normalize bool
}

// NewFallbackEngine returns the deterministic local engine.
func NewFallbackEngine(normalize bool) *FallbackEngine {
	return &FallbackEngine{normalize: normalize}
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func (f *FallbackEngine) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, fallbackDims)
	for _, tok := range tokenize(text) {
		vec[bucketHash(tok)%fallbackDims] += 1
	}
	if f.normalize {
		normalizeInPlace(vec)
	}
	return vec, nil
}

func (f *FallbackEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *FallbackEngine) Dimensions() int { return fallbackDims }
func (f *FallbackEngine) Name() string    { return "fallback:hashed-bow" }

func normalizeInPlace(vec []float32) {
	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return
	}
	norm := math.Sqrt(sumSquares)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}

// bucketHash is FNV-1a restricted to uint32 range, used only to place a
// token into a fixed-width vector — not a cryptographic hash.
func bucketHash(s string) int {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return int(h & 0x7fffffff)
}

// TextSearchScore scores query against text by fraction of query tokens
// present as a substring or whole token — the search fallback used when
// no embedding model (remote or local) is considered reliable enough to
// rank results, per the spec's "falls back to substring-and-token text
// search" requirement.
func TextSearchScore(query, text string) float64 {
	qTokens := tokenize(query)
	if len(qTokens) == 0 {
		return 0
	}
	lowerText := strings.ToLower(text)
	matched := 0
	for _, tok := range qTokens {
		if strings.Contains(lowerText, tok) {
			matched++
		}
	}
	return float64(matched) / float64(len(qTokens))
}
