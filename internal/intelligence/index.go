// Package intelligence is the knowledge layer (spec §4.5): an in-memory
// embedding index over learned concepts, a pattern-recommendation engine,
// a coding-approach predictor, and developer-profile aggregation. It sits
// above internal/extract/internal/analysis (which produce facts about one
// file) and below internal/services (which orchestrates learning runs
// across a whole codebase).
package intelligence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	"anamnesis/internal/entities"
	"anamnesis/internal/intelligence/embedding"
)

// ConceptIndex is the in-memory embedding index over semantic concepts.
// It does not persist anything itself — the learning service is
// responsible for rebuilding it from storage on startup.
type ConceptIndex struct {
	engine embedding.Engine

	mu       sync.RWMutex
	concepts map[string]entities.SemanticConcept
	vectors  map[string][]float32
}

// NewConceptIndex wraps an embedding engine with a concept store.
func NewConceptIndex(engine embedding.Engine) *ConceptIndex {
	return &ConceptIndex{
		engine:   engine,
		concepts: make(map[string]entities.SemanticConcept),
		vectors:  make(map[string][]float32),
	}
}

// ConceptID derives the deterministic id for (name, conceptType, filePath):
// a truncated SHA-256 so re-adding the same triple is a no-op upsert
// rather than a duplicate.
func ConceptID(name string, conceptType entities.ConceptType, filePath string) string {
	sum := sha256.Sum256([]byte(name + "\x00" + string(conceptType) + "\x00" + filePath))
	return "concept_" + hex.EncodeToString(sum[:])[:16]
}

// AddConcept embeds and indexes one concept, returning its deterministic id.
func (idx *ConceptIndex) AddConcept(ctx context.Context, c entities.SemanticConcept) (string, error) {
	if c.ID == "" {
		c.ID = ConceptID(c.Name, c.ConceptType, c.FilePath)
	}
	text := conceptText(c)
	vec, err := idx.engine.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("intelligence: embedding concept %s: %w", c.Name, err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.concepts[c.ID] = c
	idx.vectors[c.ID] = vec
	return c.ID, nil
}

// AddConceptsBatch embeds every concept in a single engine call.
func (idx *ConceptIndex) AddConceptsBatch(ctx context.Context, concepts []entities.SemanticConcept) ([]string, error) {
	texts := make([]string, len(concepts))
	ids := make([]string, len(concepts))
	for i, c := range concepts {
		if c.ID == "" {
			c.ID = ConceptID(c.Name, c.ConceptType, c.FilePath)
			concepts[i] = c
		}
		texts[i] = conceptText(c)
		ids[i] = c.ID
	}
	vecs, err := idx.engine.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("intelligence: batch embedding %d concepts: %w", len(concepts), err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i, c := range concepts {
		idx.concepts[c.ID] = c
		if i < len(vecs) {
			idx.vectors[c.ID] = vecs[i]
		}
	}
	return ids, nil
}

// RemoveConcept drops one concept from the index.
func (idx *ConceptIndex) RemoveConcept(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.concepts, id)
	delete(idx.vectors, id)
}

// Clear empties the index.
func (idx *ConceptIndex) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.concepts = make(map[string]entities.SemanticConcept)
	idx.vectors = make(map[string][]float32)
}

// Len reports how many concepts are currently indexed.
func (idx *ConceptIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.concepts)
}

// SearchOptions filters a Search call.
type SearchOptions struct {
	Limit               int
	ConceptTypeFilter   entities.ConceptType
	FilePathPrefixFilter string
}

// Search embeds the query and ranks indexed concepts by cosine similarity,
// respecting type/path filters. When the query's embed call errors, Search
// degrades to a substring/token text match over concept names and
// descriptions, with the same filters applied.
func (idx *ConceptIndex) Search(ctx context.Context, query string, opts SearchOptions) ([]entities.SemanticSearchResult, error) {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}

	idx.mu.RLock()
	candidates := make([]entities.SemanticConcept, 0, len(idx.concepts))
	for id, c := range idx.concepts {
		if opts.ConceptTypeFilter != "" && c.ConceptType != opts.ConceptTypeFilter {
			continue
		}
		if opts.FilePathPrefixFilter != "" && !strings.HasPrefix(c.FilePath, opts.FilePathPrefixFilter) {
			continue
		}
		_ = id
		candidates = append(candidates, c)
	}
	idx.mu.RUnlock()

	queryVec, err := idx.engine.Embed(ctx, query)
	if err != nil {
		return idx.textSearchFallback(query, candidates, opts.Limit), nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	results := make([]entities.SemanticSearchResult, 0, len(candidates))
	for _, c := range candidates {
		vec, ok := idx.vectors[c.ID]
		if !ok {
			continue
		}
		sim, err := embedding.CosineSimilarity(queryVec, vec)
		if err != nil {
			continue
		}
		results = append(results, entities.SemanticSearchResult{Concept: c, FilePath: c.FilePath, Similarity: sim})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Similarity > results[j].Similarity })
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

func (idx *ConceptIndex) textSearchFallback(query string, candidates []entities.SemanticConcept, limit int) []entities.SemanticSearchResult {
	results := make([]entities.SemanticSearchResult, 0, len(candidates))
	for _, c := range candidates {
		score := embedding.TextSearchScore(query, c.Name+" "+c.Description)
		if score <= 0 {
			continue
		}
		results = append(results, entities.SemanticSearchResult{Concept: c, FilePath: c.FilePath, Similarity: score})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Similarity > results[j].Similarity })
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func conceptText(c entities.SemanticConcept) string {
	parts := []string{string(c.ConceptType), c.Name}
	if c.Description != "" {
		parts = append(parts, c.Description)
	}
	return strings.Join(parts, " ")
}
