package services

import (
	"context"
	"fmt"
	"strings"

	"anamnesis/internal/entities"
	"anamnesis/internal/intelligence"
	"anamnesis/internal/store"
)

// IntelligenceService is the query surface over learned intelligence
// (spec §4.7's IntelligenceService).
type IntelligenceService struct {
	store     *store.Store
	index     *intelligence.ConceptIndex
	patterns  *intelligence.PatternEngine
	predictor *intelligence.Predictor
}

// NewIntelligenceService wires the query surface over the same index and
// pattern engine a LearningService feeds, so queries reflect the latest
// learn run without an explicit reload.
func NewIntelligenceService(s *store.Store, index *intelligence.ConceptIndex, patterns *intelligence.PatternEngine, predictor *intelligence.Predictor) *IntelligenceService {
	return &IntelligenceService{store: s, index: index, patterns: patterns, predictor: predictor}
}

// LoadFromBackend rebuilds the in-memory embedding index from every
// persisted concept (spec §4.7) — used at process startup, since the
// index itself holds nothing durable.
func (svc *IntelligenceService) LoadFromBackend(ctx context.Context) error {
	concepts, err := svc.store.ListAllConcepts()
	if err != nil {
		return fmt.Errorf("services: loading concepts: %w", err)
	}
	svc.index.Clear()
	if len(concepts) == 0 {
		return nil
	}
	if _, err := svc.index.AddConceptsBatch(ctx, concepts); err != nil {
		return fmt.Errorf("services: rebuilding index: %w", err)
	}
	return nil
}

// GetSemanticInsights filters stored concepts by substring and type,
// returning enriched SemanticInsight views and the total match count
// before the limit was applied.
func (svc *IntelligenceService) GetSemanticInsights(query string, conceptType entities.ConceptType, limit int) ([]entities.SemanticInsight, int, error) {
	if limit <= 0 {
		limit = 20
	}

	var candidates []entities.SemanticConcept
	var err error
	if query != "" {
		candidates, err = svc.store.SearchConceptsByName(query, 0)
	} else {
		candidates, err = svc.store.ListAllConcepts()
	}
	if err != nil {
		return nil, 0, fmt.Errorf("services: querying concepts: %w", err)
	}

	var matched []entities.SemanticConcept
	for _, c := range candidates {
		if conceptType != "" && c.ConceptType != conceptType {
			continue
		}
		matched = append(matched, c)
	}

	total := len(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}

	insights := make([]entities.SemanticInsight, 0, len(matched))
	for _, c := range matched {
		insights = append(insights, svc.enrich(c))
	}
	return insights, total, nil
}

// enrich expands a concept into a SemanticInsight: its own relationships
// plus every other file known to reference it by name.
func (svc *IntelligenceService) enrich(c entities.SemanticConcept) entities.SemanticInsight {
	usage := map[string]bool{c.FilePath: true}
	others, _ := svc.store.SearchConceptsByName(c.Name, 0)
	for _, o := range others {
		if o.Name == c.Name {
			usage[o.FilePath] = true
		}
	}
	var files []string
	for f := range usage {
		files = append(files, f)
	}

	evolution := "stable"
	if c.CreatedAt.Before(c.UpdatedAt) {
		evolution = "modified since first learned"
	}

	return entities.SemanticInsight{
		Concept:       c,
		Relationships: c.Relationships,
		Usage:         files,
		Evolution:     evolution,
	}
}

// SearchSemanticallySimilar delegates to the embedding index.
func (svc *IntelligenceService) SearchSemanticallySimilar(ctx context.Context, query string, limit int, conceptType entities.ConceptType, filePathFilter string) ([]entities.SemanticSearchResult, error) {
	return svc.index.Search(ctx, query, intelligence.SearchOptions{
		Limit:                limit,
		ConceptTypeFilter:    conceptType,
		FilePathPrefixFilter: filePathFilter,
	})
}

// GetPatternRecommendations scores learned patterns against a problem
// description, optionally widening the response with the files that
// exemplify each recommendation.
func (svc *IntelligenceService) GetPatternRecommendations(problemDescription, currentFile string, includeRelatedFiles bool) ([]entities.PatternRecommendation, []string, []string) {
	recs := svc.patterns.Recommend(problemDescription, 5)

	var reasoning []string
	for _, r := range recs {
		reasoning = append(reasoning, fmt.Sprintf("%s matched keywords: %s", r.Pattern.Name, strings.Join(r.MatchedKeywords, ", ")))
	}

	var relatedFiles []string
	if includeRelatedFiles {
		seen := map[string]bool{}
		for _, r := range recs {
			for _, f := range r.ExampleFiles {
				if f != currentFile && !seen[f] {
					seen[f] = true
					relatedFiles = append(relatedFiles, f)
				}
			}
		}
	}
	return recs, reasoning, relatedFiles
}

// PredictCodingApproach delegates to the approach predictor.
func (svc *IntelligenceService) PredictCodingApproach(ctx context.Context, problemDescription, currentFile string) entities.CodingApproachPrediction {
	return svc.predictor.Predict(ctx, problemDescription, currentFile)
}

// GetDeveloperProfile aggregates the pattern engine's learned patterns,
// optionally including recent session activity and the active session.
func (svc *IntelligenceService) GetDeveloperProfile(includeRecentActivity, includeWorkContext bool, recentSessions []entities.WorkSession, activeSession *entities.WorkSession) entities.DeveloperProfile {
	return intelligence.BuildProfile(svc.patterns, intelligence.ProfileOptions{
		IncludeRecentActivity: includeRecentActivity,
		IncludeWorkContext:    includeWorkContext,
	}, recentSessions, activeSession)
}

// ContributeInsight persists an externally-contributed insight.
func (svc *IntelligenceService) ContributeInsight(insightType entities.InsightType, content string, confidence float64, sourceAgent string, affectedFiles []string) (bool, string, string) {
	insight := insightToStorage(insightType, content, content, confidence, sourceAgent, affectedFiles)
	if err := svc.store.AddInsight(insight); err != nil {
		return false, "", fmt.Sprintf("failed to record insight: %v", err)
	}
	return true, insight.ID, "insight recorded"
}

// GetProjectBlueprint summarizes learning status, entry points and key
// directories for projectPath (spec §4.7).
func (svc *IntelligenceService) GetProjectBlueprint(projectPath string) (*entities.ProjectBlueprint, error) {
	concepts, err := svc.store.CountConceptsByPathPrefix(projectPath)
	if err != nil {
		return nil, fmt.Errorf("services: counting concepts: %w", err)
	}
	entryPoints, err := svc.store.ListEntryPoints()
	if err != nil {
		return nil, fmt.Errorf("services: listing entry points: %w", err)
	}
	keyDirs, err := svc.store.ListKeyDirectories()
	if err != nil {
		return nil, fmt.Errorf("services: listing key directories: %w", err)
	}
	patterns := svc.patterns.Patterns()

	return &entities.ProjectBlueprint{
		LearningStatus: entities.LearningStatus{
			HasIntelligence: concepts > 0,
			ConceptsStored:  concepts,
			PatternsStored:  len(patterns),
			Persisted:       true,
		},
		EntryPoints:    entryPoints,
		KeyDirectories: keyDirs,
	}, nil
}
