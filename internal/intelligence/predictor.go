package intelligence

import (
	"context"
	"fmt"
	"strings"

	"anamnesis/internal/entities"
)

// approachKeywords maps a keyword family to the dominant archetype it
// suggests, in priority order (first match wins when several families are
// present) — grounded on spec §4.5's predictor keyword-family list.
var approachKeywords = []struct {
	keyword  string
	approach string
}{
	{"repository", "repository-backed data access"},
	{"service", "service-layer orchestration"},
	{"api", "API handler"},
	{"event", "event-driven notification"},
	{"notify", "event-driven notification"},
	{"test", "test-first implementation"},
	{"cache", "cached lookup"},
}

// Predictor turns a problem description into a CodingApproachPrediction
// by matching keyword families against the learned pattern/concept index.
type Predictor struct {
	patterns *PatternEngine
	index    *ConceptIndex
}

// NewPredictor wires a predictor to the pattern engine and concept index
// it draws suggestions from.
func NewPredictor(patterns *PatternEngine, index *ConceptIndex) *Predictor {
	return &Predictor{patterns: patterns, index: index}
}

// Predict inspects problemDescription for keyword families to select a
// dominant archetype, suggests files whose vocabulary is nearest the
// description, and proposes companion patterns from the learned index.
func (p *Predictor) Predict(ctx context.Context, problemDescription string, currentFile string) entities.CodingApproachPrediction {
	lower := strings.ToLower(problemDescription)

	approach := "general-purpose implementation"
	var reasoning []string
	matchedFamilies := 0
	for _, kw := range approachKeywords {
		if strings.Contains(lower, kw.keyword) {
			if matchedFamilies == 0 {
				approach = kw.approach
			}
			reasoning = append(reasoning, fmt.Sprintf("description mentions %q, suggesting %s", kw.keyword, kw.approach))
			matchedFamilies++
		}
	}
	if matchedFamilies == 0 {
		reasoning = append(reasoning, "no strong keyword family matched; defaulting to a general-purpose approach")
	}

	confidence := 0.3 + 0.15*float64(matchedFamilies)
	if confidence > 0.95 {
		confidence = 0.95
	}

	recs := p.patterns.Recommend(problemDescription, 3)
	suggested := make([]string, 0, len(recs))
	for _, r := range recs {
		suggested = append(suggested, r.Pattern.Name)
	}

	var routing []string
	if p.index != nil {
		results, err := p.index.Search(ctx, problemDescription, SearchOptions{Limit: 5})
		if err == nil {
			for _, r := range results {
				if r.FilePath != "" && r.FilePath != currentFile {
					routing = append(routing, r.FilePath)
				}
			}
		}
	}

	complexity := entities.ComplexityMedium
	switch {
	case matchedFamilies == 0 && len(strings.Fields(problemDescription)) < 6:
		complexity = entities.ComplexityLow
	case matchedFamilies >= 3:
		complexity = entities.ComplexityHigh
	}

	return entities.CodingApproachPrediction{
		Approach:            approach,
		Confidence:          confidence,
		Reasoning:           reasoning,
		SuggestedPatterns:   suggested,
		EstimatedComplexity: complexity,
		FileRouting:         routing,
	}
}
