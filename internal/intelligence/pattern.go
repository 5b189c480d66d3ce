package intelligence

import (
	"context"
	"sort"
	"strings"
	"sync"

	"anamnesis/internal/entities"
	"anamnesis/internal/extract"
	"anamnesis/internal/parser"
)

// PatternEngine is the knowledge layer over the extractor's pattern
// detectors (spec §4.5): it runs Detect per file, accumulates frequency
// across the codebase in Learn, and scores known patterns against a
// problem description in Recommend. This is distinct from
// internal/extract/pattern.go, which only detects patterns in one
// already-parsed file and has no notion of cross-file frequency.
type PatternEngine struct {
	mu     sync.RWMutex
	byName map[string]*entities.DeveloperPattern // keyed by pattern_type+name
	cfg    extract.PatternConfig
}

// NewPatternEngine returns an empty pattern knowledge base.
func NewPatternEngine(cfg extract.PatternConfig) *PatternEngine {
	return &PatternEngine{byName: make(map[string]*entities.DeveloperPattern), cfg: cfg}
}

// Detect runs the extractor's heuristic detectors over an already-parsed
// file's symbols.
func (e *PatternEngine) Detect(ctx *entities.ASTContext, symbols []entities.ExtractedSymbol) []entities.DetectedPattern {
	return extract.DetectPatterns(ctx, symbols, e.cfg)
}

// Learn records detected patterns against the file that produced them,
// accumulating frequency, confidence (max across occurrences), and file
// paths across repeat calls.
func (e *PatternEngine) Learn(filePath string, detected []entities.DetectedPattern) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, d := range detected {
		key := string(d.Kind) + "\x00" + d.Name
		confidence := d.Confidence()
		if existing, ok := e.byName[key]; ok {
			existing.Frequency++
			if confidence > existing.Confidence {
				existing.Confidence = confidence
			}
			if !containsString(existing.FilePaths, filePath) {
				existing.FilePaths = append(existing.FilePaths, filePath)
			}
			continue
		}
		e.byName[key] = &entities.DeveloperPattern{
			PatternType: d.Kind,
			Name:        d.Name,
			Frequency:   1,
			FilePaths:   []string{filePath},
			Confidence:  confidence,
		}
	}
}

// Patterns returns a snapshot of every learned pattern.
func (e *PatternEngine) Patterns() []entities.DeveloperPattern {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]entities.DeveloperPattern, 0, len(e.byName))
	for _, p := range e.byName {
		out = append(out, *p)
	}
	return out
}

// keywordFamilies maps a recommendation keyword to the pattern names it
// supports — grounded on spec §4.5's predictor keyword-family list, reused
// here for pattern recommendation since both score against the same
// problem-description vocabulary.
var keywordFamilies = map[string][]string{
	"service":    {"SERVICE", "DEPENDENCY_INJECTION"},
	"api":        {"SERVICE", "REPOSITORY"},
	"repository": {"REPOSITORY"},
	"event":      {"OBSERVER"},
	"notify":     {"OBSERVER"},
	"cache":      {"SINGLETON"},
	"test":       {"DEPENDENCY_INJECTION"},
	"build":      {"BUILDER", "FACTORY"},
	"create":     {"FACTORY", "BUILDER"},
	"config":     {"SINGLETON", "CONTEXT_MANAGER"},
}

// Recommend scores every learned pattern by keyword overlap against
// problemDescription and returns the top-k with reasoning citing the
// matched keywords and exemplifying files.
func (e *PatternEngine) Recommend(problemDescription string, topK int) []entities.PatternRecommendation {
	if topK <= 0 {
		topK = 5
	}
	words := tokenizeWords(problemDescription)

	e.mu.RLock()
	defer e.mu.RUnlock()

	var recs []entities.PatternRecommendation
	for _, p := range e.byName {
		var matched []string
		for _, w := range words {
			for keyword, patternNames := range keywordFamilies {
				if w != keyword {
					continue
				}
				for _, pn := range patternNames {
					if pn == string(p.PatternType) {
						matched = append(matched, keyword)
					}
				}
			}
		}
		if len(matched) == 0 {
			continue
		}
		score := float64(len(matched)) * (0.5 + 0.5*p.Confidence)
		recs = append(recs, entities.PatternRecommendation{
			Pattern:         *p,
			Score:           score,
			MatchedKeywords: matched,
			ExampleFiles:    p.FilePaths,
		})
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > topK {
		recs = recs[:topK]
	}
	return recs
}

func tokenizeWords(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

func containsString(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// DetectAndLearn is the common per-file pipeline entry point: parse,
// extract symbols, detect patterns, and learn in one call, used by the
// learning service's phase 3.
func DetectAndLearn(ctx context.Context, engine *PatternEngine, w *parser.Wrapper, path string, source []byte) error {
	astCtx, err := w.Parse(ctx, path, source)
	if err != nil {
		return err
	}
	symbols := extract.ExtractSymbols(astCtx, false)
	detected := engine.Detect(astCtx, symbols)
	engine.Learn(path, detected)
	return nil
}
