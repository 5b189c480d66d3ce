package services

import (
	"anamnesis/internal/entities"
)

// engineConceptToStorage bridges an extractor-produced ExtractedSymbol
// into the validated, storage-side SemanticConcept: confidence stays in
// [0,1] and line_range splits into line_start/line_end.
func engineConceptToStorage(sym entities.ExtractedSymbol) entities.SemanticConcept {
	confidence := sym.Confidence
	if confidence == 0 {
		confidence = 1.0
	}
	return entities.SemanticConcept{
		Name:        sym.Name,
		ConceptType: sym.SymbolType,
		FilePath:    sym.FilePath,
		Description: sym.Description,
		LineStart:   sym.LineStart,
		LineEnd:     sym.LineEnd,
		Confidence:  confidence,
		Metadata:    sym.Metadata,
	}
}

// storageConceptToEngine reverses engineConceptToStorage for callers that
// need to re-derive the lightweight engine-side shape from a persisted
// concept. LoadFromBackend does not use it: it indexes stored concepts
// directly.
func storageConceptToEngine(c entities.SemanticConcept) entities.ExtractedSymbol {
	return entities.ExtractedSymbol{
		Name:          c.Name,
		QualifiedName: c.Name,
		SymbolType:    c.ConceptType,
		FilePath:      c.FilePath,
		Description:   c.Description,
		LineStart:     c.LineStart,
		LineEnd:       c.LineEnd,
		Confidence:    c.Confidence,
		Metadata:      c.Metadata,
	}
}

// enginePatternToStorage converts one detection into the accumulable
// storage shape, seeding Frequency at 1 — callers that already hold an
// existing record should increment it instead of calling this again.
func enginePatternToStorage(d entities.DetectedPattern, filePath string) *entities.DeveloperPattern {
	return &entities.DeveloperPattern{
		PatternType: d.Kind,
		Name:        d.Name,
		Frequency:   1,
		FilePaths:   []string{filePath},
		Confidence:  d.Confidence(),
	}
}

func containsString(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// insightToStorage packages a contributed insight's free-form fields into
// the storage-side AIInsight, stashing the contributing agent in metadata.
func insightToStorage(insightType entities.InsightType, title, content string, confidence float64, sourceAgent string, affectedFiles []string) *entities.AIInsight {
	meta := map[string]any{}
	if sourceAgent != "" {
		meta["source_agent"] = sourceAgent
	}
	return &entities.AIInsight{
		InsightType:   insightType,
		Title:         title,
		Description:   content,
		AffectedFiles: affectedFiles,
		Confidence:    confidence,
		Metadata:      meta,
	}
}
