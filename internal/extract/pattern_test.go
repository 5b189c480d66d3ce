package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesis/internal/entities"
)

func TestDetectSingletonPattern(t *testing.T) {
	src := "class Config:\n    _instance = None\n\n    @classmethod\n    def get_instance(cls):\n        return cls._instance\n"
	ctx := parse(t, "python", "/config.py", src)
	symbols := ExtractSymbols(ctx, false)

	patterns := DetectPatterns(ctx, symbols, DefaultPatternConfig())
	var singleton *entities.DetectedPattern
	for i := range patterns {
		if patterns[i].Kind == entities.PatternSingleton {
			singleton = &patterns[i]
		}
	}
	require.NotNil(t, singleton)
	assert.GreaterOrEqual(t, singleton.Confidence(), 0.7)
}

func TestDetectAntipatternsOnlyWhenEnabled(t *testing.T) {
	symbols := []entities.ExtractedSymbol{
		{Name: "Huge", SymbolType: entities.ConceptClass, QualifiedName: "Huge", FilePath: "x.py", LineStart: 1, LineEnd: 500},
	}
	for i := 0; i < 25; i++ {
		symbols = append(symbols, entities.ExtractedSymbol{
			Name: "m", SymbolType: entities.ConceptMethod, QualifiedName: "Huge.m", FilePath: "x.py", LineStart: 2, LineEnd: 3,
		})
	}

	cfg := DefaultPatternConfig()
	none := DetectPatterns(nil, symbols, cfg)
	for _, p := range none {
		assert.NotEqual(t, entities.PatternAntiGodClass, p.Kind)
	}

	cfg.DetectAntipatterns = true
	cfg.MinConfidence = 0
	withAnti := DetectPatterns(nil, symbols, cfg)
	found := false
	for _, p := range withAnti {
		if p.Kind == entities.PatternAntiGodClass {
			found = true
		}
	}
	assert.True(t, found)
}

func TestConfidenceCapsAtOne(t *testing.T) {
	p := entities.DetectedPattern{
		Evidence: []entities.EvidenceContribution{
			{Confidence: 0.7}, {Confidence: 0.6},
		},
	}
	assert.Equal(t, 1.0, p.Confidence())
}
