package intelligence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"anamnesis/internal/entities"
	"anamnesis/internal/extract"
)

func TestBuildProfilePreferredPatternsAndNaming(t *testing.T) {
	engine := NewPatternEngine(extract.DefaultPatternConfig())
	engine.Learn("a.go", []entities.DetectedPattern{
		{Kind: entities.PatternRepository, Name: "UserRepository", Evidence: []entities.EvidenceContribution{{Confidence: 0.9}}},
	})
	engine.Learn("b.go", []entities.DetectedPattern{
		{Kind: entities.PatternNamingSnakeCase, Name: string(entities.PatternNamingSnakeCase), Evidence: []entities.EvidenceContribution{{Confidence: 0.5}}},
	})

	profile := BuildProfile(engine, ProfileOptions{}, nil, nil)
	assert.Contains(t, profile.PreferredPatterns, "UserRepository")
	assert.Equal(t, "snake_case", profile.NamingConvention)
	assert.Contains(t, profile.ExpertiseAreas, "a.go")
}

func TestBuildProfileIncludesWorkContextWhenRequested(t *testing.T) {
	engine := NewPatternEngine(extract.DefaultPatternConfig())
	active := &entities.WorkSession{Name: "feature work"}

	profile := BuildProfile(engine, ProfileOptions{IncludeWorkContext: true}, nil, active)
	assert.Equal(t, active, profile.CurrentWorkContext)
}
