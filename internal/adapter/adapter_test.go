package adapter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesis/internal/entities"
)

func TestAdaptFromDictUnrecognizedKind(t *testing.T) {
	_, err := AdaptFromDict(EntityKind("bogus"), map[string]any{})
	assert.Error(t, err)
}

func TestAdaptConceptRoundTrip(t *testing.T) {
	in := map[string]any{
		"name":         "Greeter",
		"concept_type": "CLASS",
		"file_path":    "greeter.go",
		"line_start":   float64(1),
		"line_end":     float64(10),
		"confidence":   float64(0.8),
	}
	entity, err := AdaptFromDict(KindSemanticConcept, in)
	require.NoError(t, err)
	c, ok := entity.(*entities.SemanticConcept)
	require.True(t, ok)
	assert.Equal(t, "Greeter", c.Name)
	assert.Equal(t, entities.ConceptClass, c.ConceptType)

	out, err := AdaptToDict(KindSemanticConcept, c)
	require.NoError(t, err)
	assert.Equal(t, "Greeter", out["name"])
	assert.Equal(t, "CLASS", out["concept_type"])
}

func TestAdaptConceptRejectsUnknownType(t *testing.T) {
	_, err := AdaptFromDict(KindSemanticConcept, map[string]any{
		"name": "X", "concept_type": "NOT_A_TYPE", "file_path": "x.go",
	})
	var terr *TypeCoercionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "concept_type", terr.Field)
	assert.Equal(t, "NOT_A_TYPE", terr.Value)
	assert.Contains(t, terr.ValidValues, "CLASS")
	assert.Contains(t, err.Error(), "CLASS")
}

func TestAdaptConceptRequiresName(t *testing.T) {
	_, err := AdaptFromDict(KindSemanticConcept, map[string]any{
		"concept_type": "CLASS", "file_path": "x.go",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"name"}, verr.Missing)
}

func TestAdaptConceptAccumulatesAllMissingFields(t *testing.T) {
	_, err := AdaptFromDict(KindSemanticConcept, map[string]any{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"name", "concept_type", "file_path"}, verr.Missing)
}

func TestAdaptADRRejectsUnknownStatus(t *testing.T) {
	_, err := AdaptFromDict(KindArchitecturalDecision, map[string]any{
		"title": "storage choice", "status": "MAYBE",
	})
	var terr *TypeCoercionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "status", terr.Field)
	assert.Contains(t, terr.ValidValues, "PROPOSED")
}

func TestAdaptPatternRejectsUnknownType(t *testing.T) {
	_, err := AdaptFromDict(KindDeveloperPattern, map[string]any{
		"pattern_type": "NOT_A_PATTERN", "name": "X",
	})
	var terr *TypeCoercionError
	assert.ErrorAs(t, err, &terr)
}

func TestAdaptInsightRejectsUnknownType(t *testing.T) {
	_, err := AdaptFromDict(KindAIInsight, map[string]any{
		"insight_type": "NOT_AN_INSIGHT", "title": "X",
	})
	var terr *TypeCoercionError
	assert.ErrorAs(t, err, &terr)
}

func TestAdaptConceptTypeCoercionError(t *testing.T) {
	_, err := AdaptFromDict(KindSemanticConcept, map[string]any{
		"name": "X", "concept_type": "CLASS", "file_path": "x.go", "line_start": "not-a-number",
	})
	var terr *TypeCoercionError
	assert.ErrorAs(t, err, &terr)
}

func TestAdaptEverySupportedKindRoundTrips(t *testing.T) {
	fixtures := map[EntityKind]map[string]any{
		KindSemanticConcept:       {"name": "A", "concept_type": "FUNCTION", "file_path": "a.go"},
		KindDeveloperPattern:      {"pattern_type": "SINGLETON", "name": "Config"},
		KindAIInsight:             {"insight_type": "BUG_PATTERN", "title": "possible nil deref"},
		KindWorkSession:           {"name": "feature work", "feature": "adapter"},
		KindProjectDecision:       {"decision": "use sqlite"},
		KindArchitecturalDecision: {"title": "storage choice"},
		KindFileIntelligence:      {"file_path": "main.go"},
	}
	for _, kind := range AllKinds {
		kind := kind
		t.Run(string(kind), func(t *testing.T) {
			entity, err := AdaptFromDict(kind, fixtures[kind])
			require.NoError(t, err)
			dict, err := AdaptToDict(kind, entity)
			require.NoError(t, err)
			entity2, err := AdaptFromDict(kind, dict)
			require.NoError(t, err)
			dict2, err := AdaptToDict(kind, entity2)
			require.NoError(t, err)
			if diff := cmp.Diff(dict, dict2); diff != "" {
				t.Errorf("round-trip mismatch (-first +second):\n%s", diff)
			}
		})
	}
}
