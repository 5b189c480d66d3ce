package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesis/internal/entities"
)

func TestUpsertAndGetConcept(t *testing.T) {
	s := openTestStore(t)

	c := &entities.SemanticConcept{
		Name:        "Greeter",
		ConceptType: entities.ConceptClass,
		FilePath:    "greeter.go",
		LineStart:   1,
		LineEnd:     10,
		Confidence:  0.9,
		Metadata:    map[string]any{"tree_sitter_type": "class_declaration"},
	}
	require.NoError(t, s.UpsertConcept(c))
	require.NotEmpty(t, c.ID)

	got, err := s.GetConcept(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Greeter", got.Name)
	assert.Equal(t, entities.ConceptClass, got.ConceptType)
	assert.Equal(t, "class_declaration", got.Metadata["tree_sitter_type"])
}

func TestGetConceptNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetConcept("concept_does_not_exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListConceptsByFile(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertConcept(&entities.SemanticConcept{Name: "A", ConceptType: entities.ConceptFunction, FilePath: "a.go", LineStart: 1, LineEnd: 2}))
	require.NoError(t, s.UpsertConcept(&entities.SemanticConcept{Name: "B", ConceptType: entities.ConceptFunction, FilePath: "a.go", LineStart: 3, LineEnd: 4}))
	require.NoError(t, s.UpsertConcept(&entities.SemanticConcept{Name: "C", ConceptType: entities.ConceptFunction, FilePath: "b.go", LineStart: 1, LineEnd: 2}))

	concepts, err := s.ListConceptsByFile("a.go")
	require.NoError(t, err)
	assert.Len(t, concepts, 2)
}

func TestListAllConcepts(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertConcept(&entities.SemanticConcept{Name: "A", ConceptType: entities.ConceptFunction, FilePath: "a.go"}))
	require.NoError(t, s.UpsertConcept(&entities.SemanticConcept{Name: "B", ConceptType: entities.ConceptFunction, FilePath: "b.go"}))

	concepts, err := s.ListAllConcepts()
	require.NoError(t, err)
	assert.Len(t, concepts, 2)
}

func TestCountConceptsByPathPrefix(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertConcept(&entities.SemanticConcept{Name: "A", ConceptType: entities.ConceptFunction, FilePath: "src/a.go"}))
	require.NoError(t, s.UpsertConcept(&entities.SemanticConcept{Name: "B", ConceptType: entities.ConceptFunction, FilePath: "other/b.go"}))

	n, err := s.CountConceptsByPathPrefix("src")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDeleteConceptsByFile(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertConcept(&entities.SemanticConcept{Name: "A", ConceptType: entities.ConceptFunction, FilePath: "a.go"}))
	require.NoError(t, s.DeleteConceptsByFile("a.go"))

	concepts, err := s.ListConceptsByFile("a.go")
	require.NoError(t, err)
	assert.Empty(t, concepts)
}
