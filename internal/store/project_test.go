package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesis/internal/entities"
)

func TestADRLifecycle(t *testing.T) {
	s := openTestStore(t)

	adr := &entities.ArchitecturalDecision{Title: "use sqlite", Decision: "store locally in sqlite"}
	require.NoError(t, s.UpsertADR(adr))
	require.NotEmpty(t, adr.ID)
	assert.Equal(t, entities.ADRProposed, adr.Status)

	got, err := s.GetADR(adr.ID)
	require.NoError(t, err)
	assert.Equal(t, "use sqlite", got.Title)

	adrs, err := s.ListADRs(10)
	require.NoError(t, err)
	assert.Len(t, adrs, 1)
}

func TestFileIntelligenceUpsertByPath(t *testing.T) {
	s := openTestStore(t)

	fi := &entities.FileIntelligence{FilePath: "main.go", Metadata: map[string]any{"loc": float64(42)}}
	require.NoError(t, s.UpsertFileIntelligence(fi))

	fi2 := &entities.FileIntelligence{FilePath: "main.go", Metadata: map[string]any{"loc": float64(50)}}
	require.NoError(t, s.UpsertFileIntelligence(fi2))

	got, err := s.GetFileIntelligence("main.go")
	require.NoError(t, err)
	assert.Equal(t, float64(50), got.Metadata["loc"])
}

func TestProjectMetadataAndMaps(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SetProjectMetadata(&entities.ProjectMetadata{Name: "anamnesis", Metadata: map[string]any{"version": "1"}}))
	got, err := s.GetProjectMetadata("anamnesis")
	require.NoError(t, err)
	assert.Equal(t, "1", got.Metadata["version"])

	require.NoError(t, s.UpsertFeatureMap(&entities.FeatureMap{Name: "learning", Metadata: map[string]any{"files": []any{"a.go"}}}))
	maps, err := s.ListFeatureMaps()
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, "learning", maps[0].Name)

	require.NoError(t, s.AddEntryPoint(&entities.EntryPoint{Name: "main", FilePath: "cmd/anamnesis/main.go"}))
	entryPoints, err := s.ListEntryPoints()
	require.NoError(t, err)
	require.Len(t, entryPoints, 1)

	require.NoError(t, s.AddKeyDirectory(&entities.KeyDirectory{Name: "internal/store"}))
	dirs, err := s.ListKeyDirectories()
	require.NoError(t, err)
	require.Len(t, dirs, 1)
}
