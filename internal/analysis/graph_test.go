package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesis/internal/entities"
)

func TestBuildDependencyGraphNoCycle(t *testing.T) {
	edges := []entities.DependencyEdge{
		{From: "a", To: "b", Kind: entities.EdgeImport},
		{From: "b", To: "c", Kind: entities.EdgeImport},
	}
	g := BuildDependencyGraph(edges, nil, nil)
	require.Len(t, g.Nodes, 3)
	assert.Empty(t, g.Cycles)

	metrics := ComputeMetrics(g)
	assert.Equal(t, 3, metrics.TotalModules)
	assert.Equal(t, 3, metrics.MaxDepth)
}

func TestBuildDependencyGraphDetectsCycle(t *testing.T) {
	edges := []entities.DependencyEdge{
		{From: "a", To: "b", Kind: entities.EdgeImport},
		{From: "b", To: "c", Kind: entities.EdgeImport},
		{From: "c", To: "a", Kind: entities.EdgeImport},
	}
	g := BuildDependencyGraph(edges, nil, nil)
	require.Len(t, g.Cycles, 1)
	assert.Len(t, g.Cycles[0].Cycle, 4) // a,b,c,a closed
}

func TestBuildDependencyGraphSelfImportIsLowSeverityCycle(t *testing.T) {
	edges := []entities.DependencyEdge{
		{From: "a", To: "a", Kind: entities.EdgeImport},
	}
	g := BuildDependencyGraph(edges, nil, nil)
	require.Len(t, g.Cycles, 1)
	assert.Equal(t, "low", g.Cycles[0].Severity)
}
