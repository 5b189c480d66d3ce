package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"anamnesis/internal/entities"
)

func buildTree() *entities.ParsedNode {
	leafA := &entities.ParsedNode{NodeType: entities.NodeIdentifier, RawType: "identifier", Name: "a"}
	leafB := &entities.ParsedNode{NodeType: entities.NodeIdentifier, RawType: "identifier", Name: "b"}
	fn := &entities.ParsedNode{NodeType: entities.NodeFunction, RawType: "function_declaration", Name: "f", Children: []*entities.ParsedNode{leafA, leafB}}
	return &entities.ParsedNode{NodeType: entities.NodeModule, RawType: "source_file", Children: []*entities.ParsedNode{fn}}
}

func TestWalkVisitsPreorder(t *testing.T) {
	root := buildTree()
	var order []string
	Walk(root, func(n *entities.ParsedNode) { order = append(order, n.Kind()) })
	assert.Equal(t, []string{"MODULE", "FUNCTION", "IDENTIFIER", "IDENTIFIER"}, order)
}

func TestTraversePrunesSubtree(t *testing.T) {
	root := buildTree()
	var visited []string
	Traverse(root, func(n *entities.ParsedNode) bool {
		visited = append(visited, n.Kind())
		return n.Kind() != "FUNCTION" // prune the function's children
	})
	assert.Equal(t, []string{"MODULE", "FUNCTION"}, visited)
}

func TestFindNodesByKind(t *testing.T) {
	root := buildTree()
	found := FindNodes(root, []string{"IDENTIFIER"}, nil)
	assert.Len(t, found, 2)

	withPredicate := FindNodes(root, []string{"IDENTIFIER"}, func(n *entities.ParsedNode) bool {
		return n.Name == "b"
	})
	assert.Len(t, withPredicate, 1)
	assert.Equal(t, "b", withPredicate[0].Name)
}
