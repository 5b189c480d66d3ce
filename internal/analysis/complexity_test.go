package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesis/internal/entities"
	"anamnesis/internal/parser"
)

func parseFunction(t *testing.T, language, src, fnKind, fnName string) *entities.ParsedNode {
	t.Helper()
	w, err := parser.NewWrapper(language)
	require.NoError(t, err)
	ctx, err := w.Parse(context.Background(), "t", []byte(src))
	require.NoError(t, err)

	var found *entities.ParsedNode
	parser.Walk(ctx.Root, func(n *entities.ParsedNode) {
		if n.Kind() == fnKind && n.Name == fnName {
			found = n
		}
	})
	require.NotNil(t, found, "function %s not found", fnName)
	return found
}

func TestCyclomaticBaseline(t *testing.T) {
	src := "package main\n\nfunc Empty() {}\n"
	fn := parseFunction(t, "go", src, "FUNCTION", "Empty")
	assert.Equal(t, 1, Cyclomatic(fn))
}

func TestCyclomaticCountsIfAndFor(t *testing.T) {
	src := `package main

func Sum(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			total += i
		}
	}
	return total
}
`
	fn := parseFunction(t, "go", src, "FUNCTION", "Sum")
	assert.GreaterOrEqual(t, Cyclomatic(fn), 3)
}

func TestCognitiveNestedIfExceedsFlat(t *testing.T) {
	flatSrc := `package main

func Flat(a, b bool) int {
	if a {
		return 1
	}
	if b {
		return 2
	}
	return 0
}
`
	nestedSrc := `package main

func Nested(a, b bool) int {
	if a {
		if b {
			return 1
		}
	}
	return 0
}
`
	flat := parseFunction(t, "go", flatSrc, "FUNCTION", "Flat")
	nested := parseFunction(t, "go", nestedSrc, "FUNCTION", "Nested")
	assert.Greater(t, Cognitive(nested, "Nested"), Cognitive(flat, "Flat"))
}
