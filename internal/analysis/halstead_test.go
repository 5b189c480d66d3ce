package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeHalsteadOnSimpleFunction(t *testing.T) {
	src := `package main

func Add(a, b int) int {
	return a + b
}
`
	fn := parseFunction(t, "go", src, "FUNCTION", "Add")
	h := ComputeHalstead(fn, "go")
	assert.Greater(t, h.DistinctOperands, 0)
	assert.GreaterOrEqual(t, h.Vocabulary, h.DistinctOperators)
	assert.GreaterOrEqual(t, h.Length, h.TotalOperators)
}
