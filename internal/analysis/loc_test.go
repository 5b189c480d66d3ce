package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyLOCGo(t *testing.T) {
	lines := []string{
		"package main",
		"",
		"// Greet says hello.",
		"func Greet() {}",
	}
	loc := ClassifyLOC(lines, "go")
	assert.Equal(t, 4, loc.Total)
	assert.Equal(t, 1, loc.Blanks)
	assert.Equal(t, 1, loc.Comments)
	assert.Equal(t, 2, loc.Code)
}

func TestClassifyLOCBlockComment(t *testing.T) {
	lines := []string{
		"/*",
		" * block comment",
		" */",
		"package main",
	}
	loc := ClassifyLOC(lines, "go")
	assert.Equal(t, 3, loc.Comments)
	assert.Equal(t, 1, loc.Code)
}
