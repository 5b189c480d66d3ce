package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesis/internal/entities"
	"anamnesis/internal/parser"
)

func parse(t *testing.T, language, path, src string) *entities.ASTContext {
	t.Helper()
	w, err := parser.NewWrapper(language)
	require.NoError(t, err)
	ctx, err := w.Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)
	return ctx
}

func TestExtractPythonImports(t *testing.T) {
	src := "import os\nimport numpy as np\nfrom collections import Counter\nfrom . import sibling\nfrom .. import parent_module\nfrom module import *\n"
	ctx := parse(t, "python", "/test.py", src)
	imports := ExtractImports(ctx)
	require.NotEmpty(t, imports)

	var modules []string
	for _, imp := range imports {
		modules = append(modules, imp.Module)
	}
	assert.Contains(t, modules, "os")
	assert.Contains(t, modules, "numpy")
	assert.Contains(t, modules, "collections")

	for _, imp := range imports {
		if imp.Module == "os" {
			assert.True(t, imp.IsStdlib)
		}
		if imp.Module == "numpy" {
			assert.Equal(t, entities.ImportAlias, imp.Kind)
			assert.False(t, imp.IsStdlib)
		}
		if len(imp.Names) > 0 && imp.Names[0].Name == "sibling" {
			assert.True(t, imp.IsRelative)
			assert.GreaterOrEqual(t, imp.RelativeLevel, 1)
		}
	}
}

func TestExtractGoImports(t *testing.T) {
	src := "package main\n\nimport (\n\t\"fmt\"\n\t\"os\"\n)\n"
	ctx := parse(t, "go", "/test.go", src)
	imports := ExtractImports(ctx)
	require.GreaterOrEqual(t, len(imports), 1)
	var modules []string
	for _, imp := range imports {
		modules = append(modules, imp.Module)
	}
	assert.Contains(t, modules, "fmt")
}
