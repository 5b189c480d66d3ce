package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueryInvalidPattern(t *testing.T) {
	_, err := NewQuery("go", "(not valid query")
	require.Error(t, err)
	var invalid *InvalidQueryError
	require.ErrorAs(t, err, &invalid)
}

func TestFindAllCapturesFunctionNames(t *testing.T) {
	w, err := NewWrapper("go")
	require.NoError(t, err)

	src := []byte("package main\n\nfunc Alpha() {}\n\nfunc Beta() {}\n")
	tree, err := w.ParseRaw(context.Background(), src)
	require.NoError(t, err)
	defer tree.Close()

	pattern := `(function_declaration name: (identifier) @fn.name)`
	captures, err := FindAll("go", tree.RootNode(), src, pattern, "fn.name")
	require.NoError(t, err)
	require.Len(t, captures, 2)
	assert.Equal(t, "Alpha", captures[0].Text)
	assert.Equal(t, "Beta", captures[1].Text)
}
