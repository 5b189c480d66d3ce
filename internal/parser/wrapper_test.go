package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWrapperUnsupportedLanguage(t *testing.T) {
	_, err := NewWrapper("cobol")
	require.Error(t, err)
	var unsupported *UnsupportedLanguageError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "cobol", unsupported.Language)
}

func TestWrapperParseGoFunction(t *testing.T) {
	w, err := NewWrapper("go")
	require.NoError(t, err)

	src := []byte("package main\n\nfunc Greet(name string) string {\n\treturn \"hi \" + name\n}\n")
	ctx, err := w.Parse(context.Background(), "greet.go", src)
	require.NoError(t, err)
	require.NotNil(t, ctx.Root)
	assert.True(t, ctx.Valid())
	assert.Empty(t, ctx.Errors)
	assert.Equal(t, "go", ctx.Language)

	funcs := FindNodes(ctx.Root, []string{"FUNCTION"}, nil)
	require.Len(t, funcs, 1)
	assert.Equal(t, "Greet", funcs[0].Name)
	assert.Equal(t, "public", funcs[0].Visibility)
	assert.Equal(t, 3, funcs[0].StartLine)
}

func TestWrapperParseReportsSyntaxErrors(t *testing.T) {
	w, err := NewWrapper("go")
	require.NoError(t, err)

	src := []byte("package main\n\nfunc broken( {\n")
	ctx, err := w.Parse(context.Background(), "broken.go", src)
	require.NoError(t, err)
	require.NotNil(t, ctx.Root)
	assert.NotEmpty(t, ctx.Errors)
}

func TestWrapperDetectsAsyncJavascript(t *testing.T) {
	w, err := NewWrapper("javascript")
	require.NoError(t, err)

	src := []byte("async function load() {\n  return 1;\n}\n")
	ctx, err := w.Parse(context.Background(), "load.js", src)
	require.NoError(t, err)

	funcs := FindNodes(ctx.Root, []string{"FUNCTION"}, nil)
	require.Len(t, funcs, 1)
	assert.True(t, funcs[0].IsAsync)
}
