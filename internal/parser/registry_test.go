package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeAliases(t *testing.T) {
	cases := map[string]string{
		"py":     "python",
		"PY":     "python",
		"jsx":    "javascript",
		"ts":     "typescript",
		"tsx":    "tsx",
		"golang": "go",
		"sh":     "bash",
		"shell":  "bash",
		"go":     "go",
	}
	for in, want := range cases {
		assert.Equal(t, want, Canonicalize(in), "Canonicalize(%q)", in)
	}
}

func TestSupports(t *testing.T) {
	assert.True(t, Supports("go"))
	assert.True(t, Supports("py"))
	assert.True(t, Supports("jsx"))
	assert.False(t, Supports("brainfuck"))
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "go", DetectLanguage("main.go"))
	assert.Equal(t, "python", DetectLanguage("pkg/mod.py"))
	assert.Equal(t, "typescript", DetectLanguage("src/app.ts"))
	assert.Equal(t, "tsx", DetectLanguage("src/App.tsx"))
	assert.Equal(t, "", DetectLanguage("no_extension"))
	assert.Equal(t, "", DetectLanguage("file.unknownext"))
}

func TestExtensionsFor(t *testing.T) {
	exts := ExtensionsFor("python")
	assert.Contains(t, exts, "py")
	assert.Contains(t, exts, "pyi")
}

func TestListSupportedContainsCoreLanguages(t *testing.T) {
	list := ListSupported()
	assert.Contains(t, list, "go")
	assert.Contains(t, list, "python")
	assert.Contains(t, list, "rust")
}

func TestHasGrammarOnlyForWiredLanguages(t *testing.T) {
	assert.True(t, hasGrammar("go"))
	assert.True(t, hasGrammar("python"))
	assert.False(t, hasGrammar("haskell")) // supported name, no grammar wired
}
