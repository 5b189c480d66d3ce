package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesis/internal/entities"
)

func TestExtractSymbolsGoFunction(t *testing.T) {
	src := "package main\n\nfunc Greet(name string) string {\n\treturn name\n}\n\nfunc private() {}\n"
	ctx := parse(t, "go", "/greet.go", src)

	symbols := ExtractSymbols(ctx, false)
	require.NotEmpty(t, symbols)

	var greet, priv *entities.ExtractedSymbol
	for i := range symbols {
		switch symbols[i].Name {
		case "Greet":
			greet = &symbols[i]
		case "private":
			priv = &symbols[i]
		}
	}
	require.NotNil(t, greet)
	require.NotNil(t, priv)
	assert.True(t, greet.IsExported)
	assert.False(t, priv.IsExported)
	assert.Empty(t, greet.Body)
}

func TestExtractSymbolsIncludeBody(t *testing.T) {
	src := "package main\n\nfunc F() {}\n"
	ctx := parse(t, "go", "/f.go", src)
	symbols := ExtractSymbols(ctx, true)
	require.Len(t, symbols, 1)
	assert.NotEmpty(t, symbols[0].Body)
}

func TestExtractSymbolsGoVariablesAndConstants(t *testing.T) {
	src := "package main\n\nvar MaxRetries = 3\n\nconst DefaultTimeout = 30\n\nfunc Run() {\n\tlocal := 1\n\t_ = local\n}\n"
	ctx := parse(t, "go", "/config.go", src)
	symbols := ExtractSymbols(ctx, false)
	require.NotEmpty(t, symbols)

	var variable, constant, short *entities.ExtractedSymbol
	for i := range symbols {
		switch symbols[i].Name {
		case "MaxRetries":
			variable = &symbols[i]
		case "DefaultTimeout":
			constant = &symbols[i]
		case "local":
			short = &symbols[i]
		}
	}
	require.NotNil(t, variable)
	require.NotNil(t, constant)
	require.NotNil(t, short)
	assert.Equal(t, entities.ConceptVariable, variable.SymbolType)
	assert.Equal(t, entities.ConceptConstant, constant.SymbolType)
	assert.Equal(t, entities.ConceptVariable, short.SymbolType)
}

func TestExtractSymbolsQualifiedNameNestsUnderClass(t *testing.T) {
	src := "class Greeter:\n    def greet(self):\n        pass\n"
	ctx := parse(t, "python", "/greeter.py", src)
	symbols := ExtractSymbols(ctx, false)

	var method *entities.ExtractedSymbol
	for i := range symbols {
		if symbols[i].Name == "greet" {
			method = &symbols[i]
		}
	}
	require.NotNil(t, method)
	assert.Equal(t, "Greeter.greet", method.QualifiedName)
}
