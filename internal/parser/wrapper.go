package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"anamnesis/internal/entities"
)

// UnsupportedLanguageError is returned by NewWrapper when the registry has
// no grammar wired for the requested language (spec §4.1, §7).
type UnsupportedLanguageError struct {
	Language string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("parser: unsupported language %q", e.Language)
}

// Wrapper owns a single tree-sitter parser bound to one canonical language.
// It is not safe for concurrent use by multiple goroutines; callers that
// parse many files concurrently should construct one Wrapper per worker
// (grounded on the teacher's per-language *sitter.Parser field idiom in
// ast_treesitter.go, which likewise is not shared across goroutines).
type Wrapper struct {
	language string
	grammar  *sitter.Language
	parser   *sitter.Parser
}

// NewWrapper constructs a Wrapper for the given language name (aliases
// accepted). It fails fast with *UnsupportedLanguageError when no grammar
// is wired, mirroring original_source's TreeSitterParser.__init__ raising
// on an unrecognized language rather than deferring the failure to parse
// time.
func NewWrapper(language string) (*Wrapper, error) {
	canon := Canonicalize(language)
	grammar := grammarFor(canon)
	if grammar == nil {
		return nil, &UnsupportedLanguageError{Language: language}
	}
	p := sitter.NewParser()
	p.SetLanguage(grammar)
	return &Wrapper{language: canon, grammar: grammar, parser: p}, nil
}

// Language returns the canonical language name this wrapper was built for.
func (w *Wrapper) Language() string { return w.language }

// Parse parses source and returns an ASTContext. Parsing is tolerant of
// syntax errors: a best-effort tree is always returned when tree-sitter can
// produce one, with ERROR subtrees surfaced as entries in ctx.Errors rather
// than as a hard failure (spec §4.1, §7 — "never fails the whole file on a
// single bad construct").
func (w *Wrapper) Parse(ctx context.Context, path string, source []byte) (*entities.ASTContext, error) {
	tree, err := w.ParseRaw(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("parser: %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	astCtx := &entities.ASTContext{
		FilePath:   path,
		Language:   w.language,
		SourceCode: string(source),
	}
	astCtx.Root = nodeToParsed(root, source)
	collectErrors(root, source, &astCtx.Errors)
	return astCtx, nil
}

// ParseRaw parses source and returns the underlying *sitter.Tree, for
// callers that need to run compiled queries (see Query, in query.go)
// against the original tree-sitter node graph rather than the converted
// entities.ParsedNode shape. The caller owns the returned tree and must
// call tree.Close() when done with it.
func (w *Wrapper) ParseRaw(ctx context.Context, source []byte) (*sitter.Tree, error) {
	return w.parser.ParseCtx(ctx, nil, source)
}

// Grammar exposes the underlying tree-sitter Language, needed to compile a
// Query for this wrapper's language.
func (w *Wrapper) Grammar() *sitter.Language { return w.grammar }

// collectErrors walks the tree looking for ERROR nodes and MISSING tokens,
// recording a 1-indexed "Syntax error at line L, column C" entry for each
// — grounded on original_source's parse_to_context error reporting, which
// surfaces parse errors without aborting extraction.
func collectErrors(n *sitter.Node, source []byte, out *[]string) {
	if n.IsError() || n.IsMissing() {
		start := n.StartPoint()
		*out = append(*out, fmt.Sprintf("Syntax error at line %d, column %d", start.Row+1, start.Column+1))
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collectErrors(n.Child(i), source, out)
	}
}
