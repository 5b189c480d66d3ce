package parser

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// InvalidQueryError wraps a tree-sitter S-expression query compilation
// failure (spec §4.1 "Query execution").
type InvalidQueryError struct {
	Pattern string
	Cause   error
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("parser: invalid query %q: %v", e.Pattern, e.Cause)
}

func (e *InvalidQueryError) Unwrap() error { return e.Cause }

// Query is a compiled tree-sitter S-expression query bound to one grammar.
// This is the one sub-feature of the parser substrate with no direct
// precedent in the teacher's own tree-sitter usage — ast_treesitter.go,
// python_parser.go, rust_parser.go and typescript_parser.go all walk nodes
// manually via ChildByFieldName/NamedChild rather than compiling queries —
// so Query is grounded directly on the smacker/go-tree-sitter library's own
// exported Query/QueryCursor API rather than a specific teacher call-site.
type Query struct {
	raw     *sitter.Query
	pattern string
}

// NewQuery compiles pattern (an S-expression query) against grammar.
func NewQuery(language string, pattern string) (*Query, error) {
	grammar := grammarFor(Canonicalize(language))
	if grammar == nil {
		return nil, &UnsupportedLanguageError{Language: language}
	}
	q, err := sitter.NewQuery([]byte(pattern), grammar)
	if err != nil {
		return nil, &InvalidQueryError{Pattern: pattern, Cause: err}
	}
	return &Query{raw: q, pattern: pattern}, nil
}

// Close releases the compiled query's native resources.
func (q *Query) Close() { q.raw.Close() }

// Capture is one (name, node) pair produced by a query match.
type Capture struct {
	Name string
	Node *sitter.Node
	Text string
}

// Matches executes the query against root and returns every capture across
// every match, in match order. When captureName is non-empty, only
// captures with that name are returned — the Go analogue of
// original_source's find_all(tree, source, capture_name=None).
func (q *Query) Matches(root *sitter.Node, source []byte, captureName string) []Capture {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q.raw, root)

	var out []Capture
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, c := range match.Captures {
			name := q.raw.CaptureNameForId(c.Index)
			if captureName != "" && name != captureName {
				continue
			}
			out = append(out, Capture{
				Name: name,
				Node: c.Node,
				Text: c.Node.Content(source),
			})
		}
	}
	return out
}

// FindAll is a package-level convenience wrapping NewQuery+Matches+Close
// for one-shot query execution, mirroring original_source's
// find_all(tree, source, capture_name=None) helper.
func FindAll(language string, root *sitter.Node, source []byte, pattern string, captureName string) ([]Capture, error) {
	q, err := NewQuery(language, pattern)
	if err != nil {
		return nil, err
	}
	defer q.Close()
	return q.Matches(root, source, captureName), nil
}
