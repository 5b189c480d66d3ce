package extract

import (
	"fmt"
	"strings"

	"anamnesis/internal/entities"
)

// symbolNodeKinds are the ParsedNode kinds that become an ExtractedSymbol.
// Every supported language funnels through node.go's rawTypeToNodeType
// table, so a single kind-based walk covers Go, Python, JS/TS and Rust —
// grounded on the teacher's extractGoSymbols in ast_treesitter.go,
// generalized across grammars rather than reimplemented per language (spec
// §9's Open Questions decision: unspecified/uncommon languages get this
// same generic path, with no symbol extraction beyond it).
var symbolNodeKinds = map[string]entities.ConceptType{
	"CLASS":      entities.ConceptClass,
	"FUNCTION":   entities.ConceptFunction,
	"METHOD":     entities.ConceptMethod,
	"INTERFACE":  entities.ConceptInterface,
	"TYPE_ALIAS": entities.ConceptTypeAlias,
	"ENUM":       entities.ConceptEnum,
	"PROPERTY":   entities.ConceptProperty,
	"LAMBDA":     entities.ConceptLambda,
	"VARIABLE":   entities.ConceptVariable,
	"CONSTANT":   entities.ConceptConstant,
}

// ExtractSymbols walks ctx's tree and returns every declaration matching
// symbolNodeKinds as an ExtractedSymbol. includeBody controls whether the
// symbol's full source text is retained (spec §4.2's include_body option —
// off by default to keep result payloads small).
func ExtractSymbols(ctx *entities.ASTContext, includeBody bool) []entities.ExtractedSymbol {
	if ctx == nil || ctx.Root == nil {
		return nil
	}
	var out []entities.ExtractedSymbol
	walkSymbols(ctx, ctx.Root, "", includeBody, &out)
	return out
}

func walkSymbols(ctx *entities.ASTContext, n *entities.ParsedNode, parentName string, includeBody bool, out *[]entities.ExtractedSymbol) {
	conceptType, isSymbol := symbolNodeKinds[n.Kind()]
	nextParent := parentName

	if isSymbol {
		qualified := n.Name
		if parentName != "" && n.Name != "" {
			qualified = parentName + "." + n.Name
		}

		sym := entities.ExtractedSymbol{
			Name:          n.Name,
			QualifiedName: qualified,
			SymbolType:    conceptType,
			FilePath:      ctx.FilePath,
			Description:   describeSymbol(conceptType, n.Name, ctx.Language),
			LineStart:     n.StartLine,
			LineEnd:       n.EndLine,
			IsAsync:       n.IsAsync,
			IsExported:    n.Visibility == "public",
			Visibility:    entities.Visibility(n.Visibility),
			Decorators:    append([]string{}, n.Decorators...),
			Docstring:     findDocstring(n),
			Confidence:    1.0,
			Metadata:      n.Metadata,
		}
		if includeBody {
			sym.Body = n.Text
		}
		*out = append(*out, sym)

		if conceptType == entities.ConceptClass && n.Name != "" {
			nextParent = n.Name
		}
	}

	for _, child := range n.Children {
		walkSymbols(ctx, child, nextParent, includeBody, out)
	}
}

// findDocstring returns the leading comment child's text, if a symbol's
// first child is a COMMENT node immediately preceding it (a reasonable
// generalization across languages that lack Python's string-literal
// docstring convention). Python's docstring-as-first-statement form is not
// captured: tree-sitter-python represents it as an expression_statement
// whose child is a string, not a comment.
func findDocstring(n *entities.ParsedNode) string {
	for _, child := range n.Children {
		if child.Kind() == "COMMENT" {
			return strings.TrimSpace(child.Text)
		}
		break
	}
	return ""
}

func describeSymbol(kind entities.ConceptType, name, language string) string {
	return fmt.Sprintf("%s %s (%s)", strings.ToLower(string(kind)), name, language)
}
