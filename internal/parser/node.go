package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"anamnesis/internal/entities"
)

// rawTypeToNodeType maps tree-sitter node kinds (across the wired grammars)
// to the closed entities.NodeType enum. Unrecognized kinds pass through as
// entities.NodeUnknown, so callers fall back to RawType (spec §4.1).
var rawTypeToNodeType = map[string]entities.NodeType{
	// module/file roots
	"source_file": entities.NodeModule,
	"module":      entities.NodeModule,
	"program":     entities.NodeModule,

	// classes/types
	"class_declaration":      entities.NodeClass,
	"class_definition":       entities.NodeClass,
	"struct_item":            entities.NodeClass,
	"type_declaration":       entities.NodeTypeAlias,
	"type_alias_declaration": entities.NodeTypeAlias,
	"interface_declaration":  entities.NodeInterface,
	"trait_item":             entities.NodeInterface,
	"enum_declaration":       entities.NodeEnum,
	"enum_item":              entities.NodeEnum,

	// functions/methods
	"function_declaration":    entities.NodeFunction,
	"function_definition":     entities.NodeFunction,
	"function_item":           entities.NodeFunction,
	"method_declaration":      entities.NodeMethod,
	"method_definition":       entities.NodeMethod,
	"arrow_function":          entities.NodeLambda,
	"lambda":                  entities.NodeLambda,
	"lambda_expression":       entities.NodeLambda,

	// variables/constants
	"variable_declaration":     entities.NodeVariable,
	"var_declaration":          entities.NodeVariable,
	"lexical_declaration":      entities.NodeVariable,
	"short_var_declaration":    entities.NodeVariable,
	"const_declaration":        entities.NodeConstant,
	"const_item":               entities.NodeConstant,

	// properties
	"property_declaration":  entities.NodeProperty,
	"field_declaration":     entities.NodeProperty,
	"public_field_definition": entities.NodeProperty,

	// imports
	"import_statement":      entities.NodeImport,
	"import_from_statement": entities.NodeImport,
	"import_declaration":    entities.NodeImport,
	"use_declaration":       entities.NodeImport,

	// calls
	"call_expression": entities.NodeCall,
	"call":             entities.NodeCall,

	// control flow
	"if_statement":        entities.NodeIf,
	"for_statement":       entities.NodeFor,
	"for_in_statement":    entities.NodeFor,
	"while_statement":     entities.NodeWhile,

	// blocks
	"block":             entities.NodeBlock,
	"compound_statement": entities.NodeBlock,
	"statement_block":   entities.NodeBlock,

	// leaves
	"identifier":        entities.NodeIdentifier,
	"field_identifier":  entities.NodeIdentifier,
	"type_identifier":   entities.NodeIdentifier,
	"comment":           entities.NodeComment,
	"string":            entities.NodeLiteral,
	"string_literal":    entities.NodeLiteral,
	"number":            entities.NodeLiteral,
	"integer":           entities.NodeLiteral,
}

// asyncKeywordKinds are unnamed (and occasionally named) tree-sitter token
// kinds that mark a declaration as async. original_source's _node_to_parsed
// scans ALL children (not just named_children) for this purpose, since the
// "async" keyword is typically an unnamed token — intentionally mirrored
// here rather than restricting the scan to named children.
var asyncKeywordKinds = map[string]bool{
	"async": true,
}

// nameFieldCandidates are tried, in order, via ChildByFieldName to find a
// declaration's name node.
var nameFieldCandidates = []string{"name", "declarator"}

// nodeToParsed converts a *sitter.Node subtree into an *entities.ParsedNode,
// recursing only over named children (spec §4.1) — grounded on
// original_source's _node_to_parsed, including its 1-indexed line numbers
// and its metadata passthrough of the tree-sitter node kind.
func nodeToParsed(n *sitter.Node, source []byte) *entities.ParsedNode {
	raw := n.Type()
	start := n.StartPoint()
	end := n.EndPoint()

	pn := &entities.ParsedNode{
		NodeType:  rawTypeToNodeType[raw],
		RawType:   raw,
		Text:      n.Content(source),
		StartLine: int(start.Row) + 1,
		EndLine:   int(end.Row) + 1,
		StartCol:  int(start.Column) + 1,
		EndCol:    int(end.Column) + 1,
		Metadata: map[string]any{
			"tree_sitter_type": raw,
			"start_byte":       n.StartByte(),
			"end_byte":         n.EndByte(),
			"is_named":         n.IsNamed(),
			"child_count":      n.ChildCount(),
		},
	}

	if opNode := n.ChildByFieldName("operator"); opNode != nil {
		pn.Metadata["operator"] = opNode.Content(source)
	}

	pn.Name = extractName(n, source)
	pn.IsAsync = scanForAsync(n)
	if pn.IsAsync {
		pn.Metadata["is_async"] = true
	}
	pn.Visibility = visibilityFor(pn.Name)
	pn.IsPrivate = pn.Visibility == string(entities.VisibilityPrivate)

	for i := 0; i < int(n.NamedChildCount()); i++ {
		pn.Children = append(pn.Children, nodeToParsed(n.NamedChild(i), source))
	}

	return pn
}

// extractName finds a declaration's name: first via the grammar's "name"
// (or "declarator") field, falling back to the first identifier-like named
// child, and finally descending into the node that actually carries the
// name — Go's var_declaration/const_declaration wrap a var_spec/const_spec
// that has the "name" field, and short_var_declaration's targets live under
// its "left" expression_list — one level down from the declaration node
// itself.
func extractName(n *sitter.Node, source []byte) string {
	for _, field := range nameFieldCandidates {
		if nameNode := n.ChildByFieldName(field); nameNode != nil {
			return nameNode.Content(source)
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "identifier", "field_identifier", "type_identifier", "property_identifier":
			return child.Content(source)
		}
	}
	if left := n.ChildByFieldName("left"); left != nil {
		return extractName(left, source)
	}
	if n.NamedChildCount() > 0 {
		return extractName(n.NamedChild(0), source)
	}
	return ""
}

// scanForAsync scans ALL children (named and unnamed) for an async marker,
// matching original_source's behavior of checking the full child list
// rather than only named_children.
func scanForAsync(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if asyncKeywordKinds[child.Type()] {
			return true
		}
	}
	return false
}

// visibilityFor derives public/private/protected from capitalization
// (Go-style exported identifiers) or a leading underscore (Python-style
// convention), matching the teacher's visibility-by-capitalization idiom
// in ast_treesitter.go generalized to the other grammars' conventions.
func visibilityFor(name string) string {
	if name == "" {
		return string(entities.VisibilityPublic)
	}
	if strings.HasPrefix(name, "__") {
		return string(entities.VisibilityPrivate)
	}
	if strings.HasPrefix(name, "_") {
		return string(entities.VisibilityProtected)
	}
	first := rune(name[0])
	if first >= 'A' && first <= 'Z' {
		return string(entities.VisibilityPublic)
	}
	if first >= 'a' && first <= 'z' {
		return string(entities.VisibilityPrivate)
	}
	return string(entities.VisibilityPublic)
}
