// Package analysis computes per-function/per-file complexity metrics
// (spec §4.3): cyclomatic and cognitive complexity, Halstead measures,
// LOC classification, the maintainability index and dependency-graph
// cycle/instability metrics.
package analysis

import (
	"anamnesis/internal/entities"
)

// decisionKinds are ParsedNode raw tree-sitter kinds that each add one to
// cyclomatic complexity (spec §4.3: if/elif, for, while, case, except,
// boolean-operator terms, conditional expressions, comprehension filters).
var decisionKinds = map[string]bool{
	"if_statement": true, "elif_clause": true, "else_if_clause": true,
	"for_statement": true, "for_in_statement": true, "for_in_clause": true,
	"while_statement": true,
	"case_clause": true, "switch_case": true, "match_arm": true,
	"except_clause": true, "catch_clause": true,
	"conditional_expression": true, "ternary_expression": true,
	"boolean_operator": true, "binary_expression": true,
}

var booleanOperatorTexts = map[string]bool{
	"and": true, "or": true, "&&": true, "||": true,
}

// nestingKinds are the raw kinds that increase cognitive-complexity
// nesting depth when entered (spec §4.3).
var nestingKinds = map[string]bool{
	"if_statement": true, "for_statement": true, "for_in_statement": true,
	"while_statement": true, "except_clause": true, "catch_clause": true,
}

// Cyclomatic computes cyclomatic complexity for a function body: base 1
// plus one per decision point found anywhere in the subtree.
func Cyclomatic(fn *entities.ParsedNode) int {
	count := 1
	var walk func(n *entities.ParsedNode)
	walk = func(n *entities.ParsedNode) {
		if decisionKinds[n.RawType] {
			if n.RawType == "binary_expression" {
				if booleanOperatorTexts[binaryOperatorText(n)] {
					count++
				}
			} else {
				count++
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, c := range fn.Children {
		walk(c)
	}
	return count
}

// binaryOperatorText extracts the infix operator token's text from a
// binary_expression node, which tree-sitter exposes as an unnamed child
// between the two operand named children.
func binaryOperatorText(n *entities.ParsedNode) string {
	if op, ok := n.Metadata["operator"].(string); ok {
		return op
	}
	return ""
}

// Cognitive computes cognitive complexity: +1 per flow break, plus the
// current nesting level for each nested flow-break, with short-circuit
// boolean chains adding one per additional operand. Recursion (a function
// calling itself) does not add nesting (spec §4.3) — callers pass
// recursiveFn so a matching call node is skipped rather than descended
// into as a nesting boundary.
func Cognitive(fn *entities.ParsedNode, recursiveFn string) int {
	score := 0
	var walk func(n *entities.ParsedNode, depth int)
	walk = func(n *entities.ParsedNode, depth int) {
		isNesting := nestingKinds[n.RawType]
		if isNesting {
			score += 1 + depth
		}
		if n.RawType == "binary_expression" && booleanOperatorTexts[binaryOperatorText(n)] {
			score++
		}
		nextDepth := depth
		if isNesting {
			nextDepth++
		}
		for _, c := range n.Children {
			if recursiveFn != "" && c.RawType == "call_expression" && c.Name == recursiveFn {
				continue
			}
			walk(c, nextDepth)
		}
	}
	for _, c := range fn.Children {
		walk(c, 0)
	}
	return score
}

// AnalyzeFunction computes Cyclomatic+Cognitive for one extracted
// function/method and bundles them with its LOC and Halstead metrics into
// a FunctionComplexity (spec §4.3's per-function output shape).
func AnalyzeFunction(fn *entities.ParsedNode, language string, sourceLines []string) entities.FunctionComplexity {
	cyclomatic := Cyclomatic(fn)
	cognitive := Cognitive(fn, fn.Name)
	halstead := ComputeHalstead(fn, language)
	loc := ClassifyLOC(sourceLines[fn.StartLine-1:fn.EndLine], language)
	mi := MaintainabilityIndex(halstead.Volume, cyclomatic, loc.Code)

	return entities.FunctionComplexity{
		Name:                  fn.Name,
		FilePath:              "",
		StartLine:             fn.StartLine,
		EndLine:               fn.EndLine,
		Cyclomatic:            cyclomatic,
		Cognitive:             cognitive,
		Halstead:              halstead,
		LOC:                   loc,
		MaintainabilityIndex:  mi,
		MaintainabilityBand:   BandFor(mi),
	}
}
