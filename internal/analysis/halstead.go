package analysis

import (
	"math"

	"anamnesis/internal/entities"
)

// operatorKinds and operandKinds are fixed classification tables for
// Halstead's operator/operand distinction (spec §4.3). One pair of tables,
// the union of the node kinds of all wired grammars, is shared by every
// language: ComputeHalstead does not select a different set per language.
// The tables are hand-maintained and approximate, not exhaustive for any
// one grammar, since Halstead metrics are themselves an approximation.
var operatorKinds = map[string]bool{
	"binary_expression": true, "unary_expression": true,
	"assignment_expression": true, "augmented_assignment": true,
	"boolean_operator": true, "comparison_operator": true,
	"call_expression": true, "call": true,
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"&&": true, "||": true, "and": true, "or": true, "not": true,
	"=": true, "+=": true, "-=": true,
}

var operandKinds = map[string]bool{
	"identifier": true, "field_identifier": true, "type_identifier": true,
	"property_identifier": true,
	"string": true, "string_literal": true, "number": true, "integer": true,
	"float": true, "true": true, "false": true, "none": true, "nil": true,
}

// ComputeHalstead walks fn's subtree, classifying each node by raw kind
// into operator/operand buckets, and derives the classical software
// science measures.
func ComputeHalstead(fn *entities.ParsedNode, language string) entities.HalsteadMetrics {
	distinctOps := map[string]bool{}
	distinctOperands := map[string]bool{}
	var totalOps, totalOperands int

	var walk func(n *entities.ParsedNode)
	walk = func(n *entities.ParsedNode) {
		if operatorKinds[n.RawType] {
			key := n.RawType
			if op, ok := n.Metadata["operator"].(string); ok && op != "" {
				key = op
			}
			distinctOps[key] = true
			totalOps++
		}
		if operandKinds[n.RawType] {
			distinctOperands[n.Text] = true
			totalOperands++
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(fn)

	n1 := len(distinctOps)
	n2 := len(distinctOperands)
	N1 := totalOps
	N2 := totalOperands
	vocabulary := n1 + n2
	length := N1 + N2

	var volume, difficulty, effort float64
	if vocabulary > 0 {
		volume = float64(length) * math.Log2(float64(vocabulary))
	}
	if n2 > 0 {
		difficulty = (float64(n1) / 2) * (float64(N2) / float64(n2))
	}
	effort = difficulty * volume

	return entities.HalsteadMetrics{
		DistinctOperators: n1,
		DistinctOperands:  n2,
		TotalOperators:    N1,
		TotalOperands:     N2,
		Vocabulary:        vocabulary,
		Length:            length,
		Volume:            volume,
		Difficulty:        difficulty,
		Effort:            effort,
	}
}
