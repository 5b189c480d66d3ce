package parser

import "anamnesis/internal/entities"

// Walk performs a preorder depth-first traversal of a parsed tree, invoking
// visit for every node including root. It is the ParsedNode-level
// counterpart of original_source's walk(tree) helper.
func Walk(root *entities.ParsedNode, visit func(*entities.ParsedNode)) {
	if root == nil {
		return
	}
	visit(root)
	for _, child := range root.Children {
		Walk(child, visit)
	}
}

// Traverse performs a preorder walk, calling callback for every node.
// Returning false from callback prunes that node's subtree — its children
// are not visited — mirroring original_source's traverse(tree, callback)
// pruning semantics.
func Traverse(root *entities.ParsedNode, callback func(*entities.ParsedNode) bool) {
	if root == nil {
		return
	}
	if !callback(root) {
		return
	}
	for _, child := range root.Children {
		Traverse(child, callback)
	}
}

// FindNodes collects every node in the tree whose Kind() is in kinds (when
// non-empty) and for which predicate returns true (when non-nil).
func FindNodes(root *entities.ParsedNode, kinds []string, predicate func(*entities.ParsedNode) bool) []*entities.ParsedNode {
	var kindSet map[string]bool
	if len(kinds) > 0 {
		kindSet = make(map[string]bool, len(kinds))
		for _, k := range kinds {
			kindSet[k] = true
		}
	}

	var out []*entities.ParsedNode
	Walk(root, func(n *entities.ParsedNode) {
		if kindSet != nil && !kindSet[n.Kind()] {
			return
		}
		if predicate != nil && !predicate(n) {
			return
		}
		out = append(out, n)
	})
	return out
}
