package analysis

import "anamnesis/internal/entities"

// BuildDependencyGraph assembles a DependencyGraph from a flat list of
// (fromPath, import) edges, generalizing the teacher's graph-building idiom
// in internal/world/dataflow_multilang.go from its Mangle-fact output to a
// typed entities.DependencyGraph.
func BuildDependencyGraph(edges []entities.DependencyEdge, externalPaths, stdlibPaths map[string]bool) *entities.DependencyGraph {
	g := &entities.DependencyGraph{Nodes: map[string]*entities.DependencyNode{}}

	ensure := func(path string) *entities.DependencyNode {
		if n, ok := g.Nodes[path]; ok {
			return n
		}
		n := &entities.DependencyNode{
			Path:       path,
			IsExternal: externalPaths[path],
			IsStdlib:   stdlibPaths[path],
		}
		g.Nodes[path] = n
		return n
	}

	for _, e := range edges {
		from := ensure(e.From)
		to := ensure(e.To)
		from.Imports = append(from.Imports, e.To)
		to.ImportedBy = append(to.ImportedBy, e.From)
		g.Edges = append(g.Edges, e)
	}

	g.Cycles = FindCycles(g)
	return g
}

// FindCycles runs Tarjan's strongly-connected-components algorithm over
// the graph and returns one CircularDependency per non-trivial SCC (size
// > 1, or a single self-importing node) — spec §9's redesign flag requires
// Tarjan's deterministic enumeration over naive DFS back-edge detection,
// since back-edge detection alone cannot distinguish overlapping cycles
// that share a node.
func FindCycles(g *entities.DependencyGraph) []entities.CircularDependency {
	t := &tarjan{
		graph:   g,
		index:   map[string]int{},
		lowlink: map[string]int{},
		onStack: map[string]bool{},
	}
	for path := range g.Nodes {
		if _, seen := t.index[path]; !seen {
			t.strongConnect(path)
		}
	}

	var cycles []entities.CircularDependency
	for _, scc := range t.sccs {
		if len(scc) > 1 {
			cycle := append(append([]string{}, scc...), scc[0])
			cycles = append(cycles, entities.CircularDependency{
				Cycle:    cycle,
				Severity: severityFor(len(scc)),
			})
		} else if len(scc) == 1 && selfImports(g, scc[0]) {
			cycles = append(cycles, entities.CircularDependency{
				Cycle:    []string{scc[0], scc[0]},
				Severity: "low",
			})
		}
	}
	return cycles
}

func selfImports(g *entities.DependencyGraph, path string) bool {
	n, ok := g.Nodes[path]
	if !ok {
		return false
	}
	for _, imp := range n.Imports {
		if imp == path {
			return true
		}
	}
	return false
}

func severityFor(sccSize int) string {
	switch {
	case sccSize >= 5:
		return "high"
	case sccSize >= 3:
		return "medium"
	default:
		return "low"
	}
}

// tarjan holds the state of a recursive run of Tarjan's SCC algorithm
// (strongConnect recurses once per unvisited import), keeping its index
// counter on the struct rather than in goroutine-local state (spec §5:
// analysis runs single-threaded per invocation, no shared mutable state).
type tarjan struct {
	graph   *entities.DependencyGraph
	index   map[string]int
	lowlink map[string]int
	onStack map[string]bool
	stack   []string
	counter int
	sccs    [][]string
}

func (t *tarjan) strongConnect(v string) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	node := t.graph.Nodes[v]
	if node != nil {
		for _, w := range node.Imports {
			if _, ok := t.graph.Nodes[w]; !ok {
				continue
			}
			if _, seen := t.index[w]; !seen {
				t.strongConnect(w)
				if t.lowlink[w] < t.lowlink[v] {
					t.lowlink[v] = t.lowlink[w]
				}
			} else if t.onStack[w] {
				if t.index[w] < t.lowlink[v] {
					t.lowlink[v] = t.index[w]
				}
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []string
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}

// ComputeMetrics summarizes fan-in/fan-out/instability across the graph.
func ComputeMetrics(g *entities.DependencyGraph) entities.GraphMetrics {
	metrics := entities.GraphMetrics{
		TotalModules: len(g.Nodes),
		TotalEdges:   len(g.Edges),
		Instability:  map[string]float64{},
	}
	var totalFanIn, totalFanOut int
	for path, n := range g.Nodes {
		fanIn := len(n.ImportedBy)
		fanOut := len(n.Imports)
		totalFanIn += fanIn
		totalFanOut += fanOut
		if fanIn+fanOut > 0 {
			metrics.Instability[path] = float64(fanOut) / float64(fanIn+fanOut)
		} else {
			metrics.Instability[path] = 0
		}
	}
	if metrics.TotalModules > 0 {
		metrics.AvgFanIn = float64(totalFanIn) / float64(metrics.TotalModules)
		metrics.AvgFanOut = float64(totalFanOut) / float64(metrics.TotalModules)
	}
	metrics.MaxDepth = maxDepth(g)
	return metrics
}

// maxDepth computes the longest acyclic import chain starting from any
// root (a node with no incoming edges), treating any node already
// identified as part of a cycle as a leaf to avoid infinite recursion.
func maxDepth(g *entities.DependencyGraph) int {
	inCycle := map[string]bool{}
	for _, c := range g.Cycles {
		for _, p := range c.Cycle {
			inCycle[p] = true
		}
	}

	memo := map[string]int{}
	var depth func(path string, visiting map[string]bool) int
	depth = func(path string, visiting map[string]bool) int {
		if d, ok := memo[path]; ok {
			return d
		}
		if inCycle[path] || visiting[path] {
			return 1
		}
		visiting[path] = true
		best := 0
		if n := g.Nodes[path]; n != nil {
			for _, imp := range n.Imports {
				if _, ok := g.Nodes[imp]; !ok {
					continue
				}
				d := depth(imp, visiting)
				if d > best {
					best = d
				}
			}
		}
		delete(visiting, path)
		memo[path] = best + 1
		return best + 1
	}

	max := 0
	for path := range g.Nodes {
		d := depth(path, map[string]bool{})
		if d > max {
			max = d
		}
	}
	return max
}
