package entities

// HalsteadMetrics are the classical software-science measures (spec §4.3).
type HalsteadMetrics struct {
	DistinctOperators int // n1
	DistinctOperands  int // n2
	TotalOperators    int // N1
	TotalOperands     int // N2
	Vocabulary        int     // n1 + n2
	Length            int     // N1 + N2
	Volume            float64 // length * log2(vocabulary)
	Difficulty        float64 // (n1/2) * (N2/n2)
	Effort            float64 // difficulty * volume
}

// LOCBreakdown classifies raw lines into total/code/comment/blank.
type LOCBreakdown struct {
	Total    int
	Code     int
	Comments int
	Blanks   int
}

// MaintainabilityBand categorizes a maintainability index into a letter
// grade band.
type MaintainabilityBand string

const (
	BandA MaintainabilityBand = "A"
	BandB MaintainabilityBand = "B"
	BandC MaintainabilityBand = "C"
	BandD MaintainabilityBand = "D"
	BandF MaintainabilityBand = "F"
)

// FunctionComplexity is the per-function metrics bundle.
type FunctionComplexity struct {
	Name                string
	FilePath             string
	StartLine            int
	EndLine              int
	Cyclomatic           int
	Cognitive            int
	Halstead             HalsteadMetrics
	LOC                  LOCBreakdown
	MaintainabilityIndex float64
	MaintainabilityBand  MaintainabilityBand
	IsHotspot            bool
}

// FileComplexity aggregates function-level metrics for one file.
type FileComplexity struct {
	FilePath             string
	Functions            []FunctionComplexity
	TotalCyclomatic      int
	AvgCyclomatic        float64
	TotalCognitive       int
	LOC                  LOCBreakdown
	MaintainabilityIndex float64
	MaintainabilityBand  MaintainabilityBand
	Hotspots             []FunctionComplexity // up to the top 10
}

// DependencyEdgeKind tags the nature of a module dependency edge.
type DependencyEdgeKind string

const (
	EdgeImport    DependencyEdgeKind = "IMPORT"
	EdgeFromImport DependencyEdgeKind = "FROM_IMPORT"
	EdgeDynamic   DependencyEdgeKind = "DYNAMIC"
)

// DependencyNode is one module in the dependency graph.
type DependencyNode struct {
	Path       string
	Imports    []string // outgoing edges (paths)
	ImportedBy []string // incoming edges (paths)
	IsExternal bool
	IsStdlib   bool
}

// DependencyEdge is a directed import relationship between two modules.
type DependencyEdge struct {
	From string
	To   string
	Kind DependencyEdgeKind
}

// CircularDependency records one cycle discovered by Tarjan's SCC.
type CircularDependency struct {
	Cycle    []string // path, path, ..., path (closed: first == last)
	Severity string
}

// DependencyGraph is the directed graph of module-to-module imports.
type DependencyGraph struct {
	Nodes map[string]*DependencyNode
	Edges []DependencyEdge
	Cycles []CircularDependency
}

// GraphMetrics summarizes a DependencyGraph.
type GraphMetrics struct {
	TotalModules     int
	TotalEdges       int
	AvgFanIn         float64
	AvgFanOut        float64
	MaxDepth         int
	Instability      map[string]float64 // per-node I = fan-out / (fan-in + fan-out)
}
