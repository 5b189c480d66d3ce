package entities

// NodeType is the closed enumeration of parsed-node kinds, shared across
// grammars. Unrecognized tree-sitter node kinds pass through as their raw
// string so downstream consumers can still inspect them (spec §4.1).
type NodeType string

const (
	NodeModule      NodeType = "MODULE"
	NodeClass       NodeType = "CLASS"
	NodeFunction    NodeType = "FUNCTION"
	NodeMethod      NodeType = "METHOD"
	NodeVariable    NodeType = "VARIABLE"
	NodeConstant    NodeType = "CONSTANT"
	NodeInterface   NodeType = "INTERFACE"
	NodeTypeAlias   NodeType = "TYPE_ALIAS"
	NodeEnum        NodeType = "ENUM"
	NodeProperty    NodeType = "PROPERTY"
	NodeLambda      NodeType = "LAMBDA"
	NodeImport      NodeType = "IMPORT"
	NodeCall        NodeType = "CALL"
	NodeIf          NodeType = "IF"
	NodeFor         NodeType = "FOR"
	NodeWhile       NodeType = "WHILE"
	NodeBlock       NodeType = "BLOCK"
	NodeIdentifier  NodeType = "IDENTIFIER"
	NodeLiteral     NodeType = "LITERAL"
	NodeComment     NodeType = "COMMENT"
	NodeUnknown     NodeType = "" // empty means "use the raw string passthrough"
)

// ParsedNode is a recursive, tree-sitter-derived node (spec §3.2, §4.1).
// A ParsedNode owns its Children; extractors hold read-only references for
// the duration of a single file's extraction and must not retain them past
// it — when extracted facts need source text they copy the slice rather
// than borrow the ParsedNode tree.
type ParsedNode struct {
	NodeType   NodeType // one of the NodeType constants, or RawType when NodeUnknown
	RawType    string   // the underlying tree-sitter node kind, always set
	Text       string
	StartLine  int // 1-indexed
	EndLine    int // 1-indexed
	StartCol   int
	EndCol     int
	Children   []*ParsedNode

	Name         string // empty only valid for anonymous constructs
	ParentName   string
	Docstring    string
	Decorators   []string
	Parameters   []string
	ReturnType   string
	IsAsync      bool
	IsStatic     bool
	IsPrivate    bool
	Visibility   string // "public" | "private" | "protected"
	Metadata     map[string]any
}

// LineCount returns end_line - start_line + 1.
func (n *ParsedNode) LineCount() int { return n.EndLine - n.StartLine + 1 }

// Kind returns the effective node kind: the closed NodeType if known,
// otherwise the raw tree-sitter string.
func (n *ParsedNode) Kind() string {
	if n.NodeType != NodeUnknown {
		return string(n.NodeType)
	}
	return n.RawType
}

// ASTContext bundles a parsed file: its path, language, source, root node,
// and any parse errors/warnings (spec glossary "AST context").
type ASTContext struct {
	FilePath   string
	Language   string
	SourceCode string
	Root       *ParsedNode
	Errors     []string
	Warnings   []string
}

// Valid reports whether the context has a usable tree. The context remains
// valid even with syntax errors, as long as a root node exists.
func (c *ASTContext) Valid() bool { return c.Root != nil }

// ImportKind is the closed enum for ExtractedImport.Kind.
type ImportKind string

const (
	ImportPlain      ImportKind = "IMPORT"
	ImportFrom       ImportKind = "FROM_IMPORT"
	ImportAlias      ImportKind = "IMPORT_ALIAS"
	ImportStar       ImportKind = "STAR_IMPORT"
	ImportRelative   ImportKind = "RELATIVE"
	ImportDynamic    ImportKind = "DYNAMIC"
	ImportTypeOnly   ImportKind = "TYPE_ONLY"
)

// ImportedName is one name brought in by an import statement.
type ImportedName struct {
	Name  string
	Alias string
}

// LocalName resolves the effective local binding: the alias if set,
// otherwise the original name.
func (n ImportedName) LocalName() string {
	if n.Alias != "" {
		return n.Alias
	}
	return n.Name
}

// ExtractedImport is the engine-side shape for one import statement/clause.
type ExtractedImport struct {
	Module        string
	Names         []ImportedName
	Kind          ImportKind
	IsRelative    bool
	RelativeLevel int
	IsStdlib      bool
	FilePath      string
	StartLine     int
	EndLine       int
}

// Visibility mirrors entities.NodeType-adjacent visibility markers used by
// the symbol extractor.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
)

// ExtractedSymbol is the engine-side shape for one declaration.
type ExtractedSymbol struct {
	Name          string
	QualifiedName string
	SymbolType    ConceptType
	FilePath      string
	Description   string
	LineStart     int
	LineEnd       int
	IsAsync       bool
	IsExported    bool
	Visibility    Visibility
	Decorators    []string
	Modifiers     []string
	Docstring     string
	Body          string // only populated when include_body is requested
	Confidence    float64
	Metadata      map[string]any
}

// EvidenceContribution is one piece of evidence feeding a DetectedPattern's
// confidence score.
type EvidenceContribution struct {
	Description string
	Confidence  float64
}

// DetectedPattern is the engine-side shape emitted by the pattern extractor.
type DetectedPattern struct {
	Kind      PatternType
	Name      string
	FilePath  string
	StartLine int
	EndLine   int
	Evidence  []EvidenceContribution
}

// Confidence computes min(1, sum(evidence contributions)) per spec §4.2/§8.
func (p DetectedPattern) Confidence() float64 {
	sum := 0.0
	for _, e := range p.Evidence {
		sum += e.Confidence
	}
	if sum > 1 {
		return 1
	}
	return sum
}
