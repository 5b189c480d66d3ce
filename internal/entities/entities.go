// Package entities holds the typed, persisted data model of spec §3.1 and
// the in-memory/intermediate shapes of spec §3.2.
package entities

import "time"

// ConceptType is the closed enum for SemanticConcept.ConceptType.
type ConceptType string

const (
	ConceptClass      ConceptType = "CLASS"
	ConceptFunction   ConceptType = "FUNCTION"
	ConceptMethod     ConceptType = "METHOD"
	ConceptVariable   ConceptType = "VARIABLE"
	ConceptConstant   ConceptType = "CONSTANT"
	ConceptInterface  ConceptType = "INTERFACE"
	ConceptTypeAlias  ConceptType = "TYPE_ALIAS"
	ConceptEnum       ConceptType = "ENUM"
	ConceptModule     ConceptType = "MODULE"
	ConceptProperty   ConceptType = "PROPERTY"
	ConceptLambda     ConceptType = "LAMBDA"
	ConceptOther      ConceptType = "OTHER"
)

// ValidConceptTypes lists every accepted ConceptType value.
var ValidConceptTypes = []ConceptType{
	ConceptClass, ConceptFunction, ConceptMethod, ConceptVariable,
	ConceptConstant, ConceptInterface, ConceptTypeAlias, ConceptEnum,
	ConceptModule, ConceptProperty, ConceptLambda, ConceptOther,
}

// Relationship is one edge from a SemanticConcept to another named target.
type Relationship struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

// SemanticConcept is a named construct extracted from source (spec §3.1).
type SemanticConcept struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	ConceptType   ConceptType            `json:"concept_type"`
	FilePath      string                 `json:"file_path"`
	Description   string                 `json:"description"`
	LineStart     int                    `json:"line_start"`
	LineEnd       int                    `json:"line_end"`
	Relationships []Relationship         `json:"relationships"`
	Confidence    float64                `json:"confidence"`
	Metadata      map[string]any         `json:"metadata"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// PatternType is the closed-ish enum for DeveloperPattern.PatternType. The
// string is open-ended (naming patterns, anti-patterns) but the well-known
// design-pattern values are named constants for convenience.
type PatternType string

const (
	PatternSingleton            PatternType = "SINGLETON"
	PatternFactory              PatternType = "FACTORY"
	PatternBuilder               PatternType = "BUILDER"
	PatternObserver              PatternType = "OBSERVER"
	PatternStrategy              PatternType = "STRATEGY"
	PatternRepository            PatternType = "REPOSITORY"
	PatternService               PatternType = "SERVICE"
	PatternDependencyInjection   PatternType = "DEPENDENCY_INJECTION"
	PatternContextManager        PatternType = "CONTEXT_MANAGER"
	PatternDataclass             PatternType = "DATACLASS"
	PatternProperty              PatternType = "PROPERTY"
	PatternAsync                 PatternType = "ASYNC_PATTERN"
	PatternLogging               PatternType = "LOGGING"
	PatternErrorHandling         PatternType = "ERROR_HANDLING"
	PatternNamingSnakeCase       PatternType = "NAMING_SNAKE_CASE"
	PatternNamingCamelCase       PatternType = "NAMING_CAMEL_CASE"
	PatternNamingPascalCase      PatternType = "NAMING_PASCAL_CASE"
	PatternAntiGodClass          PatternType = "ANTI_PATTERN_GOD_CLASS"
	PatternAntiLongMethod        PatternType = "ANTI_PATTERN_LONG_METHOD"
)

// ValidPatternTypes lists every PatternType this build's detectors emit.
// The spec leaves pattern_type open-ended for future naming/anti-pattern
// families; this is the declared set against which externally-submitted
// values (MCP tool arguments) are validated.
var ValidPatternTypes = []PatternType{
	PatternSingleton, PatternFactory, PatternBuilder, PatternObserver,
	PatternStrategy, PatternRepository, PatternService,
	PatternDependencyInjection, PatternContextManager, PatternDataclass,
	PatternProperty, PatternAsync, PatternLogging, PatternErrorHandling,
	PatternNamingSnakeCase, PatternNamingCamelCase, PatternNamingPascalCase,
	PatternAntiGodClass, PatternAntiLongMethod,
}

// DeveloperPattern is an observed design pattern or naming convention.
type DeveloperPattern struct {
	ID         string      `json:"id"`
	PatternType PatternType `json:"pattern_type"`
	Name       string      `json:"name"`
	Frequency  int         `json:"frequency"`
	Examples   []string    `json:"examples"`
	FilePaths  []string    `json:"file_paths"`
	Confidence float64     `json:"confidence"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// InsightType is the closed enum for AIInsight.InsightType.
type InsightType string

const (
	InsightBugPattern             InsightType = "BUG_PATTERN"
	InsightOptimization           InsightType = "OPTIMIZATION"
	InsightRefactorSuggestion     InsightType = "REFACTOR_SUGGESTION"
	InsightArchitectureObservation InsightType = "ARCHITECTURE_OBSERVATION"
	InsightBestPractice           InsightType = "BEST_PRACTICE"
)

// ValidInsightTypes lists every accepted InsightType value.
var ValidInsightTypes = []InsightType{
	InsightBugPattern, InsightOptimization, InsightRefactorSuggestion,
	InsightArchitectureObservation, InsightBestPractice,
}

// AIInsight is an assertion contributed by an external agent or analyzer.
type AIInsight struct {
	ID              string         `json:"id"`
	InsightType     InsightType    `json:"insight_type"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	AffectedFiles   []string       `json:"affected_files"`
	Confidence      float64        `json:"confidence"`
	Severity        string         `json:"severity"`
	SuggestedAction string         `json:"suggested_action"`
	Metadata        map[string]any `json:"metadata"`
	CreatedAt       time.Time      `json:"created_at"`
}

// WorkSession is a bounded span of development activity.
type WorkSession struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Feature   string         `json:"feature"`
	Files     []string       `json:"files"`
	Tasks     []string       `json:"tasks"`
	Notes     []string       `json:"notes"`
	Metadata  map[string]any `json:"metadata"`
	StartedAt time.Time      `json:"started_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	EndedAt   *time.Time     `json:"ended_at"`
}

// IsActive reports whether the session has not yet ended.
func (s WorkSession) IsActive() bool { return s.EndedAt == nil }

// ProjectDecision is a journaled decision, optionally linked to a session.
type ProjectDecision struct {
	ID           string         `json:"id"`
	Decision     string         `json:"decision"`
	Context      string         `json:"context"`
	Rationale    string         `json:"rationale"`
	SessionID    string         `json:"session_id"`
	RelatedFiles []string       `json:"related_files"`
	Tags         []string       `json:"tags"`
	Metadata     map[string]any `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ADRStatus is the closed enum for ArchitecturalDecision.Status.
type ADRStatus string

const (
	ADRProposed   ADRStatus = "PROPOSED"
	ADRAccepted   ADRStatus = "ACCEPTED"
	ADRRejected   ADRStatus = "REJECTED"
	ADRDeprecated ADRStatus = "DEPRECATED"
	ADRSuperseded ADRStatus = "SUPERSEDED"
)

// ValidADRStatuses lists every accepted ADRStatus value.
var ValidADRStatuses = []ADRStatus{
	ADRProposed, ADRAccepted, ADRRejected, ADRDeprecated, ADRSuperseded,
}

// ArchitecturalDecision is a structured ADR.
type ArchitecturalDecision struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Context      string    `json:"context"`
	Decision     string    `json:"decision"`
	Status       ADRStatus `json:"status"`
	Consequences string    `json:"consequences"`
	CreatedAt    time.Time `json:"created_at"`
}

// FileIntelligence is an auxiliary per-file record.
type FileIntelligence struct {
	ID        string         `json:"id"`
	FilePath  string         `json:"file_path"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ProjectMetadata is a single project-level key/value record.
type ProjectMetadata struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Metadata  map[string]any `json:"metadata"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// FeatureMap links a feature name to the files implementing it.
type FeatureMap struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Metadata  map[string]any `json:"metadata"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// EntryPoint is a detected program entry point.
type EntryPoint struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	FilePath string         `json:"file_path"`
	Metadata map[string]any `json:"metadata"`
}

// KeyDirectory is a directory judged architecturally significant.
type KeyDirectory struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata"`
}

// SharedPattern is a pattern shared/promoted across a codebase cluster.
type SharedPattern struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata"`
}
