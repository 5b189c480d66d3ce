// Package adapter is the validate+coerce boundary between the wire/dict
// shape external callers send (MCP tool arguments, CLI flags) and the
// typed entities in internal/entities. Spec §9's redesign flag replaces
// the original's dynamic per-type adapter dispatch with an exhaustive
// switch over a closed EntityKind enum, so an unhandled kind is a compile-
// time-visible gap rather than a silent no-op.
package adapter

import (
	"fmt"

	"anamnesis/internal/anaerr"
)

// EntityKind is the closed enum of adaptable entity types.
type EntityKind string

const (
	KindSemanticConcept       EntityKind = "semantic_concept"
	KindDeveloperPattern      EntityKind = "developer_pattern"
	KindAIInsight             EntityKind = "ai_insight"
	KindWorkSession           EntityKind = "work_session"
	KindProjectDecision       EntityKind = "project_decision"
	KindArchitecturalDecision EntityKind = "architectural_decision"
	KindFileIntelligence      EntityKind = "file_intelligence"
)

// AllKinds enumerates every EntityKind, used by tests and callers that
// need to exhaustively exercise the adapter.
var AllKinds = []EntityKind{
	KindSemanticConcept, KindDeveloperPattern, KindAIInsight,
	KindWorkSession, KindProjectDecision, KindArchitecturalDecision,
	KindFileIntelligence,
}

// ValidationError and TypeCoercionError are re-exported from anaerr so
// callers (and tests) can keep matching on *adapter.ValidationError /
// *adapter.TypeCoercionError without importing anaerr directly — the
// adapter boundary is where spec §4.6's two error shapes originate.
type ValidationError = anaerr.ValidationError
type TypeCoercionError = anaerr.TypeCoercionError

// missingRequired reports, in argument order, every field in required
// that is absent or nil in data. Per spec §4.6, validation enumerates
// every missing field at once rather than failing on the first one.
func missingRequired(data map[string]any, required ...string) []string {
	var missing []string
	for _, field := range required {
		if v, ok := data[field]; !ok || v == nil {
			missing = append(missing, field)
		}
	}
	return missing
}

func requireFields(kind EntityKind, data map[string]any, required ...string) error {
	if missing := missingRequired(data, required...); len(missing) > 0 {
		return &ValidationError{EntityKind: string(kind), Missing: missing}
	}
	return nil
}

// enumValues converts a slice of any ~string enum type to plain strings,
// for use as TypeCoercionError.ValidValues.
func enumValues[T ~string](vals []T) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}

// validateEnum reports a TypeCoercionError listing valid values when value
// is not one of valid (spec §4.6: unknown enum values raise
// TypeCoercionError{field, value, valid_values}).
func validateEnum(field, value string, valid []string) error {
	for _, v := range valid {
		if v == value {
			return nil
		}
	}
	return &TypeCoercionError{Field: field, Value: value, ValidValues: valid}
}

// AdaptFromDict converts a raw map[string]any (as received over MCP's
// JSON-RPC boundary) into a typed entity, dispatching on kind with an
// exhaustive switch — an unrecognized kind is the ONLY case this function
// returns an error for without a *ValidationError/*TypeCoercionError type.
func AdaptFromDict(kind EntityKind, data map[string]any) (any, error) {
	switch kind {
	case KindSemanticConcept:
		return adaptConceptFromDict(data)
	case KindDeveloperPattern:
		return adaptPatternFromDict(data)
	case KindAIInsight:
		return adaptInsightFromDict(data)
	case KindWorkSession:
		return adaptSessionFromDict(data)
	case KindProjectDecision:
		return adaptDecisionFromDict(data)
	case KindArchitecturalDecision:
		return adaptADRFromDict(data)
	case KindFileIntelligence:
		return adaptFileIntelFromDict(data)
	default:
		return nil, fmt.Errorf("adapter: unrecognized entity kind %q", kind)
	}
}

// AdaptToDict converts a typed entity back into a map[string]any for
// serialization over the MCP boundary, dispatching the same way.
func AdaptToDict(kind EntityKind, entity any) (map[string]any, error) {
	switch kind {
	case KindSemanticConcept:
		return conceptToDict(entity)
	case KindDeveloperPattern:
		return patternToDict(entity)
	case KindAIInsight:
		return insightToDict(entity)
	case KindWorkSession:
		return sessionToDict(entity)
	case KindProjectDecision:
		return decisionToDict(entity)
	case KindArchitecturalDecision:
		return adrToDict(entity)
	case KindFileIntelligence:
		return fileIntelToDict(entity)
	default:
		return nil, fmt.Errorf("adapter: unrecognized entity kind %q", kind)
	}
}

// --- coercion helpers shared by every per-kind adaptor ---
//
// Required-field presence is checked up front by requireFields; these
// helpers only coerce a present value to its Go type, so none of them
// take an EntityKind or a required flag any more.

func stringField(data map[string]any, field string) (string, error) {
	v, ok := data[field]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeCoercionError{Field: field, Value: fmt.Sprintf("%v", v), Reason: fmt.Sprintf("want string, got %T", v)}
	}
	return s, nil
}

func intField(data map[string]any, field string) (int, error) {
	v, ok := data[field]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, &TypeCoercionError{Field: field, Value: fmt.Sprintf("%v", v), Reason: fmt.Sprintf("want int, got %T", v)}
	}
}

func float64Field(data map[string]any, field string) (float64, error) {
	v, ok := data[field]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, &TypeCoercionError{Field: field, Value: fmt.Sprintf("%v", v), Reason: fmt.Sprintf("want float64, got %T", v)}
	}
}

func stringSliceField(data map[string]any, field string) ([]string, error) {
	v, ok := data[field]
	if !ok || v == nil {
		return nil, nil
	}
	if ss, ok := v.([]string); ok {
		return ss, nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, &TypeCoercionError{Field: field, Value: fmt.Sprintf("%v", v), Reason: fmt.Sprintf("want []string, got %T", v)}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, &TypeCoercionError{Field: field, Value: fmt.Sprintf("%v", item), Reason: fmt.Sprintf("want string element, got %T", item)}
		}
		out = append(out, s)
	}
	return out, nil
}

func mapField(data map[string]any, field string) map[string]any {
	if v, ok := data[field].(map[string]any); ok {
		return v
	}
	return nil
}
