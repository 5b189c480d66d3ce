// Package anaerr defines the error taxonomy shared across anamnesis's
// layers (spec §7). Extractors and analyzers never raise on malformed
// source — they record an error entry and continue; these types are used
// at the adapter, parser, storage and service boundaries instead.
package anaerr

import "fmt"

// ErrorCode enumerates the top-level AnamnesisError codes.
type ErrorCode string

const (
	CodeValidation        ErrorCode = "VALIDATION"
	CodeTypeCoercion      ErrorCode = "TYPE_COERCION"
	CodeUnsupportedLang   ErrorCode = "UNSUPPORTED_LANGUAGE"
	CodeInvalidQuery      ErrorCode = "INVALID_QUERY"
	CodeParse             ErrorCode = "PARSE_ERROR"
	CodeStorage           ErrorCode = "STORAGE_ERROR"
	CodeCircuitBreaker    ErrorCode = "CIRCUIT_BREAKER"
	CodeRollbackUnsupport ErrorCode = "ROLLBACK_UNSUPPORTED"
	CodeUnknown           ErrorCode = "UNKNOWN"
)

// ValidationError reports every missing required field at once rather than
// failing on the first one found.
type ValidationError struct {
	EntityKind string
	Missing    []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: missing fields %v", e.EntityKind, e.Missing)
}

// TypeCoercionError reports a field whose string value does not match any
// variant of its declared enum (or an unparsable timestamp).
type TypeCoercionError struct {
	Field       string
	Value       string
	ValidValues []string
	Reason      string
}

func (e *TypeCoercionError) Error() string {
	if len(e.ValidValues) > 0 {
		return fmt.Sprintf("cannot coerce field %q value %q: valid values are %v", e.Field, e.Value, e.ValidValues)
	}
	return fmt.Sprintf("cannot coerce field %q value %q: %s", e.Field, e.Value, e.Reason)
}

// UnsupportedLanguageError is returned by parser construction for a
// language the registry has no grammar for.
type UnsupportedLanguageError struct {
	Language string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: %s", e.Language)
}

// InvalidQueryError is returned when an S-expression query fails to compile
// against a grammar.
type InvalidQueryError struct {
	Language string
	Query    string
	Reason   string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query for %s: %s (%s)", e.Language, e.Query, e.Reason)
}

// ParseError wraps a parser-layer failure with file context.
type ParseError struct {
	FilePath string
	Cause    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %v", e.FilePath, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// StorageError wraps a backend I/O or integrity failure.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// CircuitBreakerError is returned when a call is rejected because the
// breaker is OPEN.
type CircuitBreakerError struct {
	State       string
	Failures    int
	SuccessRate float64
}

func (e *CircuitBreakerError) Error() string {
	return fmt.Sprintf("circuit breaker %s: %d failures, success_rate=%.2f%%", e.State, e.Failures, e.SuccessRate*100)
}

// RollbackUnsupportedError is returned when a migration rollback is
// requested but the migration has no DownSQL.
type RollbackUnsupportedError struct {
	Version int
	Name    string
}

func (e *RollbackUnsupportedError) Error() string {
	return fmt.Sprintf("migration %d (%s) has no down migration", e.Version, e.Name)
}

// AnamnesisError is the top-level structured error returned at service
// boundaries (spec §7). UserMessage is safe to show verbatim; Details is
// for logs only and never leaks a stack trace.
type AnamnesisError struct {
	Code        ErrorCode
	Message     string
	UserMessage string
	Details     map[string]any
	Cause       error
}

func (e *AnamnesisError) Error() string { return e.Message }

func (e *AnamnesisError) Unwrap() error { return e.Cause }

// Wrap builds an AnamnesisError from any error, classifying the code by
// type-switching over the anaerr taxonomy; unrecognized errors map to
// CodeUnknown.
func Wrap(err error, userMessage string) *AnamnesisError {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*AnamnesisError); ok {
		return ae
	}
	code := CodeUnknown
	switch err.(type) {
	case *ValidationError:
		code = CodeValidation
	case *TypeCoercionError:
		code = CodeTypeCoercion
	case *UnsupportedLanguageError:
		code = CodeUnsupportedLang
	case *InvalidQueryError:
		code = CodeInvalidQuery
	case *ParseError:
		code = CodeParse
	case *StorageError:
		code = CodeStorage
	case *CircuitBreakerError:
		code = CodeCircuitBreaker
	case *RollbackUnsupportedError:
		code = CodeRollbackUnsupport
	}
	if userMessage == "" {
		userMessage = "an internal error occurred"
	}
	return &AnamnesisError{
		Code:        code,
		Message:     err.Error(),
		UserMessage: userMessage,
		Cause:       err,
	}
}
