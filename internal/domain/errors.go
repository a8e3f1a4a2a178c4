package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidState indicates an operation against a request or version
	// that is not in the required state (e.g. approving a resolved request).
	ErrInvalidState = errors.New("invalid state for operation")

	// ErrConcurrencyConflict indicates the caller's expected project version
	// no longer matches the stored version.
	ErrConcurrencyConflict = errors.New("project version conflict")
)

// FieldError is a single per-field validation failure.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates mandatory-field and format violations.
// It blocks validation or a table save and is fully recoverable.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field failure and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// OrNil returns nil when no field failed.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// StructuralConflictError reports a cycle in the deliverable predecessor
// graph. Path holds the deliverable titles in chain order, first element
// repeated at the end to close the cycle.
type StructuralConflictError struct {
	Path []string
}

func (e *StructuralConflictError) Error() string {
	return "circular dependency: " + strings.Join(e.Path, " → ")
}

// ReconciliationError reports an allocation sum outside its tolerance band.
type ReconciliationError struct {
	Kind   string // "envelope" or "monthly"
	Sum    int64
	Target int64
}

// Delta returns the signed difference between the sum and its target.
func (e *ReconciliationError) Delta() int64 { return e.Sum - e.Target }

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("%s allocation does not reconcile: sum %d vs target %d (delta %+d)",
		e.Kind, e.Sum, e.Target, e.Delta())
}
