package domain

import (
	"fmt"
	"time"
)

// ModificationLogEntry is one append-only audit record. Entries are written
// for every applied edit, validation and request resolution.
type ModificationLogEntry struct {
	ID                string
	ProjectID         string
	Timestamp         time.Time
	ChangedBy         string
	ChangedByRole     string
	ActionType        ActionType
	ModifiedElement   string // dotted path
	OldValue          string
	NewValue          string
	HasBaselineImpact bool
	Justification     string // optional
}

// ValidateEntry rejects malformed entries before append. Append never fails
// for any other reason.
func (e *ModificationLogEntry) ValidateEntry() error {
	if e.ProjectID == "" {
		return fmt.Errorf("log entry: project id is required")
	}
	if e.ChangedBy == "" {
		return fmt.Errorf("log entry: actor is required")
	}
	if e.ModifiedElement == "" {
		return fmt.Errorf("log entry: modified element is required")
	}
	switch e.ActionType {
	case ActionCreated, ActionModified, ActionDeleted, ActionValidated, ActionRejected:
	default:
		return fmt.Errorf("log entry: unknown action type %q", e.ActionType)
	}
	return nil
}

// LogFilter narrows a modification log query. Zero values match everything.
// Results are always stable-sorted by timestamp descending.
type LogFilter struct {
	Actor         string
	ActionType    ActionType
	ElementPrefix string
	From          *time.Time
	To            *time.Time
}
