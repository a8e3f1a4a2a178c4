package domain

import "fmt"

// FieldProtectionState is the per-field baseline gating record. Auto fields
// are fixed; only non-auto fields may have their baseline flag toggled.
// Pending state mirrors an open change request against the field.
type FieldProtectionState struct {
	ProjectID    string
	FieldName    string
	IsAuto       bool
	IsBaseline   bool
	IsPending    bool
	PendingValue string
}

// IsProtected reports whether edits to the field must route through the
// change-request path once the baseline is validated.
func (s *FieldProtectionState) IsProtected() bool {
	return s.IsAuto || s.IsBaseline
}

// SetBaseline flips the baseline flag. Auto-protected fields cannot be
// toggled in either direction.
func (s *FieldProtectionState) SetBaseline(on bool) error {
	if s.IsAuto {
		return fmt.Errorf("field %q is auto-protected and cannot be toggled", s.FieldName)
	}
	s.IsBaseline = on
	return nil
}
