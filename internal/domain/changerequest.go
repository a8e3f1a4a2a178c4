package domain

import "time"

// AffectedField captures one protected field a change request wants to move,
// with the stored value at submission time and the proposed replacement.
type AffectedField struct {
	Field    string
	OldValue string
	NewValue string
}

// ChangeRequest is a proposed modification to baseline-protected fields.
// Pending is the only mutable state; Approved and Rejected are terminal.
type ChangeRequest struct {
	ID             string
	ProjectID      string
	RequestNumber  int
	RequestDate    time.Time
	Requestor      string
	ChangeType     RequestChangeType
	Description    string
	Status         RequestStatus
	Approver       string // empty until resolved
	Resolution     string // approval comments or rejection reason
	ResolvedAt     *time.Time
	AffectedFields []AffectedField
	BudgetImpact   *int64 // signed, optional
	TimelineImpact string // free text, optional
	RiskLevel      int    // 0-10
}

// IsResolved reports whether the request reached a terminal state.
func (r *ChangeRequest) IsResolved() bool {
	return r.Status != RequestPending
}
