package domain

import (
	"time"
)

// Phase is a WBS stage grouping deliverables inside its date range.
type Phase struct {
	ID          string
	ProjectID   string
	Title       string
	StartDate   time.Time
	EndDate     time.Time
	Coefficient int // 1-99
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidatePhase checks field constraints before a WBS save.
func (p *Phase) ValidatePhase() error {
	verr := &ValidationError{}
	if p.Title == "" {
		verr.Add("title", "phase title is required")
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		verr.Add("dates", "phase start and end dates are required")
	} else if p.EndDate.Before(p.StartDate) {
		verr.Add("end_date", "phase end date must not precede its start date")
	}
	if p.Coefficient < 1 || p.Coefficient > 99 {
		verr.Add("coefficient", "coefficient must be between 1 and 99")
	}
	return verr.OrNil()
}

// Deliverable is a WBS leaf. At most one predecessor per deliverable; the
// relation type is required alongside a predecessor and is advisory only.
type Deliverable struct {
	ID            string
	ProjectID     string
	PhaseID       string
	Title         string
	DurationDays  int
	DeliveryDate  time.Time
	Coefficient   int // 1-99
	PredecessorID string
	RelationType  RelationType
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateDeliverable checks field constraints against the parent phase.
func (d *Deliverable) ValidateDeliverable(phase *Phase) error {
	verr := &ValidationError{}
	if d.Title == "" {
		verr.Add("title", "deliverable title is required")
	}
	if d.PhaseID == "" {
		verr.Add("phase", "deliverable must belong to a phase")
	}
	if d.DurationDays <= 0 {
		verr.Add("duration", "duration must be a positive number of days")
	}
	if d.Coefficient < 1 || d.Coefficient > 99 {
		verr.Add("coefficient", "coefficient must be between 1 and 99")
	}
	if phase != nil && !d.DeliveryDate.IsZero() {
		if d.DeliveryDate.Before(phase.StartDate) || d.DeliveryDate.After(phase.EndDate) {
			verr.Add("delivery_date", "delivery date must fall within the parent phase's date range")
		}
	}
	if d.PredecessorID != "" {
		if d.PredecessorID == d.ID {
			verr.Add("predecessor", "deliverable cannot depend on itself")
		}
		if !ValidRelationTypes[string(d.RelationType)] {
			verr.Add("relation_type", "relation type is required when a predecessor is set")
		}
	} else if d.RelationType != "" {
		verr.Add("relation_type", "relation type requires a predecessor")
	}
	return verr.OrNil()
}
