package domain

import "time"

// BudgetEnvelope is a named allocation bucket within the total budget.
// TypeID is unique within a project's envelope set.
type BudgetEnvelope struct {
	ID              string
	ProjectID       string
	TypeID          string
	Amount          int64 // whole currency units, > 0
	FundingSourceID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ValidateEnvelope checks a single envelope's field constraints.
func (b *BudgetEnvelope) ValidateEnvelope() error {
	verr := &ValidationError{}
	if b.TypeID == "" {
		verr.Add("type", "envelope type is required")
	}
	if b.Amount <= 0 {
		verr.Add("amount", "envelope amount must be positive")
	}
	return verr.OrNil()
}

// MonthlyBudget is one month's slice of the spending distribution.
// Month uses the "2006-01" layout.
type MonthlyBudget struct {
	ID        string
	ProjectID string
	Month     string
	Amount    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SumEnvelopes totals an envelope set.
func SumEnvelopes(envelopes []*BudgetEnvelope) int64 {
	var sum int64
	for _, e := range envelopes {
		sum += e.Amount
	}
	return sum
}

// DuplicateEnvelopeType returns the first type id appearing more than once,
// or "" when the set is unique.
func DuplicateEnvelopeType(envelopes []*BudgetEnvelope) string {
	seen := make(map[string]bool, len(envelopes))
	for _, e := range envelopes {
		if seen[e.TypeID] {
			return e.TypeID
		}
		seen[e.TypeID] = true
	}
	return ""
}
