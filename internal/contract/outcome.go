package contract

// OutcomeKind classifies the result of a core operation. The engine emits
// structured outcomes; callers decide how to present them.
type OutcomeKind string

const (
	// OutcomeApplied means the edit mutated stored state and was logged.
	OutcomeApplied OutcomeKind = "applied"
	// OutcomePending means the edit was routed to a change request and the
	// stored value is unchanged until approval.
	OutcomePending OutcomeKind = "pending"
	// OutcomeBlocked means a hard invariant rejected the operation.
	OutcomeBlocked OutcomeKind = "blocked"
	// OutcomeNeedsJustification means a baseline-impact warning fired and
	// the save will only proceed once justification text is supplied.
	OutcomeNeedsJustification OutcomeKind = "needs_justification"
)

// EditOutcome is the result of routing a single field edit.
type EditOutcome struct {
	Kind      OutcomeKind
	Field     string
	OldValue  string
	NewValue  string
	RequestID string // set when Kind is OutcomePending
	Reason    error  // set when Kind is OutcomeBlocked
}

// Warning is a non-blocking baseline-impact signal raised by a save. The
// save proceeds only when justification text accompanies it.
type Warning struct {
	Code    WarningCode
	Message string
	Percent float64
}

type WarningCode string

const (
	WarnBudgetDrift WarningCode = "BUDGET_DRIFT"
	WarnTeamDrift   WarningCode = "TEAM_DRIFT"
)

// SaveOutcome is the result of a table save (WBS, budget, team).
type SaveOutcome struct {
	Kind     OutcomeKind
	Warnings []Warning
	Reason   error // set when Kind is OutcomeBlocked
}

// BudgetCheck reports how the stored allocations reconcile against the
// total budget without mutating anything.
type BudgetCheck struct {
	Target        int64
	EnvelopeSum   int64
	EnvelopeCount int
	EnvelopesOK   bool
	MonthlySum    int64
	MonthCount    int
	MonthlyOK     bool
	Warnings      []Warning
}

// Applied is a convenience constructor for the successful save outcome.
func Applied() SaveOutcome {
	return SaveOutcome{Kind: OutcomeApplied}
}

// Blocked wraps a hard failure into a save outcome.
func Blocked(reason error) SaveOutcome {
	return SaveOutcome{Kind: OutcomeBlocked, Reason: reason}
}
