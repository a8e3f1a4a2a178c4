// Package reconcile checks allocation sums against their targets. Envelope
// sets reconcile within a fractional band of the total budget; the monthly
// distribution uses an absolute band of one currency unit. The asymmetry is
// intentional.
package reconcile

// EnvelopeToleranceFraction is the allowed fractional deviation between the
// envelope sum and the total budget.
const EnvelopeToleranceFraction = 0.01

// MonthlyToleranceUnits is the allowed absolute deviation, in currency
// units, between the monthly distribution sum and the total budget.
const MonthlyToleranceUnits = 1

// BudgetWarningPercent is the drift from the validated total beyond which a
// save needs explicit justification.
const BudgetWarningPercent = 5.0

// TeamWarningPercent is the team composition drift (symmetric difference)
// beyond which a save needs explicit justification.
const TeamWarningPercent = 30.0

// Tolerances bundles the configurable bands and warning thresholds. The
// zero value is not usable; start from Defaults.
type Tolerances struct {
	// EnvelopeFraction is the fractional band for the envelope sum.
	EnvelopeFraction float64
	// MonthlyUnits is the absolute band, in currency units, for the
	// monthly distribution sum.
	MonthlyUnits int64
	// BudgetWarningPercent and TeamWarningPercent are the drift thresholds
	// beyond which a save needs explicit justification.
	BudgetWarningPercent float64
	TeamWarningPercent   float64
}

func Defaults() Tolerances {
	return Tolerances{
		EnvelopeFraction:     EnvelopeToleranceFraction,
		MonthlyUnits:         MonthlyToleranceUnits,
		BudgetWarningPercent: BudgetWarningPercent,
		TeamWarningPercent:   TeamWarningPercent,
	}
}

// WithinTolerance reports whether sum lies within target ± target*fraction.
func WithinTolerance(sum, target int64, fraction float64) bool {
	return abs(sum-target) <= int64(float64(target)*fraction)
}

// WithinAbsolute reports whether sum lies within target ± units.
func WithinAbsolute(sum, target, units int64) bool {
	return abs(sum-target) <= units
}

// SignificantChangePercent returns the relative drift of current from
// initial in percent. An unset initial yields 0.
func SignificantChangePercent(current, initial int64) float64 {
	if initial <= 0 {
		return 0
	}
	return float64(abs(current-initial)) / float64(initial) * 100
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
