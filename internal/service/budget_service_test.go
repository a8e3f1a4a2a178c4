package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/baseline/internal/contract"
	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/alexanderramin/baseline/internal/reconcile"
	"github.com/alexanderramin/baseline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope sums within one percent of the total reconcile; beyond it the
// save is refused with the numeric delta.
func TestSaveEnvelopesToleranceBand(t *testing.T) {
	tests := []struct {
		name    string
		amounts []int64
		want    contract.OutcomeKind
		delta   int64
	}{
		{"exact", []int64{60_000_000, 40_000_000}, contract.OutcomeApplied, 0},
		{"within band below", []int64{60_000_000, 39_500_000}, contract.OutcomeApplied, 0},
		{"at band edge", []int64{60_000_000, 39_000_000}, contract.OutcomeApplied, 0},
		{"outside band below", []int64{60_000_000, 38_900_000}, contract.OutcomeBlocked, -1_100_000},
		{"outside band above", []int64{60_000_000, 41_100_000}, contract.OutcomeBlocked, 1_100_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "pmo")
			ctx := context.Background()
			p := testutil.NewTestProject("Envelopes", testutil.WithBudget(100_000_000))
			require.NoError(t, env.projects.Create(ctx, p))

			envelopes := []*domain.BudgetEnvelope{
				testutil.NewTestEnvelope(p.ID, "capex", tt.amounts[0]),
				testutil.NewTestEnvelope(p.ID, "opex", tt.amounts[1]),
			}
			out, err := env.budgets.SaveEnvelopes(ctx, p.ID, envelopes, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Kind)

			if tt.want == contract.OutcomeBlocked {
				var rerr *domain.ReconciliationError
				require.ErrorAs(t, out.Reason, &rerr)
				assert.Equal(t, "envelope", rerr.Kind)
				assert.Equal(t, tt.delta, rerr.Delta())

				stored, err := env.budgets.ListEnvelopes(ctx, p.ID)
				require.NoError(t, err)
				assert.Empty(t, stored, "a blocked save stores nothing")
			}
		})
	}
}

func TestSaveEnvelopesDuplicateTypeBlocked(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()
	p := testutil.NewTestProject("Dup Types", testutil.WithBudget(100_000_000))
	require.NoError(t, env.projects.Create(ctx, p))

	out, err := env.budgets.SaveEnvelopes(ctx, p.ID, []*domain.BudgetEnvelope{
		testutil.NewTestEnvelope(p.ID, "capex", 50_000_000),
		testutil.NewTestEnvelope(p.ID, "capex", 50_000_000),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, contract.OutcomeBlocked, out.Kind)

	var verr *domain.ValidationError
	require.ErrorAs(t, out.Reason, &verr)
}

func TestSaveEnvelopesReplacesExistingSet(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()
	p := testutil.NewTestProject("Replace", testutil.WithBudget(100_000_000))
	require.NoError(t, env.projects.Create(ctx, p))

	out, err := env.budgets.SaveEnvelopes(ctx, p.ID, []*domain.BudgetEnvelope{
		testutil.NewTestEnvelope(p.ID, "capex", 100_000_000),
	}, "")
	require.NoError(t, err)
	require.Equal(t, contract.OutcomeApplied, out.Kind)

	out, err = env.budgets.SaveEnvelopes(ctx, p.ID, []*domain.BudgetEnvelope{
		testutil.NewTestEnvelope(p.ID, "capex", 70_000_000),
		testutil.NewTestEnvelope(p.ID, "opex", 30_000_000),
	}, "")
	require.NoError(t, err)
	require.Equal(t, contract.OutcomeApplied, out.Kind)

	stored, err := env.budgets.ListEnvelopes(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.Equal(t, int64(100_000_000), domain.SumEnvelopes(stored))
}

// The monthly distribution reconciles within one absolute unit, not a
// fraction of the total.
func TestSaveMonthlyAbsoluteBand(t *testing.T) {
	tests := []struct {
		name string
		sum  int64
		want contract.OutcomeKind
	}{
		{"exact", 100_000_000, contract.OutcomeApplied},
		{"one under", 99_999_999, contract.OutcomeApplied},
		{"one over", 100_000_001, contract.OutcomeApplied},
		{"two under", 99_999_998, contract.OutcomeBlocked},
		{"two over", 100_000_002, contract.OutcomeBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "pmo")
			ctx := context.Background()
			p := testutil.NewTestProject("Monthly", testutil.WithBudget(100_000_000))
			require.NoError(t, env.projects.Create(ctx, p))

			months := []*domain.MonthlyBudget{
				{ProjectID: p.ID, Month: "2026-01", Amount: 50_000_000},
				{ProjectID: p.ID, Month: "2026-02", Amount: tt.sum - 50_000_000},
			}
			out, err := env.budgets.SaveMonthly(ctx, p.ID, months, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Kind)

			if tt.want == contract.OutcomeBlocked {
				var rerr *domain.ReconciliationError
				require.ErrorAs(t, out.Reason, &rerr)
				assert.Equal(t, "monthly", rerr.Kind)
			}
		})
	}
}

func TestSaveMonthlyDuplicateMonthBlocked(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()
	p := testutil.NewTestProject("Dup Month", testutil.WithBudget(100))
	require.NoError(t, env.projects.Create(ctx, p))

	out, err := env.budgets.SaveMonthly(ctx, p.ID, []*domain.MonthlyBudget{
		{ProjectID: p.ID, Month: "2026-03", Amount: 50},
		{ProjectID: p.ID, Month: "2026-03", Amount: 50},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, contract.OutcomeBlocked, out.Kind)
}

// A total that drifted five percent or more from the validated baseline
// demands justification before envelopes can be saved again.
func TestSaveEnvelopesBudgetDriftNeedsJustification(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()
	p := newValidatedProject(t, env, "Drifting", testutil.WithBudget(100_000_000))

	// Push the total 10% up through the approval path.
	reqID := pendingBudgetRequest(t, env, p, "110000000")
	require.NoError(t, env.requests.Approve(ctx, reqID, "expansion", ""))

	envelopes := []*domain.BudgetEnvelope{
		testutil.NewTestEnvelope(p.ID, "capex", 110_000_000),
	}

	out, err := env.budgets.SaveEnvelopes(ctx, p.ID, envelopes, "")
	require.NoError(t, err)
	require.Equal(t, contract.OutcomeNeedsJustification, out.Kind)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, contract.WarnBudgetDrift, out.Warnings[0].Code)
	assert.InDelta(t, 10.0, out.Warnings[0].Percent, 0.01)

	stored, err := env.budgets.ListEnvelopes(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, stored, "nothing saved while justification is missing")

	out, err = env.budgets.SaveEnvelopes(ctx, p.ID, envelopes, "approved scope expansion")
	require.NoError(t, err)
	assert.Equal(t, contract.OutcomeApplied, out.Kind)
	require.Len(t, out.Warnings, 1, "the warning still travels with the applied save")
}

func TestSaveEnvelopesNoDriftWarningBelowThreshold(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()
	p := newValidatedProject(t, env, "Steady", testutil.WithBudget(100_000_000))

	out, err := env.budgets.SaveEnvelopes(ctx, p.ID, []*domain.BudgetEnvelope{
		testutil.NewTestEnvelope(p.ID, "capex", 100_000_000),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, contract.OutcomeApplied, out.Kind)
	assert.Empty(t, out.Warnings)
}

func TestBudgetCheckReportsBothSets(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()
	p := newValidatedProject(t, env, "Checked", testutil.WithBudget(100_000_000))

	report, err := env.budgets.Check(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100_000_000), report.Target)
	assert.True(t, report.EnvelopesOK, "an empty set reports as reconciled")
	assert.True(t, report.MonthlyOK)
	assert.Zero(t, report.EnvelopeCount)

	out, err := env.budgets.SaveEnvelopes(ctx, p.ID, []*domain.BudgetEnvelope{
		testutil.NewTestEnvelope(p.ID, "capex", 60_000_000),
		testutil.NewTestEnvelope(p.ID, "opex", 40_500_000),
	}, "")
	require.NoError(t, err)
	require.Equal(t, contract.OutcomeApplied, out.Kind)

	report, err = env.budgets.Check(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.EnvelopeCount)
	assert.Equal(t, int64(100_500_000), report.EnvelopeSum)
	assert.True(t, report.EnvelopesOK, "within the fractional band")
	assert.Empty(t, report.Warnings)
}

func TestBudgetCheckCustomTolerance(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()
	p := newValidatedProject(t, env, "Tight", testutil.WithBudget(100_000_000))

	out, err := env.budgets.SaveEnvelopes(ctx, p.ID, []*domain.BudgetEnvelope{
		testutil.NewTestEnvelope(p.ID, "capex", 100_900_000),
	}, "")
	require.NoError(t, err)
	require.Equal(t, contract.OutcomeApplied, out.Kind)

	tight := reconcile.Defaults()
	tight.EnvelopeFraction = 0.005
	strict := NewBudgetService(env.budgetRepo, env.uow, Actor{Name: "t", Role: "pmo"}, tight)

	report, err := strict.Check(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, report.EnvelopesOK, "deviation exceeds the tightened band")
}
