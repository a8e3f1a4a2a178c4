package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/baseline/internal/contract"
	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/alexanderramin/baseline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The full governance journey: draft edits, validation, a protected change
// routed through approval, a restore, and re-validation.
func TestBaselineLifecycleEndToEnd(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()

	p := testutil.NewTestProject("Warehouse Migration", testutil.WithBudget(200_000_000))
	require.NoError(t, env.projects.Create(ctx, p))

	// Draft edits apply directly, even to fields that will later be
	// auto-protected.
	out, err := env.baseline.EditField(ctx, p.ID, domain.FieldTitle, "Warehouse Migration v2", "")
	require.NoError(t, err)
	require.Equal(t, contract.OutcomeApplied, out.Kind)

	// Plan contents: one phase, two linked deliverables, reconciled
	// envelopes, a team.
	phase := testutil.NewTestPhase(p.ID, "Cutover")
	require.NoError(t, env.wbs.AddPhase(ctx, phase))
	d1 := testutil.NewTestDeliverable(p.ID, phase.ID, "Schema freeze")
	d2 := testutil.NewTestDeliverable(p.ID, phase.ID, "Data sync")
	for _, d := range []*domain.Deliverable{d1, d2} {
		o, err := env.wbs.AddDeliverable(ctx, d)
		require.NoError(t, err)
		require.Equal(t, contract.OutcomeApplied, o.Kind)
	}
	o, err := env.wbs.SetPredecessor(ctx, d2.ID, d1.ID, domain.FinishToStart)
	require.NoError(t, err)
	require.Equal(t, contract.OutcomeApplied, o.Kind)

	o, err = env.budgets.SaveEnvelopes(ctx, p.ID, []*domain.BudgetEnvelope{
		testutil.NewTestEnvelope(p.ID, "capex", 150_000_000),
		testutil.NewTestEnvelope(p.ID, "opex", 50_000_000),
	}, "")
	require.NoError(t, err)
	require.Equal(t, contract.OutcomeApplied, o.Kind)

	o, err = env.team.Add(ctx, p.ID, "emp-dev", "lead", "")
	require.NoError(t, err)
	require.Equal(t, contract.OutcomeApplied, o.Kind)

	// Validation freezes the baseline at 1.0.
	require.NoError(t, env.baseline.Validate(ctx, p.ID))
	got, _ := env.projects.GetByID(ctx, p.ID)
	require.Equal(t, domain.BaselineValidated, got.BaselineStatus)
	require.Equal(t, "1.0", got.CurrentVersion.String())

	// A protected edit now routes to a change request; the stored title
	// holds.
	out, err = env.baseline.EditField(ctx, p.ID, domain.FieldTitle, "Warehouse Migration v3", "sponsor rename")
	require.NoError(t, err)
	require.Equal(t, contract.OutcomePending, out.Kind)
	got, _ = env.projects.GetByID(ctx, p.ID)
	require.Equal(t, "Warehouse Migration v2", got.Title)

	require.NoError(t, env.requests.Approve(ctx, out.RequestID, "rename approved", "1.0"))
	got, _ = env.projects.GetByID(ctx, p.ID)
	require.Equal(t, "Warehouse Migration v3", got.Title)
	require.Equal(t, "1.1", got.CurrentVersion.String())

	// Restore rolls the title back and demands re-validation.
	v10 := versionByNumber(t, env, p.ID, "1.0")
	require.NoError(t, env.versions.Restore(ctx, v10.ID, "rename reverted", "1.1"))
	got, _ = env.projects.GetByID(ctx, p.ID)
	require.Equal(t, "Warehouse Migration v2", got.Title)
	require.Equal(t, domain.BaselineModified, got.BaselineStatus)
	require.Equal(t, "1.2", got.CurrentVersion.String())

	require.NoError(t, env.baseline.Validate(ctx, p.ID))
	got, _ = env.projects.GetByID(ctx, p.ID)
	require.Equal(t, domain.BaselineValidated, got.BaselineStatus)
	require.Equal(t, "1.3", got.CurrentVersion.String())

	// The audit trail covers the whole journey, newest first.
	entries, err := env.logs.Query(ctx, p.ID, domain.LogFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Timestamp.After(entries[i-1].Timestamp),
			"log entries must be sorted newest first")
	}

	validated, err := env.logs.Query(ctx, p.ID, domain.LogFilter{ActionType: domain.ActionValidated})
	require.NoError(t, err)
	assert.Len(t, validated, 3, "two validations and one approval")
}
