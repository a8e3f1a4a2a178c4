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

func TestValidateTransitionsToValidated(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()

	p := testutil.NewTestProject("Data Platform")
	require.NoError(t, env.projects.Create(ctx, p))
	require.NoError(t, env.teamRepo.Add(ctx, testutil.NewTestMember(p.ID, "emp-dev")))

	require.NoError(t, env.baseline.Validate(ctx, p.ID))

	got, err := env.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BaselineValidated, got.BaselineStatus)
	assert.Equal(t, "1.0", got.CurrentVersion.String())
	assert.False(t, got.HasModifications)
	assert.Equal(t, got.TotalBudget, got.InitialBudget)

	// Auto fields are baseline-flagged.
	for field := range domain.AutoProtectedFields {
		state, err := env.protRepo.Get(ctx, p.ID, field)
		require.NoError(t, err)
		assert.True(t, state.IsAuto, field)
		assert.True(t, state.IsBaseline, field)
	}

	// An Active 1.0 version exists.
	v, err := env.versionRepo.GetActive(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.0", v.VersionNumber.String())

	// The validation is on the audit trail.
	entries, err := env.logs.Query(ctx, p.ID, domain.LogFilter{ActionType: domain.ActionValidated})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "project.baseline_status", entries[0].ModifiedElement)
}

func TestValidateMandatoryFieldFailures(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()

	p := testutil.NewTestProject("Incomplete", testutil.WithBudget(0))
	p.ShortTitle = "has spaces in it"
	require.NoError(t, env.projects.Create(ctx, p))
	require.NoError(t, env.teamRepo.Add(ctx, testutil.NewTestMember(p.ID, "emp-dev")))

	err := env.baseline.Validate(ctx, p.ID)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make(map[string]bool)
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields[domain.FieldTotalBudget])
	assert.True(t, fields[domain.FieldShortTitle])

	got, _ := env.projects.GetByID(ctx, p.ID)
	assert.Equal(t, domain.BaselineDraft, got.BaselineStatus, "failed validation must not transition")
}

func TestValidateRequiresKnownEmployees(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()

	p := testutil.NewTestProject("Ghost Sponsor")
	p.SponsorID = "emp-unknown"
	require.NoError(t, env.projects.Create(ctx, p))
	require.NoError(t, env.teamRepo.Add(ctx, testutil.NewTestMember(p.ID, "emp-dev")))

	err := env.baseline.Validate(ctx, p.ID)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, domain.FieldSponsor, verr.Fields[0].Field)
}

// The employee lookups run inside the validation transaction, so references
// seeded through the same database always resolve.
func TestValidateResolvesSeededEmployees(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()

	seedEmployees(t, env, "emp-cto")
	p := testutil.NewTestProject("Fresh Hire")
	p.ProjectManagerID = "emp-cto"
	require.NoError(t, env.projects.Create(ctx, p))
	require.NoError(t, env.teamRepo.Add(ctx, testutil.NewTestMember(p.ID, "emp-dev")))

	require.NoError(t, env.baseline.Validate(ctx, p.ID))

	got, err := env.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BaselineValidated, got.BaselineStatus)
}

func TestValidateRequiresTeam(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()

	p := testutil.NewTestProject("No Team")
	require.NoError(t, env.projects.Create(ctx, p))

	err := env.baseline.Validate(ctx, p.ID)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestValidateTwiceFails(t *testing.T) {
	env := newTestEnv(t, "pmo")
	p := newValidatedProject(t, env, "Twice")

	err := env.baseline.Validate(context.Background(), p.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestValidateBlockedByUnreconciledEnvelopes(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()

	p := testutil.NewTestProject("Skewed Budget", testutil.WithBudget(100_000_000))
	require.NoError(t, env.projects.Create(ctx, p))
	require.NoError(t, env.teamRepo.Add(ctx, testutil.NewTestMember(p.ID, "emp-dev")))

	out, err := env.budgets.SaveEnvelopes(ctx, p.ID, []*domain.BudgetEnvelope{
		testutil.NewTestEnvelope(p.ID, "capex", 50_000_000),
		testutil.NewTestEnvelope(p.ID, "opex", 48_000_000),
	}, "")
	require.NoError(t, err)
	require.Equal(t, contract.OutcomeBlocked, out.Kind)

	// The blocked save stored nothing, so validation passes on the empty set.
	require.NoError(t, env.baseline.Validate(ctx, p.ID))
}

// The routing matrix: every combination of baseline status and field
// protection, checked against the single decision point.
func TestEditFieldRoutingMatrix(t *testing.T) {
	tests := []struct {
		name     string
		validate bool
		field    string
		want     contract.OutcomeKind
	}{
		{"draft unprotected", false, domain.FieldShortTitle, contract.OutcomeApplied},
		{"draft auto-protected", false, domain.FieldTitle, contract.OutcomeApplied},
		{"draft budget", false, domain.FieldTotalBudget, contract.OutcomeApplied},
		{"validated unprotected", true, domain.FieldShortTitle, contract.OutcomeApplied},
		{"validated governance unprotected", true, domain.FieldProjectManager, contract.OutcomeApplied},
		{"validated auto-protected title", true, domain.FieldTitle, contract.OutcomePending},
		{"validated auto-protected budget", true, domain.FieldTotalBudget, contract.OutcomePending},
		{"validated auto-protected dates", true, domain.FieldEndDate, contract.OutcomePending},
	}

	newValueFor := map[string]string{
		domain.FieldShortTitle:     "renamed",
		domain.FieldTitle:          "New Title",
		domain.FieldTotalBudget:    "120000000",
		domain.FieldProjectManager: "emp-qa",
		domain.FieldEndDate:        "2027-03-31",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "pmo")
			ctx := context.Background()

			var p *domain.Project
			if tt.validate {
				p = newValidatedProject(t, env, "Routing")
			} else {
				p = testutil.NewTestProject("Routing")
				require.NoError(t, env.projects.Create(ctx, p))
			}

			out, err := env.baseline.EditField(ctx, p.ID, tt.field, newValueFor[tt.field], "routing check")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Kind)

			got, err := env.projects.GetByID(ctx, p.ID)
			require.NoError(t, err)
			stored, err := got.FieldValue(tt.field)
			require.NoError(t, err)
			if tt.want == contract.OutcomeApplied {
				assert.Equal(t, newValueFor[tt.field], stored)
			} else {
				assert.NotEqual(t, newValueFor[tt.field], stored, "pending edit must not mutate the stored value")
				assert.NotEmpty(t, out.RequestID)
			}
		})
	}
}

func TestEditFieldUnknownField(t *testing.T) {
	env := newTestEnv(t, "pmo")
	_, err := env.baseline.EditField(context.Background(), "whatever", "color", "blue", "")
	require.Error(t, err)
}

func TestEditFieldPendingBlocksSecondEdit(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()
	p := newValidatedProject(t, env, "Contended")

	first, err := env.baseline.EditField(ctx, p.ID, domain.FieldTotalBudget, "110000000", "scope growth")
	require.NoError(t, err)
	require.Equal(t, contract.OutcomePending, first.Kind)

	second, err := env.baseline.EditField(ctx, p.ID, domain.FieldTotalBudget, "130000000", "more growth")
	require.NoError(t, err)
	assert.Equal(t, contract.OutcomeBlocked, second.Kind)
	assert.ErrorIs(t, second.Reason, domain.ErrInvalidState)
}

func TestEditFieldProtectedRequiresJustification(t *testing.T) {
	env := newTestEnv(t, "pmo")
	p := newValidatedProject(t, env, "Unjustified")

	out, err := env.baseline.EditField(context.Background(), p.ID, domain.FieldTitle, "Renamed", "")
	require.NoError(t, err)
	assert.Equal(t, contract.OutcomeBlocked, out.Kind)
	assert.Error(t, out.Reason)
}

func TestEditFieldMovesDraftToModified(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()

	p := testutil.NewTestProject("Drift")
	require.NoError(t, env.projects.Create(ctx, p))

	_, err := env.baseline.EditField(ctx, p.ID, domain.FieldShortTitle, "renamed", "")
	require.NoError(t, err)

	got, _ := env.projects.GetByID(ctx, p.ID)
	assert.Equal(t, domain.BaselineModified, got.BaselineStatus)
	assert.True(t, got.HasModifications)
}

func TestToggleProtectionOnAutoFieldFails(t *testing.T) {
	env := newTestEnv(t, "pmo")
	p := newValidatedProject(t, env, "Auto Toggle")

	err := env.baseline.ToggleProtection(context.Background(), p.ID, domain.FieldTitle, false)
	require.Error(t, err)
}

func TestToggleProtectionRequiresCapability(t *testing.T) {
	env := newTestEnv(t, "viewer")
	err := env.baseline.ToggleProtection(context.Background(), "any", domain.FieldSponsor, true)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

// A manually protected field routes through the request path like an auto
// field: the stored value holds until approval.
func TestManuallyProtectedFieldRoutesToRequest(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()
	p := newValidatedProject(t, env, "Managed PM")

	require.NoError(t, env.baseline.ToggleProtection(ctx, p.ID, domain.FieldProjectManager, true))

	out, err := env.baseline.EditField(ctx, p.ID, domain.FieldProjectManager, "emp-qa", "handover")
	require.NoError(t, err)
	require.Equal(t, contract.OutcomePending, out.Kind)

	got, _ := env.projects.GetByID(ctx, p.ID)
	assert.Equal(t, "emp-pm", got.ProjectManagerID, "stored value unchanged until approval")

	require.NoError(t, env.requests.Approve(ctx, out.RequestID, "approved handover", ""))

	got, _ = env.projects.GetByID(ctx, p.ID)
	assert.Equal(t, "emp-qa", got.ProjectManagerID)
	assert.Equal(t, "1.1", got.CurrentVersion.String())

	state, err := env.protRepo.Get(ctx, p.ID, domain.FieldProjectManager)
	require.NoError(t, err)
	assert.False(t, state.IsPending)
	assert.True(t, state.IsBaseline)
}

func TestListProtectionsCoversAllEditableFields(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()

	p := testutil.NewTestProject("Coverage")
	require.NoError(t, env.projects.Create(ctx, p))

	states, err := env.baseline.ListProtections(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, states, len(domain.EditableFields))
	for _, st := range states {
		assert.Equal(t, domain.AutoProtectedFields[st.FieldName], st.IsAuto, st.FieldName)
		assert.False(t, st.IsBaseline, "nothing is baseline-flagged before validation")
	}
}
