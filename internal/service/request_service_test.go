package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/baseline/internal/contract"
	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/alexanderramin/baseline/internal/repository"
	"github.com/alexanderramin/baseline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingBudgetRequest(t *testing.T, env *testEnv, p *domain.Project, newBudget string) string {
	t.Helper()
	out, err := env.baseline.EditField(context.Background(), p.ID, domain.FieldTotalBudget, newBudget, "budget change")
	require.NoError(t, err)
	require.Equal(t, contract.OutcomePending, out.Kind)
	return out.RequestID
}

func TestSubmitAssignsSequentialNumbers(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()
	p := newValidatedProject(t, env, "Numbered")

	first, err := env.requests.Submit(ctx, p.ID,
		[]domain.AffectedField{{Field: domain.FieldTitle, NewValue: "Renamed Once"}},
		"first rename", domain.RequestMinor, "rebranding", "", 0)
	require.NoError(t, err)

	require.NoError(t, env.requests.Reject(ctx, first.ID, "not yet", ""))

	second, err := env.requests.Submit(ctx, p.ID,
		[]domain.AffectedField{{Field: domain.FieldTitle, NewValue: "Renamed Twice"}},
		"second rename", domain.RequestMinor, "rebranding again", "", 0)
	require.NoError(t, err)

	assert.Equal(t, first.RequestNumber+1, second.RequestNumber)
}

func TestSubmitRequiresValidatedBaseline(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()

	p := testutil.NewTestProject("Draft Request")
	require.NoError(t, env.projects.Create(ctx, p))

	_, err := env.requests.Submit(ctx, p.ID,
		[]domain.AffectedField{{Field: domain.FieldTitle, NewValue: "X"}},
		"premature", domain.RequestMinor, "", "", 0)
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestSubmitRejectsUnknownChangeType(t *testing.T) {
	env := newTestEnv(t, "pmo")
	p := newValidatedProject(t, env, "Bad Type")

	_, err := env.requests.Submit(context.Background(), p.ID,
		[]domain.AffectedField{{Field: domain.FieldTitle, NewValue: "X"}},
		"desc", domain.RequestChangeType("urgent"), "", "", 0)
	require.Error(t, err)
}

func TestSubmitRecordsRiskAndTimeline(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()
	p := newValidatedProject(t, env, "Risky Replan")

	req, err := env.requests.Submit(ctx, p.ID,
		[]domain.AffectedField{{Field: domain.FieldEndDate, NewValue: "2026-12-31"}},
		"push the end date", domain.RequestMajor, "supplier delay", "two month slip", 6)
	require.NoError(t, err)

	got, err := env.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "two month slip", got.TimelineImpact)
	assert.Equal(t, 6, got.RiskLevel)
}

func TestSubmitRejectsRiskOutOfRange(t *testing.T) {
	env := newTestEnv(t, "pmo")
	p := newValidatedProject(t, env, "Too Risky")

	_, err := env.requests.Submit(context.Background(), p.ID,
		[]domain.AffectedField{{Field: domain.FieldTitle, NewValue: "X"}},
		"desc", domain.RequestMinor, "", "", 11)
	require.Error(t, err)
}

func TestApproveAppliesPendingValuesAndMintsVersion(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()
	p := newValidatedProject(t, env, "Approved", testutil.WithBudget(100_000_000))

	reqID := pendingBudgetRequest(t, env, p, "110000000")
	require.NoError(t, env.requests.Approve(ctx, reqID, "board sign-off", ""))

	got, err := env.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(110_000_000), got.TotalBudget)
	assert.Equal(t, "1.1", got.CurrentVersion.String())

	req, err := env.requests.GetByID(ctx, reqID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestApproved, req.Status)
	assert.Equal(t, "test-user", req.Approver)
	assert.Equal(t, "board sign-off", req.Resolution)
	require.NotNil(t, req.ResolvedAt)
	require.NotNil(t, req.BudgetImpact)
	assert.Equal(t, int64(10_000_000), *req.BudgetImpact)

	// The new version carries the real before/after pair.
	v, err := env.versionRepo.GetActive(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChangeBudgetary, v.ChangeType)
	require.Len(t, v.ModifiedItems, 1)
	assert.Equal(t, "project.total_budget", v.ModifiedItems[0].Element)
	assert.Equal(t, "100000000", v.ModifiedItems[0].OldValue)
	assert.Equal(t, "110000000", v.ModifiedItems[0].NewValue)
}

// Double approval: the second call fails on the state guard and the version
// number does not move again.
func TestApproveTwiceFails(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()
	p := newValidatedProject(t, env, "Double Approve")

	reqID := pendingBudgetRequest(t, env, p, "105000000")
	require.NoError(t, env.requests.Approve(ctx, reqID, "first approval", ""))

	err := env.requests.Approve(ctx, reqID, "second approval", "")
	require.ErrorIs(t, err, domain.ErrInvalidState)

	got, _ := env.projects.GetByID(ctx, p.ID)
	assert.Equal(t, "1.1", got.CurrentVersion.String(), "version must not advance twice")
}

func TestApproveRequiresComments(t *testing.T) {
	env := newTestEnv(t, "pmo")
	p := newValidatedProject(t, env, "Silent Approve")
	reqID := pendingBudgetRequest(t, env, p, "105000000")

	require.Error(t, env.requests.Approve(context.Background(), reqID, "", ""))
}

func TestApproveRequiresCapability(t *testing.T) {
	env := newTestEnv(t, "editor")
	err := env.requests.Approve(context.Background(), "any", "comments", "")
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestApproveUnknownRequest(t *testing.T) {
	env := newTestEnv(t, "pmo")
	err := env.requests.Approve(context.Background(), "no-such-id", "comments", "")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestApproveWithStaleVersionFails(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()
	p := newValidatedProject(t, env, "Stale")

	reqID := pendingBudgetRequest(t, env, p, "105000000")

	err := env.requests.Approve(ctx, reqID, "approving against old state", "0.9")
	require.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	// No side effect: the request is still Pending, the value unchanged.
	req, _ := env.requests.GetByID(ctx, reqID)
	assert.Equal(t, domain.RequestPending, req.Status)
	got, _ := env.projects.GetByID(ctx, p.ID)
	assert.Equal(t, int64(100_000_000), got.TotalBudget)

	// The matching expectation goes through.
	require.NoError(t, env.requests.Approve(ctx, reqID, "approving current state", "1.0"))
}

func TestRejectDiscardsPendingValue(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()
	p := newValidatedProject(t, env, "Rejected")

	reqID := pendingBudgetRequest(t, env, p, "150000000")
	require.NoError(t, env.requests.Reject(ctx, reqID, "over appetite", ""))

	got, _ := env.projects.GetByID(ctx, p.ID)
	assert.Equal(t, int64(100_000_000), got.TotalBudget, "reject never mutates data")
	assert.Equal(t, "1.0", got.CurrentVersion.String())

	req, _ := env.requests.GetByID(ctx, reqID)
	assert.Equal(t, domain.RequestRejected, req.Status)
	assert.Equal(t, "over appetite", req.Resolution)

	// The pending flag is cleared, so the field can be edited again.
	state, err := env.protRepo.Get(ctx, p.ID, domain.FieldTotalBudget)
	require.NoError(t, err)
	assert.False(t, state.IsPending)
	assert.Empty(t, state.PendingValue)

	entries, err := env.logs.Query(ctx, p.ID, domain.LogFilter{ActionType: domain.ActionRejected})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRejectRequiresReason(t *testing.T) {
	env := newTestEnv(t, "pmo")
	p := newValidatedProject(t, env, "Silent Reject")
	reqID := pendingBudgetRequest(t, env, p, "105000000")

	require.Error(t, env.requests.Reject(context.Background(), reqID, "", ""))
}

// A persistence failure mid-approval rolls the whole transaction back: no
// half-approved state is observable.
func TestApproveRollsBackOnPersistenceFailure(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()
	p := newValidatedProject(t, env, "Rollback")
	reqID := pendingBudgetRequest(t, env, p, "110000000")

	boom := errors.New("disk full")
	failing := &testutil.FailOnNthExecUoW{DB: env.db, FailOn: 3, Err: boom}
	svc := NewChangeRequestService(env.requestRepo, failing, StaticAuthorization{Role: "pmo"},
		Actor{Name: "test-user", Role: "pmo"}, DefaultVersionPolicy())

	err := svc.Approve(ctx, reqID, "doomed approval", "")
	require.ErrorIs(t, err, boom)

	got, _ := env.projects.GetByID(ctx, p.ID)
	assert.Equal(t, int64(100_000_000), got.TotalBudget)
	assert.Equal(t, "1.0", got.CurrentVersion.String())

	req, _ := env.requests.GetByID(ctx, reqID)
	assert.Equal(t, domain.RequestPending, req.Status)

	v, err := env.versionRepo.GetActive(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.0", v.VersionNumber.String(), "the 1.0 version is still Active")
}

func TestCriticalRequestTakesMajorStep(t *testing.T) {
	env := newTestEnv(t, "pmo")
	ctx := context.Background()
	p := newValidatedProject(t, env, "Critical Path")

	req, err := env.requests.Submit(ctx, p.ID,
		[]domain.AffectedField{{Field: domain.FieldEndDate, NewValue: "2027-06-30"}},
		"major replan", domain.RequestCritical, "slipped half a year", "six month slip", 8)
	require.NoError(t, err)
	require.NoError(t, env.requests.Approve(ctx, req.ID, "accepted", ""))

	got, _ := env.projects.GetByID(ctx, p.ID)
	assert.Equal(t, "2.0", got.CurrentVersion.String())
}
