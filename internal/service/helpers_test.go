package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/alexanderramin/baseline/internal/reconcile"
	"github.com/alexanderramin/baseline/internal/repository"
	"github.com/alexanderramin/baseline/internal/testutil"
	"github.com/stretchr/testify/require"
)

// testEnv wires every service over one in-memory database, the same way
// main assembles them.
type testEnv struct {
	db          *sql.DB
	uow         db.UnitOfWork
	projectRepo repository.ProjectRepo
	versionRepo repository.VersionRepo
	requestRepo repository.ChangeRequestRepo
	protRepo    repository.ProtectionRepo
	teamRepo    repository.TeamRepo
	budgetRepo  repository.BudgetRepo
	masterData  *repository.SQLiteMasterDataRepo

	projects ProjectService
	baseline BaselineService
	requests ChangeRequestService
	versions VersionService
	wbs      WBSService
	budgets  BudgetService
	team     TeamService
	logs     LogService
}

func newTestEnv(t *testing.T, role string) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)

	auth := StaticAuthorization{Role: role}
	actor := Actor{Name: "test-user", Role: role}
	policy := DefaultVersionPolicy()

	projectRepo := repository.NewSQLiteProjectRepo(database)
	versionRepo := repository.NewSQLiteVersionRepo(database)
	requestRepo := repository.NewSQLiteChangeRequestRepo(database)
	protRepo := repository.NewSQLiteProtectionRepo(database)
	phaseRepo := repository.NewSQLitePhaseRepo(database)
	deliverableRepo := repository.NewSQLiteDeliverableRepo(database)
	budgetRepo := repository.NewSQLiteBudgetRepo(database)
	teamRepo := repository.NewSQLiteTeamRepo(database)
	logRepo := repository.NewSQLiteModificationLogRepo(database)
	masterData := repository.NewSQLiteMasterDataRepo(database)

	env := &testEnv{
		db:          database,
		uow:         uow,
		projectRepo: projectRepo,
		versionRepo: versionRepo,
		requestRepo: requestRepo,
		protRepo:    protRepo,
		teamRepo:    teamRepo,
		budgetRepo:  budgetRepo,
		masterData:  masterData,

		projects: NewProjectService(projectRepo),
		baseline: NewBaselineService(protRepo, uow, auth, actor, policy, reconcile.Defaults()),
		requests: NewChangeRequestService(requestRepo, uow, auth, actor, policy),
		versions: NewVersionService(versionRepo, uow, auth, actor, policy),
		wbs:      NewWBSService(phaseRepo, deliverableRepo, uow, actor),
		budgets:  NewBudgetService(budgetRepo, uow, actor, reconcile.Defaults()),
		team:     NewTeamService(teamRepo, masterData, uow, actor, reconcile.Defaults()),
		logs:     NewLogService(logRepo),
	}

	seedEmployees(t, env, "emp-pm", "emp-sponsor", "emp-dev", "emp-qa", "emp-ops")
	return env
}

func seedEmployees(t *testing.T, env *testEnv, ids ...string) {
	t.Helper()
	refs := make([]domain.MasterDataRef, len(ids))
	for i, id := range ids {
		refs[i] = domain.MasterDataRef{ID: id, Code: id, Label: id}
	}
	require.NoError(t, env.masterData.Seed(context.Background(), repository.KindEmployee, refs))
}

// newValidatedProject creates a project with one team member and a validated
// baseline at version 1.0.
func newValidatedProject(t *testing.T, env *testEnv, title string, opts ...testutil.ProjectOption) *domain.Project {
	t.Helper()
	ctx := context.Background()

	p := testutil.NewTestProject(title, opts...)
	require.NoError(t, env.projects.Create(ctx, p))
	require.NoError(t, env.teamRepo.Add(ctx, testutil.NewTestMember(p.ID, "emp-dev")))
	require.NoError(t, env.baseline.Validate(ctx, p.ID))

	validated, err := env.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	return validated
}

func TestVersionPolicyStep(t *testing.T) {
	policy := DefaultVersionPolicy()
	require.Equal(t, domain.VersionNumber(1), policy.Step(domain.RequestMinor))
	require.Equal(t, domain.VersionNumber(1), policy.Step(domain.RequestMajor))
	require.Equal(t, domain.VersionNumber(10), policy.Step(domain.RequestCritical))
}

func TestClassifyChange(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   domain.VersionChangeType
	}{
		{"budget only", []string{domain.FieldTotalBudget}, domain.ChangeBudgetary},
		{"dates", []string{domain.FieldStartDate, domain.FieldEndDate}, domain.ChangePlanning},
		{"governance", []string{domain.FieldProjectManager}, domain.ChangeGovernance},
		{"title", []string{domain.FieldTitle}, domain.ChangeStructural},
		{"mixed", []string{domain.FieldTotalBudget, domain.FieldEndDate}, domain.ChangeMixed},
		{"empty", nil, domain.ChangeStructural},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := make([]domain.AffectedField, len(tt.fields))
			for i, f := range tt.fields {
				fields[i] = domain.AffectedField{Field: f}
			}
			require.Equal(t, tt.want, classifyChange(fields))
		})
	}
}
