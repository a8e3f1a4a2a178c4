package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/alexanderramin/baseline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()

	proj := testutil.NewTestProject("Data Platform Migration")
	require.NoError(t, repo.Create(ctx, proj))

	fetched, err := repo.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, proj.ID, fetched.ID)
	assert.Equal(t, "Data Platform Migration", fetched.Title)
	assert.Equal(t, domain.BaselineDraft, fetched.BaselineStatus)
	assert.Equal(t, domain.VersionNumber(0), fetched.CurrentVersion)
	assert.Equal(t, proj.StartDate.Format("2006-01-02"), fetched.StartDate.Format("2006-01-02"))
	assert.Equal(t, int64(100_000_000), fetched.TotalBudget)
}

func TestProjectRepo_GetByCode_CaseInsensitive(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()

	proj := testutil.NewTestProject("ERP Rollout", testutil.WithCode("ERP-01"))
	require.NoError(t, repo.Create(ctx, proj))

	fetched, err := repo.GetByCode(ctx, "erp-01")
	require.NoError(t, err)
	assert.Equal(t, proj.ID, fetched.ID)
	assert.Equal(t, "ERP-01", fetched.Code)
}

func TestProjectRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectRepo_Update_RoundTripsStatusAndVersion(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()

	proj := testutil.NewTestProject("Portal Revamp")
	require.NoError(t, repo.Create(ctx, proj))

	proj.BaselineStatus = domain.BaselineValidated
	proj.CurrentVersion = 11 // 1.1
	proj.InitialBudget = proj.TotalBudget
	proj.HasModifications = false
	require.NoError(t, repo.Update(ctx, proj))

	fetched, err := repo.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BaselineValidated, fetched.BaselineStatus)
	assert.Equal(t, "1.1", fetched.CurrentVersion.String())
	assert.Equal(t, proj.TotalBudget, fetched.InitialBudget)
}
