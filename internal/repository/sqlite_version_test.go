package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/alexanderramin/baseline/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVersion(projectID string, number domain.VersionNumber, status domain.VersionStatus) *domain.BaselineVersion {
	return &domain.BaselineVersion{
		ID:            uuid.New().String(),
		ProjectID:     projectID,
		VersionNumber: number,
		CreatedAt:     time.Now().UTC(),
		CreatedBy:     "alice",
		ChangeType:    domain.ChangePlanning,
		Justification: "initial",
		Status:        status,
	}
}

func TestVersionRepo_CreateWithItemsRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(db)
	versions := NewSQLiteVersionRepo(db)
	ctx := context.Background()

	proj := testutil.NewTestProject("Versioned")
	require.NoError(t, projects.Create(ctx, proj))

	v := newVersion(proj.ID, 10, domain.VersionActive)
	v.ModifiedItems = []domain.VersionItem{
		{Element: "project.total_budget", OldValue: "100", NewValue: "120"},
		{Element: "project.title", OldValue: "Old", NewValue: "New"},
	}
	require.NoError(t, versions.Create(ctx, v))

	fetched, err := versions.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.0", fetched.VersionNumber.String())
	require.Len(t, fetched.ModifiedItems, 2)
	assert.Equal(t, "project.total_budget", fetched.ModifiedItems[0].Element)
	assert.Equal(t, "120", fetched.ModifiedItems[0].NewValue)
}

func TestVersionRepo_GetActive(t *testing.T) {
	db := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(db)
	versions := NewSQLiteVersionRepo(db)
	ctx := context.Background()

	proj := testutil.NewTestProject("ActiveLookup")
	require.NoError(t, projects.Create(ctx, proj))

	archived := newVersion(proj.ID, 10, domain.VersionArchived)
	active := newVersion(proj.ID, 11, domain.VersionActive)
	require.NoError(t, versions.Create(ctx, archived))
	require.NoError(t, versions.Create(ctx, active))

	fetched, err := versions.GetActive(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, fetched.ID)

	_, err = versions.GetActive(ctx, "missing-project")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVersionRepo_ListByProject_NewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(db)
	versions := NewSQLiteVersionRepo(db)
	ctx := context.Background()

	proj := testutil.NewTestProject("History")
	require.NoError(t, projects.Create(ctx, proj))

	require.NoError(t, versions.Create(ctx, newVersion(proj.ID, 10, domain.VersionArchived)))
	require.NoError(t, versions.Create(ctx, newVersion(proj.ID, 11, domain.VersionArchived)))
	require.NoError(t, versions.Create(ctx, newVersion(proj.ID, 12, domain.VersionActive)))

	list, err := versions.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "1.2", list[0].VersionNumber.String())
	assert.Equal(t, "1.0", list[2].VersionNumber.String())
}

func TestVersionRepo_SetStatus_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	versions := NewSQLiteVersionRepo(db)
	ctx := context.Background()

	err := versions.SetStatus(ctx, "missing", domain.VersionArchived)
	assert.ErrorIs(t, err, ErrNotFound)
}
