package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yectos/projects-api/internal/auth"
	"github.com/yectos/projects-api/internal/domain"
	"github.com/yectos/projects-api/internal/repository"
	"github.com/yectos/projects-api/internal/testutil"
)

func userCtx(userID string) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{UserID: userID})
}

func TestProjectRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProjectRepository(db)
	ctx := userCtx("alice")

	project := &domain.Project{
		UserID:    "alice",
		Name:      "Website",
		Client:    "Acme",
		TotalCost: 5000,
		Priority:  domain.ProjectPriorityHigh,
		Status:    domain.StatusExplicit(domain.ProjectStatusOnHold),
		Tags:      []string{"web", "urgent"},
		Stages: []domain.Stage{
			{ID: "b", Name: "Build", Order: 1},
			{ID: "a", Name: "Design", Completed: true, Order: 0},
		},
	}
	require.NoError(t, repo.Create(ctx, project))
	assert.NotEqual(t, uuid.Nil, project.ID)

	got, err := repo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Website", got.Name)
	assert.Equal(t, []string{"web", "urgent"}, []string(got.Tags))
	status, ok := got.Status.Explicit()
	assert.True(t, ok)
	assert.Equal(t, domain.ProjectStatusOnHold, status)
	require.Len(t, got.Stages, 2)
	assert.Equal(t, "Design", got.Stages[0].Name)
	assert.Equal(t, "Build", got.Stages[1].Name)
}

func TestProjectRepository_DerivedStatusRoundTrips(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProjectRepository(db)
	ctx := userCtx("alice")

	p := testutil.CreateTestProject(t, db, "alice", "Plain")
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Status.IsDerived())
}

func TestProjectRepository_GetByID_OtherOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProjectRepository(db)

	p := testutil.CreateTestProject(t, db, "alice", "Private")

	_, err := repo.GetByID(userCtx("bob"), p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProjectRepository_UpdateReplacesStages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProjectRepository(db)
	ctx := userCtx("alice")

	p := testutil.CreateTestProject(t, db, "alice", "Site", true, false, false)

	p.Name = "Site v2"
	p.AmountPaid = 900
	p.Status = domain.StatusDerived()
	p.Tags = []string{"v2"}
	p.UpdatedAt = time.Now().UTC()
	p.Stages = []domain.Stage{
		{ID: "new-1", Name: "Only stage", Completed: true, Order: 0},
	}
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Site v2", got.Name)
	assert.Equal(t, 900.0, got.AmountPaid)
	assert.Equal(t, []string{"v2"}, []string(got.Tags))
	require.Len(t, got.Stages, 1)
	assert.Equal(t, "new-1", got.Stages[0].ID)

	var stageCount int64
	require.NoError(t, db.Model(&domain.Stage{}).Where("project_id = ?", p.ID).Count(&stageCount).Error)
	assert.Equal(t, int64(1), stageCount)
}

func TestProjectRepository_UpdateOtherOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProjectRepository(db)

	p := testutil.CreateTestProject(t, db, "alice", "Site", true)
	p.Name = "Hijacked"

	err := repo.Update(userCtx("bob"), p)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := repo.GetByID(userCtx("alice"), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Site", got.Name)
	assert.Len(t, got.Stages, 1)
}

func TestProjectRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProjectRepository(db)
	activities := repository.NewActivityRepository(db)
	ctx := userCtx("alice")

	p := testutil.CreateTestProject(t, db, "alice", "Doomed", true, false)
	require.NoError(t, activities.CreateBatch(ctx, []domain.Activity{{
		ProjectID: p.ID, UserID: "alice", Type: domain.ActivityTypeCreated,
		Description: "created", OccurredAt: time.Now(),
	}}))

	assert.ErrorIs(t, repo.Delete(userCtx("bob"), p.ID), gorm.ErrRecordNotFound)
	require.NoError(t, repo.Delete(ctx, p.ID))

	_, err := repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var stageCount, activityCount int64
	db.Model(&domain.Stage{}).Where("project_id = ?", p.ID).Count(&stageCount)
	db.Model(&domain.Activity{}).Where("project_id = ?", p.ID).Count(&activityCount)
	assert.Zero(t, stageCount)
	assert.Zero(t, activityCount)

	assert.ErrorIs(t, repo.Delete(ctx, p.ID), gorm.ErrRecordNotFound)
}

func TestProjectRepository_ListAllScopedToOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProjectRepository(db)

	testutil.CreateTestProject(t, db, "alice", "A1", true)
	testutil.CreateTestProject(t, db, "alice", "A2")
	testutil.CreateTestProject(t, db, "bob", "B1")

	projects, err := repo.ListAll(userCtx("alice"))
	require.NoError(t, err)
	assert.Len(t, projects, 2)
	for _, p := range projects {
		assert.Equal(t, "alice", p.UserID)
	}

	projects, err = repo.ListAll(userCtx("bob"))
	require.NoError(t, err)
	assert.Len(t, projects, 1)

	owners, err := repo.ListOwners(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, owners)
}

func TestProjectRepository_Tags(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProjectRepository(db)
	ctx := userCtx("alice")

	require.NoError(t, repo.Create(ctx, &domain.Project{UserID: "alice", Name: "1", Client: "c", Tags: []string{"web", "urgent"}}))
	require.NoError(t, repo.Create(ctx, &domain.Project{UserID: "alice", Name: "2", Client: "c", Tags: []string{"mobile", "web"}}))
	require.NoError(t, repo.Create(ctx, &domain.Project{UserID: "bob", Name: "3", Client: "c", Tags: []string{"secret"}}))

	tags, err := repo.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"mobile", "urgent", "web"}, tags)
}
