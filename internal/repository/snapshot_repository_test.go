package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yectos/projects-api/internal/domain"
	"github.com/yectos/projects-api/internal/repository"
	"github.com/yectos/projects-api/internal/testutil"
)

func TestSnapshotRepository_UpsertAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSnapshotRepository(db)
	ctx := userCtx("alice")

	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	require.NoError(t, repo.Upsert(ctx, &domain.DashboardSnapshot{UserID: "alice", TakenOn: day1, TotalProjects: 1}))
	require.NoError(t, repo.Upsert(ctx, &domain.DashboardSnapshot{UserID: "alice", TakenOn: day2, TotalProjects: 2}))
	require.NoError(t, repo.Upsert(ctx, &domain.DashboardSnapshot{UserID: "alice", TakenOn: day2, TotalProjects: 3}))
	require.NoError(t, repo.Upsert(ctx, &domain.DashboardSnapshot{UserID: "bob", TakenOn: day2, TotalProjects: 9}))

	snapshots, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, 3, snapshots[0].TotalProjects)
	assert.Equal(t, 1, snapshots[1].TotalProjects)

	removed, err := repo.DeleteOlderThan(ctx, day2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
