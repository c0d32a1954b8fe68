package repository

import (
	"context"
	"time"

	"github.com/yectos/projects-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotRepository stores daily copies of each user's dashboard statistics
type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Upsert stores the snapshot, replacing an existing one for the same user and day
func (r *SnapshotRepository) Upsert(ctx context.Context, snapshot *domain.DashboardSnapshot) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "taken_on"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_projects", "completed_projects", "in_progress_projects",
			"not_started_projects", "on_hold_projects", "total_revenue",
			"paid_amount", "pending_amount", "completion_rate",
			"average_project_value", "updated_at",
		}),
	}).Create(snapshot).Error
}

// ListRecent returns the caller's snapshots, newest day first
func (r *SnapshotRepository) ListRecent(ctx context.Context, limit int) ([]domain.DashboardSnapshot, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = 30
	}
	var snapshots []domain.DashboardSnapshot
	query := ApplyOwnerFilter(ctx, r.db.WithContext(ctx).Model(&domain.DashboardSnapshot{}))
	err := query.Order("taken_on DESC").Limit(limit).Find(&snapshots).Error
	return snapshots, err
}

// DeleteOlderThan prunes snapshots taken before the cutoff day for all users
func (r *SnapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("taken_on < ?", cutoff).Delete(&domain.DashboardSnapshot{})
	return result.RowsAffected, result.Error
}
