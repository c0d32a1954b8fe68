package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yectos/projects-api/internal/domain"
	"gorm.io/gorm"
)

// ActivityRepository handles the per-project activity log
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// CreateBatch inserts several activities in one statement. Nothing is
// written when any entry carries an unknown type.
func (r *ActivityRepository) CreateBatch(ctx context.Context, activities []domain.Activity) error {
	if len(activities) == 0 {
		return nil
	}
	for _, a := range activities {
		if !a.Type.IsValid() {
			return fmt.Errorf("invalid activity type %q", a.Type)
		}
	}
	return r.db.WithContext(ctx).Create(&activities).Error
}

// ListByProject returns the newest activities of one of the caller's projects
func (r *ActivityRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	var activities []domain.Activity
	query := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	query = ApplyOwnerFilter(ctx, query)
	err := query.Order("occurred_at DESC").Limit(limit).Find(&activities).Error
	return activities, err
}
