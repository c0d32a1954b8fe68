package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/yectos/projects-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectRepository handles database operations for projects and their stages
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func orderedStages(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

// Create inserts a project together with its stages
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// GetByID loads one of the caller's projects with stages in order
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	query := r.db.WithContext(ctx).Preload("Stages", orderedStages).Where("id = ?", id)
	query = ApplyOwnerFilter(ctx, query)
	if err := query.First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Update saves the project fields and replaces its stage collection
func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := ApplyOwnerFilter(ctx, tx.Model(&domain.Project{}).Where("id = ?", project.ID)).
			Select("name", "client", "description", "total_cost", "amount_paid", "priority",
				"status", "tags", "color", "due_date", "updated_at").
			Omit(clause.Associations).
			Updates(project)
		if result.Error != nil {
			return fmt.Errorf("failed to update project: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&domain.Stage{}).Error; err != nil {
			return fmt.Errorf("failed to clear stages: %w", err)
		}
		if len(project.Stages) == 0 {
			return nil
		}
		for i := range project.Stages {
			project.Stages[i].ProjectID = project.ID
		}
		if err := tx.Omit(clause.Associations).Create(&project.Stages).Error; err != nil {
			return fmt.Errorf("failed to save stages: %w", err)
		}
		return nil
	})
}

// Delete removes a project, its stages and its activity log
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := ApplyOwnerFilter(ctx, tx.Where("id = ?", id)).Delete(&domain.Project{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete project: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("project_id = ?", id).Delete(&domain.Stage{}).Error; err != nil {
			return fmt.Errorf("failed to delete stages: %w", err)
		}
		if err := tx.Where("project_id = ?", id).Delete(&domain.Activity{}).Error; err != nil {
			return fmt.Errorf("failed to delete activities: %w", err)
		}
		return nil
	})
}

// ListAll returns every project of the caller, newest first. Filtering and
// sorting happen in memory on this snapshot.
func (r *ProjectRepository) ListAll(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	query := r.db.WithContext(ctx).Preload("Stages", orderedStages)
	query = ApplyOwnerFilter(ctx, query)
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Tags returns the distinct tags used across the caller's projects, sorted
func (r *ProjectRepository) Tags(ctx context.Context) ([]string, error) {
	var projects []domain.Project
	query := ApplyOwnerFilter(ctx, r.db.WithContext(ctx).Model(&domain.Project{}))
	if err := query.Select("tags").Find(&projects).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	tags := []string{}
	for _, p := range projects {
		for _, tag := range p.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// ListOwners returns every user id that owns at least one project. It is not
// scoped to a caller and is meant for background jobs.
func (r *ProjectRepository) ListOwners(ctx context.Context) ([]string, error) {
	var owners []string
	err := r.db.WithContext(ctx).Model(&domain.Project{}).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &owners).Error
	return owners, err
}
