package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yectos/projects-api/internal/auth"
	"github.com/yectos/projects-api/internal/cache"
	"github.com/yectos/projects-api/internal/domain"
	"github.com/yectos/projects-api/internal/events"
	"github.com/yectos/projects-api/internal/export"
	"github.com/yectos/projects-api/internal/logger"
	"github.com/yectos/projects-api/internal/mapper"
	"github.com/yectos/projects-api/internal/metrics"
	"github.com/yectos/projects-api/internal/repository"
	"github.com/yectos/projects-api/internal/stats"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = repository.MaxPageSize
)

// ListParams selects, orders and pages the caller's projects
type ListParams struct {
	Filter    stats.Filter
	SortBy    stats.SortField
	SortOrder stats.SortDirection
	Page      int
	PageSize  int
}

// ProjectService handles business logic for projects
type ProjectService struct {
	projectRepo  *repository.ProjectRepository
	activityRepo *repository.ActivityRepository
	cache        cache.Cache
	publisher    events.Publisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo *repository.ProjectRepository,
	activityRepo *repository.ActivityRepository,
	dashboardCache cache.Cache,
	publisher events.Publisher,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		activityRepo: activityRepo,
		cache:        dashboardCache,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// Create creates a new project owned by the caller
func (s *ProjectService) Create(ctx context.Context, req *domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	user, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	project := &domain.Project{UserID: user.UserID}
	project.ID = uuid.New()
	if err := applyFields(project, &req.ProjectFields, domain.ProjectPriorityMedium); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		metrics.RecordProjectMutation("create", false)
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	metrics.RecordProjectMutation("create", true)

	s.logActivities(ctx, []domain.Activity{
		s.newActivity(project, domain.ActivityTypeCreated, fmt.Sprintf("Project '%s' created", project.Name), nil),
	})

	dto := mapper.ToProjectDTO(project)
	s.afterMutation(ctx, events.ProjectCreated, user.UserID, project.ID, &dto)

	s.logger.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("user_id", user.UserID))

	return &dto, nil
}

// GetByID retrieves one of the caller's projects
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectDTO, error) {
	project, err := s.getProject(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// Update replaces the editable fields and the stage list of a project
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProjectRequest) (*domain.ProjectDTO, error) {
	user, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	project, err := s.getProject(ctx, id)
	if err != nil {
		return nil, err
	}
	before := cloneProject(project)

	fallback := project.Priority
	if fallback == "" {
		fallback = domain.ProjectPriorityMedium
	}
	if err := applyFields(project, &req.ProjectFields, fallback); err != nil {
		return nil, err
	}
	project.UpdatedAt = s.now().UTC()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		metrics.RecordProjectMutation("update", false)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	metrics.RecordProjectMutation("update", true)

	s.logActivities(ctx, s.diffActivities(before, project))

	dto := mapper.ToProjectDTO(project)
	s.afterMutation(ctx, events.ProjectUpdated, user.UserID, project.ID, &dto)

	return &dto, nil
}

// Delete permanently removes a project together with its stages and activity log
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	user, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		metrics.RecordProjectMutation("delete", false)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	metrics.RecordProjectMutation("delete", true)

	s.afterMutation(ctx, events.ProjectDeleted, user.UserID, id, nil)

	s.logger.Info("project deleted",
		zap.String("project_id", id.String()),
		zap.String("user_id", user.UserID))

	return nil
}

// List filters, sorts and pages the caller's projects. Derived values such as
// progress and status are computed on the loaded snapshot, so the work happens
// in memory rather than in SQL.
func (s *ProjectService) List(ctx context.Context, params ListParams) (*domain.PaginatedResponse, error) {
	projects, err := s.projectRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	sortBy := params.SortBy
	if sortBy == "" {
		sortBy = stats.SortByCreatedAt
	}
	sortOrder := params.SortOrder
	if sortOrder == "" {
		sortOrder = stats.SortDesc
	}

	matched := stats.SortProjects(stats.FilterProjects(projects, params.Filter), sortBy, sortOrder)

	page, pageSize := normalizePagination(params.Page, params.PageSize)
	total := len(matched)

	totalPages := (total + pageSize - 1) / pageSize

	// pages past the end are empty; comparing before multiplying keeps huge page numbers from overflowing
	start := total
	if page <= totalPages {
		start = (page - 1) * pageSize
	}
	end := total
	if total-start > pageSize {
		end = start + pageSize
	}

	return &domain.PaginatedResponse{
		Data:       mapper.ToProjectDTOs(matched[start:end]),
		Total:      int64(total),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Tags returns the distinct tags used across the caller's projects
func (s *ProjectService) Tags(ctx context.Context) ([]string, error) {
	tags, err := s.projectRepo.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// Activities returns the newest activity entries of one of the caller's projects
func (s *ProjectService) Activities(ctx context.Context, id uuid.UUID, limit int) ([]domain.ActivityDTO, error) {
	if _, err := s.getProject(ctx, id); err != nil {
		return nil, err
	}

	activities, err := s.activityRepo.ListByProject(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToActivityDTO(&activities[i])
	}
	return dtos, nil
}

// Export returns all of the caller's projects as an export document
func (s *ProjectService) Export(ctx context.Context) (*export.Document, error) {
	user, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	projects, err := s.projectRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	return export.NewDocument(user.UserID, projects, s.now()), nil
}

func (s *ProjectService) getProject(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// afterMutation drops the cached dashboard and notifies subscribers. Failures
// are logged only; the mutation itself has already been committed.
func (s *ProjectService) afterMutation(ctx context.Context, routingKey, userID string, projectID uuid.UUID, dto *domain.ProjectDTO) {
	log := logger.WithProject(s.logger, projectID.String())

	if err := s.cache.Delete(ctx, cache.DashboardStatsKey(userID), cache.DashboardChartsKey(userID)); err != nil {
		log.Warn("failed to invalidate dashboard cache",
			zap.Error(err),
			zap.String("user_id", userID))
	}

	err := s.publisher.Publish(ctx, routingKey, events.NewProjectEvent(userID, projectID, dto))
	metrics.RecordEventPublished(routingKey, err == nil)
	if err != nil {
		log.Warn("failed to publish project event",
			zap.Error(err),
			zap.String("routing_key", routingKey))
	}
}

func (s *ProjectService) newActivity(project *domain.Project, activityType domain.ActivityType, description string, metadata map[string]interface{}) domain.Activity {
	activity := domain.Activity{
		ProjectID:   project.ID,
		UserID:      project.UserID,
		Type:        activityType,
		Description: description,
		OccurredAt:  s.now().UTC(),
	}
	if len(metadata) > 0 {
		if raw, err := json.Marshal(metadata); err == nil {
			activity.Metadata = string(raw)
		}
	}
	return activity
}

// logActivities stores activity entries, logging failures without failing the caller
func (s *ProjectService) logActivities(ctx context.Context, activities []domain.Activity) {
	if err := s.activityRepo.CreateBatch(ctx, activities); err != nil {
		s.logger.Warn("failed to log activity", zap.Error(err))
	}
}

// diffActivities describes the notable differences between two versions of a project
func (s *ProjectService) diffActivities(before, after *domain.Project) []domain.Activity {
	var activities []domain.Activity

	if before.AmountPaid != after.AmountPaid {
		activities = append(activities, s.newActivity(after, domain.ActivityTypePayment,
			fmt.Sprintf("Amount paid changed from %.2f to %.2f", before.AmountPaid, after.AmountPaid),
			map[string]interface{}{"from": before.AmountPaid, "to": after.AmountPaid}))
	}

	wasCompleted := make(map[string]bool, len(before.Stages))
	for _, stage := range before.Stages {
		wasCompleted[stage.ID] = stage.Completed
	}
	for _, stage := range after.Stages {
		if stage.Completed && !wasCompleted[stage.ID] {
			activities = append(activities, s.newActivity(after, domain.ActivityTypeStageCompleted,
				fmt.Sprintf("Stage '%s' completed", stage.Name),
				map[string]interface{}{"stageId": stage.ID}))
		}
	}

	oldStatus, newStatus := stats.DeriveStatus(before), stats.DeriveStatus(after)
	if oldStatus != newStatus {
		activities = append(activities, s.newActivity(after, domain.ActivityTypeStatusChanged,
			fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus),
			map[string]interface{}{"from": oldStatus, "to": newStatus}))
	}

	if len(activities) == 0 {
		activities = append(activities, s.newActivity(after, domain.ActivityTypeUpdated,
			fmt.Sprintf("Project '%s' updated", after.Name), nil))
	}
	return activities
}

// applyFields validates and normalizes the request into the project
func applyFields(project *domain.Project, fields *domain.ProjectFields, fallbackPriority domain.ProjectPriority) error {
	name := strings.TrimSpace(fields.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	client := strings.TrimSpace(fields.Client)
	if client == "" {
		return fmt.Errorf("%w: client is required", ErrInvalidInput)
	}
	if fields.TotalCost < 0 || fields.AmountPaid < 0 {
		return ErrNegativeAmount
	}
	if fields.AmountPaid > fields.TotalCost {
		return ErrAmountPaidExceedsTotal
	}

	priority := fields.Priority
	if priority == "" {
		priority = fallbackPriority
	}
	if !priority.IsValid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}

	stages, err := normalizeStages(fields.Stages)
	if err != nil {
		return err
	}

	project.Name = name
	project.Client = client
	project.Description = strings.TrimSpace(fields.Description)
	project.TotalCost = fields.TotalCost
	project.AmountPaid = fields.AmountPaid
	project.Priority = priority
	project.Status = fields.Status
	project.Tags = normalizeTags(fields.Tags)
	project.Color = strings.TrimSpace(fields.Color)
	project.DueDate = fields.DueDate
	project.Stages = stages
	for i := range project.Stages {
		project.Stages[i].ProjectID = project.ID
	}
	return nil
}

// normalizeStages trims names, assigns ids to new stages and sequences the
// order from the list position
func normalizeStages(inputs []domain.StageInput) ([]domain.Stage, error) {
	stages := make([]domain.Stage, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for i, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: stage %d needs a name", ErrInvalidInput, i)
		}
		id := strings.TrimSpace(in.ID)
		if id == "" {
			id = uuid.NewString()
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate stage id %q", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}

		stages = append(stages, domain.Stage{
			ID:        id,
			Name:      name,
			Completed: in.Completed,
			Order:     i,
			DueDate:   in.DueDate,
		})
	}
	return stages, nil
}

// normalizeTags trims tags and drops empty and repeated ones, keeping first occurrence order
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func normalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func cloneProject(p *domain.Project) *domain.Project {
	clone := *p
	clone.Stages = append([]domain.Stage(nil), p.Stages...)
	clone.Tags = append([]string(nil), p.Tags...)
	return &clone
}
