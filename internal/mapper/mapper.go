package mapper

import (
	"time"

	"github.com/yectos/projects-api/internal/domain"
	"github.com/yectos/projects-api/internal/stats"
)

const (
	timestampLayout = "2006-01-02T15:04:05Z"
	dayLayout       = "2006-01-02"
)

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timestampLayout)
	return &s
}

// ToProjectDTO converts Project to ProjectDTO with progress, effective
// status and pending amount filled in
func ToProjectDTO(project *domain.Project) domain.ProjectDTO {
	stages := make([]domain.StageDTO, len(project.Stages))
	for i := range project.Stages {
		stages[i] = ToStageDTO(&project.Stages[i])
	}

	tags := []string(project.Tags)
	if tags == nil {
		tags = []string{}
	}

	dto := domain.ProjectDTO{
		ID:            project.ID,
		Name:          project.Name,
		Client:        project.Client,
		Description:   project.Description,
		TotalCost:     project.TotalCost,
		AmountPaid:    project.AmountPaid,
		PendingAmount: stats.PendingAmount(project),
		Priority:      project.Priority,
		Status:        stats.DeriveStatus(project),
		Progress:      stats.Progress(project),
		Tags:          tags,
		Color:         project.Color,
		DueDate:       formatTime(project.DueDate),
		Stages:        stages,
		CreatedAt:     project.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:     project.UpdatedAt.UTC().Format(timestampLayout),
	}

	if status, ok := project.Status.Explicit(); ok {
		dto.StatusOverride = &status
	}

	return dto
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []domain.Project) []domain.ProjectDTO {
	dtos := make([]domain.ProjectDTO, len(projects))
	for i := range projects {
		dtos[i] = ToProjectDTO(&projects[i])
	}
	return dtos
}

// ToStageDTO converts Stage to StageDTO
func ToStageDTO(stage *domain.Stage) domain.StageDTO {
	return domain.StageDTO{
		ID:        stage.ID,
		Name:      stage.Name,
		Completed: stage.Completed,
		Order:     stage.Order,
		DueDate:   formatTime(stage.DueDate),
	}
}

// ToActivityDTO converts Activity to ActivityDTO
func ToActivityDTO(activity *domain.Activity) domain.ActivityDTO {
	return domain.ActivityDTO{
		ID:          activity.ID,
		ProjectID:   activity.ProjectID,
		Type:        activity.Type,
		Description: activity.Description,
		Metadata:    activity.Metadata,
		OccurredAt:  activity.OccurredAt.UTC().Format(timestampLayout),
	}
}

// ToDashboardSnapshot copies computed statistics into a storable snapshot
func ToDashboardSnapshot(userID string, day time.Time, s domain.DashboardStats) *domain.DashboardSnapshot {
	return &domain.DashboardSnapshot{
		UserID:              userID,
		TakenOn:             time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
		TotalProjects:       s.TotalProjects,
		CompletedProjects:   s.CompletedProjects,
		InProgressProjects:  s.InProgressProjects,
		NotStartedProjects:  s.NotStartedProjects,
		OnHoldProjects:      s.OnHoldProjects,
		TotalRevenue:        s.TotalRevenue,
		PaidAmount:          s.PaidAmount,
		PendingAmount:       s.PendingAmount,
		CompletionRate:      s.CompletionRate,
		AverageProjectValue: s.AverageProjectValue,
	}
}

// ToDashboardSnapshotDTO converts a stored snapshot back to its API form
func ToDashboardSnapshotDTO(snapshot *domain.DashboardSnapshot) domain.DashboardSnapshotDTO {
	return domain.DashboardSnapshotDTO{
		TakenOn: snapshot.TakenOn.UTC().Format(dayLayout),
		DashboardStats: domain.DashboardStats{
			TotalProjects:       snapshot.TotalProjects,
			CompletedProjects:   snapshot.CompletedProjects,
			InProgressProjects:  snapshot.InProgressProjects,
			NotStartedProjects:  snapshot.NotStartedProjects,
			OnHoldProjects:      snapshot.OnHoldProjects,
			TotalRevenue:        snapshot.TotalRevenue,
			PaidAmount:          snapshot.PaidAmount,
			PendingAmount:       snapshot.PendingAmount,
			CompletionRate:      snapshot.CompletionRate,
			AverageProjectValue: snapshot.AverageProjectValue,
		},
	}
}
