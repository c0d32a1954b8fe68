package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/yectos/projects-api/internal/domain"
)

// ProjectEvent is the payload of project.* messages
type ProjectEvent struct {
	EventID    uuid.UUID          `json:"eventId"`
	ProjectID  uuid.UUID          `json:"projectId"`
	UserID     string             `json:"userId"`
	OccurredAt time.Time          `json:"occurredAt"`
	Project    *domain.ProjectDTO `json:"project,omitempty"`
}

// SnapshotEvent is the payload of dashboard.snapshot messages
type SnapshotEvent struct {
	EventID uuid.UUID             `json:"eventId"`
	UserID  string                `json:"userId"`
	TakenOn string                `json:"takenOn"`
	Stats   domain.DashboardStats `json:"stats"`
}

// NewProjectEvent stamps a project event with a fresh id and time
func NewProjectEvent(userID string, projectID uuid.UUID, project *domain.ProjectDTO) ProjectEvent {
	return ProjectEvent{
		EventID:    uuid.New(),
		ProjectID:  projectID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Project:    project,
	}
}
