package domain

import (
	"time"

	"github.com/google/uuid"
)

// StageDTO is the API representation of a project stage
type StageDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Completed bool    `json:"completed"`
	Order     int     `json:"order"`
	DueDate   *string `json:"dueDate,omitempty"` // ISO 8601
}

// ProjectDTO is the API representation of a project including the values
// derived from its stages
type ProjectDTO struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Client         string          `json:"client"`
	Description    string          `json:"description,omitempty"`
	TotalCost      float64         `json:"totalCost"`
	AmountPaid     float64         `json:"amountPaid"`
	PendingAmount  float64         `json:"pendingAmount"`
	Priority       ProjectPriority `json:"priority,omitempty"`
	Status         ProjectStatus   `json:"status"`
	StatusOverride *ProjectStatus  `json:"statusOverride,omitempty"`
	Progress       int             `json:"progress"`
	Tags           []string        `json:"tags"`
	Color          string          `json:"color,omitempty"`
	DueDate        *string         `json:"dueDate,omitempty"` // ISO 8601
	Stages         []StageDTO      `json:"stages"`
	CreatedAt      string          `json:"createdAt"` // ISO 8601
	UpdatedAt      string          `json:"updatedAt"` // ISO 8601
}

// ActivityDTO is the API representation of a project activity entry
type ActivityDTO struct {
	ID          uuid.UUID    `json:"id"`
	ProjectID   uuid.UUID    `json:"projectId"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
	Metadata    string       `json:"metadata,omitempty"`
	OccurredAt  string       `json:"occurredAt"` // ISO 8601
}

// DashboardStats holds aggregate statistics across a collection of projects
type DashboardStats struct {
	TotalProjects       int     `json:"totalProjects"`
	CompletedProjects   int     `json:"completedProjects"`
	InProgressProjects  int     `json:"inProgressProjects"`
	NotStartedProjects  int     `json:"notStartedProjects"`
	OnHoldProjects      int     `json:"onHoldProjects"`
	TotalRevenue        float64 `json:"totalRevenue"`
	PaidAmount          float64 `json:"paidAmount"`
	PendingAmount       float64 `json:"pendingAmount"`
	CompletionRate      float64 `json:"completionRate"`
	AverageProjectValue float64 `json:"averageProjectValue"`
}

// StatusCount is one slice of the status distribution chart
type StatusCount struct {
	Status ProjectStatus `json:"status"`
	Count  int           `json:"count"`
}

// MonthlyRevenue holds expected and collected amounts for projects created in a month
type MonthlyRevenue struct {
	Month    string  `json:"month"` // YYYY-MM
	Expected float64 `json:"expected"`
	Paid     float64 `json:"paid"`
}

// DashboardCharts bundles the chart series shown on the dashboard
type DashboardCharts struct {
	StatusDistribution []StatusCount    `json:"statusDistribution"`
	MonthlyRevenue     []MonthlyRevenue `json:"monthlyRevenue"`
	RecentProjects     []ProjectDTO     `json:"recentProjects"`
}

// DashboardSnapshotDTO is the API representation of a stored stats snapshot
type DashboardSnapshotDTO struct {
	TakenOn string `json:"takenOn"` // YYYY-MM-DD
	DashboardStats
}

// UserDTO describes the authenticated caller
type UserDTO struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

// Pagination
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Request DTOs

// StageInput is a stage as submitted by the client. ID may be empty for
// newly added stages; order is taken from the position in the list.
type StageInput struct {
	ID        string     `json:"id,omitempty" validate:"omitempty,max=64"`
	Name      string     `json:"name" validate:"required,max=200"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
}

// ProjectFields are the editable fields shared by create and update
type ProjectFields struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Client      string          `json:"client" validate:"required,max=200"`
	Description string          `json:"description,omitempty" validate:"max=5000"`
	TotalCost   float64         `json:"totalCost" validate:"gte=0"`
	AmountPaid  float64         `json:"amountPaid" validate:"gte=0,ltefield=TotalCost"`
	Priority    ProjectPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Status      StatusOverride  `json:"status" swaggertype:"string" enums:"not_started,in_progress,completed,on_hold"`
	Tags        []string        `json:"tags,omitempty" validate:"omitempty,max=20,dive,required,max=50"`
	Color       string          `json:"color,omitempty" validate:"omitempty,max=20"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	Stages      []StageInput    `json:"stages" validate:"omitempty,max=100,dive"`
}

type CreateProjectRequest struct {
	ProjectFields
}

type UpdateProjectRequest struct {
	ProjectFields
}
