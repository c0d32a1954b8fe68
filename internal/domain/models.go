package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a random UUID when the caller has not set one
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusNotStarted ProjectStatus = "not_started"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
)

// AllProjectStatuses lists every status in display order
var AllProjectStatuses = []ProjectStatus{
	ProjectStatusCompleted,
	ProjectStatusInProgress,
	ProjectStatusNotStarted,
	ProjectStatusOnHold,
}

// IsValid checks if the ProjectStatus is a valid enum value
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusNotStarted, ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusOnHold:
		return true
	}
	return false
}

// ProjectPriority represents how urgent a project is. The empty value means
// the record carries no priority at all.
type ProjectPriority string

const (
	ProjectPriorityLow    ProjectPriority = "low"
	ProjectPriorityMedium ProjectPriority = "medium"
	ProjectPriorityHigh   ProjectPriority = "high"
)

// IsValid checks if the ProjectPriority is a valid enum value
func (p ProjectPriority) IsValid() bool {
	switch p {
	case ProjectPriorityLow, ProjectPriorityMedium, ProjectPriorityHigh:
		return true
	}
	return false
}

// Project represents one billable engagement owned by a single user
type Project struct {
	BaseModel
	UserID      string          `gorm:"type:varchar(128);not null;index"`
	Name        string          `gorm:"type:varchar(200);not null;index"`
	Client      string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	TotalCost   float64         `gorm:"type:decimal(15,2);not null;default:0;column:total_cost"`
	AmountPaid  float64         `gorm:"type:decimal(15,2);not null;default:0;column:amount_paid"`
	Priority    ProjectPriority `gorm:"type:varchar(10)"`
	Status      StatusOverride  `gorm:"type:varchar(20)"`
	Tags        pq.StringArray  `gorm:"type:text[]"`
	Color       string          `gorm:"type:varchar(20)"`
	DueDate     *time.Time      `gorm:"column:due_date"`
	Stages      []Stage         `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// HasTag reports whether the project carries the exact tag
func (p *Project) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CompletedStages returns the number of stages marked as completed
func (p *Project) CompletedStages() int {
	n := 0
	for _, s := range p.Stages {
		if s.Completed {
			n++
		}
	}
	return n
}

// Stage is one checklist milestone within a project. ID is unique only
// within its parent project.
type Stage struct {
	ID        string     `gorm:"type:varchar(64);primaryKey"`
	ProjectID uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name      string     `gorm:"type:varchar(200);not null"`
	Completed bool       `gorm:"not null;default:false"`
	Order     int        `gorm:"not null;default:0;column:sort_order"`
	DueDate   *time.Time `gorm:"column:due_date"`
}

func (Stage) TableName() string {
	return "project_stages"
}

// ActivityType represents the kind of change recorded for a project
type ActivityType string

const (
	ActivityTypeCreated        ActivityType = "created"
	ActivityTypeUpdated        ActivityType = "updated"
	ActivityTypePayment        ActivityType = "payment"
	ActivityTypeStageCompleted ActivityType = "stage_completed"
	ActivityTypeStatusChanged  ActivityType = "status_changed"
)

// IsValid checks if the ActivityType is a valid enum value
func (at ActivityType) IsValid() bool {
	switch at {
	case ActivityTypeCreated, ActivityTypeUpdated, ActivityTypePayment, ActivityTypeStageCompleted, ActivityTypeStatusChanged:
		return true
	}
	return false
}

// Activity represents an event log entry for a project
type Activity struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	ProjectID   uuid.UUID    `gorm:"type:uuid;not null;index;column:project_id"`
	UserID      string       `gorm:"type:varchar(128);not null;index"`
	Type        ActivityType `gorm:"type:varchar(30);not null;column:activity_type"`
	Description string       `gorm:"type:varchar(500);not null"`
	Metadata    string       `gorm:"type:text"`
	OccurredAt  time.Time    `gorm:"not null;index;column:occurred_at"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// DashboardSnapshot is a point-in-time copy of one user's dashboard statistics
type DashboardSnapshot struct {
	BaseModel
	UserID              string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_snapshot_user_day"`
	TakenOn             time.Time `gorm:"type:date;not null;uniqueIndex:idx_snapshot_user_day;column:taken_on"`
	TotalProjects       int       `gorm:"not null;default:0"`
	CompletedProjects   int       `gorm:"not null;default:0"`
	InProgressProjects  int       `gorm:"not null;default:0"`
	NotStartedProjects  int       `gorm:"not null;default:0"`
	OnHoldProjects      int       `gorm:"not null;default:0"`
	TotalRevenue        float64   `gorm:"type:decimal(15,2);not null;default:0"`
	PaidAmount          float64   `gorm:"type:decimal(15,2);not null;default:0"`
	PendingAmount       float64   `gorm:"type:decimal(15,2);not null;default:0"`
	CompletionRate      float64   `gorm:"type:decimal(5,2);not null;default:0"`
	AverageProjectValue float64   `gorm:"type:decimal(15,2);not null;default:0"`
}
