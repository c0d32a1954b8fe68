// Package export defines the portable document format for a user's projects.
// The same document is served by the API, archived by the snapshot job and
// read by the projectstats command.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yectos/projects-api/internal/domain"
	"gopkg.in/yaml.v3"
)

// Format is a serialization of a Document
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// FormatFromPath picks the format from a file extension, defaulting to JSON
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Document is an export of projects
type Document struct {
	ExportedAt time.Time `json:"exportedAt" yaml:"exportedAt"`
	UserID     string    `json:"userId,omitempty" yaml:"userId,omitempty"`
	Projects   []Project `json:"projects" yaml:"projects"`
}

// Project is the exported form of a project
type Project struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Client      string     `json:"client" yaml:"client"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	TotalCost   float64    `json:"totalCost" yaml:"totalCost"`
	AmountPaid  float64    `json:"amountPaid" yaml:"amountPaid"`
	Priority    string     `json:"priority,omitempty" yaml:"priority,omitempty"`
	Status      string     `json:"status,omitempty" yaml:"status,omitempty"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Color       string     `json:"color,omitempty" yaml:"color,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Stages      []Stage    `json:"stages" yaml:"stages"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" yaml:"updatedAt"`
}

// Stage is the exported form of a stage
type Stage struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Completed bool       `json:"completed" yaml:"completed"`
	Order     int        `json:"order" yaml:"order"`
	DueDate   *time.Time `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
}

// NewDocument builds a document from stored projects. Status holds only an
// explicit override; derived statuses are left empty.
func NewDocument(userID string, projects []domain.Project, exportedAt time.Time) *Document {
	doc := &Document{ExportedAt: exportedAt.UTC(), UserID: userID, Projects: make([]Project, len(projects))}
	for i := range projects {
		p := &projects[i]
		out := Project{
			ID:          p.ID.String(),
			Name:        p.Name,
			Client:      p.Client,
			Description: p.Description,
			TotalCost:   p.TotalCost,
			AmountPaid:  p.AmountPaid,
			Priority:    string(p.Priority),
			Tags:        []string(p.Tags),
			Color:       p.Color,
			DueDate:     p.DueDate,
			Stages:      make([]Stage, len(p.Stages)),
			CreatedAt:   p.CreatedAt.UTC(),
			UpdatedAt:   p.UpdatedAt.UTC(),
		}
		if status, ok := p.Status.Explicit(); ok {
			out.Status = string(status)
		}
		for j, s := range p.Stages {
			out.Stages[j] = Stage{ID: s.ID, Name: s.Name, Completed: s.Completed, Order: s.Order, DueDate: s.DueDate}
		}
		doc.Projects[i] = out
	}
	return doc
}

// DomainProjects converts the document back into domain projects
func (d *Document) DomainProjects() ([]domain.Project, error) {
	out := make([]domain.Project, len(d.Projects))
	for i, p := range d.Projects {
		project := domain.Project{
			UserID:      d.UserID,
			Name:        p.Name,
			Client:      p.Client,
			Description: p.Description,
			TotalCost:   p.TotalCost,
			AmountPaid:  p.AmountPaid,
			Priority:    domain.ProjectPriority(p.Priority),
			Tags:        p.Tags,
			Color:       p.Color,
			DueDate:     p.DueDate,
			Stages:      make([]domain.Stage, len(p.Stages)),
		}
		if p.ID != "" {
			id, err := uuid.Parse(p.ID)
			if err != nil {
				return nil, fmt.Errorf("project %d: invalid id %q: %w", i, p.ID, err)
			}
			project.ID = id
		}
		if p.Status != "" {
			status := domain.ProjectStatus(p.Status)
			if !status.IsValid() {
				return nil, fmt.Errorf("project %d: invalid status %q", i, p.Status)
			}
			project.Status = domain.StatusExplicit(status)
		}
		if project.Priority != "" && !project.Priority.IsValid() {
			return nil, fmt.Errorf("project %d: invalid priority %q", i, p.Priority)
		}
		project.CreatedAt = p.CreatedAt
		project.UpdatedAt = p.UpdatedAt
		for j, s := range p.Stages {
			project.Stages[j] = domain.Stage{ID: s.ID, ProjectID: project.ID, Name: s.Name, Completed: s.Completed, Order: s.Order, DueDate: s.DueDate}
		}
		out[i] = project
	}
	return out, nil
}

// Encode writes the document in the given format
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}

// Decode reads a document in the given format
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode yaml: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode json: %w", err)
		}
	}
	return &doc, nil
}
