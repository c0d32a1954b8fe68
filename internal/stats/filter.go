package stats

import (
	"strings"

	"github.com/yectos/projects-api/internal/domain"
)

// Filter selects projects for a listing. Empty fields impose no constraint.
// Categories combine with AND; Tags match when the project has any of them.
type Filter struct {
	Search     string
	Statuses   []domain.ProjectStatus
	Tags       []string
	Priorities []domain.ProjectPriority
}

// IsEmpty reports whether the filter would keep every project
func (f Filter) IsEmpty() bool {
	return f.Search == "" && len(f.Statuses) == 0 && len(f.Tags) == 0 && len(f.Priorities) == 0
}

// Matches reports whether a single project satisfies the filter
func (f Filter) Matches(p *domain.Project) bool {
	if f.Search != "" && !matchesSearch(p, strings.ToLower(f.Search)) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, DeriveStatus(p)) {
		return false
	}
	if len(f.Tags) > 0 && !hasAnyTag(p, f.Tags) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, p.Priority) {
		return false
	}
	return true
}

// FilterProjects returns a new slice holding the projects that match f, in
// their original order
func FilterProjects(projects []domain.Project, f Filter) []domain.Project {
	out := make([]domain.Project, 0, len(projects))
	if f.IsEmpty() {
		return append(out, projects...)
	}
	for i := range projects {
		if f.Matches(&projects[i]) {
			out = append(out, projects[i])
		}
	}
	return out
}

func matchesSearch(p *domain.Project, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Client), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

func containsStatus(statuses []domain.ProjectStatus, s domain.ProjectStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// A project without a priority never matches a priority constraint.
func containsPriority(priorities []domain.ProjectPriority, p domain.ProjectPriority) bool {
	if p == "" {
		return false
	}
	for _, candidate := range priorities {
		if candidate == p {
			return true
		}
	}
	return false
}

func hasAnyTag(p *domain.Project, tags []string) bool {
	for _, tag := range tags {
		if p.HasTag(tag) {
			return true
		}
	}
	return false
}
