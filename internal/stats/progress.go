// Package stats derives progress, status and dashboard figures from project
// records and provides the filtering and sorting used by project listings.
// Every function is pure: inputs are never mutated and no state is kept
// between calls.
package stats

import (
	"math"

	"github.com/yectos/projects-api/internal/domain"
)

// Progress returns the percentage of completed stages, rounded half up.
// A project without stages has progress 0.
func Progress(p *domain.Project) int {
	total := len(p.Stages)
	if total == 0 {
		return 0
	}
	pct := float64(p.CompletedStages()) * 100 / float64(total)
	return int(math.Floor(pct + 0.5))
}

// DeriveStatus returns the explicit status when one is set and otherwise
// derives it from progress. on_hold is only ever explicit.
func DeriveStatus(p *domain.Project) domain.ProjectStatus {
	if status, ok := p.Status.Explicit(); ok {
		return status
	}
	switch Progress(p) {
	case 0:
		return domain.ProjectStatusNotStarted
	case 100:
		return domain.ProjectStatusCompleted
	default:
		return domain.ProjectStatusInProgress
	}
}

// PendingAmount returns the outstanding balance of a single project, never
// below zero.
func PendingAmount(p *domain.Project) float64 {
	return math.Max(0, p.TotalCost-p.AmountPaid)
}
