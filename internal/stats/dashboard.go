package stats

import (
	"sort"

	"github.com/yectos/projects-api/internal/domain"
)

const (
	revenueMonths  = 6
	recentProjects = 5
)

// ComputeDashboardStats aggregates counts and money figures across projects.
// PendingAmount is the difference of the grand totals and is not clamped.
func ComputeDashboardStats(projects []domain.Project) domain.DashboardStats {
	var s domain.DashboardStats
	s.TotalProjects = len(projects)

	for i := range projects {
		p := &projects[i]
		switch DeriveStatus(p) {
		case domain.ProjectStatusCompleted:
			s.CompletedProjects++
		case domain.ProjectStatusInProgress:
			s.InProgressProjects++
		case domain.ProjectStatusNotStarted:
			s.NotStartedProjects++
		case domain.ProjectStatusOnHold:
			s.OnHoldProjects++
		}
		s.TotalRevenue += p.TotalCost
		s.PaidAmount += p.AmountPaid
	}

	s.PendingAmount = s.TotalRevenue - s.PaidAmount
	if s.TotalProjects > 0 {
		s.CompletionRate = float64(s.CompletedProjects) / float64(s.TotalProjects) * 100
		s.AverageProjectValue = s.TotalRevenue / float64(s.TotalProjects)
	}
	return s
}

// StatusDistribution counts projects per derived status in display order.
// Statuses with no projects are left out.
func StatusDistribution(projects []domain.Project) []domain.StatusCount {
	counts := make(map[domain.ProjectStatus]int, len(domain.AllProjectStatuses))
	for i := range projects {
		counts[DeriveStatus(&projects[i])]++
	}

	out := make([]domain.StatusCount, 0, len(domain.AllProjectStatuses))
	for _, status := range domain.AllProjectStatuses {
		if n := counts[status]; n > 0 {
			out = append(out, domain.StatusCount{Status: status, Count: n})
		}
	}
	return out
}

// MonthlyRevenue sums expected and paid amounts per creation month and
// returns the most recent six months in ascending order. Months without
// projects are not filled in.
func MonthlyRevenue(projects []domain.Project) []domain.MonthlyRevenue {
	byMonth := make(map[string]*domain.MonthlyRevenue)
	for i := range projects {
		p := &projects[i]
		key := p.CreatedAt.Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &domain.MonthlyRevenue{Month: key}
			byMonth[key] = m
		}
		m.Expected += p.TotalCost
		m.Paid += p.AmountPaid
	}

	out := make([]domain.MonthlyRevenue, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })

	if len(out) > revenueMonths {
		out = out[len(out)-revenueMonths:]
	}
	return out
}

// RecentProjects returns the newest projects by creation time
func RecentProjects(projects []domain.Project) []domain.Project {
	sorted := SortProjects(projects, SortByCreatedAt, SortDesc)
	if len(sorted) > recentProjects {
		sorted = sorted[:recentProjects]
	}
	return sorted
}
