package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yectos/projects-api/internal/domain"
)

// SortField names a sortable project attribute
type SortField string

const (
	SortByName       SortField = "name"
	SortByClient     SortField = "client"
	SortByTotalCost  SortField = "totalCost"
	SortByAmountPaid SortField = "amountPaid"
	SortByCreatedAt  SortField = "createdAt"
	SortByUpdatedAt  SortField = "updatedAt"
	SortByProgress   SortField = "progress"
)

// SortDirection is ascending or descending
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// compareFunc returns a negative number when a sorts before b, zero when
// they are equal and a positive number otherwise
type compareFunc func(a, b *domain.Project) int

var comparators = map[SortField]compareFunc{
	SortByName: func(a, b *domain.Project) int {
		return compareFold(a.Name, b.Name)
	},
	SortByClient: func(a, b *domain.Project) int {
		return compareFold(a.Client, b.Client)
	},
	SortByTotalCost: func(a, b *domain.Project) int {
		return compareFloat(a.TotalCost, b.TotalCost)
	},
	SortByAmountPaid: func(a, b *domain.Project) int {
		return compareFloat(a.AmountPaid, b.AmountPaid)
	},
	SortByCreatedAt: func(a, b *domain.Project) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	},
	SortByUpdatedAt: func(a, b *domain.Project) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	},
	SortByProgress: func(a, b *domain.Project) int {
		return Progress(a) - Progress(b)
	},
}

// SortFields lists every accepted sort field
func SortFields() []SortField {
	return []SortField{
		SortByName, SortByClient, SortByTotalCost, SortByAmountPaid,
		SortByCreatedAt, SortByUpdatedAt, SortByProgress,
	}
}

// ParseSortField validates a sort field name
func ParseSortField(s string) (SortField, error) {
	field := SortField(s)
	if _, ok := comparators[field]; !ok {
		return "", fmt.Errorf("unknown sort field %q", s)
	}
	return field, nil
}

// ParseSortDirection accepts "asc" or "desc" in any case
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(strings.ToLower(s)) {
	case SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", fmt.Errorf("unknown sort direction %q", s)
}

// SortProjects returns a sorted copy of projects. The sort is stable, so
// projects with equal keys keep their input order. An unknown field
// leaves the copy in input order.
func SortProjects(projects []domain.Project, field SortField, dir SortDirection) []domain.Project {
	out := make([]domain.Project, len(projects))
	copy(out, projects)

	cmp, ok := comparators[field]
	if !ok {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(&out[i], &out[j])
		if dir == SortDesc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
