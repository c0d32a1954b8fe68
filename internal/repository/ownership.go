package repository

import (
	"context"

	"github.com/yectos/projects-api/internal/auth"
	"gorm.io/gorm"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// ApplyOwnerFilter restricts a query to rows owned by the authenticated user.
// Without a user in the context the query matches nothing.
func ApplyOwnerFilter(ctx context.Context, query *gorm.DB) *gorm.DB {
	return ApplyOwnerFilterWithColumn(ctx, query, "user_id")
}

// ApplyOwnerFilterWithColumn applies the owner filter using a specific column name
// Use this when the column needs table qualification in joins
func ApplyOwnerFilterWithColumn(ctx context.Context, query *gorm.DB, columnName string) *gorm.DB {
	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		return query.Where("1 = 0")
	}
	return query.Where(columnName+" = ?", userID)
}
