// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yectos/projects-api/internal/database"
	"github.com/yectos/projects-api/internal/domain"
)

// SetupTestDB opens a private in-memory SQLite database with the schema migrated
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateTestProject inserts a project owned by userID with the given stage
// completion flags
func CreateTestProject(t *testing.T, db *gorm.DB, userID, name string, completed ...bool) *domain.Project {
	t.Helper()

	p := &domain.Project{
		UserID:     userID,
		Name:       name,
		Client:     name + " Client",
		TotalCost:  1000,
		AmountPaid: 250,
		Priority:   domain.ProjectPriorityMedium,
		Tags:       []string{"test"},
	}
	for i, c := range completed {
		p.Stages = append(p.Stages, domain.Stage{
			ID:        fmt.Sprintf("stage-%d", i),
			Name:      fmt.Sprintf("Stage %d", i+1),
			Completed: c,
			Order:     i,
		})
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
