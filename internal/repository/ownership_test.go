package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yectos/projects-api/internal/repository"
)

type ownedModel struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	Name   string
	UserID string `gorm:"column:user_id"`
}

func setupMinimalTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

func TestApplyOwnerFilter(t *testing.T) {
	db := setupMinimalTestDB(t)
	_ = db.AutoMigrate(&ownedModel{})

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return repository.ApplyOwnerFilter(userCtx("alice"), tx.Model(&ownedModel{})).Find(&[]ownedModel{})
	})
	assert.Contains(t, sql, "user_id =")
	assert.Contains(t, sql, "alice")
}

func TestApplyOwnerFilter_Anonymous(t *testing.T) {
	db := setupMinimalTestDB(t)
	_ = db.AutoMigrate(&ownedModel{})

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return repository.ApplyOwnerFilter(context.Background(), tx.Model(&ownedModel{})).Find(&[]ownedModel{})
	})
	assert.Contains(t, sql, "1 = 0")
	assert.NotContains(t, sql, "user_id =")
}

func TestApplyOwnerFilterWithColumn(t *testing.T) {
	db := setupMinimalTestDB(t)
	_ = db.AutoMigrate(&ownedModel{})

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return repository.ApplyOwnerFilterWithColumn(userCtx("bob"), tx.Model(&ownedModel{}), "owned_models.user_id").Find(&[]ownedModel{})
	})
	assert.Contains(t, sql, "owned_models.user_id =")
	assert.Contains(t, sql, "bob")
}
