// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"arena-social/internal/core/database"
	"arena-social/internal/domain"
)

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{Driver: "sqlite", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a LOCAL user named name with email name@example.com.
func CreateUser(t testing.TB, db *gorm.DB, name string) *domain.User {
	t.Helper()
	email := fmt.Sprintf("%s@example.com", name)
	u := &domain.User{
		Username:   name,
		Email:      &email,
		AuthMethod: domain.AuthLocal,
		Role:       domain.RoleUser,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(u).Error)
	return u
}
