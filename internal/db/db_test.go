package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/go-rems/auth"
	"github.com/diewo77/go-rems/internal/config"
	"github.com/diewo77/go-rems/internal/logging"
	"github.com/diewo77/go-rems/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"}, logging.Discard())
	assert.Error(t, err)
}

func TestOpen_SQLite(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", SQLitePath: "file:open_sqlite?mode=memory&cache=shared"}, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	assert.NoError(t, Ping(context.Background(), db))
}

func TestSeedPermissions_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, SeedPermissions(db))
	require.NoError(t, SeedPermissions(db))

	want := 0
	for _, perms := range RolePermissions {
		want += len(perms)
	}
	var count int64
	db.Model(&models.Permission{}).Count(&count)
	assert.Equal(t, int64(want), count)
}

func TestSeedAdmin(t *testing.T) {
	db := setupTestDB(t)

	none, err := SeedAdmin(db, "admin@x.io", "")
	require.NoError(t, err)
	assert.Nil(t, none)

	admin, err := SeedAdmin(db, "admin@x.io", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, auth.CheckPassword(admin.PasswordHash, "pw"))

	again, err := SeedAdmin(db, "admin@x.io", "other")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
}

func TestSeedDemo(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, SeedDemo(db))
	require.NoError(t, SeedDemo(db))

	var total, approved, pendingReviews, agents int64
	db.Model(&models.Property{}).Count(&total)
	db.Model(&models.Property{}).Where("approved = ?", true).Count(&approved)
	db.Model(&models.Review{}).Where("approved = ?", false).Count(&pendingReviews)
	db.Model(&models.Profile{}).Where("role = ?", models.RoleAgent).Count(&agents)

	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(2), approved)
	assert.Equal(t, int64(1), pendingReviews)
	assert.Equal(t, int64(2), agents)
}
