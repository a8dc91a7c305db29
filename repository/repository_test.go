package repository

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/newsgap/newsgap/models"
)

// openTestDB gives every test its own in-memory database with the full
// schema migrated.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Article{},
		&models.Source{},
		&models.CustomCategory{},
		&models.CategorySource{},
		&models.Analysis{},
		&models.TrendInsight{},
		&models.Credential{},
	))
	return db
}
