package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/portfolio-site/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenBareDB opens an empty in-memory SQLite database with no schema.
func OpenBareDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying SQL DB: %v", err)
	}
	// Every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// OpenTestDB opens an in-memory SQLite database with the full schema migrated
// and the settings row seeded.
func OpenTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db := OpenBareDB(t)
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}
