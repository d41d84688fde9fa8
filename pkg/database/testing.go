package database

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenTest opens an in-memory sqlite database with the full schema applied.
// Each test gets its own database; closing happens with the test process.
func OpenTest(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared&_fk=1"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed opening test database: %v", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatalf("failed migrating test database: %v", err)
	}

	return db
}
