// Package dbtest opens throwaway databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"site-panel/internal/config"
	"site-panel/internal/db"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewSQLite returns a migrated SQLite database living in t.TempDir().
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	database, err := db.Open(config.Database{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.sqlite"),
	}, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return database
}
