// Package testutil dựng DB SQLite in-memory và redis giả cho test.
package testutil

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/pathfinder-backend/config"
)

// NewTestDB opens a fresh in-memory database with every table migrated.
// A single connection keeps every query on the same in-memory database.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// TestConfig trả về cấu hình tối thiểu cho test.
func TestConfig() *config.Config {
	return &config.Config{
		Env:                 config.EnvTest,
		JWTSecret:           "test-access-secret",
		JWTRefreshSecret:    "test-refresh-secret",
		AccessTokenTTL:      10 * time.Minute,
		RefreshTokenTTL:     48 * time.Hour,
		RefreshCookieMaxAge: 72 * time.Hour,
		Superusers:          []string{"root@pathfinder.dev"},
		QuizSessionTTL:      24 * time.Hour,
	}
}

// NewTestRedis chạy miniredis trong tiến trình và trả về client trỏ tới nó.
func NewTestRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}
