package config

import (
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/pathfinder-backend/models"
)

// OpenDB kết nối PostgreSQL và cấu hình connection pool.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.Env == EnvDevelopment {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return db, nil
}

// Migrate tạo/cập nhật bảng cho toàn bộ models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.Category{},
		&models.Question{},
		&models.Resource{},
		&models.ResourceLike{},
		&models.QuizSession{},
		&models.QuizAnswer{},
		&models.HistoryRecord{},
		&models.Notification{},
	)
}
