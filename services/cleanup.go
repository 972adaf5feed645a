package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vnkhanh/pathfinder-backend/utils"
)

func runSessionCleanup(db *gorm.DB, ttl time.Duration) {
	deleted, err := CleanupStaleSessions(db, time.Now().Add(-ttl))
	if err != nil {
		utils.Log.Error().Err(err).Msg("Lỗi khi xoá quiz session quá hạn")
		return
	}
	if deleted > 0 {
		utils.Log.Info().Int64("deleted", deleted).Msg("Đã xoá quiz session quá hạn")
	}
}

// StartSessionCleanupJob chạy cleanup ngay lần đầu rồi lặp lại mỗi interval
// cho tới khi ctx bị huỷ.
func StartSessionCleanupJob(ctx context.Context, db *gorm.DB, ttl, interval time.Duration) {
	runSessionCleanup(db, ttl)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runSessionCleanup(db, ttl)
			}
		}
	}()

	utils.Log.Info().Dur("interval", interval).Dur("ttl", ttl).Msg("Quiz session cleanup job đã được khởi động")
}
