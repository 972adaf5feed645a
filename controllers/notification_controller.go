package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/services"
	"github.com/vnkhanh/pathfinder-backend/utils"
	"github.com/vnkhanh/pathfinder-backend/ws"
)

// pushBadge gửi số chưa đọc mới nhất qua websocket; lỗi chỉ ghi log.
func pushBadge(c *gin.Context, userID uuid.UUID) {
	count, err := services.UnreadNotificationCount(getDB(c), userID)
	if err != nil {
		utils.Log.Warn().Err(err).Str("userId", userID.String()).Msg("failed to count unread notifications")
		return
	}
	ws.SendBadgeUpdate(userID.String(), count)
}

// Danh sách thông báo
func GetNotifications(c *gin.Context) {
	list := []models.Notification{}
	if err := getDB(c).Where("user_id = ?", currentUserID(c)).Order("created_at DESC").Find(&list).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	c.JSON(http.StatusOK, list)
}

// Đếm số thông báo chưa đọc
func GetUnreadCount(c *gin.Context) {
	count, err := services.UnreadNotificationCount(getDB(c), currentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unreadCount": count})
}

// Đánh dấu đã đọc
func MarkNotificationAsRead(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	now := time.Now()
	res := getDB(c).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	if res.Error != nil {
		utils.RespondError(c, errors.WithStack(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, utils.NewNotFoundError("Notification not found"))
		return
	}

	pushBadge(c, userID)
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func MarkAllAsRead(c *gin.Context) {
	userID := currentUserID(c)

	now := time.Now()
	if err := getDB(c).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now}).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}

	ws.SendBadgeUpdate(userID.String(), 0)
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// Xóa một thông báo của chính user
func DeleteNotification(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	res := getDB(c).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		utils.RespondError(c, errors.WithStack(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, utils.NewNotFoundError("Notification not found"))
		return
	}

	pushBadge(c, userID)
	c.Status(http.StatusNoContent)
}

// Xóa tất cả thông báo đã đọc, giữ lại chưa đọc
func DeleteReadNotifications(c *gin.Context) {
	userID := currentUserID(c)

	if err := getDB(c).Where("user_id = ? AND is_read = ?", userID, true).
		Delete(&models.Notification{}).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}

	pushBadge(c, userID)
	c.Status(http.StatusNoContent)
}
