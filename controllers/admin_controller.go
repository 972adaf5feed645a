package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/services"
	"github.com/vnkhanh/pathfinder-backend/utils"
	"github.com/vnkhanh/pathfinder-backend/ws"
)

func listUsersWhere(c *gin.Context, query string, args ...interface{}) {
	users := []models.User{}
	if err := getDB(c).Where(query, args...).Order("created_at ASC").Find(&users).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	c.JSON(http.StatusOK, users)
}

func GetAdmins(c *gin.Context) {
	listUsersWhere(c, "role = ?", models.RoleAdmin)
}

func GetAdminRequests(c *gin.Context) {
	listUsersWhere(c, "status = ?", models.StatusPending)
}

func GetApprovedAdmins(c *gin.Context) {
	listUsersWhere(c, "status = ?", models.StatusApproved)
}

func GetRejectedAdmins(c *gin.Context) {
	listUsersWhere(c, "status = ?", models.StatusRejected)
}

func ApproveAdmin(c *gin.Context) {
	decideAdminRequest(c, true)
}

func RejectAdmin(c *gin.Context) {
	decideAdminRequest(c, false)
}

// decideAdminRequest xử lý yêu cầu admin đang pending rồi gửi email cho user.
func decideAdminRequest(c *gin.Context, approve bool) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	db := getDB(c)

	var user models.User
	if err := findOr404(db, &user, id, "User not found"); err != nil {
		utils.RespondError(c, err)
		return
	}
	if user.Status == nil || *user.Status != models.StatusPending {
		utils.RespondError(c, utils.NewConflictError("User has no pending admin request"))
		return
	}

	status := models.StatusRejected
	updates := map[string]interface{}{"status": status}
	if approve {
		status = models.StatusApproved
		updates = map[string]interface{}{"status": status, "role": models.RoleAdmin}
	}

	// chỉ cập nhật khi vẫn còn pending
	res := db.Model(&models.User{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(updates)
	if res.Error != nil {
		utils.RespondError(c, errors.WithStack(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, utils.NewConflictError("User has no pending admin request"))
		return
	}
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}

	mail := adminDecisionMail(&user, approve)
	if err := utils.SendMail(mail); err != nil {
		utils.Log.Warn().Err(err).Str("userId", user.ID.String()).Msg("failed to send admin decision email")
	}
	notification, err := services.CreateNotification(db, user.ID, models.NotificationAdminDecision, mail.Subject, mail.Text)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	ws.SendNotification(user.ID.String(), notification)
	pushBadge(c, user.ID)
	ws.BroadcastAdminRequest("admin_request_"+string(status), user.ID.String(), user.Username, user.Email, string(status))

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Admin request %s", status),
		"user":    user,
	})
}

func adminDecisionMail(user *models.User, approved bool) utils.Mail {
	name := user.Firstname + " " + user.Lastname
	if approved {
		return utils.Mail{
			To:      user.Email,
			ToName:  name,
			Subject: "Your admin request was approved",
			Text:    fmt.Sprintf("Hi %s, your request for admin access on Pathfinder was approved.", user.Firstname),
			HTML:    fmt.Sprintf("<p>Hi %s,</p><p>Your request for admin access on Pathfinder was <strong>approved</strong>.</p>", user.Firstname),
		}
	}
	return utils.Mail{
		To:      user.Email,
		ToName:  name,
		Subject: "Your admin request was rejected",
		Text:    fmt.Sprintf("Hi %s, your request for admin access on Pathfinder was rejected.", user.Firstname),
		HTML:    fmt.Sprintf("<p>Hi %s,</p><p>Your request for admin access on Pathfinder was <strong>rejected</strong>.</p>", user.Firstname),
	}
}
