package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/services"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

type UpdateUserInput struct {
	Username  string `json:"username"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

func GetUsers(c *gin.Context) {
	users := []models.User{}
	if err := getDB(c).Order("created_at ASC").Find(&users).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	c.JSON(http.StatusOK, users)
}

// SearchUsers tìm không phân biệt hoa thường; các tham số kết hợp bằng AND.
func SearchUsers(c *gin.Context) {
	query := getDB(c).Model(&models.User{})
	for _, field := range []string{"username", "firstname", "lastname"} {
		value := strings.TrimSpace(c.Query(field))
		if value == "" {
			continue
		}
		query = query.Where("LOWER("+field+`) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(value))+"%")
	}

	users := []models.User{}
	if err := query.Order("username ASC").Find(&users).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	c.JSON(http.StatusOK, users)
}

func GetUserByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := findOr404(getDB(c), &user, id, "User not found"); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser: admin chỉ xoá được pathfinder; superuser xoá được mọi user trừ superuser.
func DeleteUser(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	db := getDB(c)

	var target models.User
	if err := findOr404(db, &target, id, "User not found"); err != nil {
		utils.RespondError(c, err)
		return
	}
	if !services.CanDeleteUser(currentRole(c), target.Role) {
		utils.RespondError(c, utils.NewForbiddenError("You are not allowed to delete this user"))
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// trả lại lượt like của user trước khi xoá
		likedIDs := tx.Model(&models.ResourceLike{}).Select("resource_id").Where("user_id = ?", id)
		if err := tx.Model(&models.Resource{}).
			Where("id IN (?)", likedIDs).
			UpdateColumn("likes", gorm.Expr("likes - ?", 1)).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.ResourceLike{}).Error; err != nil {
			return err
		}

		sessionIDs := tx.Model(&models.QuizSession{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("session_id IN (?)", sessionIDs).Delete(&models.QuizAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.QuizSession{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.HistoryRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
	if err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateUser cập nhật username/firstname/lastname; field rỗng được bỏ qua.
func UpdateUser(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if !services.CanUpdateUser(c.GetString("user_id"), id.String(), currentRole(c)) {
		utils.RespondError(c, utils.NewForbiddenError("You are not allowed to update this user"))
		return
	}

	var input UpdateUserInput
	if !bindJSON(c, &input) {
		return
	}
	db := getDB(c)

	var user models.User
	if err := findOr404(db, &user, id, "User not found"); err != nil {
		utils.RespondError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if username := strings.TrimSpace(input.Username); username != "" && username != user.Username {
		var count int64
		if err := db.Model(&models.User{}).Where("username = ? AND id <> ?", username, id).Count(&count).Error; err != nil {
			utils.RespondError(c, errors.WithStack(err))
			return
		}
		if count > 0 {
			utils.RespondError(c, utils.NewConflictError("Username already exists"))
			return
		}
		updates["username"] = username
	}
	if firstname := strings.TrimSpace(input.Firstname); firstname != "" {
		updates["firstname"] = firstname
	}
	if lastname := strings.TrimSpace(input.Lastname); lastname != "" {
		updates["lastname"] = lastname
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			utils.RespondError(c, duplicateOr(err, "Username already exists"))
			return
		}
		if err := db.First(&user, "id = ?", id).Error; err != nil {
			utils.RespondError(c, errors.WithStack(err))
			return
		}
	}
	c.JSON(http.StatusOK, user)
}
