package controllers

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/pathfinder-backend/config"
	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

func getDB(c *gin.Context) *gorm.DB {
	return c.MustGet("db").(*gorm.DB)
}

func getConfig(c *gin.Context) *config.Config {
	return c.MustGet("config").(*config.Config)
}

func GenerateSlug(name string) string {
	return slug.Make(name)
}

// parseUUIDParam trả 400 khi id trên path không phải UUID.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondError(c, utils.NewValidationError("Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

func parseUUIDField(value, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, utils.NewValidationError("Invalid " + field)
	}
	return id, nil
}

// currentUserID lấy user_id do AuthMiddleware gắn vào context.
func currentUserID(c *gin.Context) uuid.UUID {
	id, _ := uuid.Parse(c.GetString("user_id"))
	return id
}

func currentRole(c *gin.Context) models.Role {
	role, _ := c.MustGet("role").(models.Role)
	return role
}

// bindJSON cho phép body rỗng (cập nhật không có field nào).
func bindJSON(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindJSON(out); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(c, utils.NewValidationError("Invalid request body"))
		return false
	}
	return true
}

// findOr404 đọc bản ghi theo id, trả NotFound với message cho trước.
func findOr404(db *gorm.DB, dest interface{}, id uuid.UUID, msg string) error {
	if err := db.First(dest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError(msg)
		}
		return errors.WithStack(err)
	}
	return nil
}

// escapeLike escape ký tự đặc biệt của LIKE, dùng với ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func duplicateOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return utils.NewConflictError(msg)
	}
	return errors.WithStack(err)
}
