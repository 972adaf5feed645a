package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/services"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

// RequireRoles cho phép chỉ định nhiều vai trò được quyền truy cập.
// Phải đứng sau AuthMiddleware.
func RequireRoles(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, utils.NewAuthError("Unauthorized"))
			return
		}
		role, ok := value.(models.Role)
		if !ok || !services.HasRole(role, allowedRoles...) {
			utils.RespondError(c, utils.NewAuthError("Unauthorized"))
			return
		}
		c.Next()
	}
}
