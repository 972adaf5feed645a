package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/vnkhanh/pathfinder-backend/utils"
)

// Recovery chuyển panic thành lỗi 500 cùng format với các lỗi khác.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		utils.RespondError(c, errors.Errorf("panic: %v", recovered))
	})
}
