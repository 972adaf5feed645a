package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// HideErrorDetails ẩn message và stack của lỗi 500 (bật khi production).
var HideErrorDetails bool

// RespondError ghi lỗi theo dạng {message, stack?} và dừng chain.
func RespondError(c *gin.Context, err error) {
	appErr := AsAppError(err)
	status := appErr.Status()

	body := gin.H{"message": appErr.Message}
	if appErr.Kind == KindInternal {
		Log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("internal error")
		ReportError(err, c.Request, map[string]interface{}{"userId": c.GetString("user_id")})

		if HideErrorDetails {
			body["message"] = "Internal server error"
		} else {
			body["stack"] = fmt.Sprintf("%+v", err)
		}
	}

	c.AbortWithStatusJSON(status, body)
}
