package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/pathfinder-backend/config"
	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/services"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

// AccessTokenHeader mang access token mới khi middleware tự refresh.
const AccessTokenHeader = "X-Access-Token"

// BearerToken tách token khỏi "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware xác thực access token. Token hết hạn (chữ ký vẫn hợp lệ)
// sẽ được refresh bằng cookie jwt nếu có.
func AuthMiddleware(cfg *config.Config, denylist *services.TokenDenylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := c.MustGet("db").(*gorm.DB)

		tokenString, ok := BearerToken(c)
		if !ok {
			utils.RespondError(c, utils.NewAuthError("Unauthorized"))
			return
		}

		var userID string
		claims, err := utils.VerifyAccessToken(cfg.JWTSecret, tokenString)
		switch {
		case err == nil:
			revoked, err := denylist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				utils.RespondError(c, errors.Wrap(err, "checking token denylist"))
				return
			}
			if revoked {
				utils.RespondError(c, utils.NewAuthError("Unauthorized"))
				return
			}
			userID = claims.UserID

		case utils.IsTokenExpired(err):
			refreshToken, cerr := c.Cookie(utils.RefreshCookieName)
			if cerr != nil || refreshToken == "" {
				utils.RespondError(c, utils.NewForbiddenError("Refresh token missing"))
				return
			}
			access, user, rerr := services.RefreshAccessToken(db, cfg, refreshToken)
			if rerr != nil {
				utils.RespondError(c, rerr)
				return
			}
			c.Header(AccessTokenHeader, access)
			userID = user.ID.String()

		default:
			utils.RespondError(c, utils.NewAuthError("Unauthorized"))
			return
		}

		// Role luôn lấy từ DB để thay đổi quyền có hiệu lực ngay
		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondError(c, utils.NewAuthError("Unauthorized"))
				return
			}
			utils.RespondError(c, errors.WithStack(err))
			return
		}

		c.Set("user_id", user.ID.String())
		c.Set("role", user.Role)
		c.Set("user", &user)
		c.Next()
	}
}
