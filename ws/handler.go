package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/pathfinder-backend/config"
	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/services"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// authenticate đọc access token từ query ?token= (trình duyệt không gửi được
// header Authorization khi mở WebSocket). Token đã logout bị từ chối, role
// lấy từ DB như AuthMiddleware.
func authenticate(c *gin.Context, cfg *config.Config, denylist *services.TokenDenylist) (*models.User, bool) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return nil, false
	}
	claims, err := utils.VerifyAccessToken(cfg.JWTSecret, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return nil, false
	}

	revoked, err := denylist.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		utils.Log.Error().Err(err).Msg("WS: kiểm tra denylist thất bại")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return nil, false
	}
	if revoked {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return nil, false
	}

	db := c.MustGet("db").(*gorm.DB)
	var user models.User
	if err := db.First(&user, "id = ?", claims.UserID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Log.Error().Err(err).Msg("WS: tải user thất bại")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return nil, false
		}
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return nil, false
	}
	return &user, true
}

// serve giữ kết nối tới khi client đóng.
func serve(c *gin.Context, topic string, userID string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.Log.Warn().Err(err).Msg("WebSocket upgrade thất bại")
		return
	}

	client := H.Register(topic, conn)
	defer H.Unregister(client)
	utils.Log.Debug().Str("topic", topic).Str("userId", userID).Msg("WS connected")

	client.Enqueue(gin.H{"type": "connected", "topic": topic})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	utils.Log.Debug().Str("topic", topic).Str("userId", userID).Msg("WS disconnected")
}

// HandleQuizWebSocket: chỉ chủ phiên quiz được theo dõi tiến trình.
func HandleQuizWebSocket(cfg *config.Config, denylist *services.TokenDenylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticate(c, cfg, denylist)
		if !ok {
			return
		}

		sessionID, err := uuid.Parse(c.Param("sessionId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid session id"})
			return
		}

		db := c.MustGet("db").(*gorm.DB)
		var session models.QuizSession
		if err := db.Select("id", "user_id").First(&session, "id = ?", sessionID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Quiz session not found"})
			return
		}
		if session.UserID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"message": "You do not own this quiz session"})
			return
		}

		serve(c, QuizTopic(sessionID.String()), user.ID.String())
	}
}

// HandleAdminWebSocket: feed yêu cầu admin, chỉ dành cho superuser.
func HandleAdminWebSocket(cfg *config.Config, denylist *services.TokenDenylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticate(c, cfg, denylist)
		if !ok {
			return
		}
		if user.Role != models.RoleSuperuser {
			c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		serve(c, AdminTopic, user.ID.String())
	}
}

// HandleNotificationWebSocket: mỗi user chỉ nghe thông báo của chính mình.
func HandleNotificationWebSocket(cfg *config.Config, denylist *services.TokenDenylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticate(c, cfg, denylist)
		if !ok {
			return
		}
		serve(c, UserTopic(user.ID.String()), user.ID.String())
	}
}
