package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/pathfinder-backend/config"
	"github.com/vnkhanh/pathfinder-backend/services"
)

// DBMiddleware gắn *gorm.DB vào context để controller dùng c.MustGet("db").
func DBMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("db", db)
		c.Next()
	}
}

func ConfigMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	}
}

func DenylistMiddleware(denylist *services.TokenDenylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("denylist", denylist)
		c.Next()
	}
}
