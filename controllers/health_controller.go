package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/pathfinder-backend/services"
	"github.com/vnkhanh/pathfinder-backend/ws"
)

func HealthCheck(c *gin.Context) {
	db := getDB(c)

	// Mặc định trạng thái OK
	response := gin.H{
		"status":    "ok",
		"message":   "Service is healthy",
		"timestamp": time.Now().Unix(),
		"db":        "ok",
		"websocket": gin.H{
			"enabled": true,
			"stats":   ws.H.Stats(),
		},
	}

	sqlDB, err := db.DB()
	if err != nil {
		response["db"] = "error: cannot get DB instance"
		response["status"] = "degraded"
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		response["db"] = "error: cannot connect to DB"
		response["status"] = "degraded"
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	// Redis là tuỳ chọn
	denylist, _ := c.MustGet("denylist").(*services.TokenDenylist)
	switch {
	case !denylist.Enabled():
		response["redis"] = "disabled"
	case denylist.Ping(ctx) != nil:
		response["redis"] = "error: cannot connect to redis"
		response["status"] = "degraded"
		c.JSON(http.StatusInternalServerError, response)
		return
	default:
		response["redis"] = "ok"
	}

	c.JSON(http.StatusOK, response)
}
