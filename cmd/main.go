package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/vnkhanh/pathfinder-backend/config"
	"github.com/vnkhanh/pathfinder-backend/middleware"
	"github.com/vnkhanh/pathfinder-backend/routes"
	"github.com/vnkhanh/pathfinder-backend/services"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

func main() {
	cfg := config.Load()

	utils.InitLogger(cfg)
	if err := cfg.Validate(); err != nil {
		utils.Log.Fatal().Err(err).Msg("Cấu hình không hợp lệ")
	}
	utils.InitRollbar(cfg)
	defer utils.CloseRollbar()
	utils.InitMailer(cfg)
	utils.InitStorage(cfg)
	services.InitGemini(cfg)
	utils.HideErrorDetails = cfg.IsProduction()

	db, err := config.OpenDB(cfg)
	if err != nil {
		utils.Log.Fatal().Err(err).Msg("Không thể kết nối database")
	}
	if err := config.Migrate(db); err != nil {
		utils.Log.Fatal().Err(err).Msg("Migrate database thất bại")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis chỉ dùng cho denylist access token; bỏ trống REDIS_ADDR để tắt
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			utils.Log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Không thể kết nối redis")
		}
		defer rdb.Close()
	}
	denylist := services.NewTokenDenylist(rdb)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	//Bật CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", middleware.AccessTokenHeader},
		AllowCredentials: true,
	}))
	routes.SetupRouter(r, db, cfg, denylist)

	services.StartSessionCleanupJob(ctx, db, cfg.QuizSessionTTL, time.Hour)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Log.Fatal().Err(err).Msg("Server dừng bất thường")
		}
	}()

	<-ctx.Done()
	utils.Log.Info().Msg("Đang tắt server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Log.Error().Err(err).Msg("Shutdown lỗi")
	}
}
