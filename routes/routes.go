package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/pathfinder-backend/config"
	"github.com/vnkhanh/pathfinder-backend/controllers"
	"github.com/vnkhanh/pathfinder-backend/middleware"
	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/services"
	"github.com/vnkhanh/pathfinder-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB, cfg *config.Config, denylist *services.TokenDenylist) *gin.Engine {
	r.Use(
		middleware.DBMiddleware(db),
		middleware.ConfigMiddleware(cfg),
		middleware.DenylistMiddleware(denylist),
	)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)
	r.GET("/metrics", middleware.MetricsHandler())

	// WebSocket xác thực bằng ?token= vì trình duyệt không gửi được header
	r.GET("/ws/quiz/:sessionId", ws.HandleQuizWebSocket(cfg, denylist))
	r.GET("/ws/admin", ws.HandleAdminWebSocket(cfg, denylist))
	r.GET("/ws/notifications", ws.HandleNotificationWebSocket(cfg, denylist))

	api := r.Group("/api/v1")
	authed := middleware.AuthMiddleware(cfg, denylist)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperuser)
	superuser := middleware.RequireRoles(models.RoleSuperuser)

	public := api.Group("/users")
	{
		public.POST("/register", controllers.Register)
		public.POST("/login", controllers.Login)
		public.POST("/logingoogle", controllers.GoogleLogin)
		public.GET("/refresh", controllers.RefreshToken)
		public.GET("/logout", controllers.Logout)
	}

	users := api.Group("/users", authed)
	{
		users.PUT("/password", controllers.ChangePassword)
		users.PUT("/update/:id", controllers.UpdateUser)

		users.GET("", staff, controllers.GetUsers)
		users.GET("/search", staff, controllers.SearchUsers)
		users.GET("/:id", staff, controllers.GetUserByID)
		users.DELETE("/delete/:id", staff, controllers.DeleteUser)
	}

	classes := api.Group("/classes", authed)
	{
		classes.GET("", controllers.GetClasses)
		classes.GET("/:id", controllers.GetClassByID)
		classes.POST("/add", staff, controllers.AddClass)
		classes.PUT("/update/:id", staff, controllers.UpdateClass)
		classes.DELETE("/delete/:id", staff, controllers.DeleteClass)
	}

	categories := api.Group("/categories", authed)
	{
		categories.GET("/:id", controllers.GetCategoryByID)
		categories.GET("/class/:classId", controllers.GetCategoriesByClass)
		categories.POST("/add/:classId", staff, controllers.AddCategory)
		categories.PUT("/update/:id", staff, controllers.UpdateCategory)
		categories.DELETE("/delete/:id", staff, controllers.DeleteCategory)
	}

	questions := api.Group("/questions", authed)
	{
		questions.GET("", controllers.GetQuestions)
		questions.GET("/:id", controllers.GetQuestionByID)
		questions.GET("/class/:classId", controllers.GetQuestionsByClass)
		questions.GET("/category/:classId/:categoryId", controllers.GetQuestionsByCategory)
		questions.POST("/add/:classId/:categoryId", staff, controllers.AddQuestion)
		questions.PUT("/update/:id", staff, controllers.UpdateQuestion)
		questions.DELETE("/delete/:id", staff, controllers.DeleteQuestion)
		questions.POST("/image/:id", staff, controllers.UploadQuestionImage)
		questions.POST("/generate/:classId/:categoryId", staff, controllers.GenerateQuestionsFromResource)
	}

	resources := api.Group("/resources", authed)
	{
		resources.GET("", controllers.GetResources)
		resources.GET("/:id", controllers.GetResourceByID)
		resources.GET("/class/:classId", controllers.GetResourcesByClass)
		resources.GET("/category/:categoryId", controllers.GetResourcesByCategory)
		resources.GET("/liked/:userId", controllers.GetLikedResources)
		resources.POST("/like/:resourceId", controllers.LikeResource)
		resources.DELETE("/like/:resourceId", controllers.UnlikeResource)
		resources.POST("/add", staff, controllers.AddResource)
		resources.POST("/import", staff, controllers.ImportResource)
		resources.PUT("/update/:id", staff, controllers.UpdateResource)
		resources.DELETE("/delete/:id", staff, controllers.DeleteResource)
	}

	quiz := api.Group("/quiz", authed)
	{
		quiz.POST("/start", controllers.StartQuiz)
		quiz.POST("/submit", controllers.SubmitAnswer)
		quiz.POST("/end", controllers.EndQuiz)
	}

	history := api.Group("/history", authed)
	{
		history.POST("/add", controllers.AddHistory)
		history.GET("", controllers.GetHistory)
		history.GET("/export", controllers.ExportHistory)
	}

	notifications := api.Group("/notifications", authed)
	{
		notifications.GET("", controllers.GetNotifications)
		notifications.GET("/unread-count", controllers.GetUnreadCount)
		notifications.PUT("/read/:id", controllers.MarkNotificationAsRead)
		notifications.PUT("/read-all", controllers.MarkAllAsRead)
		notifications.DELETE("/delete/:id", controllers.DeleteNotification)
		notifications.DELETE("/read", controllers.DeleteReadNotifications)
	}

	api.GET("/search", authed, controllers.Search)

	stats := api.Group("/stats", authed, staff)
	{
		stats.GET("/overview", controllers.GetDashboardOverview)
		stats.GET("/difficulty", controllers.GetDifficultyBreakdown)
		stats.GET("/daily-quizzes", controllers.GetDailyQuizzes)
	}

	admin := api.Group("/admin", authed, superuser)
	{
		admin.GET("", controllers.GetAdmins)
		admin.GET("/requests", controllers.GetAdminRequests)
		admin.GET("/approved", controllers.GetApprovedAdmins)
		admin.GET("/rejected", controllers.GetRejectedAdmins)
		admin.PUT("/approve/:id", controllers.ApproveAdmin)
		admin.PUT("/reject/:id", controllers.RejectAdmin)
	}

	return r
}
