package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"jobtrack/internal/api/middleware"
	"jobtrack/internal/auth"
)

// RegisterRoutes 在 /api 前缀下注册全部业务路由。
// 鉴权中间件先于任何数据库访问执行。
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	asynqClient *asynq.Client,
	authService *auth.AuthService,
	redisClient *redis.Client,
	logger *slog.Logger,
	storageClient ObjectStorage,
	clamdAddr string,
	loginRateLimitPerHour int,
) {
	authHandler := NewAuthHandler(db, authService, redisClient, logger, loginRateLimitPerHour)
	boardHandler := NewBoardHandler(db)
	jobHandler := NewJobHandler(db, asynqClient, redisClient)
	uploadHandler := NewUploadHandler(storageClient, clamdAddr)
	wsHandler := NewWsHandler(redisClient, authService, logger)
	authMiddleware := middleware.AuthMiddleware(authService)

	router.GET("/ws", wsHandler.HandleConnection)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		boardGroup := api.Group("/boards")
		boardGroup.Use(authMiddleware)
		{
			boardGroup.GET("", boardHandler.ListBoards)
			boardGroup.POST("", boardHandler.CreateBoard)
		}

		jobGroup := api.Group("/jobs")
		jobGroup.Use(authMiddleware)
		{
			jobGroup.GET("/board/:boardId", jobHandler.ListJobsByBoard)
			jobGroup.POST("", jobHandler.CreateJob)
			jobGroup.PUT("/:id", jobHandler.UpdateJob)
			jobGroup.DELETE("/:id", jobHandler.DeleteJob)
		}

		uploadGroup := api.Group("/upload")
		uploadGroup.Use(authMiddleware)
		{
			uploadGroup.POST("", uploadHandler.UploadFile)
		}

		fileGroup := api.Group("/files")
		fileGroup.Use(authMiddleware)
		{
			fileGroup.GET("/view", uploadHandler.GetFileURL)
		}
	}
}
