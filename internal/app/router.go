package app

import (
	"messenger_backend/internal/config"
	"messenger_backend/internal/middleware"
	"messenger_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		users := authGroup.Group("/users")
		{
			users.GET("/profile", c.user.GetProfile)
			users.POST("/profile-picture", c.user.UploadProfilePicture)
			users.POST("/friend-request", c.user.SendFriendRequest)
			users.GET("/friend-requests", c.user.GetPendingRequests)
			users.POST("/friend-request/:id/accept", c.user.AcceptFriendRequest)
			users.POST("/friend-request/:id/decline", c.user.DeclineFriendRequest)
		}

		messages := authGroup.Group("/messages")
		{
			messages.GET("/ws", c.message.HandleWS)
			messages.POST("", c.message.SendMessage)
			messages.POST("/media", c.message.UploadMedia)
			messages.GET("/:otherUserId", c.message.GetConversation)
		}
	}
}
