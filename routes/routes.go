package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/btnpop/btnpop-api/config"
	"github.com/btnpop/btnpop-api/controllers"
	"github.com/btnpop/btnpop-api/middleware"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config) {
	auth := middleware.AuthMiddleware(cfg)
	editor := middleware.RequireEditorOrAdmin()
	admin := middleware.RequireAdmin()

	// uploaded images
	r.Static("/uploads", cfg.UploadDir)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	events := r.Group("/api/events")
	{
		events.GET("", controllers.ListEvents(cfg))
		events.GET("/upcoming", controllers.UpcomingEvents(cfg))
		events.GET("/:id", controllers.GetEvent(cfg))

		events.POST("", auth, editor, middleware.ValidateEvent(), controllers.CreateEvent(cfg))
		events.PUT("/:id", auth, editor, controllers.UpdateEvent(cfg))
		events.DELETE("/:id", auth, editor, controllers.DeleteEvent(cfg))
	}

	news := r.Group("/api/news")
	{
		news.GET("", controllers.ListNews(cfg))
		news.GET("/featured", controllers.FeaturedNews(cfg))
		news.GET("/trending", controllers.TrendingNews(cfg))
		news.GET("/latest", controllers.LatestNews(cfg))
		news.GET("/:id", controllers.GetNews(cfg))

		news.POST("", auth, editor, middleware.ValidateNews(), controllers.CreateNews(cfg))
		news.PUT("/:id", auth, editor, controllers.UpdateNews(cfg))
		news.DELETE("/:id", auth, editor, controllers.DeleteNews(cfg))

		news.POST("/:id/like", controllers.LikeNews(cfg))
		news.POST("/:id/dislike", controllers.DislikeNews(cfg))
	}

	participants := r.Group("/api/participants")
	{
		// public
		participants.POST("/:eventId/register", controllers.RegisterForEvent(cfg))
		participants.GET("/ticket/:id", controllers.GenerateTicket(cfg))
		participants.GET("/verify/:joinId", controllers.CheckParticipant(cfg))

		// admin dashboard
		participants.GET("/event/:eventId", auth, editor, controllers.EventParticipants(cfg))
		participants.GET("/:id", auth, editor, controllers.GetParticipant(cfg))
		participants.PUT("/:id/status", auth, editor, controllers.UpdateParticipantStatus(cfg))
	}

	authRoutes := r.Group("/api/auth")
	{
		authRoutes.POST("/register", auth, admin, controllers.Register(cfg))
		authRoutes.POST("/login", controllers.Login(cfg))
		authRoutes.POST("/forgot-password", controllers.ForgotPassword(cfg))
		authRoutes.POST("/reset-password/:token", controllers.ResetPassword(cfg))

		authRoutes.GET("/me", auth, controllers.CurrentUser(cfg))
		authRoutes.GET("/users", auth, admin, controllers.ListUsers(cfg))
		authRoutes.PUT("/users/:id", auth, controllers.UpdateUser(cfg))
		authRoutes.DELETE("/users/:id", auth, admin, controllers.DeleteUser(cfg))
	}
}
