package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-admin-service/internal/adapter/gin/handler"
	"user-admin-service/internal/adapter/gin/middleware"
)

// Options holds the router settings that come from configuration
type Options struct {
	ServiceName   string
	AllowedOrigin string // CORS origin; empty disables CORS
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(userHandler *handler.UserHandler, opts Options, log *zap.Logger) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	if opts.AllowedOrigin != "" {
		router.Use(middleware.CORS(opts.AllowedOrigin))
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": opts.ServiceName,
		})
	})

	users := router.Group("/users")
	{
		users.POST("", userHandler.CreateUser)
		users.GET("", userHandler.ListUsers)
		users.GET("/createdLastDay", userHandler.ListUsersCreatedLastDay)
		users.PUT("/deactivate/:id", userHandler.DeactivateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	return router
}
