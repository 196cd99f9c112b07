package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ginhandler "user-admin-service/internal/adapter/gin/handler"
	ginrouter "user-admin-service/internal/adapter/gin/router"
	"user-admin-service/internal/config"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(cfg *config.Config, handler *ginhandler.UserHandler, l *zap.Logger) *http.Server {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := ginrouter.SetupRouter(handler, ginrouter.Options{
		ServiceName:   cfg.Logger.ServiceName,
		AllowedOrigin: cfg.App.AllowedOrigin,
	}, l.Named("http"))

	return &http.Server{
		Addr:              ":" + cfg.App.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		// retries can hold a request for the sum of all backoff delays
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
