// Package api wires the HTTP surface: routing, middleware, handlers.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kickon/kickon/internal/api/handler"
	"github.com/kickon/kickon/internal/api/middleware"
	"github.com/kickon/kickon/internal/config"
	"github.com/kickon/kickon/internal/logger"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(scorer handler.Scorer, cfg *config.ServerConfig, log *logger.Logger) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	healthHandler := handler.NewHealthHandler()
	predictHandler := handler.NewPredictHandler(scorer)

	r.GET("/health", healthHandler.Health)
	r.GET("/predict", predictHandler.Predict)

	return r
}
