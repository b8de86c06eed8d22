package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/macrolens/diettracker/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))
	{
		v1.GET("/meals", handler.GetMeals)
		v1.GET("/meals/:category", handler.GetMeal)
		v1.GET("/totals", handler.GetTotals)

		items := v1.Group("/items")
		{
			items.POST("", handler.SubmitItem)
			items.POST("/:id/toggle", handler.ToggleItem)
			items.PUT("/:id/consumed", handler.SetConsumed)
			items.PUT("/:id/hidden", handler.SetHidden)
		}

		v1.GET("/catalog/search", handler.SearchCatalog)
		v1.DELETE("/state", handler.ResetState)
		v1.GET("/ws", handler.Realtime)
	}

	return router
}
