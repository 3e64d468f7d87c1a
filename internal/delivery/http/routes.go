package http

import (
	"github.com/gin-gonic/gin"

	"github.com/BusqueiCompany/buscai-local-lover-sub000/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		basket := v1.Group("/basket")
		{
			basket.POST("/optimize", handler.OptimizeBasket)
		}

		stores := v1.Group("/stores")
		{
			stores.GET("/nearby", handler.NearbyStores)
		}
	}

	return router
}
