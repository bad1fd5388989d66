package http

import (
	"github.com/gin-gonic/gin"
	"github.com/pricelens/backend/config"
	"github.com/pricelens/backend/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, m *metrics.Metrics) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	if m != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit, m))
	{
		v1.GET("/units", handler.ListUnits)
		v1.GET("/settings", handler.GetSettings)
		v1.POST("/validate", handler.ValidateProduct)
		v1.POST("/compare", handler.Compare)

		history := v1.Group("/history")
		{
			history.POST("", handler.RecordPurchase)
			history.GET("", handler.ListHistory)
			history.GET("/:id", handler.GetHistoryRecord)
			history.DELETE("/:id", handler.DeleteHistoryRecord)
		}

		compareHistory := v1.Group("/compare/history")
		{
			compareHistory.POST("", handler.CompareWithHistory)
			compareHistory.POST("/:id", handler.CompareWithRecord)
		}
	}

	return router
}
