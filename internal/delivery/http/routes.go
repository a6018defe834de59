package http

import (
	"github.com/gin-gonic/gin"

	"github.com/labellens/backend/config"
	"github.com/labellens/backend/internal/pkg/logger"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log *logger.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		analyze := v1.Group("/analyze")
		{
			analyze.POST("", handler.Analyze)
			analyze.POST("/image", handler.AnalyzeImage)
		}

		v1.POST("/classify", handler.Classify)
		v1.POST("/compare", handler.Compare)

		barcode := v1.Group("/barcode")
		{
			barcode.POST("/analyze", handler.AnalyzeBarcode)
			barcode.GET("/:code", handler.GetBarcode)
		}
	}

	return router
}
