package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/unitcost/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		session := v1.Group("/session")
		{
			session.GET("", handler.GetSession)
			session.POST("/new", handler.NewSession)
			session.POST("/reset", handler.ResetSession)
			session.POST("/load", handler.LoadSession)
			session.POST("/save", handler.SaveSession)
			session.POST("/calculate", handler.Calculate)

			session.POST("/rows", handler.AddRow)
			session.PATCH("/rows/:index", handler.UpdateRow)
			session.DELETE("/rows/:index", handler.RemoveRow)
			session.PUT("/rows/:index/family", handler.SelectFamily)
		}

		v1.GET("/units", handler.ListFamilies)
		v1.GET("/units/:family", handler.ListUnits)
	}

	return router
}
