package handler

import (
	"videocrawl/internal/service"
	"videocrawl/pkg/logger"
	"videocrawl/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the API routes. rls may be nil to disable request limiting.
func NewRouter(vh *VideoHandler, rls *service.RateLimitService, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLogger(log))
	if rls != nil {
		router.Use(middleware.RateLimitMiddleware(rls, log))
	}

	api := router.Group("/api")
	{
		api.GET("/health", vh.HealthCheck)
		api.GET("/search", vh.Search)
		api.GET("/video/:id", vh.GetVideo)
		api.POST("/crawl", vh.Crawl)
	}
	return router
}
