package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Cache, cfg.Connectivity, cfg.Version)
	catalogController := NewCatalogController(cfg.Catalog, cfg.Connectivity)
	connectivityController := NewConnectivityController(cfg.Connectivity)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Catalog endpoints
	api := router.Group("/api")
	api.GET("/experiences", catalogController.Recent)
	api.GET("/experiences/recommended", catalogController.Recommended)
	api.GET("/experiences/search", catalogController.Search)
	api.DELETE("/experiences/search", catalogController.ExitSearch)
	api.GET("/experiences/:id", catalogController.Details)
	api.POST("/experiences/:id/like", catalogController.Like)
	api.GET("/state", catalogController.State)
	api.DELETE("/state/error", catalogController.ClearError)

	// Connectivity override for manual offline testing
	api.GET("/connectivity", connectivityController.Get)
	api.PUT("/connectivity", connectivityController.Set)
	api.DELETE("/connectivity", connectivityController.Clear)

	// Background refresh endpoints
	if cfg.Refresh != nil {
		refreshController := NewRefreshController(cfg.Refresh, cfg.Settings, cfg.Logger)
		api.POST("/refresh", refreshController.Run)
		if cfg.Settings != nil {
			api.GET("/refresh", refreshController.Status)
		}
	}

	// Task status endpoint
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient, cfg.Logger)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
