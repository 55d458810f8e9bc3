// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"varasto/internal/infrastructure/http/v1/handlers"
	"varasto/internal/infrastructure/http/v1/middleware"
	"varasto/pkg/logger"
)

// MetricsExporter serves collected metrics and observes HTTP requests.
type MetricsExporter interface {
	middleware.HTTPObserver
	Handler() http.Handler
}

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Directory serves all warehouse operations
	Directory handlers.WarehouseDirectory

	// Logger for request logging
	Logger *logger.Logger

	// Metrics is optional; /metrics is not registered when nil
	Metrics MetricsExporter

	// MetricsPath defaults to /metrics
	MetricsPath string

	AppName string
	Version string

	// Debug switches gin to debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.AppName, cfg.Version, cfg.Directory)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/info", healthHandler.Info)
	}

	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(cfg.Metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		baseHandler := handlers.NewBaseHandler()
		warehouseHandler := handlers.NewWarehouseHandler(baseHandler, cfg.Directory)
		warehouseHandler.RegisterRoutes(v1.Group("/warehouses"))
	}

	return router
}
