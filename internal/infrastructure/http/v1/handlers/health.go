package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// WarehouseCounter reports how many warehouses exist.
type WarehouseCounter interface {
	Count(ctx context.Context) (int, error)
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	app       string
	version   string
	startedAt time.Time
	counter   WarehouseCounter
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(app, version string, counter WarehouseCounter) *HealthHandler {
	return &HealthHandler{
		app:       app,
		version:   version,
		startedAt: time.Now(),
		counter:   counter,
	}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	count, err := h.counter.Count(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"app":            h.app,
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"warehouses":     count,
	})
}
