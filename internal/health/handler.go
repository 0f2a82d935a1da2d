// Package health provides health check endpoint handler.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hacktopia/platform/internal/database/database"
)

const (
	statusOK        = "ok"
	statusUnhealthy = "unhealthy"
	statusDown      = "down"
	checkTimeout    = 5 * time.Second
)

// Handler handles health check requests.
type Handler struct {
	db     *gorm.DB
	redis  *redis.Client
	logger *zap.SugaredLogger
}

// New creates a new health handler instance. A nil redis client skips the Redis check.
func New(db *gorm.DB, redisClient *redis.Client, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}
}

// Response represents health check response.
type Response struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	Connections *Connections      `json:"connections,omitempty"`
}

// Connections reports the database pool; it is omitted when the database is down.
type Connections struct {
	Open  int `json:"open"`
	InUse int `json:"inUse"`
	Idle  int `json:"idle"`
}

// Check handles GET /health request.
func (h *Handler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	resp := Response{Status: statusOK, Checks: map[string]string{"database": statusOK}}

	if err := database.HealthCheck(ctx, h.db); err != nil {
		h.logger.Warnw("database health check failed", "error", err)
		resp.Status = statusUnhealthy
		resp.Checks["database"] = statusDown
	} else if stats, err := database.GetStats(h.db); err == nil {
		resp.Connections = &Connections{
			Open:  stats.OpenConnections,
			InUse: stats.InUse,
			Idle:  stats.Idle,
		}
	}

	if h.redis != nil {
		resp.Checks["redis"] = statusOK
		if err := h.redis.Ping(ctx).Err(); err != nil {
			h.logger.Warnw("redis health check failed", "error", err)
			resp.Status = statusUnhealthy
			resp.Checks["redis"] = statusDown
		}
	}

	if resp.Status != statusOK {
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
