// Package handler provides HTTP handlers for statistics endpoints.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hacktopia/platform/internal/response"
	"github.com/hacktopia/platform/internal/statistics/service"
)

// Response codes.
const (
	CodeStandingsFetched  = "STANDINGS_FETCHED"
	CodeStatisticsFetched = "STATISTICS_FETCHED"
)

// Handler handles HTTP requests for statistics endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new statistics handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// GetTeamStandings handles GET /statistics/teams?limit=N.
func (h *Handler) GetTeamStandings(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.FieldsRequired(c)
			return
		}
		limit = n
	}

	standings, err := h.service.GetTeamStandings(c.Request.Context(), limit)
	if err != nil {
		h.logger.Errorw("error getting team standings", "error", err)
		response.Internal(c)
		return
	}

	response.Success(c, CodeStandingsFetched, "Standings fetched", gin.H{
		"standings": standings,
		"total":     len(standings),
	})
}

// GetJoinRequestStatistics handles GET /statistics/join-requests.
func (h *Handler) GetJoinRequestStatistics(c *gin.Context) {
	stats, err := h.service.GetJoinRequestStatistics(c.Request.Context())
	if err != nil {
		h.logger.Errorw("error getting join request statistics", "error", err)
		response.Internal(c)
		return
	}

	response.Success(c, CodeStatisticsFetched, "Statistics fetched", gin.H{
		"statistics": stats,
	})
}
