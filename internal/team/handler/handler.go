// Package handler provides HTTP handlers for team endpoints.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hacktopia/platform/internal/auth"
	"github.com/hacktopia/platform/internal/notify"
	"github.com/hacktopia/platform/internal/response"
	teamModel "github.com/hacktopia/platform/internal/team/model"
	"github.com/hacktopia/platform/internal/team/service"
)

// Notifier publishes team events without blocking the request.
type Notifier interface {
	Publish(ctx context.Context, event notify.Event)
}

// Handler handles HTTP requests for team endpoints.
type Handler struct {
	service  service.Service
	notifier Notifier
	strict   bool
	logger   *zap.SugaredLogger
}

// New creates a new team handler instance. In strict mode user ids in the
// request must match the bearer token's subject.
func New(svc service.Service, notifier Notifier, strict bool, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, notifier: notifier, strict: strict, logger: logger}
}

// CreateTeam handles POST /team/create.
func (h *Handler) CreateTeam(c *gin.Context) {
	var req teamModel.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FieldsRequired(c)
		return
	}

	team, err := h.service.CreateTeam(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), notify.NewEvent(notify.EventTeamCreated, gin.H{
		"teamId":   team.TeamID,
		"teamName": team.TeamName,
	}))

	response.Success(c, CodeTeamCreated, "Team created successfully", gin.H{"team": team})
}

// Join handles POST /team/join.
func (h *Handler) Join(c *gin.Context) {
	var req teamModel.JoinTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FieldsRequired(c)
		return
	}

	if h.strict && auth.UserID(c) != req.UserID {
		forbidden(c)
		return
	}

	request, err := h.service.Join(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.Success(c, CodeJoinRequestCreated, "Join request created successfully", gin.H{"joinRequest": request})
}

// Accept handles POST /team/accept.
func (h *Handler) Accept(c *gin.Context) {
	req, ok := h.bindDecision(c)
	if !ok {
		return
	}

	result, err := h.service.Accept(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, teamModel.ErrNotCaptain) {
			response.Fail(c, http.StatusBadRequest, response.CodeUnauthorized,
				"Only the team captain can accept join requests")
			return
		}
		writeError(c, h.logger, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), notify.NewEvent(notify.EventTeamJoined, gin.H{
		"teamId":   result.Member.TeamID,
		"teamName": result.TeamName,
		"userId":   result.Member.UserID,
	}))

	response.Success(c, CodeJoinRequestAccepted,
		"Join request accepted and user added to the team successfully", gin.H{
			"teamMember": result.Member,
			"teamName":   result.TeamName,
		})
}

// Reject handles POST /team/reject.
func (h *Handler) Reject(c *gin.Context) {
	req, ok := h.bindDecision(c)
	if !ok {
		return
	}

	request, err := h.service.Reject(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, teamModel.ErrNotCaptain) {
			response.Fail(c, http.StatusBadRequest, response.CodeUnauthorized,
				"Only the team captain can reject join requests")
			return
		}
		writeError(c, h.logger, err)
		return
	}

	response.Success(c, CodeJoinRequestRejected, "Join request rejected successfully", gin.H{"joinRequest": request})
}

func (h *Handler) bindDecision(c *gin.Context) (*teamModel.DecisionRequest, bool) {
	var req teamModel.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FieldsRequired(c)
		return nil, false
	}

	if h.strict && auth.UserID(c) != req.TeamCaptainUserID {
		forbidden(c)
		return nil, false
	}
	return &req, true
}

// CheckTeam handles GET /team/check-team?teamName=. Both outcomes are a 200.
func (h *Handler) CheckTeam(c *gin.Context) {
	available, err := h.service.TeamNameAvailable(c.Request.Context(), c.Query("teamName"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	if !available {
		response.Success(c, CodeTeamNameNotAvailable, "Team already exists", nil)
		return
	}
	response.Success(c, CodeTeamNameAvailable, "Team available", nil)
}

// ListTeams handles GET /team/list.
func (h *Handler) ListTeams(c *gin.Context) {
	teams, err := h.service.ListTeams(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.Success(c, CodeTeamListed, "Teams fetched successfully", gin.H{"teams": teams})
}

// MyTeam handles GET /team/my-team?userId=.
func (h *Handler) MyTeam(c *gin.Context) {
	userID := c.Query("userId")
	if h.strict && auth.UserID(c) != userID {
		forbidden(c)
		return
	}

	mine, err := h.service.MyTeam(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, teamModel.ErrTeamNotFound) {
			response.Fail(c, http.StatusBadRequest, CodeTeamNotFound, "Error. Team not found!")
			return
		}
		writeError(c, h.logger, err)
		return
	}

	response.Success(c, CodeTeamDetailsFetched, "Team fetched successfully", gin.H{
		"team":         mine.Team,
		"teamRequests": mine.Requests,
	})
}

// Details handles GET /team/details?teamId=.
func (h *Handler) Details(c *gin.Context) {
	team, err := h.service.Details(c.Request.Context(), c.Query("teamId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.Success(c, CodeTeamDetailsFetched, "Team fetched successfully", gin.H{"team": team})
}
