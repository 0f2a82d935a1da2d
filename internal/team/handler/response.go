package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hacktopia/platform/internal/response"
	teamModel "github.com/hacktopia/platform/internal/team/model"
)

// Response codes of the team endpoints.
const (
	CodeTeamCreated           = "TEAM_CREATED"
	CodeTeamNotCreated        = "TEAM_NOT_CREATED"
	CodeTeamNameAvailable     = "TEAM_NAME_AVAILABLE"
	CodeTeamNameNotAvailable  = "TEAM_NAME_NOT_AVAILABLE"
	CodeTeamNotFound          = "TEAM_NOT_FOUND"
	CodeTeamListed            = "TEAM_LISTED"
	CodeTeamDetailsFetched    = "TEAM_DETAILS_FETCHED"
	CodeJoinRequestCreated    = "JOIN_REQUEST_CREATED"
	CodeJoinRequestExists     = "JOIN_REQUEST_EXISTS"
	CodeJoinRequestNotCreated = "JOIN_REQUEST_NOT_CREATED"
	CodeJoinRequestNotFound   = "JOIN_REQUEST_NOT_FOUND"
	CodeJoinRequestAccepted   = "JOIN_REQUEST_ACCEPTED"
	CodeJoinRequestRejected   = "JOIN_REQUEST_REJECTED"
)

type errorMapping struct {
	err     error
	code    string
	message string
}

// Every business failure of the team endpoints is a 400.
var errorMappings = []errorMapping{
	{teamModel.ErrMissingFields, response.CodeAllFieldsRequired, "Please enter all fields"},
	{teamModel.ErrCaptainHasTeam, CodeTeamNotCreated, "Team Captain has already created a team"},
	{teamModel.ErrTeamNameTaken, CodeTeamNameNotAvailable, "Team already exists"},
	{teamModel.ErrCaptainNotFound, CodeTeamNotCreated, "Team Captain not found"},
	{teamModel.ErrTeamNotFound, CodeTeamNotFound, "Team not found"},
	{teamModel.ErrUserNotFound, CodeTeamNotFound, "User not found"},
	{teamModel.ErrJoinRequestExists, CodeJoinRequestExists, "Join request already exists"},
	{teamModel.ErrJoinRequestNotFound, CodeJoinRequestNotFound, "Join request not found"},
	{teamModel.ErrNotCaptain, response.CodeUnauthorized, "Only the team captain can decide join requests"},
	{teamModel.ErrMemberExists, CodeTeamNotCreated, "Error. Team member not created!"},
	{teamModel.ErrInvalidStatus, CodeJoinRequestNotCreated, "Error. Join request not created!"},
}

// writeError maps a service error to its envelope. Unknown errors are logged
// and answered with a generic 500.
func writeError(c *gin.Context, logger *zap.SugaredLogger, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			response.Fail(c, http.StatusBadRequest, m.code, m.message)
			return
		}
	}

	logger.Errorw("request failed", "path", c.FullPath(), "error", err)
	response.Internal(c)
}

func forbidden(c *gin.Context) {
	response.Fail(c, http.StatusForbidden, response.CodeForbidden, "Forbidden")
}
