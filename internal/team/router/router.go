// Package router provides team module routes registration.
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hacktopia/platform/internal/notify"
	"github.com/hacktopia/platform/internal/team/handler"
	"github.com/hacktopia/platform/internal/team/repository"
	"github.com/hacktopia/platform/internal/team/service"
)

// Dependencies are the collaborators the team module needs.
type Dependencies struct {
	Notifier       handler.Notifier
	Hub            *notify.Hub
	KeepAlive      time.Duration
	StrictIdentity bool
	RequireAuth    gin.HandlerFunc
	RateLimit      gin.HandlerFunc
}

// RegisterRoutes registers team routes under api (/api/v1). The event stream
// is rate limited but not bearer-protected, since EventSource cannot send headers.
func RegisterRoutes(api *gin.RouterGroup, db *gorm.DB, deps Dependencies, logger *zap.SugaredLogger) {
	repo := repository.New(db, logger)
	svc := service.New(repo, db, deps.StrictIdentity, logger)
	h := handler.New(svc, deps.Notifier, deps.StrictIdentity, logger)

	api.GET("/team/events", deps.RateLimit, notify.Stream(deps.Hub, deps.KeepAlive, logger))

	team := api.Group("/team", deps.RateLimit, deps.RequireAuth)
	team.POST("/create", h.CreateTeam)
	team.POST("/join", h.Join)
	team.POST("/accept", h.Accept)
	team.POST("/reject", h.Reject)
	team.GET("/check-team", h.CheckTeam)
	team.GET("/list", h.ListTeams)
	team.GET("/my-team", h.MyTeam)
	team.GET("/details", h.Details)
}
