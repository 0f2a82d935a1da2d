// Package router provides statistics module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hacktopia/platform/internal/statistics/handler"
	"github.com/hacktopia/platform/internal/statistics/repository"
	"github.com/hacktopia/platform/internal/statistics/service"
)

// RegisterRoutes registers statistics routes under api; middleware guards the group.
func RegisterRoutes(api *gin.RouterGroup, db *gorm.DB, logger *zap.SugaredLogger, middleware ...gin.HandlerFunc) {
	repo := repository.New(db, logger)
	svc := service.New(repo, logger)
	h := handler.New(svc, logger)

	group := api.Group("/statistics", middleware...)
	group.GET("/teams", h.GetTeamStandings)
	group.GET("/join-requests", h.GetJoinRequestStatistics)
}
