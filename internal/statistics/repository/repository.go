// Package repository provides data access layer for statistics module.
package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hacktopia/platform/internal/statistics/model"
	teamModel "github.com/hacktopia/platform/internal/team/model"
)

// Repository defines the interface for statistics data access operations.
type Repository interface {
	// GetTeamStandings returns teams ordered by total member points.
	// A positive limit caps the number of rows.
	GetTeamStandings(ctx context.Context, limit int) ([]model.TeamStanding, error)

	// GetJoinRequestStatistics returns platform-wide team and request counts.
	GetJoinRequestStatistics(ctx context.Context) (*model.JoinRequestStatistics, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new statistics repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// GetTeamStandings returns teams ordered by total member points.
func (r *repository) GetTeamStandings(ctx context.Context, limit int) ([]model.TeamStanding, error) {
	r.logger.Debugw("GetTeamStandings called", "limit", limit)

	var standings []model.TeamStanding

	query := r.db.WithContext(ctx).
		Table("teams").
		Select(`
			teams.team_id,
			teams.team_name,
			teams.team_country,
			COALESCE(members.member_count, 0) AS member_count,
			COALESCE(members.total_points, 0) AS total_points,
			COALESCE(requests.pending_count, 0) AS pending_requests
		`).
		Joins(`
			LEFT JOIN (
				SELECT team_id, COUNT(*) AS member_count, SUM(user_points) AS total_points
				FROM team_members
				GROUP BY team_id
			) members ON members.team_id = teams.team_id
		`).
		Joins(`
			LEFT JOIN (
				SELECT team_id, COUNT(*) AS pending_count
				FROM join_requests
				WHERE status = ?
				GROUP BY team_id
			) requests ON requests.team_id = teams.team_id
		`, teamModel.StatusPending).
		Order("total_points DESC, member_count DESC, teams.team_name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Scan(&standings).Error; err != nil {
		r.logger.Errorw("GetTeamStandings database error", "error", err)
		return nil, err
	}

	if standings == nil {
		standings = []model.TeamStanding{}
	}

	r.logger.Debugw("GetTeamStandings completed", "count", len(standings))
	return standings, nil
}

// GetJoinRequestStatistics returns platform-wide team and request counts.
func (r *repository) GetJoinRequestStatistics(ctx context.Context) (*model.JoinRequestStatistics, error) {
	r.logger.Debugw("GetJoinRequestStatistics called")

	var result struct {
		TotalTeams       int64 `gorm:"column:total_teams"`
		TotalMembers     int64 `gorm:"column:total_members"`
		PendingRequests  int64 `gorm:"column:pending_requests"`
		RejectedRequests int64 `gorm:"column:rejected_requests"`
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM teams) AS total_teams,
			(SELECT COUNT(*) FROM team_members) AS total_members,
			(SELECT COUNT(*) FROM join_requests WHERE status = ?) AS pending_requests,
			(SELECT COUNT(*) FROM join_requests WHERE status = ?) AS rejected_requests
	`, teamModel.StatusPending, teamModel.StatusRejected).Scan(&result).Error

	if err != nil {
		r.logger.Errorw("GetJoinRequestStatistics database error", "error", err)
		return nil, err
	}

	stats := &model.JoinRequestStatistics{
		TotalTeams:       int(result.TotalTeams),
		TotalMembers:     int(result.TotalMembers),
		PendingRequests:  int(result.PendingRequests),
		RejectedRequests: int(result.RejectedRequests),
	}

	r.logger.Debugw("GetJoinRequestStatistics completed", "total_teams", stats.TotalTeams)
	return stats, nil
}
