// Package service provides business logic layer for statistics module.
package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/hacktopia/platform/internal/statistics/model"
	"github.com/hacktopia/platform/internal/statistics/repository"
)

// MaxStandingsLimit caps a single scoreboard page.
const MaxStandingsLimit = 100

// Service defines the interface for statistics business logic operations.
type Service interface {
	// GetTeamStandings returns the scoreboard. A limit outside
	// 1..MaxStandingsLimit is clamped to MaxStandingsLimit.
	GetTeamStandings(ctx context.Context, limit int) ([]model.TeamStanding, error)

	// GetJoinRequestStatistics returns platform-wide counts.
	GetJoinRequestStatistics(ctx context.Context) (*model.JoinRequestStatistics, error)
}

type service struct {
	repo   repository.Repository
	logger *zap.SugaredLogger
}

// New creates a new statistics service instance.
func New(repo repository.Repository, logger *zap.SugaredLogger) Service {
	return &service{
		repo:   repo,
		logger: logger,
	}
}

func (s *service) GetTeamStandings(ctx context.Context, limit int) ([]model.TeamStanding, error) {
	s.logger.Debugw("GetTeamStandings called", "limit", limit)

	if limit <= 0 || limit > MaxStandingsLimit {
		limit = MaxStandingsLimit
	}

	standings, err := s.repo.GetTeamStandings(ctx, limit)
	if err != nil {
		s.logger.Errorw("GetTeamStandings failed", "error", err)
		return nil, err
	}

	if standings == nil {
		standings = []model.TeamStanding{}
	}
	return standings, nil
}

func (s *service) GetJoinRequestStatistics(ctx context.Context) (*model.JoinRequestStatistics, error) {
	s.logger.Debugw("GetJoinRequestStatistics called")

	stats, err := s.repo.GetJoinRequestStatistics(ctx)
	if err != nil {
		s.logger.Errorw("GetJoinRequestStatistics failed", "error", err)
		return nil, err
	}

	if stats.TotalTeams > 0 {
		avg := float64(stats.TotalMembers) / float64(stats.TotalTeams)
		stats.AverageMembersPerTeam = math.Round(avg*100) / 100
	}
	return stats, nil
}
