// Package service provides business logic layer for team module.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	teamModel "github.com/hacktopia/platform/internal/team/model"
	"github.com/hacktopia/platform/internal/team/repository"
	userModel "github.com/hacktopia/platform/internal/user/model"
)

// Service defines the interface for team business logic operations.
type Service interface {
	// CreateTeam creates a team with its captain membership.
	CreateTeam(ctx context.Context, req *teamModel.CreateTeamRequest) (*teamModel.Team, error)

	// Join creates a pending join request.
	Join(ctx context.Context, req *teamModel.JoinTeamRequest) (*teamModel.JoinRequest, error)

	// Accept turns a join request into a membership and removes the request.
	Accept(ctx context.Context, req *teamModel.DecisionRequest) (*teamModel.AcceptResult, error)

	// Reject marks a join request rejected and keeps it.
	Reject(ctx context.Context, req *teamModel.DecisionRequest) (*teamModel.JoinRequest, error)

	// TeamNameAvailable reports whether no team uses the name.
	TeamNameAvailable(ctx context.Context, teamName string) (bool, error)

	// ListTeams returns all teams with members.
	ListTeams(ctx context.Context) ([]teamModel.Team, error)

	// MyTeam returns the user's team with its join requests.
	MyTeam(ctx context.Context, userID string) (*teamModel.MyTeam, error)

	// Details returns one team with members.
	Details(ctx context.Context, teamID string) (*teamModel.Team, error)
}

type service struct {
	repo   repository.Repository
	db     *gorm.DB
	strict bool
	logger *zap.SugaredLogger
}

// New creates a new team service instance. In strict mode a captain may only
// decide requests addressed to their own team.
func New(repo repository.Repository, db *gorm.DB, strict bool, logger *zap.SugaredLogger) Service {
	return &service{
		repo:   repo,
		db:     db,
		strict: strict,
		logger: logger,
	}
}

// CreateTeam creates the team and the captain membership in one transaction.
func (s *service) CreateTeam(ctx context.Context, req *teamModel.CreateTeamRequest) (*teamModel.Team, error) {
	team := &teamModel.Team{
		TeamName:    strings.TrimSpace(req.TeamName),
		TeamCaptain: strings.TrimSpace(req.TeamCaptain),
		TeamMotto:   strings.TrimSpace(req.TeamMotto),
		TeamCountry: strings.TrimSpace(req.TeamCountry),
	}
	s.logger.Debugw("CreateTeam called", "team_name", team.TeamName, "team_captain", team.TeamCaptain)

	if team.TeamName == "" || team.TeamCaptain == "" || team.TeamMotto == "" || team.TeamCountry == "" {
		return nil, teamModel.ErrMissingFields
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx, s.logger)

		if _, err := txRepo.GetByCaptain(ctx, team.TeamCaptain); err == nil {
			return teamModel.ErrCaptainHasTeam
		} else if !errors.Is(err, teamModel.ErrTeamNotFound) {
			return err
		}

		if _, err := txRepo.GetByName(ctx, team.TeamName); err == nil {
			return teamModel.ErrTeamNameTaken
		} else if !errors.Is(err, teamModel.ErrTeamNotFound) {
			return err
		}

		captain, err := txRepo.GetProfileByUserName(ctx, team.TeamCaptain)
		if err != nil {
			if errors.Is(err, userModel.ErrProfileNotFound) {
				return teamModel.ErrCaptainNotFound
			}
			return err
		}

		if err := txRepo.Create(ctx, team); err != nil {
			return err
		}

		member := teamModel.NewMember(team.TeamID, captain.UserID, teamModel.RoleCaptain)
		if err := txRepo.AddMember(ctx, member); err != nil {
			return err
		}
		member.Profile = captain
		team.TeamMembers = []teamModel.TeamMember{*member}
		return nil
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Errorw("CreateTeam failed", "team_name", team.TeamName, "error", err)
		}
		return nil, err
	}

	s.logger.Infow("CreateTeam completed", "team_id", team.TeamID, "team_name", team.TeamName)
	return team, nil
}

// Join creates a pending request after checking team, profile and pair uniqueness.
func (s *service) Join(ctx context.Context, req *teamModel.JoinTeamRequest) (*teamModel.JoinRequest, error) {
	s.logger.Debugw("Join called", "team_id", req.TeamID, "user_id", req.UserID)

	if req.TeamID == "" || req.UserID == "" {
		return nil, teamModel.ErrMissingFields
	}

	if _, err := s.repo.GetByID(ctx, req.TeamID); err != nil {
		return nil, err
	}

	exists, err := s.repo.ProfileExists(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, teamModel.ErrUserNotFound
	}

	pending, err := s.repo.JoinRequestExists(ctx, req.TeamID, req.UserID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, teamModel.ErrJoinRequestExists
	}

	request := &teamModel.JoinRequest{
		TeamID: req.TeamID,
		UserID: req.UserID,
		Status: teamModel.StatusPending,
	}
	if err := s.repo.CreateJoinRequest(ctx, request); err != nil {
		if !errors.Is(err, teamModel.ErrJoinRequestExists) {
			s.logger.Errorw("Join failed", "team_id", req.TeamID, "user_id", req.UserID, "error", err)
		}
		return nil, err
	}

	s.logger.Infow("Join completed", "request_id", request.ID, "team_id", req.TeamID, "user_id", req.UserID)
	return request, nil
}

// authorize checks that the acting user captains some team, then loads the
// request. In strict mode the captain must lead the request's team.
func (s *service) authorize(ctx context.Context, repo repository.Repository, req *teamModel.DecisionRequest) (*teamModel.JoinRequest, error) {
	if req.RequestID == "" || req.TeamCaptainUserID == "" {
		return nil, teamModel.ErrMissingFields
	}

	isCaptain, err := repo.IsCaptain(ctx, req.TeamCaptainUserID, "")
	if err != nil {
		return nil, err
	}
	if !isCaptain {
		return nil, teamModel.ErrNotCaptain
	}

	request, err := repo.GetJoinRequest(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}

	if s.strict {
		ownTeam, err := repo.IsCaptain(ctx, req.TeamCaptainUserID, request.TeamID)
		if err != nil {
			return nil, err
		}
		if !ownTeam {
			return nil, teamModel.ErrNotCaptain
		}
	}

	return request, nil
}

// Accept creates the membership and deletes the request in one transaction.
// A concurrent accept or delete of the same request rolls back with
// ErrJoinRequestNotFound or ErrMemberExists.
func (s *service) Accept(ctx context.Context, req *teamModel.DecisionRequest) (*teamModel.AcceptResult, error) {
	s.logger.Debugw("Accept called", "request_id", req.RequestID, "captain_user_id", req.TeamCaptainUserID)

	var result *teamModel.AcceptResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx, s.logger)

		request, err := s.authorize(ctx, txRepo, req)
		if err != nil {
			return err
		}

		member := teamModel.NewMember(request.TeamID, request.UserID, teamModel.RoleMember)
		if err := txRepo.AddMember(ctx, member); err != nil {
			return err
		}

		if err := txRepo.DeleteJoinRequest(ctx, request.ID); err != nil {
			return err
		}

		team, err := txRepo.GetByID(ctx, request.TeamID)
		if err != nil {
			return fmt.Errorf("load team of request: %w", err)
		}

		result = &teamModel.AcceptResult{Member: member, TeamName: team.TeamName}
		return nil
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Errorw("Accept failed", "request_id", req.RequestID, "error", err)
		}
		return nil, err
	}

	s.logger.Infow("Accept completed",
		"request_id", req.RequestID,
		"team_id", result.Member.TeamID,
		"user_id", result.Member.UserID,
	)
	return result, nil
}

// Reject marks the request rejected.
func (s *service) Reject(ctx context.Context, req *teamModel.DecisionRequest) (*teamModel.JoinRequest, error) {
	s.logger.Debugw("Reject called", "request_id", req.RequestID, "captain_user_id", req.TeamCaptainUserID)

	request, err := s.authorize(ctx, s.repo, req)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateJoinRequestStatus(ctx, request.ID, teamModel.StatusRejected)
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Errorw("Reject failed", "request_id", req.RequestID, "error", err)
		}
		return nil, err
	}

	s.logger.Infow("Reject completed", "request_id", req.RequestID)
	return updated, nil
}

// TeamNameAvailable reports whether the name is free.
func (s *service) TeamNameAvailable(ctx context.Context, teamName string) (bool, error) {
	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return false, teamModel.ErrMissingFields
	}

	_, err := s.repo.GetByName(ctx, teamName)
	if errors.Is(err, teamModel.ErrTeamNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// ListTeams returns all teams with members.
func (s *service) ListTeams(ctx context.Context) ([]teamModel.Team, error) {
	return s.repo.List(ctx)
}

// MyTeam returns the user's team and the requests addressed to it.
func (s *service) MyTeam(ctx context.Context, userID string) (*teamModel.MyTeam, error) {
	s.logger.Debugw("MyTeam called", "user_id", userID)

	if userID == "" {
		return nil, teamModel.ErrMissingFields
	}

	team, err := s.repo.GetByMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	requests, err := s.repo.ListJoinRequests(ctx, team.TeamID)
	if err != nil {
		return nil, err
	}

	return &teamModel.MyTeam{Team: team, Requests: requests}, nil
}

// Details returns one team with members.
func (s *service) Details(ctx context.Context, teamID string) (*teamModel.Team, error) {
	if teamID == "" {
		return nil, teamModel.ErrMissingFields
	}
	return s.repo.GetWithMembers(ctx, teamID)
}

var businessErrors = []error{
	teamModel.ErrMissingFields,
	teamModel.ErrTeamNotFound,
	teamModel.ErrUserNotFound,
	teamModel.ErrTeamNameTaken,
	teamModel.ErrCaptainHasTeam,
	teamModel.ErrCaptainNotFound,
	teamModel.ErrJoinRequestExists,
	teamModel.ErrJoinRequestNotFound,
	teamModel.ErrNotCaptain,
	teamModel.ErrMemberExists,
}

func isBusinessError(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
