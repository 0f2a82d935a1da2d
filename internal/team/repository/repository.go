// Package repository provides data access layer for team module.
package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hacktopia/platform/internal/database/database"
	teamModel "github.com/hacktopia/platform/internal/team/model"
	userModel "github.com/hacktopia/platform/internal/user/model"
)

// Repository defines the interface for team data access operations.
type Repository interface {
	// GetByID finds team by team_id.
	GetByID(ctx context.Context, teamID string) (*teamModel.Team, error)

	// GetByName finds team by team_name.
	GetByName(ctx context.Context, teamName string) (*teamModel.Team, error)

	// GetByCaptain finds the team created by the captain username.
	GetByCaptain(ctx context.Context, captain string) (*teamModel.Team, error)

	// GetWithMembers returns a team with members and their profiles.
	GetWithMembers(ctx context.Context, teamID string) (*teamModel.Team, error)

	// GetByMember returns the team containing the user, with members.
	GetByMember(ctx context.Context, userID string) (*teamModel.Team, error)

	// List returns all teams with members, oldest first.
	List(ctx context.Context) ([]teamModel.Team, error)

	// Create creates a new team.
	Create(ctx context.Context, team *teamModel.Team) error

	// AddMember creates a membership.
	AddMember(ctx context.Context, member *teamModel.TeamMember) error

	// IsCaptain reports whether the user captains teamID, or any team when teamID is empty.
	IsCaptain(ctx context.Context, userID, teamID string) (bool, error)

	// GetProfileByUserName resolves a username to its profile.
	GetProfileByUserName(ctx context.Context, userName string) (*userModel.Profile, error)

	// ProfileExists reports whether the user has a profile.
	ProfileExists(ctx context.Context, userID string) (bool, error)

	// GetJoinRequest finds a join request by id.
	GetJoinRequest(ctx context.Context, requestID string) (*teamModel.JoinRequest, error)

	// JoinRequestExists reports whether any request exists for the pair.
	JoinRequestExists(ctx context.Context, teamID, userID string) (bool, error)

	// CreateJoinRequest inserts a join request.
	CreateJoinRequest(ctx context.Context, request *teamModel.JoinRequest) error

	// DeleteJoinRequest removes a join request.
	DeleteJoinRequest(ctx context.Context, requestID string) error

	// UpdateJoinRequestStatus sets the status and returns the updated request.
	UpdateJoinRequestStatus(ctx context.Context, requestID string, status teamModel.RequestStatus) (*teamModel.JoinRequest, error)

	// ListJoinRequests returns a team's requests with team and requester profile.
	ListJoinRequests(ctx context.Context, teamID string) ([]teamModel.JoinRequest, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new team repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

func (r *repository) findTeam(ctx context.Context, op string, query *gorm.DB, key string) (*teamModel.Team, error) {
	var team teamModel.Team
	if err := query.WithContext(ctx).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Debugw(op+" team not found", "key", key)
			return nil, teamModel.ErrTeamNotFound
		}
		r.logger.Errorw(op+" database error", "key", key, "error", err)
		return nil, err
	}
	return &team, nil
}

// withMembers preloads members ordered by join time, with their public profile.
func withMembers(db *gorm.DB) *gorm.DB {
	return db.
		Preload("TeamMembers", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("team_members.created_at ASC")
		}).
		Preload("TeamMembers.Profile")
}

// GetByID finds team by team_id.
func (r *repository) GetByID(ctx context.Context, teamID string) (*teamModel.Team, error) {
	r.logger.Debugw("GetByID called", "team_id", teamID)
	return r.findTeam(ctx, "GetByID", r.db.Where("team_id = ?", teamID), teamID)
}

// GetByName finds team by team_name.
func (r *repository) GetByName(ctx context.Context, teamName string) (*teamModel.Team, error) {
	r.logger.Debugw("GetByName called", "team_name", teamName)
	return r.findTeam(ctx, "GetByName", r.db.Where("team_name = ?", teamName), teamName)
}

// GetByCaptain finds team by team_captain.
func (r *repository) GetByCaptain(ctx context.Context, captain string) (*teamModel.Team, error) {
	r.logger.Debugw("GetByCaptain called", "team_captain", captain)
	return r.findTeam(ctx, "GetByCaptain", r.db.Where("team_captain = ?", captain), captain)
}

// GetWithMembers returns a team with members.
func (r *repository) GetWithMembers(ctx context.Context, teamID string) (*teamModel.Team, error) {
	r.logger.Debugw("GetWithMembers called", "team_id", teamID)
	return r.findTeam(ctx, "GetWithMembers", withMembers(r.db).Where("team_id = ?", teamID), teamID)
}

// GetByMember returns the first team (by creation) the user belongs to.
func (r *repository) GetByMember(ctx context.Context, userID string) (*teamModel.Team, error) {
	r.logger.Debugw("GetByMember called", "user_id", userID)

	query := withMembers(r.db).
		Where("team_id IN (?)", r.db.Model(&teamModel.TeamMember{}).Select("team_id").Where("user_id = ?", userID)).
		Order("created_at ASC")
	return r.findTeam(ctx, "GetByMember", query, userID)
}

// List returns all teams with members. No pagination.
func (r *repository) List(ctx context.Context) ([]teamModel.Team, error) {
	r.logger.Debugw("List called")

	var teams []teamModel.Team
	if err := withMembers(r.db.WithContext(ctx)).Order("created_at ASC").Find(&teams).Error; err != nil {
		r.logger.Errorw("List database error", "error", err)
		return nil, err
	}

	if teams == nil {
		teams = []teamModel.Team{}
	}

	r.logger.Debugw("List completed", "count", len(teams))
	return teams, nil
}

// Create creates a new team without touching associations.
func (r *repository) Create(ctx context.Context, team *teamModel.Team) error {
	r.logger.Debugw("Create called", "team_name", team.TeamName, "team_captain", team.TeamCaptain)

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(team).Error; err != nil {
		if database.IsDuplicateError(err) {
			r.logger.Debugw("Create team name taken", "team_name", team.TeamName)
			return teamModel.ErrTeamNameTaken
		}
		r.logger.Errorw("Create database error", "team_name", team.TeamName, "error", err)
		return err
	}

	r.logger.Infow("team created", "team_id", team.TeamID, "team_name", team.TeamName)
	return nil
}

// AddMember creates a membership.
func (r *repository) AddMember(ctx context.Context, member *teamModel.TeamMember) error {
	r.logger.Debugw("AddMember called", "team_id", member.TeamID, "user_id", member.UserID, "role", member.UserRole)

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(member).Error; err != nil {
		if database.IsDuplicateError(err) {
			r.logger.Debugw("AddMember member exists", "team_id", member.TeamID, "user_id", member.UserID)
			return teamModel.ErrMemberExists
		}
		r.logger.Errorw("AddMember database error", "team_id", member.TeamID, "user_id", member.UserID, "error", err)
		return err
	}

	return nil
}

// IsCaptain checks for a captain membership.
func (r *repository) IsCaptain(ctx context.Context, userID, teamID string) (bool, error) {
	r.logger.Debugw("IsCaptain called", "user_id", userID, "team_id", teamID)

	query := r.db.WithContext(ctx).
		Model(&teamModel.TeamMember{}).
		Where("user_id = ? AND user_role = ?", userID, teamModel.RoleCaptain)
	if teamID != "" {
		query = query.Where("team_id = ?", teamID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		r.logger.Errorw("IsCaptain database error", "user_id", userID, "error", err)
		return false, err
	}
	return count > 0, nil
}

// GetProfileByUserName resolves a username.
func (r *repository) GetProfileByUserName(ctx context.Context, userName string) (*userModel.Profile, error) {
	r.logger.Debugw("GetProfileByUserName called", "user_name", userName)

	var profile userModel.Profile
	err := r.db.WithContext(ctx).Where("user_name = ?", userName).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userModel.ErrProfileNotFound
		}
		r.logger.Errorw("GetProfileByUserName database error", "user_name", userName, "error", err)
		return nil, err
	}
	return &profile, nil
}

// ProfileExists reports whether the user has a profile.
func (r *repository) ProfileExists(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userModel.Profile{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		r.logger.Errorw("ProfileExists database error", "user_id", userID, "error", err)
		return false, err
	}
	return count > 0, nil
}

// GetJoinRequest finds a join request by id.
func (r *repository) GetJoinRequest(ctx context.Context, requestID string) (*teamModel.JoinRequest, error) {
	r.logger.Debugw("GetJoinRequest called", "request_id", requestID)

	var request teamModel.JoinRequest
	err := r.db.WithContext(ctx).Where("id = ?", requestID).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, teamModel.ErrJoinRequestNotFound
		}
		r.logger.Errorw("GetJoinRequest database error", "request_id", requestID, "error", err)
		return nil, err
	}
	return &request, nil
}

// JoinRequestExists checks the pair regardless of status.
func (r *repository) JoinRequestExists(ctx context.Context, teamID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&teamModel.JoinRequest{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("JoinRequestExists database error", "team_id", teamID, "user_id", userID, "error", err)
		return false, err
	}
	return count > 0, nil
}

// CreateJoinRequest inserts a join request. The unique (team, user) index
// turns a concurrent duplicate into ErrJoinRequestExists.
func (r *repository) CreateJoinRequest(ctx context.Context, request *teamModel.JoinRequest) error {
	r.logger.Debugw("CreateJoinRequest called", "team_id", request.TeamID, "user_id", request.UserID)

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(request).Error; err != nil {
		if database.IsDuplicateError(err) {
			return teamModel.ErrJoinRequestExists
		}
		r.logger.Errorw("CreateJoinRequest database error", "team_id", request.TeamID, "user_id", request.UserID, "error", err)
		return err
	}
	return nil
}

// DeleteJoinRequest removes a join request.
func (r *repository) DeleteJoinRequest(ctx context.Context, requestID string) error {
	r.logger.Debugw("DeleteJoinRequest called", "request_id", requestID)

	result := r.db.WithContext(ctx).Where("id = ?", requestID).Delete(&teamModel.JoinRequest{})
	if result.Error != nil {
		r.logger.Errorw("DeleteJoinRequest database error", "request_id", requestID, "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return teamModel.ErrJoinRequestNotFound
	}
	return nil
}

// UpdateJoinRequestStatus sets the status of a join request.
func (r *repository) UpdateJoinRequestStatus(
	ctx context.Context,
	requestID string,
	status teamModel.RequestStatus,
) (*teamModel.JoinRequest, error) {
	r.logger.Infow("UpdateJoinRequestStatus called", "request_id", requestID, "status", status)

	if !status.Valid() {
		return nil, teamModel.ErrInvalidStatus
	}

	result := r.db.WithContext(ctx).
		Model(&teamModel.JoinRequest{}).
		Where("id = ?", requestID).
		UpdateColumns(map[string]any{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		r.logger.Errorw("UpdateJoinRequestStatus database error", "request_id", requestID, "error", result.Error)
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, teamModel.ErrJoinRequestNotFound
	}

	return r.GetJoinRequest(ctx, requestID)
}

// ListJoinRequests returns all requests addressed to a team.
func (r *repository) ListJoinRequests(ctx context.Context, teamID string) ([]teamModel.JoinRequest, error) {
	r.logger.Debugw("ListJoinRequests called", "team_id", teamID)

	var requests []teamModel.JoinRequest
	err := r.db.WithContext(ctx).
		Preload("Team").
		Preload("Profile").
		Where("team_id = ?", teamID).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		r.logger.Errorw("ListJoinRequests database error", "team_id", teamID, "error", err)
		return nil, err
	}

	if requests == nil {
		requests = []teamModel.JoinRequest{}
	}
	return requests, nil
}
