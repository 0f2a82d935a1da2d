// Package model defines teams, memberships and join requests.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	userModel "github.com/hacktopia/platform/internal/user/model"
)

// Role is the position of a member within a team.
type Role string

// Member roles.
const (
	RoleCaptain Role = "captain"
	RoleMember  Role = "member"
)

// Team represents a team entity in the system.
// Matches the teams table schema.
type Team struct {
	TeamID      string       `gorm:"primaryKey;column:team_id;type:varchar(36)"                               json:"teamId"`
	TeamName    string       `gorm:"column:team_name;type:varchar(255);not null;uniqueIndex:idx_teams_team_name" json:"teamName"`
	TeamCaptain string       `gorm:"column:team_captain;type:varchar(255);not null;index:idx_teams_team_captain" json:"teamCaptain"`
	TeamMotto   string       `gorm:"column:team_motto;type:varchar(512);not null"                             json:"teamMotto"`
	TeamCountry string       `gorm:"column:team_country;type:varchar(128);not null"                           json:"teamCountry"`
	CreatedAt   time.Time    `gorm:"column:created_at;not null"                                               json:"createdAt"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;not null"                                               json:"-"`
	TeamMembers []TeamMember `gorm:"foreignKey:TeamID;references:TeamID"                                      json:"teamMembers"`
}

// TableName specifies the table name for GORM.
func (Team) TableName() string {
	return "teams"
}

// BeforeCreate assigns a UUID when none is set.
func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.TeamID == "" {
		t.TeamID = uuid.NewString()
	}
	return nil
}

// TeamMember is a user's membership in a team. Members are never removed.
type TeamMember struct {
	TeamID                 string             `gorm:"primaryKey;column:team_id;type:varchar(36)"                json:"teamId"`
	UserID                 string             `gorm:"primaryKey;column:user_id;type:varchar(36);index"          json:"userId"`
	UserRole               Role               `gorm:"column:user_role;type:varchar(16);not null"                json:"userRole"`
	UserPoints             int                `gorm:"column:user_points;not null;default:0"                     json:"userPoints"`
	UserChallengesAnswered []string           `gorm:"column:user_challenges_answered;type:text;serializer:json" json:"userChallengesAnswered"`
	CreatedAt              time.Time          `gorm:"column:created_at;not null"                                json:"-"`
	Profile                *userModel.Profile `gorm:"foreignKey:UserID;references:UserID"                       json:"profile,omitempty"`
}

// TableName specifies the table name for GORM.
func (TeamMember) TableName() string {
	return "team_members"
}

// NewMember returns a membership with no points and no answered challenges.
func NewMember(teamID, userID string, role Role) *TeamMember {
	return &TeamMember{
		TeamID:                 teamID,
		UserID:                 userID,
		UserRole:               role,
		UserPoints:             0,
		UserChallengesAnswered: []string{},
	}
}

// RequestStatus is the persisted state of a join request. An accepted
// request is deleted, so "accepted" never reaches storage.
type RequestStatus string

// Persisted join request states.
const (
	StatusPending  RequestStatus = "pending"
	StatusRejected RequestStatus = "rejected"
)

// Valid reports whether the status may be stored.
func (s RequestStatus) Valid() bool {
	return s == StatusPending || s == StatusRejected
}

// JoinRequest is a user's request to join a team. At most one exists per
// (team, user) pair regardless of status.
type JoinRequest struct {
	ID        string             `gorm:"primaryKey;column:id;type:varchar(36)"                                        json:"id"`
	TeamID    string             `gorm:"column:team_id;type:varchar(36);not null;uniqueIndex:idx_join_requests_team_user" json:"teamId"`
	UserID    string             `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:idx_join_requests_team_user" json:"userId"`
	Status    RequestStatus      `gorm:"column:status;type:varchar(16);not null"                                      json:"status"`
	CreatedAt time.Time          `gorm:"column:created_at;not null"                                                   json:"createdAt"`
	UpdatedAt time.Time          `gorm:"column:updated_at;not null"                                                   json:"-"`
	Team      *Team              `gorm:"foreignKey:TeamID;references:TeamID"                                          json:"team,omitempty"`
	Profile   *userModel.Profile `gorm:"foreignKey:UserID;references:UserID"                                          json:"profile,omitempty"`
}

// TableName specifies the table name for GORM.
func (JoinRequest) TableName() string {
	return "join_requests"
}

// BeforeCreate assigns a UUID when none is set.
func (j *JoinRequest) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave rejects states that may not be stored.
func (j *JoinRequest) BeforeSave(tx *gorm.DB) error {
	if !j.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}
