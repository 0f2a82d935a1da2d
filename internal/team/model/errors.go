package model

import "errors"

var (
	// ErrMissingFields indicates that a required input was empty.
	ErrMissingFields = errors.New("all fields are required")
	// ErrTeamNotFound indicates that the team does not exist.
	ErrTeamNotFound = errors.New("team not found")
	// ErrUserNotFound indicates that the joining user has no profile.
	ErrUserNotFound = errors.New("user not found")
	// ErrTeamNameTaken indicates that another team uses the name.
	ErrTeamNameTaken = errors.New("team name not available")
	// ErrCaptainHasTeam indicates that the captain already created a team.
	ErrCaptainHasTeam = errors.New("team captain has already created a team")
	// ErrCaptainNotFound indicates that no profile has the captain's username.
	ErrCaptainNotFound = errors.New("team captain not found")
	// ErrJoinRequestExists indicates a request for the same team and user.
	ErrJoinRequestExists = errors.New("join request already exists")
	// ErrJoinRequestNotFound indicates that the join request does not exist.
	ErrJoinRequestNotFound = errors.New("join request not found")
	// ErrNotCaptain indicates that the acting user may not decide join requests.
	ErrNotCaptain = errors.New("only the team captain can decide join requests")
	// ErrMemberExists indicates that the user is already a member of the team.
	ErrMemberExists = errors.New("team member already exists")
	// ErrInvalidStatus indicates an attempt to store a transient status.
	ErrInvalidStatus = errors.New("invalid join request status")
)
