package model

// CreateTeamRequest is the body of POST /team/create.
type CreateTeamRequest struct {
	TeamName    string `json:"teamName"    binding:"required"`
	TeamCaptain string `json:"teamCaptain" binding:"required"`
	TeamMotto   string `json:"teamMotto"   binding:"required"`
	TeamCountry string `json:"teamCountry" binding:"required"`
}

// JoinTeamRequest is the body of POST /team/join.
type JoinTeamRequest struct {
	TeamID string `json:"teamId" binding:"required"`
	UserID string `json:"userId" binding:"required"`
}

// DecisionRequest is the body of POST /team/accept and /team/reject.
type DecisionRequest struct {
	RequestID         string `json:"requestId"         binding:"required"`
	TeamCaptainUserID string `json:"teamCaptainUserId" binding:"required"`
}

// AcceptResult is the membership created by accepting a join request.
type AcceptResult struct {
	Member   *TeamMember
	TeamName string
}

// MyTeam is a member's team with the join requests addressed to it.
type MyTeam struct {
	Team     *Team
	Requests []JoinRequest
}
