// Package model provides data transfer objects for statistics module.
package model

// TeamStanding is one row of the scoreboard.
type TeamStanding struct {
	TeamID          string `json:"teamId"`
	TeamName        string `json:"teamName"`
	TeamCountry     string `json:"teamCountry"`
	MemberCount     int    `json:"memberCount"`
	TotalPoints     int    `json:"totalPoints"`
	PendingRequests int    `json:"pendingRequests"`
}

// JoinRequestStatistics summarises the join request workflow.
type JoinRequestStatistics struct {
	TotalTeams            int     `json:"totalTeams"`
	TotalMembers          int     `json:"totalMembers"`
	AverageMembersPerTeam float64 `json:"averageMembersPerTeam"`
	PendingRequests       int     `json:"pendingRequests"`
	RejectedRequests      int     `json:"rejectedRequests"`
}
