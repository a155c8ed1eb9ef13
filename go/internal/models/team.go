package models

import (
	"time"

	"github.com/google/uuid"
)

// TeamRole defines a member's role within a team.
type TeamRole string

const (
	TeamRoleCaptain   TeamRole = "CAPTAIN"
	TeamRoleCoCaptain TeamRole = "CO_CAPTAIN"
	TeamRoleMember    TeamRole = "MEMBER"
)

// VoteWeight returns the ballot weight carried by this role in weighted polls.
func (r TeamRole) VoteWeight() int {
	switch r {
	case TeamRoleCaptain:
		return 3
	case TeamRoleCoCaptain:
		return 2
	default:
		return 1
	}
}

// Team represents a league team.
type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamMember links a user to a team with a role.
type TeamMember struct {
	TeamID   uuid.UUID `json:"team_id"`
	UserID   uuid.UUID `json:"user_id"`
	Role     TeamRole  `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}
