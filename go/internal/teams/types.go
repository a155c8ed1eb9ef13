package teams

import (
	"github.com/google/uuid"

	"github.com/draftforge/cubeleague/go/internal/models"
)

// CreateTeamRequest represents the data needed to create a new team
type CreateTeamRequest struct {
	Name string `json:"name"`
}

// AddMemberRequest assigns a user to a team with a role
type AddMemberRequest struct {
	TeamID uuid.UUID       `json:"team_id"`
	UserID uuid.UUID       `json:"user_id"`
	Role   models.TeamRole `json:"role"`
}

// TeamWithMembers is a team plus its roster, for UI consumption
type TeamWithMembers struct {
	Team    models.Team         `json:"team"`
	Members []models.TeamMember `json:"members"`
}
