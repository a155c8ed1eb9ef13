package pick

import (
	"github.com/google/uuid"
)

// AddDraftPickRequest claims one card instance for a team.
type AddDraftPickRequest struct {
	SessionID  uuid.UUID  `json:"session_id"`
	TeamID     uuid.UUID  `json:"team_id"`
	CardPoolID uuid.UUID  `json:"card_pool_id"`
	DraftedBy  *uuid.UUID `json:"drafted_by,omitempty"` // nil on the auto-draft path
}
