package vote

import (
	"time"

	"github.com/google/uuid"
)

// CreatePollRequest carries a new poll and its options
type CreatePollRequest struct {
	Question string     `json:"question"`
	Options  []string   `json:"options"`
	Weighted bool       `json:"weighted"`
	ClosesAt *time.Time `json:"closes_at,omitempty"`
}

// CastVoteRequest is one ballot
type CastVoteRequest struct {
	PollID   uuid.UUID `json:"poll_id"`
	OptionID uuid.UUID `json:"option_id"`
}
