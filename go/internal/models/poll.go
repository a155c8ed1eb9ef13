package models

import (
	"time"

	"github.com/google/uuid"
)

// Poll is a league vote. Weighted polls count ballots by team role weight.
type Poll struct {
	ID        uuid.UUID  `json:"id"`
	Question  string     `json:"question"`
	Weighted  bool       `json:"weighted"`
	ClosesAt  *time.Time `json:"closes_at,omitempty"`
	Closed    bool       `json:"closed"`
	CreatedAt time.Time  `json:"created_at"`
}

// PollOption is one selectable answer on a poll.
type PollOption struct {
	ID     uuid.UUID `json:"id"`
	PollID uuid.UUID `json:"poll_id"`
	Label  string    `json:"label"`
}

// Vote is a single ballot. One ballot per user per poll.
type Vote struct {
	PollID   uuid.UUID `json:"poll_id"`
	OptionID uuid.UUID `json:"option_id"`
	UserID   uuid.UUID `json:"user_id"`
	CastAt   time.Time `json:"cast_at"`
}

// PollOptionResult is the tallied outcome for one option.
type PollOptionResult struct {
	OptionID uuid.UUID `json:"option_id"`
	Label    string    `json:"label"`
	Ballots  int       `json:"ballots"`
	Weight   int       `json:"weight"` // equals Ballots on unweighted polls
}
