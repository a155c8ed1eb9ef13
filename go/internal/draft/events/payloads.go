package events

import (
	"time"
)

// Event payload types shared between the draft, outbox, and gateway packages

// Event type names as they appear on the wire.
const (
	TypeDraftStarted   = "DraftStarted"
	TypeDraftPaused    = "DraftPaused"
	TypeDraftResumed   = "DraftResumed"
	TypeDraftCompleted = "DraftCompleted"
	TypeOnTheClock     = "OnTheClock"
	TypeOnDeck         = "OnDeck"
	TypeNewPick        = "NewPick"
	TypePickSkipped    = "PickSkipped"
)

// DraftStartedPayload is the payload for a DraftStarted event
type DraftStartedPayload struct {
	SessionID   string    `json:"session_id"`
	SeasonID    string    `json:"season_id"`
	StartedAt   time.Time `json:"started_at"`
	TotalRounds int       `json:"total_rounds"`
	TotalTeams  int       `json:"total_teams"`
}

// DraftPausedPayload is the payload for a DraftPaused event
type DraftPausedPayload struct {
	SessionID string    `json:"session_id"`
	PausedAt  time.Time `json:"paused_at"`
	Reason    string    `json:"reason"`
}

// DraftResumedPayload is the payload for a DraftResumed event
type DraftResumedPayload struct {
	SessionID string    `json:"session_id"`
	ResumedAt time.Time `json:"resumed_at"`
}

// DraftCompletedPayload is the payload for a DraftCompleted event
type DraftCompletedPayload struct {
	SessionID   string    `json:"session_id"`
	CompletedAt time.Time `json:"completed_at"`
	TotalPicks  int       `json:"total_picks"`
	Reason      string    `json:"reason"`
}

// OnTheClockPayload notifies a team that its pick timer has started
type OnTheClockPayload struct {
	SessionID string    `json:"session_id"`
	TeamID    string    `json:"team_id"`
	Round     int       `json:"round"`
	Deadline  time.Time `json:"deadline"`
}

// OnDeckPayload notifies the team picking next
type OnDeckPayload struct {
	SessionID string `json:"session_id"`
	TeamID    string `json:"team_id"`
	Round     int    `json:"round"`
}

// NewPickPayload is broadcast on every successful pick, human or auto
type NewPickPayload struct {
	SessionID  string    `json:"session_id"`
	PickID     string    `json:"pick_id"`
	TeamID     string    `json:"team_id"`
	CardName   string    `json:"card_name"`
	PickNumber int       `json:"pick_number"`
	AutoDraft  bool      `json:"auto_draft"`
	DraftedAt  time.Time `json:"drafted_at"`
}

// PickSkippedPayload is broadcast when a lapsed turn produced no legal pick
type PickSkippedPayload struct {
	SessionID        string    `json:"session_id"`
	TeamID           string    `json:"team_id"`
	PickNumber       int       `json:"pick_number"`
	ConsecutiveSkips int       `json:"consecutive_skipped_picks"`
	SkippedAt        time.Time `json:"skipped_at"`
}
