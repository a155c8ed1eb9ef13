package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftSessionStatus defines the lifecycle state of a draft session.
type DraftSessionStatus string

const (
	DraftStatusScheduled DraftSessionStatus = "SCHEDULED"
	DraftStatusActive    DraftSessionStatus = "ACTIVE"
	DraftStatusPaused    DraftSessionStatus = "PAUSED"
	DraftStatusCompleted DraftSessionStatus = "COMPLETED"
)

// DraftSession represents one season's timed draft. At most one non-completed
// session exists per season, enforced by a partial unique index.
type DraftSession struct {
	ID                   uuid.UUID          `json:"id"`
	SeasonID             uuid.UUID          `json:"season_id"`
	Status               DraftSessionStatus `json:"status"`
	TotalRounds          int                `json:"total_rounds"`
	HoursPerPick         float64            `json:"hours_per_pick"`
	StartTime            time.Time          `json:"start_time"`
	EndTime              *time.Time         `json:"end_time,omitempty"`
	CurrentPickDeadline  *time.Time         `json:"current_pick_deadline,omitempty"`
	CurrentOnClockTeamID *uuid.UUID         `json:"current_on_clock_team_id,omitempty"`
	ConsecutiveSkips     int                `json:"consecutive_skipped_picks"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// PickDuration returns the per-pick timer length.
func (s *DraftSession) PickDuration() time.Duration {
	return time.Duration(s.HoursPerPick * float64(time.Hour))
}
