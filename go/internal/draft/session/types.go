package session

import (
	"time"

	"github.com/google/uuid"
)

// CreateSessionRequest carries the parameters for scheduling a draft session
type CreateSessionRequest struct {
	SeasonID     uuid.UUID  `json:"season_id"`
	TotalRounds  int        `json:"total_rounds"`
	HoursPerPick float64    `json:"hours_per_pick"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
}

// TimerAction names what a single timer check did.
type TimerAction string

const (
	ActionNone        TimerAction = "none"
	ActionActivated   TimerAction = "activated"
	ActionAutoDrafted TimerAction = "auto_drafted"
	ActionSkipped     TimerAction = "skipped"
	ActionCompleted   TimerAction = "completed"
)

// TimerResult reports the outcome of one CheckDraftTimer invocation.
type TimerResult struct {
	Action  TimerAction `json:"action"`
	Message string      `json:"message,omitempty"`
}

// completionReason values recorded on DraftCompleted events.
const (
	reasonRoundsExhausted  = "all rounds drafted"
	reasonEndTimeReached   = "end time reached"
	reasonCubucksExhausted = "all teams out of cubucks"
	reasonSkipStall        = "full round of skipped picks"
	reasonManual           = "completed by admin"
)
