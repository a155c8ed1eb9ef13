package schedule

import (
	"github.com/google/uuid"
)

// CreateWeekRequest creates a schedule week within a season
type CreateWeekRequest struct {
	SeasonID   uuid.UUID `json:"season_id"`
	WeekNumber int       `json:"week_number"`
}

// CreateMatchRequest schedules a match within a week
type CreateMatchRequest struct {
	WeekID     uuid.UUID `json:"week_id"`
	HomeTeamID uuid.UUID `json:"home_team_id"`
	AwayTeamID uuid.UUID `json:"away_team_id"`
}

// ReportResultRequest records the outcome of a match
type ReportResultRequest struct {
	MatchID  uuid.UUID `json:"match_id"`
	HomeWins int       `json:"home_wins"`
	AwayWins int       `json:"away_wins"`
}
