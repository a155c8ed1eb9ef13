package models

import (
	"math"

	"github.com/google/uuid"
)

// ScheduleWeek groups matches within a season.
type ScheduleWeek struct {
	ID         uuid.UUID `json:"id"`
	SeasonID   uuid.UUID `json:"season_id"`
	WeekNumber int       `json:"week_number"`
}

// Match is a head-to-head result between two teams in a schedule week.
type Match struct {
	ID         uuid.UUID `json:"id"`
	WeekID     uuid.UUID `json:"week_id"`
	HomeTeamID uuid.UUID `json:"home_team_id"`
	AwayTeamID uuid.UUID `json:"away_team_id"`
	HomeWins   int       `json:"home_wins"`
	AwayWins   int       `json:"away_wins"`
	Completed  bool      `json:"completed"`
}

// TeamRecord is a team's aggregated win/loss record over a season.
type TeamRecord struct {
	TeamID uuid.UUID `json:"team_id"`
	Wins   int       `json:"wins"`
	Losses int       `json:"losses"`
}

// WinPct returns the record's win percentage in [0,100], rounded to two
// decimals. Teams with no completed games report 0.
func (r TeamRecord) WinPct() float64 {
	games := r.Wins + r.Losses
	if games == 0 {
		return 0
	}
	pct := float64(r.Wins) / float64(games) * 100
	return math.Round(pct*100) / 100
}
