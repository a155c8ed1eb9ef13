package models

import (
	"github.com/google/uuid"
)

// DraftOrderEntry fixes a team's pick priority for a season. Generated once
// per season from prior-season standings plus a random lottery tiebreak;
// immutable afterward except via explicit regeneration.
type DraftOrderEntry struct {
	SeasonID           uuid.UUID `json:"season_id"`
	TeamID             uuid.UUID `json:"team_id"`
	PickPosition       int       `json:"pick_position"`
	PreviousSeasonWins int       `json:"previous_season_wins"`
	PreviousSeasonLoss int       `json:"previous_season_losses"`
	PreviousSeasonPct  float64   `json:"previous_season_win_pct"`
	LotteryNumber      int       `json:"lottery_number"`
	IsLotteryWinner    bool      `json:"is_lottery_winner"`
}

// DraftStatus is the derived view of the active draft: whose turn it is,
// who is up next, and round progress.
type DraftStatus struct {
	SeasonID     uuid.UUID   `json:"season_id"`
	OnTheClock   uuid.UUID   `json:"on_the_clock_team_id"`
	OnDeck       uuid.UUID   `json:"on_deck_team_id"`
	CurrentRound int         `json:"current_round"`
	TotalTeams   int         `json:"total_teams"`
	PicksMade    map[uuid.UUID]int `json:"picks_made"`
}
