package order

import (
	"github.com/google/uuid"
)

// DefaultMaxLotteryTeams bounds the lottery number range. Lottery numbers are
// drawn without replacement from 1..max and truncated to the team count, so
// an assigned number can exceed the number of teams.
const DefaultMaxLotteryTeams = 16

// standing pairs a team with its prior-season record while the order is
// being computed.
type standing struct {
	TeamID        uuid.UUID
	Wins          int
	Losses        int
	WinPct        float64
	LotteryNumber int
}
