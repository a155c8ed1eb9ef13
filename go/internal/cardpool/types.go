package cardpool

import (
	"github.com/google/uuid"
)

// AddCardRequest adds one card instance to a season's pool
type AddCardRequest struct {
	SeasonID    uuid.UUID `json:"season_id"`
	CardID      string    `json:"card_id"`
	Name        string    `json:"name"`
	CubucksCost int       `json:"cubucks_cost"`
}

// ListCardsRequest filters the pool browse view
type ListCardsRequest struct {
	SeasonID  uuid.UUID `json:"season_id"`
	Color     string    `json:"color,omitempty"`  // single color identity letter
	Rarity    string    `json:"rarity,omitempty"`
	Undrafted bool      `json:"undrafted"` // only cards not yet picked
}

// BackfillReport summarizes a bulk metadata backfill run. The run as a whole
// succeeds even when individual cards fail; per-card failures are listed.
type BackfillReport struct {
	Updated int      `json:"updated"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
