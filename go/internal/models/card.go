package models

import (
	"time"

	"github.com/google/uuid"
)

// CardPoolEntry is a single physical card instance available in a season's
// draft pool. The same card name may appear more than once; each entry is
// draftable at most once.
type CardPoolEntry struct {
	ID            uuid.UUID `json:"id"`
	SeasonID      uuid.UUID `json:"season_id"`
	CardID        string    `json:"card_id"` // external card identifier
	Name          string    `json:"name"`
	ManaCost      string    `json:"mana_cost"`
	CMC           float64   `json:"cmc"`
	ColorIdentity []string  `json:"color_identity"`
	Rarity        string    `json:"rarity"`
	Elo           int       `json:"elo"`
	CubucksCost   int       `json:"cubucks_cost"`
	CreatedAt     time.Time `json:"created_at"`
}
