package models

import (
	"time"

	"github.com/google/uuid"
)

// Sentinel values recorded when a turn lapses with no legal, affordable card.
const (
	SkippedPickCardID   = "skipped-pick"
	SkippedPickCardName = "SKIPPED"
)

// DraftPick is one row of the append-only pick ledger. A skipped pick is a
// sentinel row with a nil CardPoolID and the skipped-pick card id/name.
type DraftPick struct {
	ID             uuid.UUID  `json:"id"`
	TeamID         uuid.UUID  `json:"team_id"`
	DraftSessionID uuid.UUID  `json:"draft_session_id"`
	CardPoolID     *uuid.UUID `json:"card_pool_id,omitempty"` // nil for skipped picks
	CardID         string     `json:"card_id"`
	CardName       string     `json:"card_name"`
	PickNumber     int        `json:"pick_number"`
	DraftedBy      *uuid.UUID `json:"drafted_by,omitempty"` // nil = auto-draft or skip
	DraftedAt      time.Time  `json:"drafted_at"`
}

// Skipped reports whether this ledger row is a skipped-pick sentinel.
func (p *DraftPick) Skipped() bool {
	return p.CardPoolID == nil && p.CardID == SkippedPickCardID
}
