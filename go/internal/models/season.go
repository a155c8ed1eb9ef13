package models

import (
	"time"

	"github.com/google/uuid"
)

// Season represents a league season. At most one season is active at a time.
type Season struct {
	ID                uuid.UUID `json:"id"`
	Number            int       `json:"number"`
	Name              string    `json:"name"`
	IsActive          bool      `json:"is_active"`
	CubucksAllocation int       `json:"cubucks_allocation"`
	CreatedAt         time.Time `json:"created_at"`
}
