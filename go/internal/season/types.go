package season

// CreateSeasonRequest represents the data needed to create a new season
type CreateSeasonRequest struct {
	Number            int    `json:"number"`
	Name              string `json:"name"`
	CubucksAllocation int    `json:"cubucks_allocation"`
}
