package autodraft

import (
	"context"
	"math/rand"

	"github.com/google/uuid"

	"github.com/draftforge/cubeleague/go/internal/models"
)

// PoolSource lists undrafted cards a team can still afford
type PoolSource interface {
	ListUndraftedAffordable(ctx context.Context, seasonID uuid.UUID, budget int) ([]models.CardPoolEntry, error)
}

// Strategy picks a card for a team whose turn lapsed. Returning nil with a
// nil error means no legal, affordable card exists and the turn is skipped.
type Strategy interface {
	SelectCard(ctx context.Context, seasonID, teamID uuid.UUID, remainingCubucks int) (*models.CardPoolEntry, error)
}

// BudgetStrategy drafts the highest-rated card the team can afford. Ties on
// rating are broken at random so repeated auto-drafts do not always favor
// the same alphabetical ordering.
type BudgetStrategy struct {
	pool PoolSource
	rng  *rand.Rand
}

// NewBudgetStrategy creates a BudgetStrategy backed by the given pool.
func NewBudgetStrategy(pool PoolSource) *BudgetStrategy {
	return &BudgetStrategy{pool: pool, rng: rand.New(rand.NewSource(rand.Int63()))}
}

// NewBudgetStrategyWithSeed creates a deterministic BudgetStrategy for tests.
func NewBudgetStrategyWithSeed(pool PoolSource, seed int64) *BudgetStrategy {
	return &BudgetStrategy{pool: pool, rng: rand.New(rand.NewSource(seed))}
}

// SelectCard returns the best affordable undrafted card, or nil if the team
// cannot afford anything left in the pool.
func (s *BudgetStrategy) SelectCard(ctx context.Context, seasonID, teamID uuid.UUID, remainingCubucks int) (*models.CardPoolEntry, error) {
	if remainingCubucks <= 0 {
		return nil, nil
	}

	cards, err := s.pool.ListUndraftedAffordable(ctx, seasonID, remainingCubucks)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, nil
	}

	// Candidates arrive sorted by rating descending; collect the top tier.
	topElo := cards[0].Elo
	tier := 1
	for tier < len(cards) && cards[tier].Elo == topElo {
		tier++
	}

	choice := cards[s.rng.Intn(tier)]
	return &choice, nil
}
