package order

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/draftforge/cubeleague/go/internal/models"
)

// Repository implements draft order data access operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new draft order repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateEntriesBatch persists a full season's draft order in one statement.
func (r *Repository) CreateEntriesBatch(ctx context.Context, entries []models.DraftOrderEntry) error {
	if len(entries) == 0 {
		return nil
	}

	seasonIDs := make([]uuid.UUID, len(entries))
	teamIDs := make([]uuid.UUID, len(entries))
	positions := make([]int32, len(entries))
	wins := make([]int32, len(entries))
	losses := make([]int32, len(entries))
	pcts := make([]float64, len(entries))
	lotteryNumbers := make([]int32, len(entries))
	lotteryWinners := make([]bool, len(entries))

	for i, entry := range entries {
		seasonIDs[i] = entry.SeasonID
		teamIDs[i] = entry.TeamID
		positions[i] = int32(entry.PickPosition)
		wins[i] = int32(entry.PreviousSeasonWins)
		losses[i] = int32(entry.PreviousSeasonLoss)
		pcts[i] = entry.PreviousSeasonPct
		lotteryNumbers[i] = int32(entry.LotteryNumber)
		lotteryWinners[i] = entry.IsLotteryWinner
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO draft_order (season_id, team_id, pick_position, previous_season_wins, previous_season_losses, previous_season_win_pct, lottery_number, is_lottery_winner)
		SELECT * FROM unnest($1::uuid[], $2::uuid[], $3::int[], $4::int[], $5::int[], $6::numeric[], $7::int[], $8::bool[])`,
		pq.Array(seasonIDs), pq.Array(teamIDs), pq.Array(positions), pq.Array(wins),
		pq.Array(losses), pq.Array(pcts), pq.Array(lotteryNumbers), pq.Array(lotteryWinners))
	if err != nil {
		return fmt.Errorf("failed to batch create draft order entries: %w", err)
	}

	return nil
}

// GetEntriesBySeason retrieves a season's draft order by pick position.
func (r *Repository) GetEntriesBySeason(ctx context.Context, seasonID uuid.UUID) ([]models.DraftOrderEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT season_id, team_id, pick_position, previous_season_wins, previous_season_losses, previous_season_win_pct, lottery_number, is_lottery_winner
		FROM draft_order
		WHERE season_id = $1
		ORDER BY pick_position`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft order entries: %w", err)
	}
	defer rows.Close()

	var entries []models.DraftOrderEntry
	for rows.Next() {
		var entry models.DraftOrderEntry
		if err := rows.Scan(
			&entry.SeasonID,
			&entry.TeamID,
			&entry.PickPosition,
			&entry.PreviousSeasonWins,
			&entry.PreviousSeasonLoss,
			&entry.PreviousSeasonPct,
			&entry.LotteryNumber,
			&entry.IsLotteryWinner,
		); err != nil {
			return nil, fmt.Errorf("failed to scan draft order entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// DeleteEntriesBySeason removes a season's draft order ahead of regeneration.
func (r *Repository) DeleteEntriesBySeason(ctx context.Context, seasonID uuid.UUID) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM draft_order WHERE season_id = $1`, seasonID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete draft order entries: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected count: %w", err)
	}

	return int(affected), nil
}
