package season

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/models"
	"github.com/draftforge/cubeleague/go/internal/sqlutil"
)

// Repository implements season data access operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new season repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateSeason creates a new season (inactive)
func (r *Repository) CreateSeason(ctx context.Context, req CreateSeasonRequest) (*models.Season, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO seasons (id, number, name, cubucks_allocation, is_active)
		VALUES ($1, $2, $3, $4, false)
		RETURNING id, number, name, is_active, cubucks_allocation, created_at`,
		uuid.New(), req.Number, req.Name, req.CubucksAllocation)

	var season models.Season
	if err := scanSeason(row, &season); err != nil {
		if sqlutil.IsUniqueViolation(err, "") {
			return nil, apperrors.Newf(apperrors.KindConflict, "season %d already exists", req.Number)
		}
		return nil, fmt.Errorf("failed to create season: %w", err)
	}

	return &season, nil
}

// GetSeason retrieves a season by ID
func (r *Repository) GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, number, name, is_active, cubucks_allocation, created_at
		FROM seasons
		WHERE id = $1`, id)

	var season models.Season
	err := scanSeason(row, &season)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "season %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season: %w", err)
	}

	return &season, nil
}

// GetSeasonByNumber retrieves a season by its number
func (r *Repository) GetSeasonByNumber(ctx context.Context, number int) (*models.Season, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, number, name, is_active, cubucks_allocation, created_at
		FROM seasons
		WHERE number = $1`, number)

	var season models.Season
	err := scanSeason(row, &season)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "season %d not found", number)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season by number: %w", err)
	}

	return &season, nil
}

// GetActiveSeason retrieves the single active season, if any
func (r *Repository) GetActiveSeason(ctx context.Context) (*models.Season, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, number, name, is_active, cubucks_allocation, created_at
		FROM seasons
		WHERE is_active`)

	var season models.Season
	err := scanSeason(row, &season)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.KindNotFound, "no active season")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active season: %w", err)
	}

	return &season, nil
}

// ActivateSeason marks one season active and deactivates all others in a
// single transaction.
func (r *Repository) ActivateSeason(ctx context.Context, id uuid.UUID) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE seasons SET is_active = false WHERE is_active`); err != nil {
			return fmt.Errorf("failed to deactivate seasons: %w", err)
		}

		result, err := tx.ExecContext(ctx, `UPDATE seasons SET is_active = true WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to activate season: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected count: %w", err)
		}
		if affected == 0 {
			return apperrors.Newf(apperrors.KindNotFound, "season %s not found", id)
		}
		return nil
	})
}

// ListSeasons retrieves all seasons ordered by number
func (r *Repository) ListSeasons(ctx context.Context) ([]models.Season, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, number, name, is_active, cubucks_allocation, created_at
		FROM seasons
		ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	defer rows.Close()

	var seasons []models.Season
	for rows.Next() {
		var season models.Season
		if err := rows.Scan(&season.ID, &season.Number, &season.Name, &season.IsActive, &season.CubucksAllocation, &season.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, season)
	}

	return seasons, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeason(row rowScanner, season *models.Season) error {
	return row.Scan(&season.ID, &season.Number, &season.Name, &season.IsActive, &season.CubucksAllocation, &season.CreatedAt)
}
