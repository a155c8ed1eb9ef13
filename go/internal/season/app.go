package season

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/auth"
	"github.com/draftforge/cubeleague/go/internal/models"
)

// SeasonRepository defines what the app layer needs from the repository
type SeasonRepository interface {
	CreateSeason(ctx context.Context, req CreateSeasonRequest) (*models.Season, error)
	GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error)
	GetSeasonByNumber(ctx context.Context, number int) (*models.Season, error)
	GetActiveSeason(ctx context.Context) (*models.Season, error)
	ActivateSeason(ctx context.Context, id uuid.UUID) error
	ListSeasons(ctx context.Context) ([]models.Season, error)
}

// AuthApp defines what the app layer needs from auth
type AuthApp interface {
	RequireAdmin(ctx context.Context) (*auth.Identity, error)
}

// App handles season business logic
type App struct {
	repo SeasonRepository
	auth AuthApp
}

// NewApp creates a new season App
func NewApp(repo SeasonRepository, auth AuthApp) *App {
	return &App{repo: repo, auth: auth}
}

// CreateSeason creates a new season. Admin only.
func (a *App) CreateSeason(ctx context.Context, req CreateSeasonRequest) (*models.Season, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if req.Number <= 0 {
		return nil, apperrors.New(apperrors.KindValidation, "season number must be positive")
	}
	if req.CubucksAllocation < 0 {
		return nil, apperrors.New(apperrors.KindValidation, "cubucks allocation cannot be negative")
	}

	season, err := a.repo.CreateSeason(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Info().Str("season_id", season.ID.String()).Int("number", season.Number).Msg("created season")
	return season, nil
}

// ActivateSeason makes the named season the single active one. Admin only.
func (a *App) ActivateSeason(ctx context.Context, id uuid.UUID) error {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return err
	}

	if err := a.repo.ActivateSeason(ctx, id); err != nil {
		return err
	}

	log.Info().Str("season_id", id.String()).Msg("activated season")
	return nil
}

// GetActiveSeason returns the single active season
func (a *App) GetActiveSeason(ctx context.Context) (*models.Season, error) {
	return a.repo.GetActiveSeason(ctx)
}

// GetSeason returns a season by ID
func (a *App) GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	return a.repo.GetSeason(ctx, id)
}

// ListSeasons returns all seasons
func (a *App) ListSeasons(ctx context.Context) ([]models.Season, error) {
	return a.repo.ListSeasons(ctx)
}
