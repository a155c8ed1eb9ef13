package schedule

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/auth"
	"github.com/draftforge/cubeleague/go/internal/models"
)

// ScheduleRepository defines what the app layer needs from the repository
type ScheduleRepository interface {
	CreateWeek(ctx context.Context, req CreateWeekRequest) (*models.ScheduleWeek, error)
	CreateMatch(ctx context.Context, req CreateMatchRequest) (*models.Match, error)
	ReportResult(ctx context.Context, req ReportResultRequest) (*models.Match, error)
	ListMatchesBySeason(ctx context.Context, seasonID uuid.UUID) ([]models.Match, error)
	SeasonRecords(ctx context.Context, seasonID uuid.UUID) (map[uuid.UUID]models.TeamRecord, error)
}

// AuthApp defines what the app layer needs from auth
type AuthApp interface {
	RequireAdmin(ctx context.Context) (*auth.Identity, error)
}

// App provides schedule operations: weeks, matches, and the completed-match
// standings consumed by the draft order engine.
type App struct {
	repo ScheduleRepository
	auth AuthApp
}

// NewApp creates a new schedule App
func NewApp(repo ScheduleRepository, auth AuthApp) *App {
	return &App{repo: repo, auth: auth}
}

// CreateWeek adds a schedule week to a season. Admin only.
func (a *App) CreateWeek(ctx context.Context, req CreateWeekRequest) (*models.ScheduleWeek, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if req.WeekNumber < 1 {
		return nil, apperrors.New(apperrors.KindValidation, "week number must be at least 1")
	}
	return a.repo.CreateWeek(ctx, req)
}

// CreateMatch schedules a match within a week. Admin only.
func (a *App) CreateMatch(ctx context.Context, req CreateMatchRequest) (*models.Match, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if req.HomeTeamID == req.AwayTeamID {
		return nil, apperrors.New(apperrors.KindValidation, "a team cannot play itself")
	}
	return a.repo.CreateMatch(ctx, req)
}

// ReportResult records a match outcome and marks it completed. Admin only.
func (a *App) ReportResult(ctx context.Context, req ReportResultRequest) (*models.Match, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if req.HomeWins < 0 || req.AwayWins < 0 {
		return nil, apperrors.New(apperrors.KindValidation, "match wins cannot be negative")
	}

	match, err := a.repo.ReportResult(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("match_id", match.ID.String()).
		Int("home_wins", match.HomeWins).
		Int("away_wins", match.AwayWins).
		Msg("reported match result")
	return match, nil
}

// ListMatchesBySeason retrieves a season's matches
func (a *App) ListMatchesBySeason(ctx context.Context, seasonID uuid.UUID) ([]models.Match, error) {
	return a.repo.ListMatchesBySeason(ctx, seasonID)
}

// SeasonRecords aggregates wins and losses per team from completed matches
func (a *App) SeasonRecords(ctx context.Context, seasonID uuid.UUID) (map[uuid.UUID]models.TeamRecord, error) {
	return a.repo.SeasonRecords(ctx, seasonID)
}
