package teams

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/auth"
	"github.com/draftforge/cubeleague/go/internal/models"
)

// TeamsRepository defines what the app layer needs from the repository
type TeamsRepository interface {
	CreateTeam(ctx context.Context, req CreateTeamRequest) (*models.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	AddMember(ctx context.Context, req AddMemberRequest) (*models.TeamMember, error)
	GetMembership(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error)
	ListMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error)
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error
}

// AuthApp defines what the app layer needs from auth
type AuthApp interface {
	RequireAdmin(ctx context.Context) (*auth.Identity, error)
}

// App handles team business logic
type App struct {
	repo TeamsRepository
	auth AuthApp
}

// NewApp creates a new teams App
func NewApp(repo TeamsRepository, auth AuthApp) *App {
	return &App{repo: repo, auth: auth}
}

// CreateTeam creates a new team. Admin only.
func (a *App) CreateTeam(ctx context.Context, req CreateTeamRequest) (*models.Team, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.New(apperrors.KindValidation, "team name is required")
	}

	team, err := a.repo.CreateTeam(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Info().Str("team_id", team.ID.String()).Str("name", team.Name).Msg("created team")
	return team, nil
}

// GetTeamWithMembers returns a team plus its roster
func (a *App) GetTeamWithMembers(ctx context.Context, teamID uuid.UUID) (*TeamWithMembers, error) {
	team, err := a.repo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	members, err := a.repo.ListMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return &TeamWithMembers{Team: *team, Members: members}, nil
}

// ListTeams returns all teams
func (a *App) ListTeams(ctx context.Context) ([]models.Team, error) {
	return a.repo.ListTeams(ctx)
}

// AddMember assigns a user to a team. Admin only.
func (a *App) AddMember(ctx context.Context, req AddMemberRequest) (*models.TeamMember, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	switch req.Role {
	case models.TeamRoleCaptain, models.TeamRoleCoCaptain, models.TeamRoleMember:
	default:
		return nil, apperrors.Newf(apperrors.KindValidation, "unknown team role %q", req.Role)
	}

	member, err := a.repo.AddMember(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("team_id", req.TeamID.String()).
		Str("user_id", req.UserID.String()).
		Str("role", string(req.Role)).
		Msg("added team member")
	return member, nil
}

// RemoveMember removes a user from a team. Admin only.
func (a *App) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return err
	}
	return a.repo.RemoveMember(ctx, teamID, userID)
}

// GetMembership returns a user's membership on a team
func (a *App) GetMembership(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error) {
	return a.repo.GetMembership(ctx, teamID, userID)
}
