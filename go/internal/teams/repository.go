package teams

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

// Repository implements team data access operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new teams repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateTeam creates a new team
func (r *Repository) CreateTeam(ctx context.Context, req CreateTeamRequest) (*models.Team, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO teams (id, name)
		VALUES ($1, $2)
		RETURNING id, name, created_at`,
		uuid.New(), req.Name)

	var team models.Team
	if err := row.Scan(&team.ID, &team.Name, &team.CreatedAt); err != nil {
		if sqlutil.IsUniqueViolation(err, "") {
			return nil, apperrors.Newf(apperrors.KindConflict, "team with name %q already exists", req.Name)
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return &team, nil
}

// GetTeam retrieves a team by ID
func (r *Repository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, created_at
		FROM teams
		WHERE id = $1`, id)

	var team models.Team
	err := row.Scan(&team.ID, &team.Name, &team.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "team %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// ListTeams retrieves all teams ordered by name
func (r *Repository) ListTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM teams
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// AddMember assigns a user to a team with a role. The unique constraint on
// (team_id, role) for captain slots surfaces as a conflict.
func (r *Repository) AddMember(ctx context.Context, req AddMemberRequest) (*models.TeamMember, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING team_id, user_id, role, joined_at`,
		req.TeamID, req.UserID, req.Role)

	var member models.TeamMember
	if err := row.Scan(&member.TeamID, &member.UserID, &member.Role, &member.JoinedAt); err != nil {
		if sqlutil.IsUniqueViolation(err, "") {
			return nil, apperrors.Newf(apperrors.KindConflict, "role %s already assigned on team %s", req.Role, req.TeamID)
		}
		return nil, fmt.Errorf("failed to add team member: %w", err)
	}

	return &member, nil
}

// GetMembership returns the caller's membership on a team, if any
func (r *Repository) GetMembership(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT team_id, user_id, role, joined_at
		FROM team_members
		WHERE team_id = $1 AND user_id = $2`, teamID, userID)

	var member models.TeamMember
	err := row.Scan(&member.TeamID, &member.UserID, &member.Role, &member.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.KindNotFound, "user is not a member of this team")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team membership: %w", err)
	}

	return &member, nil
}

// ListMembers retrieves all members of a team
func (r *Repository) ListMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT team_id, user_id, role, joined_at
		FROM team_members
		WHERE team_id = $1
		ORDER BY joined_at`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var member models.TeamMember
		if err := rows.Scan(&member.TeamID, &member.UserID, &member.Role, &member.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

// RemoveMember deletes a user's membership on a team
func (r *Repository) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM team_members
		WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected count: %w", err)
	}
	if affected == 0 {
		return apperrors.New(apperrors.KindNotFound, "user is not a member of this team")
	}
	return nil
}
