package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/models"
	"github.com/draftforge/cubeleague/go/internal/sqlutil"
)

const sessionColumns = `id, season_id, status, total_rounds, hours_per_pick,
	start_time, end_time, current_pick_deadline, current_on_clock_team_id,
	consecutive_skipped_picks, created_at, updated_at`

// Repository implements draft session data access operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new draft session repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateSession schedules a new session for a season. A partial unique index
// on (season_id) WHERE status != 'COMPLETED' guarantees at most one open
// session per season; the violation surfaces as a conflict.
func (r *Repository) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO draft_sessions (id, season_id, status, total_rounds, hours_per_pick, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+sessionColumns,
		uuid.New(), req.SeasonID, models.DraftStatusScheduled, req.TotalRounds,
		req.HoursPerPick, req.StartTime, sqlutil.ToSqlTime(req.EndTime))

	session, err := scanSession(row)
	if err != nil {
		if sqlutil.IsUniqueViolation(err, "draft_sessions_open_season_idx") {
			return nil, apperrors.New(apperrors.KindConflict, "an open draft session already exists for this season")
		}
		return nil, fmt.Errorf("failed to create draft session: %w", err)
	}

	return session, nil
}

// GetSession retrieves a session by ID
func (r *Repository) GetSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM draft_sessions
		WHERE id = $1`, id)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "draft session %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft session: %w", err)
	}

	return session, nil
}

// GetOpenSessionBySeason retrieves a season's non-completed session, if any
func (r *Repository) GetOpenSessionBySeason(ctx context.Context, seasonID uuid.UUID) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM draft_sessions
		WHERE season_id = $1 AND status != $2`, seasonID, models.DraftStatusCompleted)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "no open draft session for season %s", seasonID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open draft session: %w", err)
	}

	return session, nil
}

// ListDueSessions retrieves sessions whose timer is due at the given instant:
// scheduled sessions past their start time and active sessions past their
// pick deadline.
func (r *Repository) ListDueSessions(ctx context.Context, now time.Time) ([]models.DraftSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM draft_sessions
		WHERE (status = $1 AND start_time <= $3)
		   OR (status = $2 AND current_pick_deadline IS NOT NULL AND current_pick_deadline <= $3)
		ORDER BY start_time`,
		models.DraftStatusScheduled, models.DraftStatusActive, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due draft sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.DraftSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft session: %w", err)
		}
		sessions = append(sessions, *session)
	}

	return sessions, rows.Err()
}

// NextDeadline returns the earliest upcoming timer instant across all open
// sessions, or nil when nothing is scheduled.
func (r *Repository) NextDeadline(ctx context.Context) (*time.Time, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT MIN(deadline) FROM (
			SELECT start_time AS deadline FROM draft_sessions WHERE status = $1
			UNION ALL
			SELECT current_pick_deadline FROM draft_sessions
			WHERE status = $2 AND current_pick_deadline IS NOT NULL
		) deadlines`,
		models.DraftStatusScheduled, models.DraftStatusActive)

	var deadline sql.NullTime
	if err := row.Scan(&deadline); err != nil {
		return nil, fmt.Errorf("failed to get next draft deadline: %w", err)
	}

	return sqlutil.FromSqlTime(deadline), nil
}

// SetActive transitions a scheduled or paused session to active, setting the
// pick deadline and on-the-clock team. Returns a conflict when the session
// is not in a startable state.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, deadline time.Time, onClockTeamID uuid.UUID) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE draft_sessions
		SET status = $2, current_pick_deadline = $3, current_on_clock_team_id = $4, updated_at = now()
		WHERE id = $1 AND status IN ($5, $6)
		RETURNING `+sessionColumns,
		id, models.DraftStatusActive, deadline, onClockTeamID,
		models.DraftStatusScheduled, models.DraftStatusPaused)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindConflict, "draft session %s cannot be activated from its current state", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to activate draft session: %w", err)
	}

	return session, nil
}

// UpdateTurn rolls the deadline forward and records the next on-the-clock
// team and the skip counter. Only valid while the session is active.
func (r *Repository) UpdateTurn(ctx context.Context, id uuid.UUID, deadline time.Time, onClockTeamID uuid.UUID, consecutiveSkips int) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE draft_sessions
		SET current_pick_deadline = $2, current_on_clock_team_id = $3,
		    consecutive_skipped_picks = $4, updated_at = now()
		WHERE id = $1 AND status = $5
		RETURNING `+sessionColumns,
		id, deadline, onClockTeamID, consecutiveSkips, models.DraftStatusActive)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindConflict, "draft session %s is not active", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to advance draft session: %w", err)
	}

	return session, nil
}

// SetPaused transitions an active session to paused and clears the deadline
// so no timer can fire against it.
func (r *Repository) SetPaused(ctx context.Context, id uuid.UUID) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE draft_sessions
		SET status = $2, current_pick_deadline = NULL, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING `+sessionColumns,
		id, models.DraftStatusPaused, models.DraftStatusActive)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindConflict, "draft session %s is not active", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pause draft session: %w", err)
	}

	return session, nil
}

// SetCompleted transitions any open session to completed, clearing the
// deadline and on-the-clock team.
func (r *Repository) SetCompleted(ctx context.Context, id uuid.UUID) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE draft_sessions
		SET status = $2, current_pick_deadline = NULL, current_on_clock_team_id = NULL, updated_at = now()
		WHERE id = $1 AND status != $2
		RETURNING `+sessionColumns,
		id, models.DraftStatusCompleted)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindConflict, "draft session %s is already completed", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to complete draft session: %w", err)
	}

	return session, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.DraftSession, error) {
	var (
		session  models.DraftSession
		endTime  sql.NullTime
		deadline sql.NullTime
		onClock  uuid.NullUUID
	)
	err := row.Scan(
		&session.ID, &session.SeasonID, &session.Status, &session.TotalRounds,
		&session.HoursPerPick, &session.StartTime, &endTime, &deadline,
		&onClock, &session.ConsecutiveSkips, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	session.EndTime = sqlutil.FromSqlTime(endTime)
	session.CurrentPickDeadline = sqlutil.FromSqlTime(deadline)
	session.CurrentOnClockTeamID = sqlutil.FromNullUUID(onClock)
	return &session, nil
}
