package vote

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

// Repository implements poll and ballot data access operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new vote repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreatePoll inserts a poll and its options in one transaction
func (r *Repository) CreatePoll(ctx context.Context, req CreatePollRequest) (*models.Poll, error) {
	var poll models.Poll
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO polls (id, question, weighted, closes_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id, question, weighted, closes_at, closed, created_at`,
			uuid.New(), req.Question, req.Weighted, sqlutil.ToSqlTime(req.ClosesAt))
		if err := scanPoll(row, &poll); err != nil {
			return fmt.Errorf("failed to create poll: %w", err)
		}

		for _, label := range req.Options {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO poll_options (id, poll_id, label)
				VALUES ($1, $2, $3)`,
				uuid.New(), poll.ID, label); err != nil {
				return fmt.Errorf("failed to create poll option: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &poll, nil
}

// GetPoll retrieves a poll by ID
func (r *Repository) GetPoll(ctx context.Context, id uuid.UUID) (*models.Poll, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, question, weighted, closes_at, closed, created_at
		FROM polls
		WHERE id = $1`, id)

	var poll models.Poll
	err := scanPoll(row, &poll)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "poll %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	return &poll, nil
}

// ListPolls retrieves all polls, newest first
func (r *Repository) ListPolls(ctx context.Context) ([]models.Poll, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, question, weighted, closes_at, closed, created_at
		FROM polls
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	var polls []models.Poll
	for rows.Next() {
		var poll models.Poll
		if err := scanPoll(rows, &poll); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
	}

	return polls, rows.Err()
}

// ListOptions retrieves a poll's options
func (r *Repository) ListOptions(ctx context.Context, pollID uuid.UUID) ([]models.PollOption, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, poll_id, label
		FROM poll_options
		WHERE poll_id = $1
		ORDER BY label`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list poll options: %w", err)
	}
	defer rows.Close()

	var options []models.PollOption
	for rows.Next() {
		var option models.PollOption
		if err := rows.Scan(&option.ID, &option.PollID, &option.Label); err != nil {
			return nil, fmt.Errorf("failed to scan poll option: %w", err)
		}
		options = append(options, option)
	}

	return options, rows.Err()
}

// CastVote records one ballot. The unique constraint on (poll_id, user_id)
// rejects a second ballot on the same poll.
func (r *Repository) CastVote(ctx context.Context, pollID, optionID, userID uuid.UUID) (*models.Vote, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO votes (poll_id, option_id, user_id)
		VALUES ($1, $2, $3)
		RETURNING poll_id, option_id, user_id, cast_at`,
		pollID, optionID, userID)

	var vote models.Vote
	if err := row.Scan(&vote.PollID, &vote.OptionID, &vote.UserID, &vote.CastAt); err != nil {
		if sqlutil.IsUniqueViolation(err, "") {
			return nil, apperrors.New(apperrors.KindConflict, "you have already voted in this poll")
		}
		return nil, fmt.Errorf("failed to cast vote: %w", err)
	}

	return &vote, nil
}

// ClosePoll marks a poll closed. Closing an already-closed poll is a conflict.
func (r *Repository) ClosePoll(ctx context.Context, id uuid.UUID) (*models.Poll, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE polls SET closed = true
		WHERE id = $1 AND NOT closed
		RETURNING id, question, weighted, closes_at, closed, created_at`, id)

	var poll models.Poll
	err := scanPoll(row, &poll)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindConflict, "poll %s is already closed or does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to close poll: %w", err)
	}

	return &poll, nil
}

// TallyBallots counts one weight unit per ballot.
func (r *Repository) TallyBallots(ctx context.Context, pollID uuid.UUID) ([]models.PollOptionResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.label, COUNT(v.user_id), COUNT(v.user_id)
		FROM poll_options o
		LEFT JOIN votes v ON v.option_id = o.id
		WHERE o.poll_id = $1
		GROUP BY o.id, o.label
		ORDER BY o.label`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to tally ballots: %w", err)
	}
	return collectResults(rows)
}

// TallyWeighted counts each ballot at the voter's highest team-role weight
// (captain 3, co-captain 2, member 1). The aggregation runs store-side in a
// single query.
func (r *Repository) TallyWeighted(ctx context.Context, pollID uuid.UUID) ([]models.PollOptionResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.label, COUNT(v.user_id), COALESCE(SUM(w.weight), 0)
		FROM poll_options o
		LEFT JOIN votes v ON v.option_id = o.id
		LEFT JOIN LATERAL (
			SELECT COALESCE(MAX(CASE m.role
				WHEN 'CAPTAIN' THEN 3
				WHEN 'CO_CAPTAIN' THEN 2
				ELSE 1 END), 1) AS weight
			FROM team_members m
			WHERE m.user_id = v.user_id
		) w ON v.user_id IS NOT NULL
		WHERE o.poll_id = $1
		GROUP BY o.id, o.label
		ORDER BY o.label`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to tally weighted ballots: %w", err)
	}
	return collectResults(rows)
}

func collectResults(rows *sql.Rows) ([]models.PollOptionResult, error) {
	defer rows.Close()

	var results []models.PollOptionResult
	for rows.Next() {
		var result models.PollOptionResult
		if err := rows.Scan(&result.OptionID, &result.Label, &result.Ballots, &result.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan poll result: %w", err)
		}
		results = append(results, result)
	}

	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoll(row rowScanner, poll *models.Poll) error {
	var closesAt sql.NullTime
	if err := row.Scan(&poll.ID, &poll.Question, &poll.Weighted, &closesAt, &poll.Closed, &poll.CreatedAt); err != nil {
		return err
	}
	poll.ClosesAt = sqlutil.FromSqlTime(closesAt)
	return nil
}
