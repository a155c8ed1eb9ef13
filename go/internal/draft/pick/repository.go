package pick

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

// ErrCardAlreadyDrafted is returned when a second claim races the first on
// the same card instance. The unique index on card_pool_id makes the claim
// atomic; no read-before-write is involved.
var ErrCardAlreadyDrafted = apperrors.New(apperrors.KindConflict, "This specific card has already been drafted.")

// Repository implements pick ledger data access operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new pick ledger repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ClaimCard appends a pick row, atomically claiming the card instance. The
// insert races on the card_pool_id unique index; the loser gets
// ErrCardAlreadyDrafted.
func (r *Repository) ClaimCard(ctx context.Context, req AddDraftPickRequest, cardID, cardName string) (*models.DraftPick, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO draft_picks (id, team_id, draft_session_id, card_pool_id, card_id, card_name, pick_number, drafted_by)
		VALUES ($1, $2, $3, $4, $5, $6,
			(SELECT COALESCE(MAX(pick_number), 0) + 1 FROM draft_picks WHERE draft_session_id = $3),
			$7)
		ON CONFLICT (card_pool_id) WHERE card_pool_id IS NOT NULL DO NOTHING
		RETURNING id, team_id, draft_session_id, card_pool_id, card_id, card_name, pick_number, drafted_by, drafted_at`,
		uuid.New(), req.TeamID, req.SessionID, req.CardPoolID, cardID, cardName, sqlutil.ToNullUUID(req.DraftedBy))

	var pick models.DraftPick
	err := scanPick(row, &pick)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCardAlreadyDrafted
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim card: %w", err)
	}

	return &pick, nil
}

// CreateSkippedPick appends the skipped-pick sentinel for a lapsed turn.
func (r *Repository) CreateSkippedPick(ctx context.Context, sessionID, teamID uuid.UUID) (*models.DraftPick, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO draft_picks (id, team_id, draft_session_id, card_pool_id, card_id, card_name, pick_number, drafted_by)
		VALUES ($1, $2, $3, NULL, $4, $5,
			(SELECT COALESCE(MAX(pick_number), 0) + 1 FROM draft_picks WHERE draft_session_id = $3),
			NULL)
		RETURNING id, team_id, draft_session_id, card_pool_id, card_id, card_name, pick_number, drafted_by, drafted_at`,
		uuid.New(), teamID, sessionID, models.SkippedPickCardID, models.SkippedPickCardName)

	var pick models.DraftPick
	if err := scanPick(row, &pick); err != nil {
		return nil, fmt.Errorf("failed to create skipped pick: %w", err)
	}

	return &pick, nil
}

// CountPicksByTeam counts ledger rows per team (skips included) for a session.
func (r *Repository) CountPicksByTeam(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT team_id, COUNT(*)
		FROM draft_picks
		WHERE draft_session_id = $1
		GROUP BY team_id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count picks by team: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var teamID uuid.UUID
		var count int
		if err := rows.Scan(&teamID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan pick count: %w", err)
		}
		counts[teamID] = count
	}

	return counts, rows.Err()
}

// CountPicks counts all ledger rows for a session.
func (r *Repository) CountPicks(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM draft_picks WHERE draft_session_id = $1`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count picks: %w", err)
	}
	return count, nil
}

// SumCubucksSpentByTeam totals the cubucks each team has spent in a session.
// Skipped picks carry no card and cost nothing.
func (r *Repository) SumCubucksSpentByTeam(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.team_id, COALESCE(SUM(c.cubucks_cost), 0)
		FROM draft_picks p
		JOIN card_pool c ON c.id = p.card_pool_id
		WHERE p.draft_session_id = $1
		GROUP BY p.team_id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum cubucks spent: %w", err)
	}
	defer rows.Close()

	spent := make(map[uuid.UUID]int)
	for rows.Next() {
		var teamID uuid.UUID
		var total int
		if err := rows.Scan(&teamID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan cubucks total: %w", err)
		}
		spent[teamID] = total
	}

	return spent, rows.Err()
}

// ListPicksBySession retrieves the full ledger for a session in pick order.
func (r *Repository) ListPicksBySession(ctx context.Context, sessionID uuid.UUID) ([]models.DraftPick, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, team_id, draft_session_id, card_pool_id, card_id, card_name, pick_number, drafted_by, drafted_at
		FROM draft_picks
		WHERE draft_session_id = $1
		ORDER BY pick_number`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}
	defer rows.Close()

	var picks []models.DraftPick
	for rows.Next() {
		var pick models.DraftPick
		if err := scanPick(rows, &pick); err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		picks = append(picks, pick)
	}

	return picks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPick(row rowScanner, pick *models.DraftPick) error {
	var cardPoolID, draftedBy uuid.NullUUID
	err := row.Scan(
		&pick.ID,
		&pick.TeamID,
		&pick.DraftSessionID,
		&cardPoolID,
		&pick.CardID,
		&pick.CardName,
		&pick.PickNumber,
		&draftedBy,
		&pick.DraftedAt,
	)
	if err != nil {
		return err
	}
	pick.CardPoolID = sqlutil.FromNullUUID(cardPoolID)
	pick.DraftedBy = sqlutil.FromNullUUID(draftedBy)
	return nil
}
