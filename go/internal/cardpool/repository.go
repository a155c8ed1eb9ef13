package cardpool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/models"
	"github.com/draftforge/cubeleague/go/internal/sqlutil"
)

// Repository implements card pool data access operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new card pool repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// AddCard inserts one card instance into a season's pool
func (r *Repository) AddCard(ctx context.Context, req AddCardRequest) (*models.CardPoolEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO card_pool (id, season_id, card_id, name, mana_cost, cmc, color_identity, rarity, elo, cubucks_cost)
		VALUES ($1, $2, $3, $4, '', 0, '{}', '', 0, $5)
		RETURNING id, season_id, card_id, name, mana_cost, cmc, color_identity, rarity, elo, cubucks_cost, created_at`,
		uuid.New(), req.SeasonID, req.CardID, req.Name, req.CubucksCost)

	var entry models.CardPoolEntry
	if err := scanEntry(row, &entry); err != nil {
		if sqlutil.IsUniqueViolation(err, "card_pool_season_id_name_key") {
			return nil, apperrors.Newf(apperrors.KindConflict, "card %q is already in this season's pool", req.Name)
		}
		return nil, fmt.Errorf("failed to add card to pool: %w", err)
	}

	return &entry, nil
}

// GetCard retrieves a pool entry by ID
func (r *Repository) GetCard(ctx context.Context, id uuid.UUID) (*models.CardPoolEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, season_id, card_id, name, mana_cost, cmc, color_identity, rarity, elo, cubucks_cost, created_at
		FROM card_pool
		WHERE id = $1`, id)

	var entry models.CardPoolEntry
	err := scanEntry(row, &entry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "card pool entry %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card pool entry: %w", err)
	}

	return &entry, nil
}

// ListCards retrieves pool entries for a season with optional filters
func (r *Repository) ListCards(ctx context.Context, req ListCardsRequest) ([]models.CardPoolEntry, error) {
	query := `
		SELECT c.id, c.season_id, c.card_id, c.name, c.mana_cost, c.cmc, c.color_identity, c.rarity, c.elo, c.cubucks_cost, c.created_at
		FROM card_pool c
		WHERE c.season_id = $1`
	args := []any{req.SeasonID}

	if req.Color != "" {
		args = append(args, req.Color)
		query += fmt.Sprintf(" AND $%d = ANY(c.color_identity)", len(args))
	}
	if req.Rarity != "" {
		args = append(args, req.Rarity)
		query += fmt.Sprintf(" AND c.rarity = $%d", len(args))
	}
	if req.Undrafted {
		query += " AND NOT EXISTS (SELECT 1 FROM draft_picks p WHERE p.card_pool_id = c.id)"
	}
	query += " ORDER BY c.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list card pool: %w", err)
	}
	defer rows.Close()

	var entries []models.CardPoolEntry
	for rows.Next() {
		var entry models.CardPoolEntry
		if err := scanEntry(rows, &entry); err != nil {
			return nil, fmt.Errorf("failed to scan card pool entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// ListUndraftedAffordable retrieves undrafted pool entries costing at most
// budget, best elo first. Feeds the auto-draft selector.
func (r *Repository) ListUndraftedAffordable(ctx context.Context, seasonID uuid.UUID, budget int) ([]models.CardPoolEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.season_id, c.card_id, c.name, c.mana_cost, c.cmc, c.color_identity, c.rarity, c.elo, c.cubucks_cost, c.created_at
		FROM card_pool c
		WHERE c.season_id = $1
		  AND c.cubucks_cost <= $2
		  AND NOT EXISTS (SELECT 1 FROM draft_picks p WHERE p.card_pool_id = c.id)
		ORDER BY c.elo DESC, c.name`, seasonID, budget)
	if err != nil {
		return nil, fmt.Errorf("failed to list undrafted affordable cards: %w", err)
	}
	defer rows.Close()

	var entries []models.CardPoolEntry
	for rows.Next() {
		var entry models.CardPoolEntry
		if err := scanEntry(rows, &entry); err != nil {
			return nil, fmt.Errorf("failed to scan card pool entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// ListNamesMissingMetadata returns distinct card names in a season's pool
// that have never been through a metadata backfill.
func (r *Repository) ListNamesMissingMetadata(ctx context.Context, seasonID uuid.UUID) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT name
		FROM card_pool
		WHERE season_id = $1 AND rarity = ''
		ORDER BY name`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list names missing metadata: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan card name: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// UpdateMetadataByName applies fetched metadata to every pool entry sharing
// the card name within a season.
func (r *Repository) UpdateMetadataByName(ctx context.Context, seasonID uuid.UUID, name, manaCost string, cmc float64, colorIdentity []string, rarity string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE card_pool
		SET mana_cost = $3, cmc = $4, color_identity = $5, rarity = $6
		WHERE season_id = $1 AND name = $2`,
		seasonID, name, manaCost, cmc, pq.Array(colorIdentity), rarity)
	if err != nil {
		return fmt.Errorf("failed to update card metadata: %w", err)
	}
	return nil
}

// UpdateEloByName applies a fetched elo rating to pool entries by name.
func (r *Repository) UpdateEloByName(ctx context.Context, seasonID uuid.UUID, name string, elo int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE card_pool
		SET elo = $3
		WHERE season_id = $1 AND name = $2`,
		seasonID, name, elo)
	if err != nil {
		return fmt.Errorf("failed to update card elo: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner, entry *models.CardPoolEntry) error {
	return row.Scan(
		&entry.ID,
		&entry.SeasonID,
		&entry.CardID,
		&entry.Name,
		&entry.ManaCost,
		&entry.CMC,
		pq.Array(&entry.ColorIdentity),
		&entry.Rarity,
		&entry.Elo,
		&entry.CubucksCost,
		&entry.CreatedAt,
	)
}
