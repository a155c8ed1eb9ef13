package cardpool

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftforge/cubeleague/go/clients/cubecobra_client"
	"github.com/draftforge/cubeleague/go/clients/scryfall_client"
	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/auth"
	"github.com/draftforge/cubeleague/go/internal/models"
)

// CardPoolRepository defines what the app layer needs from the repository
type CardPoolRepository interface {
	AddCard(ctx context.Context, req AddCardRequest) (*models.CardPoolEntry, error)
	GetCard(ctx context.Context, id uuid.UUID) (*models.CardPoolEntry, error)
	ListCards(ctx context.Context, req ListCardsRequest) ([]models.CardPoolEntry, error)
	ListUndraftedAffordable(ctx context.Context, seasonID uuid.UUID, budget int) ([]models.CardPoolEntry, error)
	ListNamesMissingMetadata(ctx context.Context, seasonID uuid.UUID) ([]string, error)
	UpdateMetadataByName(ctx context.Context, seasonID uuid.UUID, name, manaCost string, cmc float64, colorIdentity []string, rarity string) error
	UpdateEloByName(ctx context.Context, seasonID uuid.UUID, name string, elo int) error
}

// MetadataClient defines what the app layer needs from the card metadata
// provider.
type MetadataClient interface {
	GetCardsByName(ctx context.Context, names []string) ([]scryfall_client.Card, []string, error)
}

// CubeClient defines what the app layer needs from the cube export provider.
type CubeClient interface {
	GetCubeCards(ctx context.Context, cubeID string) ([]cubecobra_client.CubeCard, error)
}

// AuthApp defines what the app layer needs from auth
type AuthApp interface {
	RequireAdmin(ctx context.Context) (*auth.Identity, error)
}

// App handles card pool business logic
type App struct {
	repo     CardPoolRepository
	metadata MetadataClient
	cubes    CubeClient
	auth     AuthApp
}

// NewApp creates a new card pool App
func NewApp(repo CardPoolRepository, metadata MetadataClient, cubes CubeClient, auth AuthApp) *App {
	return &App{repo: repo, metadata: metadata, cubes: cubes, auth: auth}
}

// ListCards returns pool entries for browsing, with optional filters
func (a *App) ListCards(ctx context.Context, req ListCardsRequest) ([]models.CardPoolEntry, error) {
	return a.repo.ListCards(ctx, req)
}

// GetCard returns one pool entry
func (a *App) GetCard(ctx context.Context, id uuid.UUID) (*models.CardPoolEntry, error) {
	return a.repo.GetCard(ctx, id)
}

// AddCard adds a card instance to the pool. Admin only.
func (a *App) AddCard(ctx context.Context, req AddCardRequest) (*models.CardPoolEntry, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, apperrors.New(apperrors.KindValidation, "card name is required")
	}
	return a.repo.AddCard(ctx, req)
}

// BackfillMetadata resolves missing card metadata for a season's pool in
// batches. The run reports per-card failures without failing the bulk
// operation. Admin only.
func (a *App) BackfillMetadata(ctx context.Context, seasonID uuid.UUID) (*BackfillReport, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	names, err := a.repo.ListNamesMissingMetadata(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	report := &BackfillReport{}
	for start := 0; start < len(names); start += scryfall_client.MaxCollectionBatch {
		end := min(start+scryfall_client.MaxCollectionBatch, len(names))
		batch := names[start:end]

		cards, missing, err := a.metadata.GetCardsByName(ctx, batch)
		if err != nil {
			// The whole batch failed; record each name and keep going.
			for _, name := range batch {
				report.Failed++
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", name, err))
			}
			continue
		}

		for _, name := range missing {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: not found", name))
		}

		for _, card := range cards {
			err := a.repo.UpdateMetadataByName(ctx, seasonID, card.Name, card.ManaCost, card.CMC, card.ColorIdentity, card.Rarity)
			if err != nil {
				report.Failed++
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", card.Name, err))
				continue
			}
			report.Updated++
		}

		time.Sleep(scryfall_client.RequestDelayMs * time.Millisecond)
	}

	log.Info().
		Str("season_id", seasonID.String()).
		Int("updated", report.Updated).
		Int("failed", report.Failed).
		Msg("card metadata backfill complete")
	return report, nil
}

// SyncElo refreshes per-card elo ratings from a cube export. Admin only.
func (a *App) SyncElo(ctx context.Context, seasonID uuid.UUID, cubeID string) (*BackfillReport, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	cards, err := a.cubes.GetCubeCards(ctx, cubeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cube export: %w", err)
	}

	report := &BackfillReport{}
	for _, card := range cards {
		if err := a.repo.UpdateEloByName(ctx, seasonID, card.Name, card.Elo); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", card.Name, err))
			continue
		}
		report.Updated++
	}

	log.Info().
		Str("season_id", seasonID.String()).
		Str("cube_id", cubeID).
		Int("updated", report.Updated).
		Int("failed", report.Failed).
		Msg("card elo sync complete")
	return report, nil
}
