package cardpool

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftforge/cubeleague/go/clients/cubecobra_client"
	"github.com/draftforge/cubeleague/go/clients/scryfall_client"
	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/auth"
	"github.com/draftforge/cubeleague/go/internal/models"
)

type fakePoolStore struct {
	missing     []string
	metadata    map[string]scryfall_client.Card
	elo         map[string]int
	failOnName  string
	addRequests []AddCardRequest
}

func (f *fakePoolStore) AddCard(ctx context.Context, req AddCardRequest) (*models.CardPoolEntry, error) {
	for _, prior := range f.addRequests {
		if prior.SeasonID == req.SeasonID && prior.Name == req.Name {
			return nil, apperrors.Newf(apperrors.KindConflict, "card %q is already in this season's pool", req.Name)
		}
	}
	f.addRequests = append(f.addRequests, req)
	return &models.CardPoolEntry{ID: uuid.New(), SeasonID: req.SeasonID, Name: req.Name, CubucksCost: req.CubucksCost}, nil
}

func (f *fakePoolStore) GetCard(ctx context.Context, id uuid.UUID) (*models.CardPoolEntry, error) {
	return nil, apperrors.Newf(apperrors.KindNotFound, "card %s not found", id)
}

func (f *fakePoolStore) ListCards(ctx context.Context, req ListCardsRequest) ([]models.CardPoolEntry, error) {
	return nil, nil
}

func (f *fakePoolStore) ListUndraftedAffordable(ctx context.Context, seasonID uuid.UUID, budget int) ([]models.CardPoolEntry, error) {
	return nil, nil
}

func (f *fakePoolStore) ListNamesMissingMetadata(ctx context.Context, seasonID uuid.UUID) ([]string, error) {
	return f.missing, nil
}

func (f *fakePoolStore) UpdateMetadataByName(ctx context.Context, seasonID uuid.UUID, name, manaCost string, cmc float64, colorIdentity []string, rarity string) error {
	if name == f.failOnName {
		return errors.New("update failed")
	}
	if f.metadata == nil {
		f.metadata = map[string]scryfall_client.Card{}
	}
	f.metadata[name] = scryfall_client.Card{Name: name, ManaCost: manaCost, CMC: cmc, ColorIdentity: colorIdentity, Rarity: rarity}
	return nil
}

func (f *fakePoolStore) UpdateEloByName(ctx context.Context, seasonID uuid.UUID, name string, elo int) error {
	if name == f.failOnName {
		return errors.New("update failed")
	}
	if f.elo == nil {
		f.elo = map[string]int{}
	}
	f.elo[name] = elo
	return nil
}

// fakeMetadata resolves everything it knows and reports the rest missing.
type fakeMetadata struct {
	known map[string]scryfall_client.Card
}

func (f *fakeMetadata) GetCardsByName(ctx context.Context, names []string) ([]scryfall_client.Card, []string, error) {
	var cards []scryfall_client.Card
	var missing []string
	for _, name := range names {
		if card, ok := f.known[name]; ok {
			cards = append(cards, card)
		} else {
			missing = append(missing, name)
		}
	}
	return cards, missing, nil
}

type fakeCubes struct {
	cards []cubecobra_client.CubeCard
	err   error
}

func (f *fakeCubes) GetCubeCards(ctx context.Context, cubeID string) ([]cubecobra_client.CubeCard, error) {
	return f.cards, f.err
}

type adminAuth struct{}

func (adminAuth) RequireAdmin(ctx context.Context) (*auth.Identity, error) {
	return &auth.Identity{UserID: uuid.New(), IsAdmin: true}, nil
}

func TestAddCardRequiresName(t *testing.T) {
	app := NewApp(&fakePoolStore{}, &fakeMetadata{}, &fakeCubes{}, adminAuth{})

	_, err := app.AddCard(context.Background(), AddCardRequest{SeasonID: uuid.New()})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestAddCardRejectsDuplicateNameInSeason(t *testing.T) {
	app := NewApp(&fakePoolStore{}, &fakeMetadata{}, &fakeCubes{}, adminAuth{})
	seasonID := uuid.New()

	_, err := app.AddCard(context.Background(), AddCardRequest{SeasonID: seasonID, Name: "Lightning Bolt"})
	require.NoError(t, err)

	_, err = app.AddCard(context.Background(), AddCardRequest{SeasonID: seasonID, Name: "Lightning Bolt"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestBackfillMetadataReportsPartialFailures(t *testing.T) {
	store := &fakePoolStore{missing: []string{"Lightning Bolt", "Counterspell", "Not A Card"}}
	metadata := &fakeMetadata{known: map[string]scryfall_client.Card{
		"Lightning Bolt": {Name: "Lightning Bolt", ManaCost: "{R}", CMC: 1, ColorIdentity: []string{"R"}, Rarity: "common"},
		"Counterspell":   {Name: "Counterspell", ManaCost: "{U}{U}", CMC: 2, ColorIdentity: []string{"U"}, Rarity: "common"},
	}}
	app := NewApp(store, metadata, &fakeCubes{}, adminAuth{})

	report, err := app.BackfillMetadata(context.Background(), uuid.New())
	require.NoError(t, err, "per-card failures must not fail the run")
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "Not A Card")
	assert.Contains(t, store.metadata, "Lightning Bolt")
	assert.Contains(t, store.metadata, "Counterspell")
}

func TestBackfillMetadataNothingMissing(t *testing.T) {
	app := NewApp(&fakePoolStore{}, &fakeMetadata{}, &fakeCubes{}, adminAuth{})

	report, err := app.BackfillMetadata(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, report.Updated)
	assert.Zero(t, report.Failed)
}

func TestSyncEloUpdatesRatings(t *testing.T) {
	store := &fakePoolStore{failOnName: "Sol Ring"}
	cubes := &fakeCubes{cards: []cubecobra_client.CubeCard{
		{Name: "Lightning Bolt", Elo: 1850},
		{Name: "Sol Ring", Elo: 2000},
	}}
	app := NewApp(store, &fakeMetadata{}, cubes, adminAuth{})

	report, err := app.SyncElo(context.Background(), uuid.New(), "my-cube")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1850, store.elo["Lightning Bolt"])
}

func TestSyncEloFailsWhenExportUnavailable(t *testing.T) {
	cubes := &fakeCubes{err: errors.New("cube not found")}
	app := NewApp(&fakePoolStore{}, &fakeMetadata{}, cubes, adminAuth{})

	_, err := app.SyncElo(context.Background(), uuid.New(), "missing-cube")
	require.Error(t, err)
}
