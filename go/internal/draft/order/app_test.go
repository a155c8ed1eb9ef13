package order

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/auth"
	"github.com/draftforge/cubeleague/go/internal/models"
)

type fakeOrderStore struct {
	entries []models.DraftOrderEntry
}

func (f *fakeOrderStore) CreateEntriesBatch(ctx context.Context, entries []models.DraftOrderEntry) error {
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeOrderStore) GetEntriesBySeason(ctx context.Context, seasonID uuid.UUID) ([]models.DraftOrderEntry, error) {
	return f.entries, nil
}

func (f *fakeOrderStore) DeleteEntriesBySeason(ctx context.Context, seasonID uuid.UUID) (int, error) {
	n := len(f.entries)
	f.entries = nil
	return n, nil
}

type fakeSeasons struct {
	seasons map[int]*models.Season
	active  *models.Season
}

func (f *fakeSeasons) GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	for _, s := range f.seasons {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, apperrors.Newf(apperrors.KindNotFound, "season %s not found", id)
}

func (f *fakeSeasons) GetSeasonByNumber(ctx context.Context, number int) (*models.Season, error) {
	if s, ok := f.seasons[number]; ok {
		return s, nil
	}
	return nil, apperrors.Newf(apperrors.KindNotFound, "season %d not found", number)
}

func (f *fakeSeasons) GetActiveSeason(ctx context.Context) (*models.Season, error) {
	if f.active == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "no active season")
	}
	return f.active, nil
}

type fakeTeams struct {
	teams []models.Team
}

func (f *fakeTeams) ListTeams(ctx context.Context) ([]models.Team, error) {
	return f.teams, nil
}

type fakeRecords struct {
	records map[uuid.UUID]models.TeamRecord
}

func (f *fakeRecords) SeasonRecords(ctx context.Context, seasonID uuid.UUID) (map[uuid.UUID]models.TeamRecord, error) {
	return f.records, nil
}

type fakeSessions struct {
	session *models.DraftSession
}

func (f *fakeSessions) GetOpenSessionBySeason(ctx context.Context, seasonID uuid.UUID) (*models.DraftSession, error) {
	if f.session == nil {
		return nil, apperrors.Newf(apperrors.KindNotFound, "no open draft session for season %s", seasonID)
	}
	return f.session, nil
}

type fakePicks struct {
	counts map[uuid.UUID]int
}

func (f *fakePicks) CountPicksByTeam(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]int, error) {
	return f.counts, nil
}

type adminAuth struct{}

func (adminAuth) RequireAdmin(ctx context.Context) (*auth.Identity, error) {
	return &auth.Identity{UserID: uuid.New(), IsAdmin: true}, nil
}

func fakeTeamList(n int) []models.Team {
	teams := make([]models.Team, n)
	for i := range teams {
		teams[i] = models.Team{ID: uuid.New(), Name: gofakeit.Animal()}
	}
	return teams
}

func newTestApp(store *fakeOrderStore, seasons *fakeSeasons, teams *fakeTeams, records *fakeRecords, sessions *fakeSessions, picks *fakePicks, seed int64) *App {
	app := NewApp(store, seasons, teams, records, sessions, picks, adminAuth{})
	app.lottery = newLotteryWithSeed(seed)
	return app
}

func TestLotteryDrawsDistinctNumbersInRange(t *testing.T) {
	l := newLotteryWithSeed(42)
	numbers := l.Draw(16, 6)

	require.Len(t, numbers, 6)
	seen := map[int]bool{}
	for _, n := range numbers {
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, 16)
		assert.False(t, seen[n], "duplicate lottery number %d", n)
		seen[n] = true
	}
}

func TestGenerateDraftOrderWorstRecordPicksFirst(t *testing.T) {
	prior := &models.Season{ID: uuid.New(), Number: 1}
	current := &models.Season{ID: uuid.New(), Number: 2}
	teams := fakeTeamList(3)

	records := map[uuid.UUID]models.TeamRecord{
		teams[0].ID: {TeamID: teams[0].ID, Wins: 4, Losses: 0},
		teams[1].ID: {TeamID: teams[1].ID, Wins: 0, Losses: 4},
		teams[2].ID: {TeamID: teams[2].ID, Wins: 2, Losses: 2},
	}

	store := &fakeOrderStore{}
	app := newTestApp(store,
		&fakeSeasons{seasons: map[int]*models.Season{1: prior, 2: current}},
		&fakeTeams{teams: teams},
		&fakeRecords{records: records},
		&fakeSessions{}, &fakePicks{}, 7)

	entries, err := app.GenerateDraftOrder(context.Background(), current.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, teams[1].ID, entries[0].TeamID, "winless team picks first")
	assert.Equal(t, teams[2].ID, entries[1].TeamID)
	assert.Equal(t, teams[0].ID, entries[2].TeamID, "undefeated team picks last")

	for i, entry := range entries {
		assert.Equal(t, i+1, entry.PickPosition)
		assert.False(t, entry.IsLotteryWinner, "distinct records leave nothing for the lottery to decide")
	}
	assert.Equal(t, 0, entries[0].PreviousSeasonWins)
	assert.Equal(t, 4, entries[0].PreviousSeasonLoss)
	assert.InDelta(t, 0.0, entries[0].PreviousSeasonPct, 0.001)
	assert.InDelta(t, 100.0, entries[2].PreviousSeasonPct, 0.001)
}

func TestGenerateDraftOrderLotteryBreaksTies(t *testing.T) {
	prior := &models.Season{ID: uuid.New(), Number: 1}
	current := &models.Season{ID: uuid.New(), Number: 2}
	teams := fakeTeamList(4)

	// Everyone finished 2-2; the lottery decides the whole order.
	records := map[uuid.UUID]models.TeamRecord{}
	for _, team := range teams {
		records[team.ID] = models.TeamRecord{TeamID: team.ID, Wins: 2, Losses: 2}
	}

	store := &fakeOrderStore{}
	app := newTestApp(store,
		&fakeSeasons{seasons: map[int]*models.Season{1: prior, 2: current}},
		&fakeTeams{teams: teams},
		&fakeRecords{records: records},
		&fakeSessions{}, &fakePicks{}, 99)

	entries, err := app.GenerateDraftOrder(context.Background(), current.ID)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].LotteryNumber, entries[i].LotteryNumber,
			"tied teams must be ordered by lottery number")
	}
	for _, entry := range entries {
		assert.True(t, entry.IsLotteryWinner, "a shared record means the lottery decided the position")
	}
}

func TestGenerateDraftOrderFirstSeasonDefaultsToZeroRecords(t *testing.T) {
	current := &models.Season{ID: uuid.New(), Number: 1}
	teams := fakeTeamList(3)

	store := &fakeOrderStore{}
	app := newTestApp(store,
		&fakeSeasons{seasons: map[int]*models.Season{1: current}},
		&fakeTeams{teams: teams},
		&fakeRecords{}, &fakeSessions{}, &fakePicks{}, 3)

	entries, err := app.GenerateDraftOrder(context.Background(), current.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, entry := range entries {
		assert.Zero(t, entry.PreviousSeasonWins)
		assert.Zero(t, entry.PreviousSeasonLoss)
		assert.True(t, entry.IsLotteryWinner)
	}
}

func TestGenerateDraftOrderRejectsExistingOrder(t *testing.T) {
	current := &models.Season{ID: uuid.New(), Number: 1}
	teams := fakeTeamList(2)

	store := &fakeOrderStore{}
	app := newTestApp(store,
		&fakeSeasons{seasons: map[int]*models.Season{1: current}},
		&fakeTeams{teams: teams},
		&fakeRecords{}, &fakeSessions{}, &fakePicks{}, 3)

	_, err := app.GenerateDraftOrder(context.Background(), current.ID)
	require.NoError(t, err)

	_, err = app.GenerateDraftOrder(context.Background(), current.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestRegenerateDraftOrderPreservesStandings(t *testing.T) {
	prior := &models.Season{ID: uuid.New(), Number: 1}
	current := &models.Season{ID: uuid.New(), Number: 2}
	teams := fakeTeamList(3)

	records := map[uuid.UUID]models.TeamRecord{
		teams[0].ID: {TeamID: teams[0].ID, Wins: 3, Losses: 1},
		teams[1].ID: {TeamID: teams[1].ID, Wins: 1, Losses: 3},
		teams[2].ID: {TeamID: teams[2].ID, Wins: 2, Losses: 2},
	}

	store := &fakeOrderStore{}
	app := newTestApp(store,
		&fakeSeasons{seasons: map[int]*models.Season{1: prior, 2: current}},
		&fakeTeams{teams: teams},
		&fakeRecords{records: records},
		&fakeSessions{}, &fakePicks{}, 3)

	first, err := app.GenerateDraftOrder(context.Background(), current.ID)
	require.NoError(t, err)

	second, err := app.RegenerateDraftOrder(context.Background(), current.ID)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	assert.Len(t, store.entries, len(teams))

	type standing struct {
		wins, losses, position int
		pct                    float64
	}
	byTeam := func(entries []models.DraftOrderEntry) map[uuid.UUID]standing {
		out := map[uuid.UUID]standing{}
		for _, e := range entries {
			out[e.TeamID] = standing{e.PreviousSeasonWins, e.PreviousSeasonLoss, e.PickPosition, e.PreviousSeasonPct}
		}
		return out
	}

	before, after := byTeam(first), byTeam(second)
	for _, team := range teams {
		record := records[team.ID]
		got := after[team.ID]
		assert.Equal(t, record.Wins, got.wins)
		assert.Equal(t, record.Losses, got.losses)
		assert.InDelta(t, record.WinPct(), got.pct, 0.001)
	}
	// Distinct records pin every position, so a rerun changes nothing.
	assert.Equal(t, before, after)
}

func TestComputeStatus(t *testing.T) {
	seasonID := uuid.New()
	teamA, teamB, teamC := uuid.New(), uuid.New(), uuid.New()
	entries := []models.DraftOrderEntry{
		{SeasonID: seasonID, TeamID: teamA, PickPosition: 1},
		{SeasonID: seasonID, TeamID: teamB, PickPosition: 2},
		{SeasonID: seasonID, TeamID: teamC, PickPosition: 3},
	}

	cases := []struct {
		name       string
		picks      map[uuid.UUID]int
		wantRound  int
		wantClock  uuid.UUID
		wantOnDeck uuid.UUID
	}{
		{
			name:       "fresh draft starts at the top of the order",
			picks:      map[uuid.UUID]int{},
			wantRound:  1,
			wantClock:  teamA,
			wantOnDeck: teamB,
		},
		{
			name:       "mid round the lowest position at the minimum count is up",
			picks:      map[uuid.UUID]int{teamA: 1},
			wantRound:  1,
			wantClock:  teamB,
			wantOnDeck: teamC,
		},
		{
			name:       "last pick of the round rolls the deck over to the first team",
			picks:      map[uuid.UUID]int{teamA: 1, teamB: 1},
			wantRound:  1,
			wantClock:  teamC,
			wantOnDeck: teamA,
		},
		{
			name:       "a completed round advances the round counter",
			picks:      map[uuid.UUID]int{teamA: 1, teamB: 1, teamC: 1},
			wantRound:  2,
			wantClock:  teamA,
			wantOnDeck: teamB,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status := ComputeStatus(seasonID, entries, tc.picks)
			assert.Equal(t, tc.wantRound, status.CurrentRound)
			assert.Equal(t, tc.wantClock, status.OnTheClock)
			assert.Equal(t, tc.wantOnDeck, status.OnDeck)
			assert.Equal(t, len(entries), status.TotalTeams)
		})
	}
}

func TestGetDraftStatusWithoutActiveSeason(t *testing.T) {
	app := newTestApp(&fakeOrderStore{}, &fakeSeasons{}, &fakeTeams{}, &fakeRecords{}, &fakeSessions{}, &fakePicks{}, 1)

	status, err := app.GetDraftStatus(context.Background())
	require.NoError(t, err)
	assert.Nil(t, status)
}
