package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/auth"
	"github.com/draftforge/cubeleague/go/internal/draft/pick"
	"github.com/draftforge/cubeleague/go/internal/models"
)

// fakeSessionStore holds a single session and mirrors the status-guarded
// transitions the SQL layer enforces.
type fakeSessionStore struct {
	session *models.DraftSession
}

func (f *fakeSessionStore) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.DraftSession, error) {
	f.session = &models.DraftSession{
		ID:           uuid.New(),
		SeasonID:     req.SeasonID,
		Status:       models.DraftStatusScheduled,
		TotalRounds:  req.TotalRounds,
		HoursPerPick: req.HoursPerPick,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	}
	return f.get(), nil
}

func (f *fakeSessionStore) get() *models.DraftSession {
	copied := *f.session
	return &copied
}

func (f *fakeSessionStore) GetSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error) {
	if f.session == nil || f.session.ID != id {
		return nil, apperrors.Newf(apperrors.KindNotFound, "draft session %s not found", id)
	}
	return f.get(), nil
}

func (f *fakeSessionStore) GetOpenSessionBySeason(ctx context.Context, seasonID uuid.UUID) (*models.DraftSession, error) {
	if f.session == nil || f.session.SeasonID != seasonID || f.session.Status == models.DraftStatusCompleted {
		return nil, apperrors.Newf(apperrors.KindNotFound, "no open draft session for season %s", seasonID)
	}
	return f.get(), nil
}

func (f *fakeSessionStore) ListDueSessions(ctx context.Context, now time.Time) ([]models.DraftSession, error) {
	return nil, nil
}

func (f *fakeSessionStore) NextDeadline(ctx context.Context) (*time.Time, error) {
	return nil, nil
}

func (f *fakeSessionStore) SetActive(ctx context.Context, id uuid.UUID, deadline time.Time, onClockTeamID uuid.UUID) (*models.DraftSession, error) {
	if f.session.Status != models.DraftStatusScheduled && f.session.Status != models.DraftStatusPaused {
		return nil, apperrors.Newf(apperrors.KindConflict, "draft session %s cannot be activated from its current state", id)
	}
	f.session.Status = models.DraftStatusActive
	f.session.CurrentPickDeadline = &deadline
	f.session.CurrentOnClockTeamID = &onClockTeamID
	return f.get(), nil
}

func (f *fakeSessionStore) UpdateTurn(ctx context.Context, id uuid.UUID, deadline time.Time, onClockTeamID uuid.UUID, consecutiveSkips int) (*models.DraftSession, error) {
	if f.session.Status != models.DraftStatusActive {
		return nil, apperrors.Newf(apperrors.KindConflict, "draft session %s is not active", id)
	}
	f.session.CurrentPickDeadline = &deadline
	f.session.CurrentOnClockTeamID = &onClockTeamID
	f.session.ConsecutiveSkips = consecutiveSkips
	return f.get(), nil
}

func (f *fakeSessionStore) SetPaused(ctx context.Context, id uuid.UUID) (*models.DraftSession, error) {
	if f.session == nil || f.session.Status != models.DraftStatusActive {
		return nil, apperrors.Newf(apperrors.KindConflict, "draft session %s is not active", id)
	}
	f.session.Status = models.DraftStatusPaused
	f.session.CurrentPickDeadline = nil
	return f.get(), nil
}

func (f *fakeSessionStore) SetCompleted(ctx context.Context, id uuid.UUID) (*models.DraftSession, error) {
	if f.session.Status == models.DraftStatusCompleted {
		return nil, apperrors.Newf(apperrors.KindConflict, "draft session %s is already completed", id)
	}
	f.session.Status = models.DraftStatusCompleted
	f.session.CurrentPickDeadline = nil
	f.session.CurrentOnClockTeamID = nil
	return f.get(), nil
}

type fakeOrders struct {
	entries []models.DraftOrderEntry
}

func (f *fakeOrders) GetEntries(ctx context.Context, seasonID uuid.UUID) ([]models.DraftOrderEntry, error) {
	return f.entries, nil
}

type fakeSeasons struct {
	season *models.Season
}

func (f *fakeSeasons) GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	return f.season, nil
}

func (f *fakeSeasons) GetActiveSeason(ctx context.Context) (*models.Season, error) {
	if f.season == nil || !f.season.IsActive {
		return nil, apperrors.New(apperrors.KindNotFound, "no active season")
	}
	return f.season, nil
}

// fakeLedger counts every appended row (picks and skips both) per team, the
// same way the store does.
type fakeLedger struct {
	counts map[uuid.UUID]int
	spent  map[uuid.UUID]int
	skips  int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{counts: map[uuid.UUID]int{}, spent: map[uuid.UUID]int{}}
}

func (f *fakeLedger) AddDraftPick(ctx context.Context, req pick.AddDraftPickRequest) (*models.DraftPick, error) {
	f.counts[req.TeamID]++
	return &models.DraftPick{ID: uuid.New(), TeamID: req.TeamID, DraftSessionID: req.SessionID}, nil
}

func (f *fakeLedger) AddDraftPickInternal(ctx context.Context, req pick.AddDraftPickRequest) (*models.DraftPick, error) {
	f.counts[req.TeamID]++
	return &models.DraftPick{ID: uuid.New(), TeamID: req.TeamID, DraftSessionID: req.SessionID}, nil
}

func (f *fakeLedger) RecordSkippedPick(ctx context.Context, sessionID, teamID uuid.UUID, consecutiveSkips int) (*models.DraftPick, error) {
	f.counts[teamID]++
	f.skips++
	return &models.DraftPick{ID: uuid.New(), TeamID: teamID, DraftSessionID: sessionID, CardID: models.SkippedPickCardID}, nil
}

func (f *fakeLedger) CountPicksByTeam(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]int, error) {
	return f.counts, nil
}

func (f *fakeLedger) CountPicks(ctx context.Context, sessionID uuid.UUID) (int, error) {
	total := 0
	for _, n := range f.counts {
		total += n
	}
	return total, nil
}

func (f *fakeLedger) SumCubucksSpentByTeam(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]int, error) {
	return f.spent, nil
}

// fakeStrategy returns a fixed card, or nil to simulate no affordable card.
type fakeStrategy struct {
	card *models.CardPoolEntry
}

func (f *fakeStrategy) SelectCard(ctx context.Context, seasonID, teamID uuid.UUID, remainingCubucks int) (*models.CardPoolEntry, error) {
	return f.card, nil
}

type fakeOutbox struct {
	eventTypes []string
}

func (f *fakeOutbox) record(t string) error {
	f.eventTypes = append(f.eventTypes, t)
	return nil
}

func (f *fakeOutbox) InsertOutboxDraftStarted(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return f.record("draft_started")
}

func (f *fakeOutbox) InsertOutboxDraftPaused(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return f.record("draft_paused")
}

func (f *fakeOutbox) InsertOutboxDraftResumed(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return f.record("draft_resumed")
}

func (f *fakeOutbox) InsertOutboxDraftCompleted(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return f.record("draft_completed")
}

func (f *fakeOutbox) InsertOutboxOnTheClock(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return f.record("on_the_clock")
}

func (f *fakeOutbox) InsertOutboxOnDeck(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return f.record("on_deck")
}

type fakeAuth struct{}

func (fakeAuth) RequireAdmin(ctx context.Context) (*auth.Identity, error) {
	return &auth.Identity{UserID: uuid.New(), IsAdmin: true}, nil
}

type harness struct {
	app      *App
	store    *fakeSessionStore
	orders   *fakeOrders
	seasons  *fakeSeasons
	ledger   *fakeLedger
	strategy *fakeStrategy
	outbox   *fakeOutbox
	clock    *clockwork.FakeClock
	teamA    uuid.UUID
	teamB    uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	teamA := uuid.New()
	teamB := uuid.New()
	seasonID := uuid.New()

	h := &harness{
		store: &fakeSessionStore{},
		orders: &fakeOrders{entries: []models.DraftOrderEntry{
			{SeasonID: seasonID, TeamID: teamA, PickPosition: 1},
			{SeasonID: seasonID, TeamID: teamB, PickPosition: 2},
		}},
		seasons:  &fakeSeasons{season: &models.Season{ID: seasonID, Number: 2, IsActive: true, CubucksAllocation: 100}},
		ledger:   newFakeLedger(),
		strategy: &fakeStrategy{},
		outbox:   &fakeOutbox{},
		clock:    clockwork.NewFakeClock(),
		teamA:    teamA,
		teamB:    teamB,
	}
	h.app = NewApp(h.store, h.orders, h.seasons, h.ledger, h.strategy, h.outbox, fakeAuth{}, h.clock)
	return h
}

// schedule seeds a scheduled session starting at the given offset from now.
func (h *harness) schedule(t *testing.T, startOffset time.Duration, totalRounds int) *models.DraftSession {
	t.Helper()
	session, err := h.app.CreateSession(context.Background(), CreateSessionRequest{
		SeasonID:     h.seasons.season.ID,
		TotalRounds:  totalRounds,
		HoursPerPick: 1,
		StartTime:    h.clock.Now().Add(startOffset),
	})
	require.NoError(t, err)
	return session
}

func (h *harness) activateNow(t *testing.T) *models.DraftSession {
	t.Helper()
	session, err := h.app.ActivateDraft(context.Background(), h.store.session.ID)
	require.NoError(t, err)
	return session
}

func TestCreateSessionValidation(t *testing.T) {
	h := newHarness(t)
	now := h.clock.Now()
	end := now

	cases := []struct {
		name string
		req  CreateSessionRequest
	}{
		{
			name: "zero rounds",
			req:  CreateSessionRequest{SeasonID: h.seasons.season.ID, TotalRounds: 0, HoursPerPick: 1, StartTime: now},
		},
		{
			name: "non-positive hours per pick",
			req:  CreateSessionRequest{SeasonID: h.seasons.season.ID, TotalRounds: 5, HoursPerPick: 0, StartTime: now},
		},
		{
			name: "end time not after start time",
			req:  CreateSessionRequest{SeasonID: h.seasons.season.ID, TotalRounds: 5, HoursPerPick: 1, StartTime: now, EndTime: &end},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.app.CreateSession(context.Background(), tc.req)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		})
	}
}

func TestCheckDraftTimerActivatesDueSession(t *testing.T) {
	h := newHarness(t)
	session := h.schedule(t, time.Minute, 5)

	// Not due yet.
	result, err := h.app.CheckDraftTimer(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionNone, result.Action)
	assert.Equal(t, models.DraftStatusScheduled, h.store.session.Status)

	h.clock.Advance(2 * time.Minute)

	result, err = h.app.CheckDraftTimer(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionActivated, result.Action)
	assert.Equal(t, models.DraftStatusActive, h.store.session.Status)
	require.NotNil(t, h.store.session.CurrentOnClockTeamID)
	assert.Equal(t, h.teamA, *h.store.session.CurrentOnClockTeamID)
	require.NotNil(t, h.store.session.CurrentPickDeadline)
	assert.Equal(t, h.clock.Now().Add(time.Hour), *h.store.session.CurrentPickDeadline)
	assert.Contains(t, h.outbox.eventTypes, "draft_started")
	assert.Contains(t, h.outbox.eventTypes, "on_the_clock")

	// Firing again before the pick deadline does nothing.
	result, err = h.app.CheckDraftTimer(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionNone, result.Action)
}

func TestCheckDraftTimerAutoDraftsLapsedTurn(t *testing.T) {
	h := newHarness(t)
	session := h.schedule(t, 0, 5)
	h.activateNow(t)
	h.strategy.card = &models.CardPoolEntry{ID: uuid.New(), Name: "Lightning Bolt", Elo: 1500, CubucksCost: 10}

	h.clock.Advance(2 * time.Hour)

	result, err := h.app.CheckDraftTimer(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionAutoDrafted, result.Action)
	assert.Contains(t, result.Message, "Lightning Bolt")
	assert.Equal(t, 1, h.ledger.counts[h.teamA])
	require.NotNil(t, h.store.session.CurrentOnClockTeamID)
	assert.Equal(t, h.teamB, *h.store.session.CurrentOnClockTeamID)
	assert.Equal(t, 0, h.store.session.ConsecutiveSkips)
}

func TestCheckDraftTimerSkipsWithoutAffordableCard(t *testing.T) {
	h := newHarness(t)
	session := h.schedule(t, 0, 5)
	h.activateNow(t)
	h.strategy.card = nil

	h.clock.Advance(2 * time.Hour)

	result, err := h.app.CheckDraftTimer(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionSkipped, result.Action)
	assert.Equal(t, 1, h.store.session.ConsecutiveSkips)
	assert.Equal(t, 1, h.ledger.skips)

	// The second consecutive skip closes the loop: every team passed, so the
	// session force-completes.
	h.clock.Advance(2 * time.Hour)
	result, err = h.app.CheckDraftTimer(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionCompleted, result.Action)
	assert.Equal(t, models.DraftStatusCompleted, h.store.session.Status)
	assert.Contains(t, h.outbox.eventTypes, "draft_completed")
}

func TestSuccessfulPickResetsSkipCounter(t *testing.T) {
	h := newHarness(t)
	session := h.schedule(t, 0, 5)
	h.activateNow(t)

	// First turn lapses with nothing affordable.
	h.strategy.card = nil
	h.clock.Advance(2 * time.Hour)
	_, err := h.app.CheckDraftTimer(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, 1, h.store.session.ConsecutiveSkips)

	// Next turn the strategy finds a card; the streak is broken.
	h.strategy.card = &models.CardPoolEntry{ID: uuid.New(), Name: "Counterspell", CubucksCost: 5}
	h.clock.Advance(2 * time.Hour)
	result, err := h.app.CheckDraftTimer(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionAutoDrafted, result.Action)
	assert.Equal(t, 0, h.store.session.ConsecutiveSkips)
}

func TestMakePickRejectsTeamNotOnTheClock(t *testing.T) {
	h := newHarness(t)
	session := h.schedule(t, 0, 5)
	h.activateNow(t)

	_, err := h.app.MakePick(context.Background(), session.ID, pick.AddDraftPickRequest{
		TeamID:     h.teamB,
		CardPoolID: uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestMakePickAdvancesTurn(t *testing.T) {
	h := newHarness(t)
	session := h.schedule(t, 0, 2)
	h.activateNow(t)

	_, err := h.app.MakePick(context.Background(), session.ID, pick.AddDraftPickRequest{
		TeamID:     h.teamA,
		CardPoolID: uuid.New(),
	})
	require.NoError(t, err)
	require.NotNil(t, h.store.session.CurrentOnClockTeamID)
	assert.Equal(t, h.teamB, *h.store.session.CurrentOnClockTeamID)
}

func TestDraftCompletesWhenAllRoundsDrafted(t *testing.T) {
	h := newHarness(t)
	session := h.schedule(t, 0, 2)
	h.activateNow(t)

	order := []uuid.UUID{h.teamA, h.teamB, h.teamA, h.teamB}
	for i, teamID := range order {
		_, err := h.app.MakePick(context.Background(), session.ID, pick.AddDraftPickRequest{
			TeamID:     teamID,
			CardPoolID: uuid.New(),
		})
		require.NoError(t, err, "pick %d", i+1)
	}

	assert.Equal(t, models.DraftStatusCompleted, h.store.session.Status)
	assert.Nil(t, h.store.session.CurrentOnClockTeamID)
	assert.Nil(t, h.store.session.CurrentPickDeadline)
	assert.Contains(t, h.outbox.eventTypes, "draft_completed")
}

func TestDraftCompletesWhenEndTimePasses(t *testing.T) {
	h := newHarness(t)
	end := h.clock.Now().Add(90 * time.Minute)
	_, err := h.app.CreateSession(context.Background(), CreateSessionRequest{
		SeasonID:     h.seasons.season.ID,
		TotalRounds:  40,
		HoursPerPick: 1,
		StartTime:    h.clock.Now(),
		EndTime:      &end,
	})
	require.NoError(t, err)
	h.activateNow(t)

	// The pick lands after the hard end time; advancing completes the draft.
	h.clock.Advance(2 * time.Hour)
	_, err = h.app.MakePick(context.Background(), h.store.session.ID, pick.AddDraftPickRequest{
		TeamID:     h.teamA,
		CardPoolID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusCompleted, h.store.session.Status)
}

func TestDraftCompletesWhenCubucksExhausted(t *testing.T) {
	h := newHarness(t)
	session := h.schedule(t, 0, 40)
	h.activateNow(t)

	// Every team has spent its full allocation; the next advance ends the draft.
	h.ledger.spent[h.teamA] = h.seasons.season.CubucksAllocation
	h.ledger.spent[h.teamB] = h.seasons.season.CubucksAllocation

	_, err := h.app.MakePick(context.Background(), session.ID, pick.AddDraftPickRequest{
		TeamID:     h.teamA,
		CardPoolID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusCompleted, h.store.session.Status)
	assert.Nil(t, h.store.session.CurrentOnClockTeamID)
	assert.Contains(t, h.outbox.eventTypes, "draft_completed")
}

func TestMakePickRejectsSessionWithNoTeamOnTheClock(t *testing.T) {
	h := newHarness(t)
	session := h.schedule(t, 0, 5)
	h.activateNow(t)
	h.store.session.CurrentOnClockTeamID = nil

	_, err := h.app.MakePick(context.Background(), session.ID, pick.AddDraftPickRequest{
		TeamID:     h.teamA,
		CardPoolID: uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Zero(t, h.ledger.counts[h.teamA])
}

func TestPauseRequiresActiveSession(t *testing.T) {
	h := newHarness(t)
	session := h.schedule(t, time.Hour, 5)

	_, err := h.app.PauseDraft(context.Background(), session.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestPauseAndResumeRecomputesClock(t *testing.T) {
	h := newHarness(t)
	session := h.schedule(t, 0, 5)
	h.activateNow(t)

	// Team A picks, then the admin pauses.
	_, err := h.app.MakePick(context.Background(), session.ID, pick.AddDraftPickRequest{
		TeamID:     h.teamA,
		CardPoolID: uuid.New(),
	})
	require.NoError(t, err)

	paused, err := h.app.PauseDraft(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusPaused, paused.Status)
	assert.Nil(t, paused.CurrentPickDeadline)

	// The timer must not fire while paused.
	h.clock.Advance(5 * time.Hour)
	result, err := h.app.CheckDraftTimer(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionNone, result.Action)

	// Resume restores team B on the clock with a fresh deadline.
	resumed, err := h.app.ResumeDraft(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusActive, resumed.Status)
	require.NotNil(t, resumed.CurrentOnClockTeamID)
	assert.Equal(t, h.teamB, *resumed.CurrentOnClockTeamID)
	require.NotNil(t, resumed.CurrentPickDeadline)
	assert.Equal(t, h.clock.Now().Add(time.Hour), *resumed.CurrentPickDeadline)
	assert.Contains(t, h.outbox.eventTypes, "draft_resumed")
}

func TestResumeRequiresPausedSession(t *testing.T) {
	h := newHarness(t)
	session := h.schedule(t, 0, 5)
	h.activateNow(t)

	_, err := h.app.ResumeDraft(context.Background(), session.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestCheckActiveDraftTimerWithoutSession(t *testing.T) {
	h := newHarness(t)

	result, err := h.app.CheckActiveDraftTimer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ActionNone, result.Action)
	assert.Equal(t, "no open draft session", result.Message)
}
