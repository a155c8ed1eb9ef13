package vote

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
	"github.com/draftforge/cubeleague/go/internal/models"
)

type fakeVoteStore struct {
	polls   map[uuid.UUID]*models.Poll
	options map[uuid.UUID][]models.PollOption
	ballots map[uuid.UUID]map[uuid.UUID]uuid.UUID // pollID -> userID -> optionID

	weightedTallies int
}

func newFakeVoteStore() *fakeVoteStore {
	return &fakeVoteStore{
		polls:   map[uuid.UUID]*models.Poll{},
		options: map[uuid.UUID][]models.PollOption{},
		ballots: map[uuid.UUID]map[uuid.UUID]uuid.UUID{},
	}
}

func (f *fakeVoteStore) CreatePoll(ctx context.Context, req CreatePollRequest) (*models.Poll, error) {
	poll := &models.Poll{ID: uuid.New(), Question: req.Question, Weighted: req.Weighted, ClosesAt: req.ClosesAt}
	f.polls[poll.ID] = poll
	for _, label := range req.Options {
		f.options[poll.ID] = append(f.options[poll.ID], models.PollOption{ID: uuid.New(), PollID: poll.ID, Label: label})
	}
	f.ballots[poll.ID] = map[uuid.UUID]uuid.UUID{}
	return poll, nil
}

func (f *fakeVoteStore) GetPoll(ctx context.Context, id uuid.UUID) (*models.Poll, error) {
	if poll, ok := f.polls[id]; ok {
		return poll, nil
	}
	return nil, apperrors.Newf(apperrors.KindNotFound, "poll %s not found", id)
}

func (f *fakeVoteStore) ListPolls(ctx context.Context) ([]models.Poll, error) {
	var polls []models.Poll
	for _, poll := range f.polls {
		polls = append(polls, *poll)
	}
	return polls, nil
}

func (f *fakeVoteStore) ListOptions(ctx context.Context, pollID uuid.UUID) ([]models.PollOption, error) {
	return f.options[pollID], nil
}

func (f *fakeVoteStore) CastVote(ctx context.Context, pollID, optionID, userID uuid.UUID) (*models.Vote, error) {
	if _, voted := f.ballots[pollID][userID]; voted {
		return nil, apperrors.New(apperrors.KindConflict, "you have already voted in this poll")
	}
	f.ballots[pollID][userID] = optionID
	return &models.Vote{PollID: pollID, OptionID: optionID, UserID: userID}, nil
}

func (f *fakeVoteStore) ClosePoll(ctx context.Context, id uuid.UUID) (*models.Poll, error) {
	poll, ok := f.polls[id]
	if !ok || poll.Closed {
		return nil, apperrors.Newf(apperrors.KindConflict, "poll %s is already closed or does not exist", id)
	}
	poll.Closed = true
	return poll, nil
}

func (f *fakeVoteStore) TallyBallots(ctx context.Context, pollID uuid.UUID) ([]models.PollOptionResult, error) {
	var results []models.PollOptionResult
	for _, option := range f.options[pollID] {
		count := 0
		for _, optionID := range f.ballots[pollID] {
			if optionID == option.ID {
				count++
			}
		}
		results = append(results, models.PollOptionResult{OptionID: option.ID, Label: option.Label, Ballots: count, Weight: count})
	}
	return results, nil
}

func (f *fakeVoteStore) TallyWeighted(ctx context.Context, pollID uuid.UUID) ([]models.PollOptionResult, error) {
	f.weightedTallies++
	return f.TallyBallots(ctx, pollID)
}

type fakeAuth struct {
	userID uuid.UUID
	admin  bool
}

func (f *fakeAuth) Resolve(ctx context.Context) (*auth.Identity, error) {
	if f.userID == uuid.Nil {
		return nil, apperrors.NotAuthenticated()
	}
	return &auth.Identity{UserID: f.userID, IsAdmin: f.admin}, nil
}

func (f *fakeAuth) RequireAdmin(ctx context.Context) (*auth.Identity, error) {
	ident, err := f.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if !ident.IsAdmin {
		return nil, apperrors.NotAuthorized()
	}
	return ident, nil
}

func newVoteApp(admin bool) (*App, *fakeVoteStore, *fakeAuth, *clockwork.FakeClock) {
	store := newFakeVoteStore()
	authApp := &fakeAuth{userID: uuid.New(), admin: admin}
	clock := clockwork.NewFakeClock()
	return NewApp(store, authApp, clock), store, authApp, clock
}

func TestCreatePollValidation(t *testing.T) {
	app, _, _, clock := newVoteApp(true)
	past := clock.Now().Add(-time.Hour)

	cases := []struct {
		name string
		req  CreatePollRequest
	}{
		{name: "blank question", req: CreatePollRequest{Question: "  ", Options: []string{"a", "b"}}},
		{name: "single option", req: CreatePollRequest{Question: "Best guild?", Options: []string{"Dimir"}}},
		{name: "blank option", req: CreatePollRequest{Question: "Best guild?", Options: []string{"Dimir", " "}}},
		{name: "close time in the past", req: CreatePollRequest{Question: "Best guild?", Options: []string{"Dimir", "Izzet"}, ClosesAt: &past}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := app.CreatePoll(context.Background(), tc.req)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		})
	}
}

func TestCreatePollRequiresAdmin(t *testing.T) {
	app, _, _, _ := newVoteApp(false)

	_, err := app.CreatePoll(context.Background(), CreatePollRequest{Question: "Best guild?", Options: []string{"Dimir", "Izzet"}})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotAuthorized, apperrors.KindOf(err))
}

func TestCastVoteOnePerUser(t *testing.T) {
	app, store, _, _ := newVoteApp(true)
	poll, err := app.CreatePoll(context.Background(), CreatePollRequest{Question: "Best guild?", Options: []string{"Dimir", "Izzet"}})
	require.NoError(t, err)
	option := store.options[poll.ID][0]

	_, err = app.CastVote(context.Background(), CastVoteRequest{PollID: poll.ID, OptionID: option.ID})
	require.NoError(t, err)

	_, err = app.CastVote(context.Background(), CastVoteRequest{PollID: poll.ID, OptionID: option.ID})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestCastVoteRejectsForeignOption(t *testing.T) {
	app, _, _, _ := newVoteApp(true)
	poll, err := app.CreatePoll(context.Background(), CreatePollRequest{Question: "Best guild?", Options: []string{"Dimir", "Izzet"}})
	require.NoError(t, err)

	_, err = app.CastVote(context.Background(), CastVoteRequest{PollID: poll.ID, OptionID: uuid.New()})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCastVoteRejectsClosedAndExpiredPolls(t *testing.T) {
	app, store, _, clock := newVoteApp(true)

	closesAt := clock.Now().Add(time.Hour)
	expiring, err := app.CreatePoll(context.Background(), CreatePollRequest{Question: "Expiring?", Options: []string{"yes", "no"}, ClosesAt: &closesAt})
	require.NoError(t, err)

	closed, err := app.CreatePoll(context.Background(), CreatePollRequest{Question: "Closed?", Options: []string{"yes", "no"}})
	require.NoError(t, err)
	_, err = app.ClosePoll(context.Background(), closed.ID)
	require.NoError(t, err)

	_, err = app.CastVote(context.Background(), CastVoteRequest{PollID: closed.ID, OptionID: store.options[closed.ID][0].ID})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	clock.Advance(2 * time.Hour)
	_, err = app.CastVote(context.Background(), CastVoteRequest{PollID: expiring.ID, OptionID: store.options[expiring.ID][0].ID})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestResultsUsesWeightedTallyForWeightedPolls(t *testing.T) {
	store := newFakeVoteStore()
	authApp := &fakeAuth{userID: uuid.New(), admin: true}
	app := NewApp(store, authApp, clockwork.NewFakeClock())

	weighted, err := app.CreatePoll(context.Background(), CreatePollRequest{Question: "Weighted?", Options: []string{"yes", "no"}, Weighted: true})
	require.NoError(t, err)

	results, err := app.Results(context.Background(), weighted.ID)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, 1, store.weightedTallies)
}
