package vote

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/auth"
	"github.com/draftforge/cubeleague/go/internal/models"
)

// VoteRepository defines what the app layer needs from the repository
type VoteRepository interface {
	CreatePoll(ctx context.Context, req CreatePollRequest) (*models.Poll, error)
	GetPoll(ctx context.Context, id uuid.UUID) (*models.Poll, error)
	ListPolls(ctx context.Context) ([]models.Poll, error)
	ListOptions(ctx context.Context, pollID uuid.UUID) ([]models.PollOption, error)
	CastVote(ctx context.Context, pollID, optionID, userID uuid.UUID) (*models.Vote, error)
	ClosePoll(ctx context.Context, id uuid.UUID) (*models.Poll, error)
	TallyBallots(ctx context.Context, pollID uuid.UUID) ([]models.PollOptionResult, error)
	TallyWeighted(ctx context.Context, pollID uuid.UUID) ([]models.PollOptionResult, error)
}

// AuthApp defines what the app layer needs from auth
type AuthApp interface {
	Resolve(ctx context.Context) (*auth.Identity, error)
	RequireAdmin(ctx context.Context) (*auth.Identity, error)
}

// App provides poll and ballot operations
type App struct {
	repo  VoteRepository
	auth  AuthApp
	clock clockwork.Clock
}

// NewApp creates a new vote App
func NewApp(repo VoteRepository, auth AuthApp, clock clockwork.Clock) *App {
	return &App{repo: repo, auth: auth, clock: clock}
}

// CreatePoll opens a new poll. Admin only.
func (a *App) CreatePoll(ctx context.Context, req CreatePollRequest) (*models.Poll, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Question) == "" {
		return nil, apperrors.New(apperrors.KindValidation, "poll question is required")
	}
	if len(req.Options) < 2 {
		return nil, apperrors.New(apperrors.KindValidation, "a poll needs at least two options")
	}
	for _, label := range req.Options {
		if strings.TrimSpace(label) == "" {
			return nil, apperrors.New(apperrors.KindValidation, "poll options cannot be blank")
		}
	}
	if req.ClosesAt != nil && req.ClosesAt.Before(a.clock.Now()) {
		return nil, apperrors.New(apperrors.KindValidation, "poll close time is in the past")
	}

	poll, err := a.repo.CreatePoll(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("poll_id", poll.ID.String()).
		Str("question", poll.Question).
		Bool("weighted", poll.Weighted).
		Msg("created poll")
	return poll, nil
}

// GetPoll retrieves a poll by ID
func (a *App) GetPoll(ctx context.Context, id uuid.UUID) (*models.Poll, error) {
	return a.repo.GetPoll(ctx, id)
}

// ListPolls retrieves all polls
func (a *App) ListPolls(ctx context.Context) ([]models.Poll, error) {
	return a.repo.ListPolls(ctx)
}

// ListOptions retrieves a poll's options
func (a *App) ListOptions(ctx context.Context, pollID uuid.UUID) ([]models.PollOption, error) {
	return a.repo.ListOptions(ctx, pollID)
}

// CastVote records the caller's ballot. One ballot per user per poll.
func (a *App) CastVote(ctx context.Context, req CastVoteRequest) (*models.Vote, error) {
	ident, err := a.auth.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	poll, err := a.repo.GetPoll(ctx, req.PollID)
	if err != nil {
		return nil, err
	}
	if poll.Closed {
		return nil, apperrors.New(apperrors.KindConflict, "this poll is closed")
	}
	if poll.ClosesAt != nil && !a.clock.Now().Before(*poll.ClosesAt) {
		return nil, apperrors.New(apperrors.KindConflict, "this poll has expired")
	}

	options, err := a.repo.ListOptions(ctx, req.PollID)
	if err != nil {
		return nil, err
	}
	valid := false
	for _, option := range options {
		if option.ID == req.OptionID {
			valid = true
			break
		}
	}
	if !valid {
		return nil, apperrors.New(apperrors.KindValidation, "option does not belong to this poll")
	}

	return a.repo.CastVote(ctx, req.PollID, req.OptionID, ident.UserID)
}

// ClosePoll ends voting on a poll. Admin only.
func (a *App) ClosePoll(ctx context.Context, id uuid.UUID) (*models.Poll, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	poll, err := a.repo.ClosePoll(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Info().Str("poll_id", poll.ID.String()).Msg("closed poll")
	return poll, nil
}

// Results tallies a poll, by role weight when the poll is weighted.
func (a *App) Results(ctx context.Context, pollID uuid.UUID) ([]models.PollOptionResult, error) {
	poll, err := a.repo.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}

	if poll.Weighted {
		return a.repo.TallyWeighted(ctx, pollID)
	}
	return a.repo.TallyBallots(ctx, pollID)
}
