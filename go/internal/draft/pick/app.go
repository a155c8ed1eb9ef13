package pick

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/auth"
	"github.com/draftforge/cubeleague/go/internal/draft/events"
	"github.com/draftforge/cubeleague/go/internal/models"
)

// PickRepository defines what the app layer needs from the repository
type PickRepository interface {
	ClaimCard(ctx context.Context, req AddDraftPickRequest, cardID, cardName string) (*models.DraftPick, error)
	CreateSkippedPick(ctx context.Context, sessionID, teamID uuid.UUID) (*models.DraftPick, error)
	CountPicksByTeam(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]int, error)
	CountPicks(ctx context.Context, sessionID uuid.UUID) (int, error)
	SumCubucksSpentByTeam(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]int, error)
	ListPicksBySession(ctx context.Context, sessionID uuid.UUID) ([]models.DraftPick, error)
}

// CardSource resolves card pool entries
type CardSource interface {
	GetCard(ctx context.Context, id uuid.UUID) (*models.CardPoolEntry, error)
}

// SessionSource resolves the draft session a pick targets
type SessionSource interface {
	GetSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error)
}

// MembershipSource validates team membership on the human pick path
type MembershipSource interface {
	GetMembership(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error)
}

// OutboxApp defines what the app layer needs from the outbox
type OutboxApp interface {
	InsertOutboxNewPick(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxPickSkipped(ctx context.Context, sessionID uuid.UUID, payload []byte) error
}

// AuthApp defines what the app layer needs from auth
type AuthApp interface {
	Resolve(ctx context.Context) (*auth.Identity, error)
}

// App is the pick ledger: the append-only record of draft picks, including
// skipped-pick sentinels.
type App struct {
	repo     PickRepository
	cards    CardSource
	sessions SessionSource
	members  MembershipSource
	outbox   OutboxApp
	auth     AuthApp
}

// NewApp creates a new pick ledger App
func NewApp(repo PickRepository, cards CardSource, sessions SessionSource, members MembershipSource, outbox OutboxApp, auth AuthApp) *App {
	return &App{repo: repo, cards: cards, sessions: sessions, members: members, outbox: outbox, auth: auth}
}

// AddDraftPick claims a card for the caller's team. The caller must be a
// member of the team; the card instance must not have been drafted.
func (a *App) AddDraftPick(ctx context.Context, req AddDraftPickRequest) (*models.DraftPick, error) {
	ident, err := a.auth.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := a.members.GetMembership(ctx, req.TeamID, ident.UserID); err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.New(apperrors.KindNotAuthorized, "you are not a member of this team")
		}
		return nil, err
	}

	req.DraftedBy = &ident.UserID
	return a.claim(ctx, req)
}

// AddDraftPickInternal claims a card on a team's behalf without membership
// validation. Used by the auto-draft path; DraftedBy stays nil.
func (a *App) AddDraftPickInternal(ctx context.Context, req AddDraftPickRequest) (*models.DraftPick, error) {
	req.DraftedBy = nil
	return a.claim(ctx, req)
}

func (a *App) claim(ctx context.Context, req AddDraftPickRequest) (*models.DraftPick, error) {
	card, err := a.cards.GetCard(ctx, req.CardPoolID)
	if err != nil {
		return nil, err
	}

	session, err := a.sessions.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if card.SeasonID != session.SeasonID {
		return nil, apperrors.Newf(apperrors.KindValidation, "card %q belongs to another season's pool", card.Name)
	}

	pick, err := a.repo.ClaimCard(ctx, req, card.CardID, card.Name)
	if err != nil {
		return nil, err
	}

	a.emitNewPick(ctx, pick)

	log.Info().
		Str("session_id", pick.DraftSessionID.String()).
		Str("team_id", pick.TeamID.String()).
		Str("card", pick.CardName).
		Int("pick_number", pick.PickNumber).
		Bool("auto", pick.DraftedBy == nil).
		Msg("card drafted")
	return pick, nil
}

// RecordSkippedPick appends the skipped-pick sentinel for a lapsed turn.
func (a *App) RecordSkippedPick(ctx context.Context, sessionID, teamID uuid.UUID, consecutiveSkips int) (*models.DraftPick, error) {
	skip, err := a.repo.CreateSkippedPick(ctx, sessionID, teamID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(events.PickSkippedPayload{
		SessionID:        sessionID.String(),
		TeamID:           teamID.String(),
		PickNumber:       skip.PickNumber,
		ConsecutiveSkips: consecutiveSkips,
		SkippedAt:        skip.DraftedAt,
	})
	if err == nil {
		if err := a.outbox.InsertOutboxPickSkipped(ctx, sessionID, payload); err != nil {
			log.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to emit PickSkipped event")
		}
	}

	log.Warn().
		Str("session_id", sessionID.String()).
		Str("team_id", teamID.String()).
		Int("pick_number", skip.PickNumber).
		Msg("pick skipped")
	return skip, nil
}

// CountPicksByTeam counts ledger rows per team (skips included).
func (a *App) CountPicksByTeam(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]int, error) {
	return a.repo.CountPicksByTeam(ctx, sessionID)
}

// CountPicks counts all ledger rows for a session.
func (a *App) CountPicks(ctx context.Context, sessionID uuid.UUID) (int, error) {
	return a.repo.CountPicks(ctx, sessionID)
}

// SumCubucksSpentByTeam totals what each team has spent in a session.
func (a *App) SumCubucksSpentByTeam(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]int, error) {
	return a.repo.SumCubucksSpentByTeam(ctx, sessionID)
}

// ListPicksBySession returns the full ledger in pick order.
func (a *App) ListPicksBySession(ctx context.Context, sessionID uuid.UUID) ([]models.DraftPick, error) {
	return a.repo.ListPicksBySession(ctx, sessionID)
}

func (a *App) emitNewPick(ctx context.Context, pick *models.DraftPick) {
	payload, err := json.Marshal(events.NewPickPayload{
		SessionID:  pick.DraftSessionID.String(),
		PickID:     pick.ID.String(),
		TeamID:     pick.TeamID.String(),
		CardName:   pick.CardName,
		PickNumber: pick.PickNumber,
		AutoDraft:  pick.DraftedBy == nil,
		DraftedAt:  pick.DraftedAt,
	})
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("failed to marshal NewPick payload for pick %s", pick.ID))
		return
	}
	if err := a.outbox.InsertOutboxNewPick(ctx, pick.DraftSessionID, payload); err != nil {
		// Broadcast failures never fail the pick itself.
		log.Error().Err(err).Str("pick_id", pick.ID.String()).Msg("failed to emit NewPick event")
	}
}
