package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/auth"
	"github.com/draftforge/cubeleague/go/internal/draft/autodraft"
	"github.com/draftforge/cubeleague/go/internal/draft/events"
	"github.com/draftforge/cubeleague/go/internal/draft/order"
	"github.com/draftforge/cubeleague/go/internal/draft/pick"
	"github.com/draftforge/cubeleague/go/internal/models"
)

// SessionRepository defines what the app layer needs from the repository
type SessionRepository interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (*models.DraftSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error)
	GetOpenSessionBySeason(ctx context.Context, seasonID uuid.UUID) (*models.DraftSession, error)
	ListDueSessions(ctx context.Context, now time.Time) ([]models.DraftSession, error)
	NextDeadline(ctx context.Context) (*time.Time, error)
	SetActive(ctx context.Context, id uuid.UUID, deadline time.Time, onClockTeamID uuid.UUID) (*models.DraftSession, error)
	UpdateTurn(ctx context.Context, id uuid.UUID, deadline time.Time, onClockTeamID uuid.UUID, consecutiveSkips int) (*models.DraftSession, error)
	SetPaused(ctx context.Context, id uuid.UUID) (*models.DraftSession, error)
	SetCompleted(ctx context.Context, id uuid.UUID) (*models.DraftSession, error)
}

// OrderSource defines what the state machine needs from the draft order engine
type OrderSource interface {
	GetEntries(ctx context.Context, seasonID uuid.UUID) ([]models.DraftOrderEntry, error)
}

// SeasonSource defines what the state machine needs from the season domain
type SeasonSource interface {
	GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error)
	GetActiveSeason(ctx context.Context) (*models.Season, error)
}

// PickLedger defines what the state machine needs from the pick ledger
type PickLedger interface {
	AddDraftPick(ctx context.Context, req pick.AddDraftPickRequest) (*models.DraftPick, error)
	AddDraftPickInternal(ctx context.Context, req pick.AddDraftPickRequest) (*models.DraftPick, error)
	RecordSkippedPick(ctx context.Context, sessionID, teamID uuid.UUID, consecutiveSkips int) (*models.DraftPick, error)
	CountPicksByTeam(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]int, error)
	CountPicks(ctx context.Context, sessionID uuid.UUID) (int, error)
	SumCubucksSpentByTeam(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]int, error)
}

// OutboxApp defines what the state machine needs from the outbox
type OutboxApp interface {
	InsertOutboxDraftStarted(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxDraftPaused(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxDraftResumed(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxDraftCompleted(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxOnTheClock(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxOnDeck(ctx context.Context, sessionID uuid.UUID, payload []byte) error
}

// AuthApp defines what the app layer needs from auth
type AuthApp interface {
	RequireAdmin(ctx context.Context) (*auth.Identity, error)
}

// App is the draft session controller. It owns the session lifecycle
// (scheduled, active, paused, completed), advances turns on picks and
// timeouts, and decides when the draft is over.
type App struct {
	repo     SessionRepository
	orders   OrderSource
	seasons  SeasonSource
	picks    PickLedger
	strategy autodraft.Strategy
	outbox   OutboxApp
	auth     AuthApp
	clock    clockwork.Clock
}

// NewApp creates a new draft session App
func NewApp(repo SessionRepository, orders OrderSource, seasons SeasonSource, picks PickLedger, strategy autodraft.Strategy, outbox OutboxApp, auth AuthApp, clock clockwork.Clock) *App {
	return &App{
		repo:     repo,
		orders:   orders,
		seasons:  seasons,
		picks:    picks,
		strategy: strategy,
		outbox:   outbox,
		auth:     auth,
		clock:    clock,
	}
}

// CreateSession schedules a draft session for a season. Admin only. At most
// one non-completed session can exist per season.
func (a *App) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.DraftSession, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if req.TotalRounds < 1 {
		return nil, apperrors.New(apperrors.KindValidation, "total rounds must be at least 1")
	}
	if req.HoursPerPick <= 0 {
		return nil, apperrors.New(apperrors.KindValidation, "hours per pick must be positive")
	}
	if req.EndTime != nil && !req.EndTime.After(req.StartTime) {
		return nil, apperrors.New(apperrors.KindValidation, "end time must be after start time")
	}
	if _, err := a.seasons.GetSeason(ctx, req.SeasonID); err != nil {
		return nil, err
	}

	session, err := a.repo.CreateSession(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", session.ID.String()).
		Str("season_id", session.SeasonID.String()).
		Int("total_rounds", session.TotalRounds).
		Time("start_time", session.StartTime).
		Msg("scheduled draft session")
	return session, nil
}

// GetSession retrieves a session by ID
func (a *App) GetSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error) {
	return a.repo.GetSession(ctx, id)
}

// GetOpenSessionBySeason retrieves a season's non-completed session, if any
func (a *App) GetOpenSessionBySeason(ctx context.Context, seasonID uuid.UUID) (*models.DraftSession, error) {
	return a.repo.GetOpenSessionBySeason(ctx, seasonID)
}

// ListDueSessions retrieves sessions whose timer is due at the given instant
func (a *App) ListDueSessions(ctx context.Context, now time.Time) ([]models.DraftSession, error) {
	return a.repo.ListDueSessions(ctx, now)
}

// NextDeadline returns the earliest upcoming timer instant, or nil when no
// session has one.
func (a *App) NextDeadline(ctx context.Context) (*time.Time, error) {
	return a.repo.NextDeadline(ctx)
}

// ActivateDraft starts a scheduled (or paused) session. Admin only; the
// timer takes the same path without the auth gate.
func (a *App) ActivateDraft(ctx context.Context, sessionID uuid.UUID) (*models.DraftSession, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	session, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return a.activate(ctx, session)
}

// PauseDraft suspends an active session and clears its pick deadline so the
// timer cannot fire. Pausing a session that is not active is a conflict.
func (a *App) PauseDraft(ctx context.Context, sessionID uuid.UUID) (*models.DraftSession, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	session, err := a.repo.SetPaused(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	a.emit(ctx, session.ID, events.TypeDraftPaused, events.DraftPausedPayload{
		SessionID: session.ID.String(),
		PausedAt:  a.clock.Now(),
		Reason:    "paused by admin",
	})

	log.Info().Str("session_id", session.ID.String()).Msg("paused draft session")
	return session, nil
}

// ResumeDraft restarts a paused session. The deadline and on-the-clock team
// are recomputed from current pick counts, not restored from the paused
// state.
func (a *App) ResumeDraft(ctx context.Context, sessionID uuid.UUID) (*models.DraftSession, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	session, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.DraftStatusPaused {
		return nil, apperrors.Newf(apperrors.KindConflict, "draft session %s is not paused", sessionID)
	}
	return a.activate(ctx, session)
}

// CompleteDraft ends a session by admin action.
func (a *App) CompleteDraft(ctx context.Context, sessionID uuid.UUID) (*models.DraftSession, error) {
	if _, err := a.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return a.complete(ctx, sessionID, reasonManual)
}

// MakePick claims a card for the on-the-clock team and advances the draft.
// The caller's membership in the team is validated by the pick ledger.
func (a *App) MakePick(ctx context.Context, sessionID uuid.UUID, req pick.AddDraftPickRequest) (*models.DraftPick, error) {
	session, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.DraftStatusActive {
		return nil, apperrors.Newf(apperrors.KindConflict, "draft session %s is not active", sessionID)
	}
	if session.CurrentOnClockTeamID == nil {
		return nil, apperrors.Newf(apperrors.KindConflict, "draft session %s has no team on the clock", sessionID)
	}
	if *session.CurrentOnClockTeamID != req.TeamID {
		return nil, apperrors.New(apperrors.KindValidation, "your team is not on the clock")
	}

	req.SessionID = session.ID
	drafted, err := a.picks.AddDraftPick(ctx, req)
	if err != nil {
		return nil, err
	}

	if _, err := a.advance(ctx, session, true); err != nil {
		// The pick is already on the ledger; surface the advance failure.
		return nil, err
	}
	return drafted, nil
}

// CheckDraftTimer is the idempotent timer check. It activates sessions whose
// start time has passed, auto-drafts (or skips) for teams whose pick
// deadline has lapsed, and reports what it did. When nothing is due it does
// nothing, so firing it repeatedly is safe.
func (a *App) CheckDraftTimer(ctx context.Context, sessionID uuid.UUID) (*TimerResult, error) {
	session, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := a.clock.Now()
	switch session.Status {
	case models.DraftStatusScheduled:
		if now.Before(session.StartTime) {
			return &TimerResult{Action: ActionNone, Message: "start time has not passed"}, nil
		}
		if _, err := a.activate(ctx, session); err != nil {
			return nil, err
		}
		return &TimerResult{Action: ActionActivated, Message: "draft activated"}, nil

	case models.DraftStatusActive:
		if session.CurrentPickDeadline == nil || now.Before(*session.CurrentPickDeadline) {
			return &TimerResult{Action: ActionNone, Message: "pick deadline has not passed"}, nil
		}
		return a.handleLapsedTurn(ctx, session)

	default:
		return &TimerResult{Action: ActionNone, Message: "no session in progress"}, nil
	}
}

// CheckActiveDraftTimer runs the timer check against the active season's
// open session. Convenience for the page-load-style HTTP endpoint.
func (a *App) CheckActiveDraftTimer(ctx context.Context) (*TimerResult, error) {
	season, err := a.seasons.GetActiveSeason(ctx)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return &TimerResult{Action: ActionNone, Message: "no active season"}, nil
		}
		return nil, err
	}

	session, err := a.repo.GetOpenSessionBySeason(ctx, season.ID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return &TimerResult{Action: ActionNone, Message: "no open draft session"}, nil
		}
		return nil, err
	}

	return a.CheckDraftTimer(ctx, session.ID)
}

// handleLapsedTurn auto-drafts for the on-the-clock team, falling back to a
// skipped pick when no affordable card remains. A full round of consecutive
// skips means no team can draft anything and the session force-completes.
func (a *App) handleLapsedTurn(ctx context.Context, session *models.DraftSession) (*TimerResult, error) {
	entries, err := a.orders.GetEntries(ctx, session.SeasonID)
	if err != nil {
		return nil, err
	}

	teamID, err := a.onTheClock(ctx, session, entries)
	if err != nil {
		return nil, err
	}

	season, err := a.seasons.GetSeason(ctx, session.SeasonID)
	if err != nil {
		return nil, err
	}
	spent, err := a.picks.SumCubucksSpentByTeam(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	card, err := a.strategy.SelectCard(ctx, session.SeasonID, teamID, season.CubucksAllocation-spent[teamID])
	if err != nil {
		return nil, err
	}

	if card == nil {
		skips := session.ConsecutiveSkips + 1
		if _, err := a.picks.RecordSkippedPick(ctx, session.ID, teamID, skips); err != nil {
			return nil, err
		}

		if skips >= len(entries) {
			if _, err := a.complete(ctx, session.ID, reasonSkipStall); err != nil {
				return nil, err
			}
			return &TimerResult{Action: ActionCompleted, Message: reasonSkipStall}, nil
		}

		// Carry the incremented counter through the advance; only a
		// successful pick resets it.
		session.ConsecutiveSkips = skips
		if _, err := a.advance(ctx, session, false); err != nil {
			return nil, err
		}
		return &TimerResult{
			Action:  ActionSkipped,
			Message: fmt.Sprintf("no affordable card for team %s; pick skipped", teamID),
		}, nil
	}

	if _, err := a.picks.AddDraftPickInternal(ctx, pick.AddDraftPickRequest{
		SessionID:  session.ID,
		TeamID:     teamID,
		CardPoolID: card.ID,
	}); err != nil {
		return nil, err
	}

	updated, err := a.advance(ctx, session, true)
	if err != nil {
		return nil, err
	}
	if updated.Status == models.DraftStatusCompleted {
		return &TimerResult{
			Action:  ActionCompleted,
			Message: fmt.Sprintf("auto-drafted %s; draft completed", card.Name),
		}, nil
	}
	return &TimerResult{
		Action:  ActionAutoDrafted,
		Message: fmt.Sprintf("auto-drafted %s for team %s", card.Name, teamID),
	}, nil
}

// activate transitions a scheduled or paused session to active, computing
// the on-the-clock team from the draft order and current pick counts.
func (a *App) activate(ctx context.Context, session *models.DraftSession) (*models.DraftSession, error) {
	entries, err := a.orders.GetEntries(ctx, session.SeasonID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, apperrors.Newf(apperrors.KindConflict, "no draft order generated for season %s", session.SeasonID)
	}

	counts, err := a.picks.CountPicksByTeam(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	status := order.ComputeStatus(session.SeasonID, entries, counts)

	deadline := a.clock.Now().Add(session.PickDuration())
	resuming := session.Status == models.DraftStatusPaused

	updated, err := a.repo.SetActive(ctx, session.ID, deadline, status.OnTheClock)
	if err != nil {
		return nil, err
	}

	if resuming {
		a.emit(ctx, updated.ID, events.TypeDraftResumed, events.DraftResumedPayload{
			SessionID: updated.ID.String(),
			ResumedAt: a.clock.Now(),
		})
	} else {
		a.emit(ctx, updated.ID, events.TypeDraftStarted, events.DraftStartedPayload{
			SessionID:   updated.ID.String(),
			SeasonID:    updated.SeasonID.String(),
			StartedAt:   a.clock.Now(),
			TotalRounds: updated.TotalRounds,
			TotalTeams:  len(entries),
		})
	}
	a.emitClockEvents(ctx, updated.ID, status, deadline)

	log.Info().
		Str("session_id", updated.ID.String()).
		Str("on_the_clock", status.OnTheClock.String()).
		Bool("resumed", resuming).
		Msg("activated draft session")
	return updated, nil
}

// advance recomputes the draft status after a ledger append, completes the
// session when a completion condition holds, and otherwise rolls the
// deadline forward to the next team. resetSkips is true only on the
// successful-pick path.
func (a *App) advance(ctx context.Context, session *models.DraftSession, resetSkips bool) (*models.DraftSession, error) {
	entries, err := a.orders.GetEntries(ctx, session.SeasonID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, apperrors.Newf(apperrors.KindConflict, "no draft order generated for season %s", session.SeasonID)
	}

	counts, err := a.picks.CountPicksByTeam(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	if reason, done, err := a.completionReason(ctx, session, entries, counts); err != nil {
		return nil, err
	} else if done {
		return a.complete(ctx, session.ID, reason)
	}

	status := order.ComputeStatus(session.SeasonID, entries, counts)
	deadline := a.clock.Now().Add(session.PickDuration())

	skips := session.ConsecutiveSkips
	if resetSkips {
		skips = 0
	}

	updated, err := a.repo.UpdateTurn(ctx, session.ID, deadline, status.OnTheClock, skips)
	if err != nil {
		return nil, err
	}

	a.emitClockEvents(ctx, updated.ID, status, deadline)

	log.Info().
		Str("session_id", updated.ID.String()).
		Str("on_the_clock", status.OnTheClock.String()).
		Int("round", status.CurrentRound).
		Msg("advanced draft")
	return updated, nil
}

// completionReason checks the three draft-ending conditions: every team has
// drafted all rounds, the session's end time has passed, or every team has
// exhausted its cubucks.
func (a *App) completionReason(ctx context.Context, session *models.DraftSession, entries []models.DraftOrderEntry, counts map[uuid.UUID]int) (string, bool, error) {
	minPicks := counts[entries[0].TeamID]
	for _, entry := range entries[1:] {
		if counts[entry.TeamID] < minPicks {
			minPicks = counts[entry.TeamID]
		}
	}
	if minPicks >= session.TotalRounds {
		return reasonRoundsExhausted, true, nil
	}

	if session.EndTime != nil && !a.clock.Now().Before(*session.EndTime) {
		return reasonEndTimeReached, true, nil
	}

	season, err := a.seasons.GetSeason(ctx, session.SeasonID)
	if err != nil {
		return "", false, err
	}
	spent, err := a.picks.SumCubucksSpentByTeam(ctx, session.ID)
	if err != nil {
		return "", false, err
	}
	for _, entry := range entries {
		if season.CubucksAllocation-spent[entry.TeamID] > 0 {
			return "", false, nil
		}
	}
	return reasonCubucksExhausted, true, nil
}

// complete transitions a session to completed and broadcasts the result.
func (a *App) complete(ctx context.Context, sessionID uuid.UUID, reason string) (*models.DraftSession, error) {
	session, err := a.repo.SetCompleted(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	total, err := a.picks.CountPicks(ctx, session.ID)
	if err != nil {
		log.Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to count picks for completion event")
		total = 0
	}
	a.emit(ctx, session.ID, events.TypeDraftCompleted, events.DraftCompletedPayload{
		SessionID:   session.ID.String(),
		CompletedAt: a.clock.Now(),
		TotalPicks:  total,
		Reason:      reason,
	})

	log.Info().
		Str("session_id", session.ID.String()).
		Str("reason", reason).
		Int("total_picks", total).
		Msg("completed draft session")
	return session, nil
}

// onTheClock resolves the team whose turn lapsed, preferring the stored
// pointer and recomputing from the ledger when it is missing.
func (a *App) onTheClock(ctx context.Context, session *models.DraftSession, entries []models.DraftOrderEntry) (uuid.UUID, error) {
	if session.CurrentOnClockTeamID != nil {
		return *session.CurrentOnClockTeamID, nil
	}
	counts, err := a.picks.CountPicksByTeam(ctx, session.ID)
	if err != nil {
		return uuid.Nil, err
	}
	return order.ComputeStatus(session.SeasonID, entries, counts).OnTheClock, nil
}

// emitClockEvents broadcasts on-the-clock and on-deck notifications. The
// on-deck event is suppressed when the same team occupies both slots.
func (a *App) emitClockEvents(ctx context.Context, sessionID uuid.UUID, status models.DraftStatus, deadline time.Time) {
	a.emit(ctx, sessionID, events.TypeOnTheClock, events.OnTheClockPayload{
		SessionID: sessionID.String(),
		TeamID:    status.OnTheClock.String(),
		Round:     status.CurrentRound,
		Deadline:  deadline,
	})
	if status.OnDeck != status.OnTheClock {
		a.emit(ctx, sessionID, events.TypeOnDeck, events.OnDeckPayload{
			SessionID: sessionID.String(),
			TeamID:    status.OnDeck.String(),
			Round:     status.CurrentRound,
		})
	}
}

// emit marshals and inserts one outbox event. Broadcast failures are logged
// but never fail the state transition that produced them.
func (a *App) emit(ctx context.Context, sessionID uuid.UUID, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal outbox payload")
		return
	}

	var insert func(context.Context, uuid.UUID, []byte) error
	switch eventType {
	case events.TypeDraftStarted:
		insert = a.outbox.InsertOutboxDraftStarted
	case events.TypeDraftPaused:
		insert = a.outbox.InsertOutboxDraftPaused
	case events.TypeDraftResumed:
		insert = a.outbox.InsertOutboxDraftResumed
	case events.TypeDraftCompleted:
		insert = a.outbox.InsertOutboxDraftCompleted
	case events.TypeOnTheClock:
		insert = a.outbox.InsertOutboxOnTheClock
	case events.TypeOnDeck:
		insert = a.outbox.InsertOutboxOnDeck
	default:
		log.Error().Str("event_type", eventType).Msg("unknown outbox event type")
		return
	}

	if err := insert(ctx, sessionID, data); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Str("session_id", sessionID.String()).Msg("failed to insert outbox event")
	}
}
