package outbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// OutboxRepository defines what the app layer needs from the repository
type OutboxRepository interface {
	InsertOutboxDraftStarted(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxDraftPaused(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxDraftResumed(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxDraftCompleted(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxOnTheClock(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxOnDeck(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxNewPick(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertOutboxPickSkipped(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	FetchUnsentOutbox(ctx context.Context, limit int32) ([]OutboxEvent, error)
	FetchOutboxByID(ctx context.Context, id uuid.UUID) (*OutboxEvent, error)
	MarkOutboxSent(ctx context.Context, id uuid.UUID) error
}

// App provides outbox operations to the draft domain
type App struct {
	repo OutboxRepository
}

// NewApp creates a new outbox App
func NewApp(repo OutboxRepository) *App {
	return &App{repo: repo}
}

func (a *App) InsertOutboxDraftStarted(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("empty payload for DraftStarted event")
	}
	return a.repo.InsertOutboxDraftStarted(ctx, sessionID, payload)
}

func (a *App) InsertOutboxDraftPaused(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("empty payload for DraftPaused event")
	}
	return a.repo.InsertOutboxDraftPaused(ctx, sessionID, payload)
}

func (a *App) InsertOutboxDraftResumed(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("empty payload for DraftResumed event")
	}
	return a.repo.InsertOutboxDraftResumed(ctx, sessionID, payload)
}

func (a *App) InsertOutboxDraftCompleted(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("empty payload for DraftCompleted event")
	}
	return a.repo.InsertOutboxDraftCompleted(ctx, sessionID, payload)
}

func (a *App) InsertOutboxOnTheClock(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("empty payload for OnTheClock event")
	}
	return a.repo.InsertOutboxOnTheClock(ctx, sessionID, payload)
}

func (a *App) InsertOutboxOnDeck(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("empty payload for OnDeck event")
	}
	return a.repo.InsertOutboxOnDeck(ctx, sessionID, payload)
}

func (a *App) InsertOutboxNewPick(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("empty payload for NewPick event")
	}
	return a.repo.InsertOutboxNewPick(ctx, sessionID, payload)
}

func (a *App) InsertOutboxPickSkipped(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("empty payload for PickSkipped event")
	}
	return a.repo.InsertOutboxPickSkipped(ctx, sessionID, payload)
}

// FetchUnsentEvents retrieves events not yet relayed to the broker
func (a *App) FetchUnsentEvents(ctx context.Context, limit int32) ([]OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	return a.repo.FetchUnsentOutbox(ctx, limit)
}

// GetEventByID retrieves a single unsent event
func (a *App) GetEventByID(ctx context.Context, id uuid.UUID) (*OutboxEvent, error) {
	return a.repo.FetchOutboxByID(ctx, id)
}

// MarkEventSent stamps an event as relayed
func (a *App) MarkEventSent(ctx context.Context, id uuid.UUID) error {
	return a.repo.MarkOutboxSent(ctx, id)
}
