package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/draft/events"
	"github.com/draftforge/cubeleague/go/internal/sqlutil"
)

// NotifyChannel is the Postgres channel outbox inserts notify on.
const NotifyChannel = "draft_outbox_events"

// Repository implements outbox data access operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new outbox repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// insert appends one event and notifies the listener with its ID.
func (r *Repository) insert(ctx context.Context, sessionID uuid.UUID, eventType string, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
		WITH inserted AS (
			INSERT INTO draft_outbox (id, session_id, event_type, payload)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		)
		SELECT pg_notify($5, id::text) FROM inserted`,
		uuid.New(), sessionID, eventType, payload, NotifyChannel)
	if err != nil {
		return fmt.Errorf("failed to insert %s outbox event: %w", eventType, err)
	}
	return nil
}

func (r *Repository) InsertOutboxDraftStarted(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, sessionID, events.TypeDraftStarted, payload)
}

func (r *Repository) InsertOutboxDraftPaused(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, sessionID, events.TypeDraftPaused, payload)
}

func (r *Repository) InsertOutboxDraftResumed(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, sessionID, events.TypeDraftResumed, payload)
}

func (r *Repository) InsertOutboxDraftCompleted(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, sessionID, events.TypeDraftCompleted, payload)
}

func (r *Repository) InsertOutboxOnTheClock(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, sessionID, events.TypeOnTheClock, payload)
}

func (r *Repository) InsertOutboxOnDeck(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, sessionID, events.TypeOnDeck, payload)
}

func (r *Repository) InsertOutboxNewPick(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, sessionID, events.TypeNewPick, payload)
}

func (r *Repository) InsertOutboxPickSkipped(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, sessionID, events.TypePickSkipped, payload)
}

// FetchUnsentOutbox retrieves unsent events oldest first
func (r *Repository) FetchUnsentOutbox(ctx context.Context, limit int32) ([]OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, event_type, payload, created_at, sent_at
		FROM draft_outbox
		WHERE sent_at IS NULL
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var out []OutboxEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		out = append(out, *event)
	}

	return out, rows.Err()
}

// FetchOutboxByID retrieves a single unsent event by ID
func (r *Repository) FetchOutboxByID(ctx context.Context, id uuid.UUID) (*OutboxEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, event_type, payload, created_at, sent_at
		FROM draft_outbox
		WHERE id = $1 AND sent_at IS NULL`, id)

	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "outbox event %s not found or already sent", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outbox event: %w", err)
	}

	return event, nil
}

// MarkOutboxSent stamps an event as relayed
func (r *Repository) MarkOutboxSent(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE draft_outbox SET sent_at = now() WHERE id = $1 AND sent_at IS NULL`, id); err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*OutboxEvent, error) {
	var (
		event  OutboxEvent
		sentAt sql.NullTime
	)
	if err := row.Scan(&event.ID, &event.SessionID, &event.EventType, &event.Payload, &event.CreatedAt, &sentAt); err != nil {
		return nil, err
	}
	event.SentAt = sqlutil.FromSqlTime(sentAt)
	return &event, nil
}
