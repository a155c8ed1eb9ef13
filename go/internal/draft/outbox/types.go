package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is one row of the draft event outbox. Events are written in
// the same store as the state change that produced them and relayed to the
// broker asynchronously.
type OutboxEvent struct {
	ID        uuid.UUID       `json:"id"`
	SessionID uuid.UUID       `json:"session_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}

// EventPublisher relays an outbox event to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, event OutboxEvent) error
}
