package gateway

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event is one realtime message delivered to stream subscribers. Data is the
// broker envelope, forwarded verbatim.
type Event struct {
	Type string
	Data []byte
}

// subscriber is one open event stream for a session.
type subscriber struct {
	ch          chan Event
	connectedAt time.Time
}

// Hub fans broker events out to the event streams subscribed to each draft
// session. Slow subscribers drop events rather than blocking the consumer.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[*subscriber]bool

	// subscriber channel buffer
	bufferSize int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[uuid.UUID]map[*subscriber]bool),
		bufferSize: 16,
	}
}

// Subscribe registers a stream for a session's events. The returned cancel
// function must be called when the client disconnects.
func (h *Hub) Subscribe(sessionID uuid.UUID) (<-chan Event, func()) {
	sub := &subscriber{
		ch:          make(chan Event, h.bufferSize),
		connectedAt: time.Now(),
	}

	h.mu.Lock()
	subs, ok := h.sessions[sessionID]
	if !ok {
		subs = make(map[*subscriber]bool)
		h.sessions[sessionID] = subs
	}
	subs[sub] = true
	count := len(subs)
	h.mu.Unlock()

	log.Debug().Str("session_id", sessionID.String()).Int("subscribers", count).Msg("subscriber added")

	cancel := func() {
		h.mu.Lock()
		if subs, ok := h.sessions[sessionID]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.sessions, sessionID)
			}
		}
		h.mu.Unlock()
		close(sub.ch)
	}
	return sub.ch, cancel
}

// Broadcast delivers an event to every stream subscribed to the session.
func (h *Hub) Broadcast(sessionID uuid.UUID, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.sessions[sessionID] {
		select {
		case sub.ch <- event:
		default:
			log.Warn().
				Str("session_id", sessionID.String()).
				Str("event_type", event.Type).
				Msg("dropping event for slow subscriber")
		}
	}
}

// SubscriberCount reports how many streams are open for a session.
func (h *Hub) SubscriberCount(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}
