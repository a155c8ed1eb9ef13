package gateway

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastReachesSessionSubscribers(t *testing.T) {
	hub := NewHub()
	sessionID := uuid.New()
	otherSession := uuid.New()

	events, cancel := hub.Subscribe(sessionID)
	defer cancel()
	otherEvents, otherCancel := hub.Subscribe(otherSession)
	defer otherCancel()

	hub.Broadcast(sessionID, Event{Type: "on_the_clock", Data: []byte(`{}`)})

	select {
	case event := <-events:
		assert.Equal(t, "on_the_clock", event.Type)
	default:
		t.Fatal("expected a buffered event for the session subscriber")
	}

	select {
	case event := <-otherEvents:
		t.Fatalf("unexpected event %q for a different session", event.Type)
	default:
	}
}

func TestHubCancelRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	sessionID := uuid.New()

	_, cancel := hub.Subscribe(sessionID)
	require.Equal(t, 1, hub.SubscriberCount(sessionID))

	cancel()
	assert.Equal(t, 0, hub.SubscriberCount(sessionID))

	// Broadcasting to a session with no subscribers is a no-op.
	hub.Broadcast(sessionID, Event{Type: "on_deck"})
}

func TestHubDropsEventsForSlowSubscribers(t *testing.T) {
	hub := NewHub()
	sessionID := uuid.New()

	events, cancel := hub.Subscribe(sessionID)
	defer cancel()

	// Overflow the buffer; the hub must not block.
	for i := 0; i < hub.bufferSize+10; i++ {
		hub.Broadcast(sessionID, Event{Type: fmt.Sprintf("event-%d", i)})
	}

	received := 0
	for {
		select {
		case <-events:
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, hub.bufferSize, received)
}
