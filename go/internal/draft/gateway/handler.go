package gateway

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const heartbeatInterval = 25 * time.Second

// Handler serves draft session events as server-sent event streams.
type Handler struct {
	hub *Hub
}

// NewHandler creates a new SSE handler on the given hub.
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// Routes mounts the event stream endpoint.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/drafts/{sessionID}/events", h.StreamEvents)
}

// StreamEvents subscribes the client to a session's events and forwards them
// as text/event-stream until the client disconnects.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Tell the client it is connected before the first event arrives.
	fmt.Fprintf(w, ": connected %s\n\n", sessionID)
	flusher.Flush()

	events, cancel := h.hub.Subscribe(sessionID)
	defer cancel()

	log.Info().Str("session_id", sessionID.String()).Msg("event stream opened")
	defer log.Info().Str("session_id", sessionID.String()).Msg("event stream closed")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data)
			flusher.Flush()
		case <-heartbeat.C:
			// Comment line keeps intermediaries from closing idle streams.
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
