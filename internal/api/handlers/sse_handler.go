package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/zatekoja/woundtrack/internal/application/services"
	"github.com/zatekoja/woundtrack/internal/domain/providers"
	"github.com/zatekoja/woundtrack/internal/infrastructure/observability"
)

// SSEHandler streams a user's prediction events as Server-Sent Events
type SSEHandler struct {
	eventBus  providers.EventBus
	auth      *services.AuthService
	heartbeat time.Duration
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus, auth *services.AuthService) *SSEHandler {
	return &SSEHandler{eventBus: eventBus, auth: auth, heartbeat: 30 * time.Second}
}

// StreamPredictions handles GET /api/predictions/events
func (h *SSEHandler) StreamPredictions(w http.ResponseWriter, r *http.Request) {
	s, err := h.auth.Current(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	logger := observability.LoggerFromContext(r.Context())
	channel := providers.PredictionChannel(s.User.ID)

	events, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		logger.Error().Err(err).Str("channel", channel).Msg("Failed to subscribe")
		respondWithError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	h.sendEvent(w, "connected", map[string]interface{}{
		"user_id":   s.User.ID,
		"timestamp": time.Now().UTC(),
	})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Str("channel", channel).Msg("Client left prediction stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now().UTC()})
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload)
}
