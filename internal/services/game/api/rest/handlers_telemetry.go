package rest

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

type telemetryEvent struct {
	ID         string            `json:"id"`
	Kind       string            `json:"kind"`
	Payload    map[string]string `json:"payload,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}

func (h *Handler) handleSessionTelemetry(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil {
			limit = parsed
		}
	}
	events, err := h.events.Events(r.Context(), sessionID, limit)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	out := make([]telemetryEvent, 0, len(events))
	for _, event := range events {
		out = append(out, telemetryEvent{
			ID:         event.ID,
			Kind:       event.Kind,
			Payload:    event.Payload,
			OccurredAt: event.OccurredAt,
		})
	}
	writeData(w, http.StatusOK, map[string]any{"sessionId": sessionID, "events": out}, h.clock)
}
