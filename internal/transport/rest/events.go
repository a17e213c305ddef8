package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
	"github.com/docwatch/docwatch-backend/internal/service/notify"
)

// eventService defines the minimal interface needed by EventHandler.
type eventService interface {
	Ingest(ctx context.Context, input notify.IngestEventInput) (*domain.DocumentEvent, error)
}

// EventHandler receives document change events from the corpus hook.
type EventHandler struct {
	svc eventService
	log *slog.Logger
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(svc eventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{svc: svc, log: logger.With("handler", "events")}
}

type ingestRequest struct {
	DocumentID  uuid.UUID `json:"documentId"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	Actor       string    `json:"actor"`
	State       string    `json:"state"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Ingest handles POST /events. A 202 with no body means the event was
// classified irrelevant and dropped.
func (h *EventHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid JSON"))
		return
	}

	ev, err := h.svc.Ingest(r.Context(), notify.IngestEventInput{
		DocumentID:  req.DocumentID,
		Kind:        domain.EventKind(req.Kind),
		Description: req.Description,
		Actor:       req.Actor,
		State:       req.State,
		OccurredAt:  req.OccurredAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if ev == nil {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "ignored"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"eventId":     ev.ID,
		"significant": ev.Significant,
	})
}
