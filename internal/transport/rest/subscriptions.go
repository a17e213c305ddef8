package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
	"github.com/docwatch/docwatch-backend/internal/service/subscription"
)

// subscriptionService defines the minimal interface needed by SubscriptionHandler.
type subscriptionService interface {
	Subscribe(ctx context.Context, input subscription.SubscribeInput) (*domain.Subscription, error)
	Unsubscribe(ctx context.Context, subscriptionID uuid.UUID) error
	ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Subscription, error)
}

// SubscriptionHandler serves email subscription endpoints.
type SubscriptionHandler struct {
	svc subscriptionService
	log *slog.Logger
}

// NewSubscriptionHandler creates a SubscriptionHandler.
func NewSubscriptionHandler(svc subscriptionService, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc, log: logger.With("handler", "subscriptions")}
}

type subscriptionResponse struct {
	ID       uuid.UUID `json:"id"`
	ListID   uuid.UUID `json:"listId"`
	Email    string    `json:"email"`
	NotifyOn string    `json:"notifyOn"`
}

func toSubscriptionResponse(s *domain.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:       s.ID,
		ListID:   s.ListID,
		Email:    s.Email,
		NotifyOn: string(s.NotifyOn),
	}
}

type subscribeRequest struct {
	Email    string `json:"email"`
	NotifyOn string `json:"notifyOn"`
}

// Create handles POST /lists/{listID}/subscriptions.
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	listID, err := pathUUID(r, "listID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid JSON"))
		return
	}

	created, err := h.svc.Subscribe(r.Context(), subscription.SubscribeInput{
		ListID:   listID,
		Email:    req.Email,
		NotifyOn: domain.NotifyFilter(req.NotifyOn),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubscriptionResponse(created))
}

// Delete handles DELETE /subscriptions/{subscriptionID}.
func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	subscriptionID, err := pathUUID(r, "subscriptionID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.Unsubscribe(r.Context(), subscriptionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// List handles GET /lists/{listID}/subscriptions.
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	listID, err := pathUUID(r, "listID")
	if err != nil {
		writeError(w, err)
		return
	}
	subs, err := h.svc.ListByList(r.Context(), listID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]subscriptionResponse, len(subs))
	for i, s := range subs {
		out[i] = toSubscriptionResponse(s)
	}
	writeJSON(w, http.StatusOK, out)
}
