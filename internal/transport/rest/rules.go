package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
	"github.com/docwatch/docwatch-backend/internal/service/rules"
)

// ruleService defines the minimal interface needed by RuleHandler.
type ruleService interface {
	CreateRule(ctx context.Context, input rules.CreateRuleInput) (*domain.Rule, error)
	UpdateRule(ctx context.Context, ruleID uuid.UUID, input rules.UpdateRuleInput) (*domain.Rule, error)
	DeleteRule(ctx context.Context, ruleID uuid.UUID) error
	ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Rule, error)
	CachedDocs(ctx context.Context, ruleID uuid.UUID) ([]uuid.UUID, error)
}

// RuleHandler serves tracking rule endpoints.
type RuleHandler struct {
	svc ruleService
	log *slog.Logger
}

// NewRuleHandler creates a RuleHandler.
func NewRuleHandler(svc ruleService, logger *slog.Logger) *RuleHandler {
	return &RuleHandler{svc: svc, log: logger.With("handler", "rules")}
}

type ruleResponse struct {
	ID              uuid.UUID  `json:"id"`
	ListID          uuid.UUID  `json:"listId"`
	Type            string     `json:"type"`
	Text            string     `json:"text,omitempty"`
	GroupID         *uuid.UUID `json:"groupId,omitempty"`
	PersonID        *uuid.UUID `json:"personId,omitempty"`
	State           string     `json:"state,omitempty"`
	LastEvaluatedAt *time.Time `json:"lastEvaluatedAt,omitempty"`
}

func toRuleResponse(r *domain.Rule) ruleResponse {
	return ruleResponse{
		ID:              r.ID,
		ListID:          r.ListID,
		Type:            string(r.Type),
		Text:            r.Text,
		GroupID:         r.GroupID,
		PersonID:        r.PersonID,
		State:           r.State,
		LastEvaluatedAt: r.LastEvaluatedAt,
	}
}

type createRuleRequest struct {
	Type     string     `json:"type"`
	Text     string     `json:"text"`
	GroupID  *uuid.UUID `json:"groupId"`
	PersonID *uuid.UUID `json:"personId"`
	State    string     `json:"state"`
}

// Create handles POST /lists/{listID}/rules.
func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	listID, err := pathUUID(r, "listID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req createRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid JSON"))
		return
	}

	created, err := h.svc.CreateRule(r.Context(), rules.CreateRuleInput{
		ListID:   listID,
		Type:     domain.RuleType(req.Type),
		Text:     req.Text,
		GroupID:  req.GroupID,
		PersonID: req.PersonID,
		State:    req.State,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRuleResponse(created))
}

type updateRuleRequest struct {
	Text     *string    `json:"text"`
	GroupID  *uuid.UUID `json:"groupId"`
	PersonID *uuid.UUID `json:"personId"`
	State    *string    `json:"state"`
}

// Update handles PATCH /rules/{ruleID}.
func (h *RuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	ruleID, err := pathUUID(r, "ruleID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid JSON"))
		return
	}

	updated, err := h.svc.UpdateRule(r.Context(), ruleID, rules.UpdateRuleInput{
		Text:     req.Text,
		GroupID:  req.GroupID,
		PersonID: req.PersonID,
		State:    req.State,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRuleResponse(updated))
}

// Delete handles DELETE /rules/{ruleID}.
func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ruleID, err := pathUUID(r, "ruleID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.DeleteRule(r.Context(), ruleID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// List handles GET /lists/{listID}/rules.
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	listID, err := pathUUID(r, "listID")
	if err != nil {
		writeError(w, err)
		return
	}
	ruleList, err := h.svc.ListByList(r.Context(), listID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]ruleResponse, len(ruleList))
	for i, rl := range ruleList {
		out[i] = toRuleResponse(rl)
	}
	writeJSON(w, http.StatusOK, out)
}

// Matches handles GET /rules/{ruleID}/docs: the rule's cached document set.
func (h *RuleHandler) Matches(w http.ResponseWriter, r *http.Request) {
	ruleID, err := pathUUID(r, "ruleID")
	if err != nil {
		writeError(w, err)
		return
	}
	ids, err := h.svc.CachedDocs(r.Context(), ruleID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documentIds": ids})
}
