package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
	"github.com/docwatch/docwatch-backend/internal/service/list"
)

// listService defines the minimal interface needed by ListHandler.
type listService interface {
	GetOrCreateForPerson(ctx context.Context, personID uuid.UUID) (*domain.CommunityList, error)
	GetOrCreateForGroup(ctx context.Context, groupID uuid.UUID) (*domain.CommunityList, error)
	Get(ctx context.Context, listID uuid.UUID) (*list.Contents, error)
	PinDocument(ctx context.Context, listID, docID uuid.UUID) error
	UnpinDocument(ctx context.Context, listID, docID uuid.UUID) error
	UpdateConfig(ctx context.Context, listID uuid.UUID, input list.UpdateConfigInput) (*domain.CommunityList, error)
	ExportCSV(ctx context.Context, listID uuid.UUID, w io.Writer) error
}

// ListHandler serves community list endpoints.
type ListHandler struct {
	svc listService
	log *slog.Logger
}

// NewListHandler creates a ListHandler.
func NewListHandler(svc listService, logger *slog.Logger) *ListHandler {
	return &ListHandler{svc: svc, log: logger.With("handler", "lists")}
}

type listResponse struct {
	ID            uuid.UUID  `json:"id"`
	PersonID      *uuid.UUID `json:"personId,omitempty"`
	GroupID       *uuid.UUID `json:"groupId,omitempty"`
	SortMethod    string     `json:"sortMethod"`
	DisplayFields []string   `json:"displayFields"`
}

func toListResponse(l *domain.CommunityList) listResponse {
	fields := make([]string, len(l.DisplayFields))
	for i, f := range l.DisplayFields {
		fields[i] = string(f)
	}
	return listResponse{
		ID:            l.ID,
		PersonID:      l.PersonID,
		GroupID:       l.GroupID,
		SortMethod:    string(l.SortMethod),
		DisplayFields: fields,
	}
}

type documentResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Title string    `json:"title"`
	State string    `json:"state"`
	Rev   string    `json:"rev"`
}

// GetOrCreateForPerson handles POST /persons/{personID}/list.
func (h *ListHandler) GetOrCreateForPerson(w http.ResponseWriter, r *http.Request) {
	personID, err := pathUUID(r, "personID")
	if err != nil {
		writeError(w, err)
		return
	}
	l, err := h.svc.GetOrCreateForPerson(r.Context(), personID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListResponse(l))
}

// GetOrCreateForGroup handles POST /groups/{groupID}/list.
func (h *ListHandler) GetOrCreateForGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathUUID(r, "groupID")
	if err != nil {
		writeError(w, err)
		return
	}
	l, err := h.svc.GetOrCreateForGroup(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListResponse(l))
}

// Contents handles GET /lists/{listID}: the aggregated, ordered documents.
func (h *ListHandler) Contents(w http.ResponseWriter, r *http.Request) {
	listID, err := pathUUID(r, "listID")
	if err != nil {
		writeError(w, err)
		return
	}
	contents, err := h.svc.Get(r.Context(), listID)
	if err != nil {
		writeError(w, err)
		return
	}

	docs := make([]documentResponse, len(contents.Documents))
	for i, d := range contents.Documents {
		docs[i] = documentResponse{ID: d.ID, Name: d.Name, Title: d.Title, State: d.State, Rev: d.Rev}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"list":      toListResponse(contents.List),
		"documents": docs,
	})
}

type pinRequest struct {
	DocumentID uuid.UUID `json:"documentId"`
}

// Pin handles POST /lists/{listID}/docs.
func (h *ListHandler) Pin(w http.ResponseWriter, r *http.Request) {
	listID, err := pathUUID(r, "listID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid JSON"))
		return
	}
	if err := h.svc.PinDocument(r.Context(), listID, req.DocumentID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Unpin handles DELETE /lists/{listID}/docs/{docID}.
func (h *ListHandler) Unpin(w http.ResponseWriter, r *http.Request) {
	listID, err := pathUUID(r, "listID")
	if err != nil {
		writeError(w, err)
		return
	}
	docID, err := pathUUID(r, "docID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.UnpinDocument(r.Context(), listID, docID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type updateListRequest struct {
	SortMethod    *string  `json:"sortMethod"`
	DisplayFields []string `json:"displayFields"`
}

// UpdateConfig handles PATCH /lists/{listID}.
func (h *ListHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	listID, err := pathUUID(r, "listID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid JSON"))
		return
	}

	input := list.UpdateConfigInput{}
	if req.SortMethod != nil {
		m := domain.SortMethod(*req.SortMethod)
		input.SortMethod = &m
	}
	if req.DisplayFields != nil {
		input.DisplayFields = make([]domain.DisplayField, len(req.DisplayFields))
		for i, f := range req.DisplayFields {
			input.DisplayFields[i] = domain.DisplayField(f)
		}
	}

	updated, err := h.svc.UpdateConfig(r.Context(), listID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListResponse(updated))
}

// ExportCSV handles GET /lists/{listID}/export.
func (h *ListHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	listID, err := pathUUID(r, "listID")
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "list-"+listID.String()+".csv"))
	if err := h.svc.ExportCSV(r.Context(), listID, w); err != nil {
		// Headers may already be out; log and drop the connection.
		h.log.Error("csv export failed", "list_id", listID, "error", err)
	}
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, domain.NewValidationError(param, "invalid UUID")
	}
	return id, nil
}
