package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

// feedService defines the minimal interface needed by FeedHandler.
type feedService interface {
	Render(ctx context.Context, listID uuid.UUID, since time.Time, significantOnly bool) ([]byte, error)
	RenderByEmail(ctx context.Context, email string, since time.Time, significantOnly bool) ([]byte, error)
}

// FeedHandler serves the Atom feed endpoints.
type FeedHandler struct {
	svc feedService
	log *slog.Logger
}

// NewFeedHandler creates a FeedHandler.
func NewFeedHandler(svc feedService, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{svc: svc, log: logger.With("handler", "feed")}
}

// ByList handles GET /lists/{listID}/feed?since=RFC3339&significant=true.
func (h *FeedHandler) ByList(w http.ResponseWriter, r *http.Request) {
	listID, err := pathUUID(r, "listID")
	if err != nil {
		writeError(w, err)
		return
	}
	since, significant, err := feedParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := h.svc.Render(r.Context(), listID, since, significant)
	if err != nil {
		writeError(w, err)
		return
	}
	writeAtom(w, body)
}

// ByEmail handles GET /feeds/by-email/{email}. An address resolving to
// several persons yields a 409 so the caller can disambiguate.
func (h *FeedHandler) ByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		writeError(w, domain.NewValidationError("email", "required"))
		return
	}
	since, significant, err := feedParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := h.svc.RenderByEmail(r.Context(), email, since, significant)
	if err != nil {
		writeError(w, err)
		return
	}
	writeAtom(w, body)
}

func feedParams(r *http.Request) (since time.Time, significant bool, err error) {
	q := r.URL.Query()
	if raw := q.Get("since"); raw != "" {
		since, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, false, domain.NewValidationError("since", "must be RFC3339")
		}
	}
	significant = q.Get("significant") == "true"
	return since, significant, nil
}

func writeAtom(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck
}
