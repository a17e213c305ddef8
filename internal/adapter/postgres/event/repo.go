// Package event implements persistence for the typed document event stream.
// Events arrive from the corpus hook, are stamped by the change classifier,
// and are read back when rendering list feeds.
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/docwatch/docwatch-backend/internal/adapter/postgres"
	"github.com/docwatch/docwatch-backend/internal/domain"
)

// Repo provides document event persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new event repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const insertSQL = `
INSERT INTO document_events (id, document_id, kind, description, actor, state, significant, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Insert stores an already-classified event. The significance flag must be
// final at this point; the feed's significant-only filter reads it back.
func (r *Repo) Insert(ctx context.Context, ev *domain.DocumentEvent) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, insertSQL,
		ev.ID, ev.DocumentID, string(ev.Kind), ev.Description, ev.Actor,
		ev.State, ev.Significant, ev.CreatedAt,
	)
	if err != nil {
		return postgres.MapError(err, "document_event", ev.ID)
	}
	return nil
}

const recentForDocsSQL = `
SELECT id, document_id, kind, description, actor, state, significant, created_at
FROM document_events
WHERE document_id = ANY($1::uuid[])
  AND created_at >= $2
  AND ($3 = FALSE OR significant)
ORDER BY created_at DESC
LIMIT $4`

// RecentForDocuments returns events for the given documents since the
// cutoff, most recent first, capped at limit. With significantOnly set,
// only events the classifier marked significant are returned.
func (r *Repo) RecentForDocuments(ctx context.Context, docIDs []uuid.UUID, since time.Time, limit int, significantOnly bool) ([]*domain.DocumentEvent, error) {
	if len(docIDs) == 0 {
		return []*domain.DocumentEvent{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, recentForDocsSQL, docIDs, since, significantOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	events, err := pgx.CollectRows(rows, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	if events == nil {
		events = []*domain.DocumentEvent{}
	}
	return events, nil
}

const undispatchedSQL = `
SELECT id, document_id, kind, description, actor, state, significant, created_at
FROM document_events
WHERE dispatched_at IS NULL
  AND created_at <= $1
ORDER BY created_at
LIMIT $2`

// ListUndispatched returns events whose fan-out never completed, oldest
// first, capped at limit. The cutoff keeps the sweep off events the bus
// is still delivering; redelivery of one it races anyway is harmless
// because the per-list notification claim absorbs duplicates.
func (r *Repo) ListUndispatched(ctx context.Context, before time.Time, limit int) ([]*domain.DocumentEvent, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, undispatchedSQL, before, limit)
	if err != nil {
		return nil, fmt.Errorf("undispatched events: %w", err)
	}
	events, err := pgx.CollectRows(rows, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("undispatched events: %w", err)
	}
	if events == nil {
		events = []*domain.DocumentEvent{}
	}
	return events, nil
}

const markDispatchedSQL = `
UPDATE document_events SET dispatched_at = now() WHERE id = $1`

// MarkDispatched stamps an event as fully fanned out, removing it from
// the catch-up sweep.
func (r *Repo) MarkDispatched(ctx context.Context, eventID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, markDispatchedSQL, eventID)
	if err != nil {
		return postgres.MapError(err, "document_event", eventID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document_event %s: %w", eventID, domain.ErrNotFound)
	}
	return nil
}

func scanEvent(row pgx.CollectableRow) (*domain.DocumentEvent, error) {
	var ev domain.DocumentEvent
	err := row.Scan(
		&ev.ID, &ev.DocumentID, &ev.Kind, &ev.Description, &ev.Actor,
		&ev.State, &ev.Significant, &ev.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}
