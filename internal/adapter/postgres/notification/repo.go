// Package notification implements the notification dedup ledger.
// A row in notification_records means the (event, list) pair has been
// dispatched; claiming is an insert race where exactly one worker wins.
package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/docwatch/docwatch-backend/internal/adapter/postgres"
)

// Repo provides notification record persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new notification record repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const claimSQL = `
INSERT INTO notification_records (event_id, list_id, significant)
VALUES ($1, $2, $3)
ON CONFLICT DO NOTHING`

// Claim records the (event, list) pair and reports whether this caller
// won the claim. A false return means the pair was already dispatched
// and the caller must not send again.
func (r *Repo) Claim(ctx context.Context, eventID, listID uuid.UUID, significant bool) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, claimSQL, eventID, listID, significant)
	if err != nil {
		return false, postgres.MapError(err, "notification_record", eventID)
	}
	return tag.RowsAffected() == 1, nil
}

const existsSQL = `
SELECT EXISTS (
    SELECT 1 FROM notification_records WHERE event_id = $1 AND list_id = $2
)`

// Exists reports whether the (event, list) pair has already been claimed.
func (r *Repo) Exists(ctx context.Context, eventID, listID uuid.UUID) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var exists bool
	if err := querier.QueryRow(ctx, existsSQL, eventID, listID).Scan(&exists); err != nil {
		return false, postgres.MapError(err, "notification_record", eventID)
	}
	return exists, nil
}
