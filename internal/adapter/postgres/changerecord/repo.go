// Package changerecord implements the per-document change record repository.
// The record carries rolling timestamps (last change, last new revision,
// last significant change) that sorting and feed rendering read without
// replaying event history.
package changerecord

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

// Repo provides change record persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new change record repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const upsertSQL = `
INSERT INTO document_change_records (document_id, last_changed_at, last_new_version_at, last_significant_at)
VALUES ($1, $2, CASE WHEN $3 THEN $2 END, CASE WHEN $4 THEN $2 END)
ON CONFLICT (document_id) DO UPDATE SET
    last_changed_at = EXCLUDED.last_changed_at,
    last_new_version_at = COALESCE(EXCLUDED.last_new_version_at, document_change_records.last_new_version_at),
    last_significant_at = COALESCE(EXCLUDED.last_significant_at, document_change_records.last_significant_at)`

// Upsert rolls the document's change timestamps forward. last_changed_at
// always advances; the new-version and significant timestamps advance only
// when the corresponding flag is set.
func (r *Repo) Upsert(ctx context.Context, docID uuid.UUID, at time.Time, newVersion, significant bool) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, upsertSQL, docID, at, newVersion, significant); err != nil {
		return postgres.MapError(err, "change_record", docID)
	}
	return nil
}

const getByDocIDsSQL = `
SELECT document_id, last_changed_at, last_new_version_at, last_significant_at
FROM document_change_records
WHERE document_id = ANY($1)`

// GetByDocIDs returns change records keyed by document ID. Documents
// without a record are simply absent from the map.
func (r *Repo) GetByDocIDs(ctx context.Context, docIDs []uuid.UUID) (map[uuid.UUID]*domain.ChangeRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if len(docIDs) == 0 {
		return map[uuid.UUID]*domain.ChangeRecord{}, nil
	}

	rows, err := querier.Query(ctx, getByDocIDsSQL, docIDs)
	if err != nil {
		return nil, fmt.Errorf("get change records: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.ChangeRecord, error) {
		var rec domain.ChangeRecord
		err := row.Scan(&rec.DocumentID, &rec.LastChangedAt, &rec.LastNewVersionAt, &rec.LastSignificantAt)
		return &rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("get change records: %w", err)
	}

	byID := make(map[uuid.UUID]*domain.ChangeRecord, len(records))
	for _, rec := range records {
		byID[rec.DocumentID] = rec
	}
	return byID, nil
}
