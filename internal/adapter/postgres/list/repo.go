// Package list implements the CommunityList repository using PostgreSQL.
// It owns the list rows, the explicit pin set (community_list_docs), and
// the materialized aggregate (community_list_cache).
package list

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/docwatch/docwatch-backend/internal/adapter/postgres"
	"github.com/docwatch/docwatch-backend/internal/domain"
)

// Repo provides community list persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new list repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const listColumns = `
    id, person_id, group_id, sort_method, display_fields, dirty, created_at, updated_at`

const getByIDSQL = `SELECT` + listColumns + ` FROM community_lists WHERE id = $1`

const getForUpdateSQL = `SELECT` + listColumns + ` FROM community_lists WHERE id = $1 FOR UPDATE`

const getByPersonSQL = `SELECT` + listColumns + ` FROM community_lists WHERE person_id = $1`

const getByGroupSQL = `SELECT` + listColumns + ` FROM community_lists WHERE group_id = $1`

// GetByID returns a list by primary key.
// Returns domain.ErrNotFound if the list does not exist.
func (r *Repo) GetByID(ctx context.Context, listID uuid.UUID) (*domain.CommunityList, error) {
	return r.getOne(ctx, getByIDSQL, listID)
}

// GetForUpdate returns a list holding its row lock until the surrounding
// transaction ends. The aggregate recompute runs under this lock.
// Must be called inside a transaction.
func (r *Repo) GetForUpdate(ctx context.Context, listID uuid.UUID) (*domain.CommunityList, error) {
	return r.getOne(ctx, getForUpdateSQL, listID)
}

// GetByPerson returns the list owned by a person, or domain.ErrNotFound.
func (r *Repo) GetByPerson(ctx context.Context, personID uuid.UUID) (*domain.CommunityList, error) {
	return r.getOne(ctx, getByPersonSQL, personID)
}

// GetByGroup returns the list owned by a group, or domain.ErrNotFound.
func (r *Repo) GetByGroup(ctx context.Context, groupID uuid.UUID) (*domain.CommunityList, error) {
	return r.getOne(ctx, getByGroupSQL, groupID)
}

const createSQL = `
INSERT INTO community_lists (id, person_id, group_id, sort_method, display_fields)
VALUES ($1, $2, $3, $4, $5)
RETURNING` + listColumns

// Create inserts a new list (dirty by construction) and returns it.
// Returns domain.ErrAlreadyExists if the owner already has a list.
func (r *Repo) Create(ctx context.Context, l *domain.CommunityList) (*domain.CommunityList, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	id := l.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	sortMethod := l.SortMethod
	if sortMethod == "" {
		sortMethod = domain.SortByName
	}
	fields := l.DisplayFields
	if len(fields) == 0 {
		fields = []domain.DisplayField{domain.DisplayFieldName, domain.DisplayFieldTitle, domain.DisplayFieldState}
	}

	rows, err := querier.Query(ctx, createSQL,
		id, l.PersonID, l.GroupID, string(sortMethod), fieldsToStrings(fields),
	)
	if err != nil {
		return nil, postgres.MapError(err, "community_list", id)
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanList)
	if err != nil {
		return nil, postgres.MapError(err, "community_list", id)
	}
	return created, nil
}

const updateConfigSQL = `
UPDATE community_lists
SET sort_method = COALESCE($2, sort_method),
    display_fields = COALESCE($3, display_fields),
    updated_at = now()
WHERE id = $1
RETURNING` + listColumns

// UpdateConfig updates the sort method and/or display fields.
func (r *Repo) UpdateConfig(ctx context.Context, listID uuid.UUID, params domain.ListUpdateParams) (*domain.CommunityList, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var sortMethod *string
	if params.SortMethod != nil {
		s := string(*params.SortMethod)
		sortMethod = &s
	}
	var fields []string
	if params.DisplayFields != nil {
		fields = fieldsToStrings(params.DisplayFields)
	}

	rows, err := querier.Query(ctx, updateConfigSQL, listID, sortMethod, fields)
	if err != nil {
		return nil, postgres.MapError(err, "community_list", listID)
	}
	updated, err := pgx.CollectExactlyOneRow(rows, scanList)
	if err != nil {
		return nil, postgres.MapError(err, "community_list", listID)
	}
	return updated, nil
}

// ---------------------------------------------------------------------------
// Dirty flag
// ---------------------------------------------------------------------------

const markDirtySQL = `UPDATE community_lists SET dirty = TRUE, updated_at = now() WHERE id = $1`

const setCleanSQL = `UPDATE community_lists SET dirty = FALSE WHERE id = $1`

// MarkDirty stale-marks the list's materialized aggregate.
func (r *Repo) MarkDirty(ctx context.Context, listID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, markDirtySQL, listID); err != nil {
		return postgres.MapError(err, "community_list", listID)
	}
	return nil
}

// SetClean clears the list's dirty flag.
func (r *Repo) SetClean(ctx context.Context, listID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, setCleanSQL, listID); err != nil {
		return postgres.MapError(err, "community_list", listID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Explicit pins (community_list_docs)
// ---------------------------------------------------------------------------

const addPinSQL = `
INSERT INTO community_list_docs (list_id, document_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`

const removePinSQL = `DELETE FROM community_list_docs WHERE list_id = $1 AND document_id = $2`

const pinnedDocsSQL = `SELECT document_id FROM community_list_docs WHERE list_id = $1`

// AddPin pins a document to the list. Idempotent.
func (r *Repo) AddPin(ctx context.Context, listID, docID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, addPinSQL, listID, docID); err != nil {
		return postgres.MapError(err, "community_list_doc", listID)
	}
	return nil
}

// RemovePin unpins a document. Not an error if the pin does not exist.
func (r *Repo) RemovePin(ctx context.Context, listID, docID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, removePinSQL, listID, docID); err != nil {
		return postgres.MapError(err, "community_list_doc", listID)
	}
	return nil
}

// PinnedDocs returns the explicitly pinned document IDs of a list.
func (r *Repo) PinnedDocs(ctx context.Context, listID uuid.UUID) ([]uuid.UUID, error) {
	return r.queryIDs(ctx, pinnedDocsSQL, listID)
}

// ---------------------------------------------------------------------------
// Materialized aggregate (community_list_cache)
// ---------------------------------------------------------------------------

const deleteCacheSQL = `DELETE FROM community_list_cache WHERE list_id = $1`

const insertCacheSQL = `
INSERT INTO community_list_cache (list_id, document_id)
SELECT $1, unnest($2::uuid[])
ON CONFLICT DO NOTHING`

const cachedDocsSQL = `SELECT document_id FROM community_list_cache WHERE list_id = $1`

// ReplaceCache replaces the list's materialized aggregate wholesale.
func (r *Repo) ReplaceCache(ctx context.Context, listID uuid.UUID, docIDs []uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, deleteCacheSQL, listID); err != nil {
		return postgres.MapError(err, "community_list", listID)
	}
	if len(docIDs) == 0 {
		return nil
	}
	if _, err := querier.Exec(ctx, insertCacheSQL, listID, docIDs); err != nil {
		return postgres.MapError(err, "community_list", listID)
	}
	return nil
}

// CachedDocs returns the list's materialized aggregate document IDs.
func (r *Repo) CachedDocs(ctx context.Context, listID uuid.UUID) ([]uuid.UUID, error) {
	return r.queryIDs(ctx, cachedDocsSQL, listID)
}

const trackingDocSQL = `
SELECT DISTINCT list_id FROM (
    SELECT list_id FROM community_list_docs WHERE document_id = $1
    UNION ALL
    SELECT list_id FROM community_list_cache WHERE document_id = $1
) tracked`

// TrackingDocument returns the IDs of every list whose pins or cached
// aggregate contain the document. Dispatch reads the materialized caches,
// not a fresh rule evaluation.
func (r *Repo) TrackingDocument(ctx context.Context, docID uuid.UUID) ([]uuid.UUID, error) {
	return r.queryIDs(ctx, trackingDocSQL, docID)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) queryIDs(ctx context.Context, sql string, args ...any) ([]uuid.UUID, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query list ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (uuid.UUID, error) {
		var id uuid.UUID
		err := row.Scan(&id)
		return id, err
	})
	if err != nil {
		return nil, fmt.Errorf("query list ids: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

func (r *Repo) getOne(ctx context.Context, sql string, args ...any) (*domain.CommunityList, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	l, err := pgx.CollectExactlyOneRow(rows, scanList)
	if err != nil {
		return nil, postgres.MapError(err, "community_list", uuid.Nil)
	}
	return l, nil
}

func scanList(row pgx.CollectableRow) (*domain.CommunityList, error) {
	var (
		l      domain.CommunityList
		fields []string
	)
	err := row.Scan(
		&l.ID, &l.PersonID, &l.GroupID, &l.SortMethod, &fields,
		&l.Dirty, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.DisplayFields = make([]domain.DisplayField, len(fields))
	for i, f := range fields {
		l.DisplayFields[i] = domain.DisplayField(f)
	}
	return &l, nil
}

func fieldsToStrings(fields []domain.DisplayField) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}
