// Package document implements read-only access to the document corpus.
// The corpus (documents, authors, groups, persons) is owned by an external
// system; this service only queries it when evaluating tracking rules and
// rendering list contents.
package document

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

// Repo provides corpus reads backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new document repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const docColumns = `
    d.id, d.name, d.title, d.abstract, d.doc_type, d.stream, d.state,
    d.group_id, d.rev, d.rev_time, d.shepherd_id, d.ad_id, d.created_at, d.updated_at`

const getByIDSQL = `SELECT` + docColumns + ` FROM documents d WHERE d.id = $1`

const getByIDsSQL = `SELECT` + docColumns + ` FROM documents d WHERE d.id = ANY($1::uuid[])`

const getByNameSQL = `SELECT` + docColumns + ` FROM documents d WHERE d.name = $1`

// GetByID returns a document by primary key.
// Returns domain.ErrNotFound if the document does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, getByIDSQL, id)
	if err != nil {
		return nil, postgres.MapError(err, "document", id)
	}
	doc, err := pgx.CollectExactlyOneRow(rows, scanDocument)
	if err != nil {
		return nil, postgres.MapError(err, "document", id)
	}
	return doc, nil
}

// GetByName returns a document by its canonical name.
func (r *Repo) GetByName(ctx context.Context, name string) (*domain.Document, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, getByNameSQL, name)
	if err != nil {
		return nil, fmt.Errorf("document %q: %w", name, err)
	}
	doc, err := pgx.CollectExactlyOneRow(rows, scanDocument)
	if err != nil {
		return nil, postgres.MapError(err, "document", uuid.Nil)
	}
	return doc, nil
}

// GetByIDs returns the documents for the given IDs. Missing IDs are
// silently skipped; a cache entry referencing a deleted document heals on
// the next recompute rather than failing the read.
func (r *Repo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Document, error) {
	if len(ids) == 0 {
		return []*domain.Document{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, getByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("get documents by ids: %w", err)
	}
	docs, err := pgx.CollectRows(rows, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("get documents by ids: %w", err)
	}
	if docs == nil {
		docs = []*domain.Document{}
	}
	return docs, nil
}

// ---------------------------------------------------------------------------
// Rule evaluation queries: each returns a set of document IDs
// ---------------------------------------------------------------------------

const idsByGroupSQL = `SELECT id FROM documents WHERE group_id = $1`

const idsByAreaSQL = `
SELECT d.id
FROM documents d
JOIN groups g ON d.group_id = g.id
WHERE g.parent_id = $1 OR g.id = $1`

const idsByRoleSQL = `
SELECT DISTINCT da.document_id
FROM document_authors da
WHERE da.person_id = $1 AND da.role = $2`

const idsByStateSQL = `SELECT id FROM documents WHERE state = $1`

const idsByTextSQL = `
SELECT id FROM documents
WHERE title ILIKE '%' || $1 || '%' OR abstract ILIKE '%' || $1 || '%'`

const filterIDsByStateSQL = `SELECT id FROM documents WHERE id = ANY($1::uuid[]) AND state = $2`

// IDsByGroup returns IDs of documents owned by the group.
func (r *Repo) IDsByGroup(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	return r.queryIDs(ctx, idsByGroupSQL, groupID)
}

// IDsByArea returns IDs of documents owned by the area itself or by any
// group directly under it.
func (r *Repo) IDsByArea(ctx context.Context, areaID uuid.UUID) ([]uuid.UUID, error) {
	return r.queryIDs(ctx, idsByAreaSQL, areaID)
}

// IDsByPersonRole returns IDs of documents for which the person holds the
// given responsibility role (author, ad, shepherd).
func (r *Repo) IDsByPersonRole(ctx context.Context, personID uuid.UUID, role domain.PersonRole) ([]uuid.UUID, error) {
	return r.queryIDs(ctx, idsByRoleSQL, personID, string(role))
}

// IDsByState returns IDs of documents currently in the given state.
func (r *Repo) IDsByState(ctx context.Context, state string) ([]uuid.UUID, error) {
	return r.queryIDs(ctx, idsByStateSQL, state)
}

// IDsByText returns IDs of documents whose title or abstract contains the
// substring, case-insensitively.
func (r *Repo) IDsByText(ctx context.Context, substr string) ([]uuid.UUID, error) {
	return r.queryIDs(ctx, idsByTextSQL, substr)
}

// FilterIDsByState narrows a candidate set to documents in the given state.
func (r *Repo) FilterIDsByState(ctx context.Context, ids []uuid.UUID, state string) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return []uuid.UUID{}, nil
	}
	return r.queryIDs(ctx, filterIDsByStateSQL, ids, state)
}

func (r *Repo) queryIDs(ctx context.Context, sql string, args ...any) ([]uuid.UUID, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query document ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (uuid.UUID, error) {
		var id uuid.UUID
		err := row.Scan(&id)
		return id, err
	})
	if err != nil {
		return nil, fmt.Errorf("query document ids: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// Name index support
// ---------------------------------------------------------------------------

const allNamesSQL = `SELECT id, name FROM documents ORDER BY name`

// AllNames returns (id, canonical name) for every document in the corpus.
// Used by the name index rebuild, which scans all names against a pattern.
func (r *Repo) AllNames(ctx context.Context) ([]domain.NamedDocument, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, allNamesSQL)
	if err != nil {
		return nil, fmt.Errorf("all document names: %w", err)
	}
	names, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.NamedDocument, error) {
		var n domain.NamedDocument
		err := row.Scan(&n.ID, &n.Name)
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("all document names: %w", err)
	}
	if names == nil {
		names = []domain.NamedDocument{}
	}
	return names, nil
}

// ---------------------------------------------------------------------------
// Person directory
// ---------------------------------------------------------------------------

const personIDsByEmailSQL = `SELECT person_id FROM person_emails WHERE email = $1`

const personsByIDsSQL = `SELECT id, name, created_at FROM persons WHERE id = ANY($1::uuid[])`

// PersonIDsByEmail returns every person the email address resolves to.
// The directory is eventually consistent with external identity data, so
// zero or several results are normal conditions, not errors.
func (r *Repo) PersonIDsByEmail(ctx context.Context, email string) ([]uuid.UUID, error) {
	return r.queryIDs(ctx, personIDsByEmailSQL, email)
}

// PersonsByIDs returns persons for the given IDs.
func (r *Repo) PersonsByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Person, error) {
	if len(ids) == 0 {
		return []*domain.Person{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, personsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("persons by ids: %w", err)
	}
	persons, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Person, error) {
		var p domain.Person
		err := row.Scan(&p.ID, &p.Name, &p.CreatedAt)
		return &p, err
	})
	if err != nil {
		return nil, fmt.Errorf("persons by ids: %w", err)
	}
	if persons == nil {
		persons = []*domain.Person{}
	}
	return persons, nil
}

const authorsByDocIDsSQL = `
SELECT da.document_id, p.name
FROM document_authors da
JOIN persons p ON da.person_id = p.id
WHERE da.document_id = ANY($1::uuid[]) AND da.role = 'author'
ORDER BY da.document_id, p.name`

// AuthorNamesByDocIDs returns author display names grouped by document.
func (r *Repo) AuthorNamesByDocIDs(ctx context.Context, docIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	result := make(map[uuid.UUID][]string)
	if len(docIDs) == 0 {
		return result, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, authorsByDocIDsSQL, docIDs)
	if err != nil {
		return nil, fmt.Errorf("authors by doc ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var docID uuid.UUID
		var name string
		if err := rows.Scan(&docID, &name); err != nil {
			return nil, fmt.Errorf("authors by doc ids: %w", err)
		}
		result[docID] = append(result[docID], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("authors by doc ids: %w", err)
	}
	return result, nil
}

// ---------------------------------------------------------------------------
// Group lookup
// ---------------------------------------------------------------------------

const groupsByIDsSQL = `SELECT id, acronym, name, parent_id FROM groups WHERE id = ANY($1::uuid[])`

const groupExistsSQL = `SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)`

const personExistsSQL = `SELECT EXISTS(SELECT 1 FROM persons WHERE id = $1)`

// GroupsByIDs returns groups for the given IDs, keyed by ID.
func (r *Repo) GroupsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Group, error) {
	result := make(map[uuid.UUID]*domain.Group)
	if len(ids) == 0 {
		return result, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, groupsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("groups by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Acronym, &g.Name, &g.ParentID); err != nil {
			return nil, fmt.Errorf("groups by ids: %w", err)
		}
		result[g.ID] = &g
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("groups by ids: %w", err)
	}
	return result, nil
}

// GroupExists reports whether a group with the ID exists.
func (r *Repo) GroupExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, groupExistsSQL, id)
}

// PersonExists reports whether a person with the ID exists.
func (r *Repo) PersonExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, personExistsSQL, id)
}

func (r *Repo) exists(ctx context.Context, sql string, id uuid.UUID) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var exists bool
	if err := querier.QueryRow(ctx, sql, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists check: %w", err)
	}
	return exists, nil
}

// ---------------------------------------------------------------------------
// Row scanning
// ---------------------------------------------------------------------------

func scanDocument(row pgx.CollectableRow) (*domain.Document, error) {
	var (
		d       domain.Document
		revTime time.Time
	)
	err := row.Scan(
		&d.ID, &d.Name, &d.Title, &d.Abstract, &d.Type, &d.Stream, &d.State,
		&d.GroupID, &d.Rev, &revTime, &d.ShepherdID, &d.ADID, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.RevTime = revTime
	return &d, nil
}
