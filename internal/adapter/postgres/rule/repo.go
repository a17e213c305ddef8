// Package rule implements the Rule repository using PostgreSQL.
// Besides CRUD it owns the two materialized structures attached to a rule:
// the cached evaluation result (rule_docs) and the name index
// (name_index_entries). Both are replaced wholesale, never appended to.
package rule

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/docwatch/docwatch-backend/internal/adapter/postgres"
	"github.com/docwatch/docwatch-backend/internal/domain"
)

// Repo provides rule persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new rule repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const ruleColumns = `
    id, list_id, rule_type, text, group_id, person_id, state, dirty,
    last_evaluated_at, created_at, updated_at`

const getByIDSQL = `SELECT` + ruleColumns + ` FROM rules WHERE id = $1`

const getForUpdateSQL = `SELECT` + ruleColumns + ` FROM rules WHERE id = $1 FOR UPDATE`

const listByListSQL = `SELECT` + ruleColumns + ` FROM rules WHERE list_id = $1 ORDER BY created_at`

const listByTypeSQL = `SELECT` + ruleColumns + ` FROM rules WHERE rule_type = $1 ORDER BY created_at`

const listDirtySQL = `SELECT` + ruleColumns + ` FROM rules WHERE dirty ORDER BY created_at`

// GetByID returns a rule by primary key.
// Returns domain.ErrNotFound if the rule does not exist.
func (r *Repo) GetByID(ctx context.Context, ruleID uuid.UUID) (*domain.Rule, error) {
	return r.getOne(ctx, getByIDSQL, ruleID)
}

// GetForUpdate returns a rule and holds its row lock until the surrounding
// transaction ends. Recompute-and-replace runs under this lock so
// concurrent readers never observe a partially rebuilt cache or index.
// Must be called inside a transaction.
func (r *Repo) GetForUpdate(ctx context.Context, ruleID uuid.UUID) (*domain.Rule, error) {
	return r.getOne(ctx, getForUpdateSQL, ruleID)
}

// ListByList returns every rule of a list, oldest first.
func (r *Repo) ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Rule, error) {
	return r.getMany(ctx, listByListSQL, listID)
}

// ListByType returns every rule of the given type across all lists.
// The periodic index sweep uses this to rebuild name_contains rules.
func (r *Repo) ListByType(ctx context.Context, t domain.RuleType) ([]*domain.Rule, error) {
	return r.getMany(ctx, listByTypeSQL, string(t))
}

// ListDirty returns every rule whose cache is stale-marked.
func (r *Repo) ListDirty(ctx context.Context) ([]*domain.Rule, error) {
	return r.getMany(ctx, listDirtySQL)
}

const createSQL = `
INSERT INTO rules (id, list_id, rule_type, text, group_id, person_id, state)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING` + ruleColumns

// Create inserts a new rule (dirty by construction) and returns it.
func (r *Repo) Create(ctx context.Context, rule *domain.Rule) (*domain.Rule, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	id := rule.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	rows, err := querier.Query(ctx, createSQL,
		id, rule.ListID, string(rule.Type), rule.Text, rule.GroupID, rule.PersonID, rule.State,
	)
	if err != nil {
		return nil, postgres.MapError(err, "rule", id)
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanRule)
	if err != nil {
		return nil, postgres.MapError(err, "rule", id)
	}
	return created, nil
}

// Update applies partial updates to a rule's parameters and re-marks it
// dirty. Returns the updated rule.
func (r *Repo) Update(ctx context.Context, ruleID uuid.UUID, params domain.RuleUpdateParams) (*domain.Rule, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	update := psql.Update("rules").
		Set("dirty", true).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": ruleID}).
		Suffix("RETURNING" + ruleColumns)

	if params.Text != nil {
		update = update.Set("text", *params.Text)
	}
	if params.GroupID != nil {
		update = update.Set("group_id", *params.GroupID)
	}
	if params.PersonID != nil {
		update = update.Set("person_id", *params.PersonID)
	}
	if params.State != nil {
		update = update.Set("state", *params.State)
	}

	sqlStr, args, err := update.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build rule update: %w", err)
	}

	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, postgres.MapError(err, "rule", ruleID)
	}
	updated, err := pgx.CollectExactlyOneRow(rows, scanRule)
	if err != nil {
		return nil, postgres.MapError(err, "rule", ruleID)
	}
	return updated, nil
}

const deleteSQL = `DELETE FROM rules WHERE id = $1`

// Delete removes a rule. CASCADE clears rule_docs and name_index_entries.
// Returns domain.ErrNotFound if the rule does not exist.
func (r *Repo) Delete(ctx context.Context, ruleID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteSQL, ruleID)
	if err != nil {
		return postgres.MapError(err, "rule", ruleID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rule %s: %w", ruleID, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Dirty flag
// ---------------------------------------------------------------------------

const markDirtySQL = `UPDATE rules SET dirty = TRUE, updated_at = now() WHERE id = $1`

const setCleanSQL = `UPDATE rules SET dirty = FALSE, last_evaluated_at = $2 WHERE id = $1`

// MarkDirty stale-marks a rule's cached set.
func (r *Repo) MarkDirty(ctx context.Context, ruleID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, markDirtySQL, ruleID); err != nil {
		return postgres.MapError(err, "rule", ruleID)
	}
	return nil
}

// SetClean clears the dirty flag and records the evaluation time.
func (r *Repo) SetClean(ctx context.Context, ruleID uuid.UUID, evaluatedAt time.Time) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, setCleanSQL, ruleID, evaluatedAt); err != nil {
		return postgres.MapError(err, "rule", ruleID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Cached evaluation result (rule_docs)
// ---------------------------------------------------------------------------

const deleteDocsSQL = `DELETE FROM rule_docs WHERE rule_id = $1`

const insertDocsSQL = `
INSERT INTO rule_docs (rule_id, document_id)
SELECT $1, unnest($2::uuid[])
ON CONFLICT DO NOTHING`

const cachedDocsSQL = `SELECT document_id FROM rule_docs WHERE rule_id = $1`

// ReplaceDocs replaces the rule's cached document set. Idempotent: calling
// it twice with the same set yields the same rows.
func (r *Repo) ReplaceDocs(ctx context.Context, ruleID uuid.UUID, docIDs []uuid.UUID) error {
	return r.replacePairs(ctx, deleteDocsSQL, insertDocsSQL, ruleID, docIDs)
}

// CachedDocs returns the rule's last stored evaluation result.
func (r *Repo) CachedDocs(ctx context.Context, ruleID uuid.UUID) ([]uuid.UUID, error) {
	return r.queryIDs(ctx, cachedDocsSQL, ruleID)
}

// ---------------------------------------------------------------------------
// Name index (name_index_entries)
// ---------------------------------------------------------------------------

const deleteIndexSQL = `DELETE FROM name_index_entries WHERE rule_id = $1`

const insertIndexSQL = `
INSERT INTO name_index_entries (rule_id, document_id)
SELECT $1, unnest($2::uuid[])
ON CONFLICT DO NOTHING`

const indexDocsSQL = `SELECT document_id FROM name_index_entries WHERE rule_id = $1`

// ReplaceNameIndex replaces the rule's name index entries wholesale.
func (r *Repo) ReplaceNameIndex(ctx context.Context, ruleID uuid.UUID, docIDs []uuid.UUID) error {
	return r.replacePairs(ctx, deleteIndexSQL, insertIndexSQL, ruleID, docIDs)
}

// NameIndexDocs returns the document IDs currently indexed for the rule.
func (r *Repo) NameIndexDocs(ctx context.Context, ruleID uuid.UUID) ([]uuid.UUID, error) {
	return r.queryIDs(ctx, indexDocsSQL, ruleID)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) replacePairs(ctx context.Context, deleteSQL, insertSQL string, ruleID uuid.UUID, docIDs []uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, deleteSQL, ruleID); err != nil {
		return postgres.MapError(err, "rule", ruleID)
	}
	if len(docIDs) == 0 {
		return nil
	}
	if _, err := querier.Exec(ctx, insertSQL, ruleID, docIDs); err != nil {
		return postgres.MapError(err, "rule", ruleID)
	}
	return nil
}

func (r *Repo) queryIDs(ctx context.Context, sql string, args ...any) ([]uuid.UUID, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query rule doc ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (uuid.UUID, error) {
		var id uuid.UUID
		err := row.Scan(&id)
		return id, err
	})
	if err != nil {
		return nil, fmt.Errorf("query rule doc ids: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

func (r *Repo) getOne(ctx context.Context, sql string, args ...any) (*domain.Rule, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("get rule: %w", err)
	}
	rule, err := pgx.CollectExactlyOneRow(rows, scanRule)
	if err != nil {
		return nil, postgres.MapError(err, "rule", uuid.Nil)
	}
	return rule, nil
}

func (r *Repo) getMany(ctx context.Context, sql string, args ...any) ([]*domain.Rule, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	rules, err := pgx.CollectRows(rows, scanRule)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	if rules == nil {
		rules = []*domain.Rule{}
	}
	return rules, nil
}

func scanRule(row pgx.CollectableRow) (*domain.Rule, error) {
	var rule domain.Rule
	err := row.Scan(
		&rule.ID, &rule.ListID, &rule.Type, &rule.Text, &rule.GroupID, &rule.PersonID,
		&rule.State, &rule.Dirty, &rule.LastEvaluatedAt, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}
