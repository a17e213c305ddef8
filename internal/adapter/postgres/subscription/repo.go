// Package subscription implements the email subscription repository.
package subscription

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/docwatch/docwatch-backend/internal/adapter/postgres"
	"github.com/docwatch/docwatch-backend/internal/domain"
)

// Repo provides email subscription persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new subscription repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const subscriptionColumns = `id, list_id, email, notify_on, created_at`

const createSQL = `
INSERT INTO email_subscriptions (id, list_id, email, notify_on)
VALUES ($1, $2, $3, $4)
RETURNING ` + subscriptionColumns

// Create inserts a subscription and returns it.
// Returns domain.ErrAlreadyExists if the address is already subscribed
// to the list, domain.ErrNotFound if the list does not exist.
func (r *Repo) Create(ctx context.Context, s *domain.Subscription) (*domain.Subscription, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	id := s.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	rows, err := querier.Query(ctx, createSQL, id, s.ListID, s.Email, string(s.NotifyOn))
	if err != nil {
		return nil, postgres.MapError(err, "subscription", id)
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanSubscription)
	if err != nil {
		return nil, postgres.MapError(err, "subscription", id)
	}
	return created, nil
}

const deleteSQL = `DELETE FROM email_subscriptions WHERE id = $1`

// Delete removes a subscription.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) Delete(ctx context.Context, subscriptionID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteSQL, subscriptionID)
	if err != nil {
		return postgres.MapError(err, "subscription", subscriptionID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("subscription %s: %w", subscriptionID, domain.ErrNotFound)
	}
	return nil
}

const listByListSQL = `
SELECT ` + subscriptionColumns + `
FROM email_subscriptions
WHERE list_id = $1
ORDER BY created_at`

// ListByList returns every subscription attached to a list.
func (r *Repo) ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Subscription, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByListSQL, listID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	subs, err := pgx.CollectRows(rows, scanSubscription)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	if subs == nil {
		subs = []*domain.Subscription{}
	}
	return subs, nil
}

func scanSubscription(row pgx.CollectableRow) (*domain.Subscription, error) {
	var s domain.Subscription
	err := row.Scan(&s.ID, &s.ListID, &s.Email, &s.NotifyOn, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
