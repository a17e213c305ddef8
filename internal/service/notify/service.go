// Package notify implements the change classifier and the notification
// dispatcher: classifying corpus events, recording per-document change
// times, and fanning notification mail out to list subscribers.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/config"
	"github.com/docwatch/docwatch-backend/internal/domain"
	"github.com/docwatch/docwatch-backend/internal/metrics"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type eventRepo interface {
	Insert(ctx context.Context, ev *domain.DocumentEvent) error
	ListUndispatched(ctx context.Context, before time.Time, limit int) ([]*domain.DocumentEvent, error)
	MarkDispatched(ctx context.Context, eventID uuid.UUID) error
}

type changeRecordRepo interface {
	Upsert(ctx context.Context, docID uuid.UUID, at time.Time, newVersion, significant bool) error
}

type documentRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
}

type listRepo interface {
	TrackingDocument(ctx context.Context, docID uuid.UUID) ([]uuid.UUID, error)
}

type subscriptionRepo interface {
	ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Subscription, error)
}

type notificationRepo interface {
	Claim(ctx context.Context, eventID, listID uuid.UUID, significant bool) (bool, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type publisher interface {
	Publish(ev *domain.DocumentEvent)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements event classification and notification dispatch.
type Service struct {
	log           *slog.Logger
	events        eventRepo
	changes       changeRecordRepo
	documents     documentRepo
	lists         listRepo
	subscriptions subscriptionRepo
	notifications notificationRepo
	tx            txManager
	bus           publisher
	mailer        Mailer
	metrics       metrics.Recorder
	cfg           config.NotifyConfig

	// significantStates is the configured membership set; state names
	// are matched by membership, never by hard-coded comparison.
	significantStates map[string]struct{}
}

// NewService creates a new notify service.
func NewService(
	logger *slog.Logger,
	events eventRepo,
	changes changeRecordRepo,
	documents documentRepo,
	lists listRepo,
	subscriptions subscriptionRepo,
	notifications notificationRepo,
	tx txManager,
	bus publisher,
	mailer Mailer,
	recorder metrics.Recorder,
	cfg config.NotifyConfig,
) *Service {
	states := make(map[string]struct{}, len(cfg.SignificantStates))
	for _, s := range cfg.SignificantStates {
		states[s] = struct{}{}
	}
	return &Service{
		log:               logger.With("service", "notify"),
		events:            events,
		changes:           changes,
		documents:         documents,
		lists:             lists,
		subscriptions:     subscriptions,
		notifications:     notifications,
		tx:                tx,
		bus:               bus,
		mailer:            mailer,
		metrics:           recorder,
		cfg:               cfg,
		significantStates: states,
	}
}
