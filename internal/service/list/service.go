// Package list implements community list management: ownership, explicit
// pins, the materialized aggregate, ordering, and tabular export.
package list

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/config"
	"github.com/docwatch/docwatch-backend/internal/domain"
	"github.com/docwatch/docwatch-backend/internal/metrics"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type listRepo interface {
	GetByID(ctx context.Context, listID uuid.UUID) (*domain.CommunityList, error)
	GetForUpdate(ctx context.Context, listID uuid.UUID) (*domain.CommunityList, error)
	GetByPerson(ctx context.Context, personID uuid.UUID) (*domain.CommunityList, error)
	GetByGroup(ctx context.Context, groupID uuid.UUID) (*domain.CommunityList, error)
	Create(ctx context.Context, l *domain.CommunityList) (*domain.CommunityList, error)
	UpdateConfig(ctx context.Context, listID uuid.UUID, params domain.ListUpdateParams) (*domain.CommunityList, error)
	MarkDirty(ctx context.Context, listID uuid.UUID) error
	SetClean(ctx context.Context, listID uuid.UUID) error
	AddPin(ctx context.Context, listID, docID uuid.UUID) error
	RemovePin(ctx context.Context, listID, docID uuid.UUID) error
	PinnedDocs(ctx context.Context, listID uuid.UUID) ([]uuid.UUID, error)
	ReplaceCache(ctx context.Context, listID uuid.UUID, docIDs []uuid.UUID) error
	CachedDocs(ctx context.Context, listID uuid.UUID) ([]uuid.UUID, error)
}

// ruleProvider exposes a list's rules and their cached sets. FreshDocs
// must be called inside the list recompute transaction: it locks the rule
// row and recomputes a stale cache in place, so the aggregate unions the
// current state of every rule rather than a snapshot taken before the
// list lock was acquired.
type ruleProvider interface {
	ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Rule, error)
	FreshDocs(ctx context.Context, ruleID uuid.UUID) ([]uuid.UUID, error)
}

type documentRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Document, error)
	AuthorNamesByDocIDs(ctx context.Context, docIDs []uuid.UUID) (map[uuid.UUID][]string, error)
	PersonsByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Person, error)
	GroupsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Group, error)
	GroupExists(ctx context.Context, id uuid.UUID) (bool, error)
	PersonExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type changeRecordRepo interface {
	GetByDocIDs(ctx context.Context, docIDs []uuid.UUID) (map[uuid.UUID]*domain.ChangeRecord, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the community list business logic.
type Service struct {
	log       *slog.Logger
	lists     listRepo
	rules     ruleProvider
	documents documentRepo
	changes   changeRecordRepo
	tx        txManager
	metrics   metrics.Recorder
	cfg       config.CacheConfig
}

// NewService creates a new list service.
func NewService(
	logger *slog.Logger,
	lists listRepo,
	rules ruleProvider,
	documents documentRepo,
	changes changeRecordRepo,
	tx txManager,
	recorder metrics.Recorder,
	cfg config.CacheConfig,
) *Service {
	return &Service{
		log:       logger.With("service", "list"),
		lists:     lists,
		rules:     rules,
		documents: documents,
		changes:   changes,
		tx:        tx,
		metrics:   recorder,
		cfg:       cfg,
	}
}

// GetByID returns a list by primary key.
func (s *Service) GetByID(ctx context.Context, listID uuid.UUID) (*domain.CommunityList, error) {
	return s.lists.GetByID(ctx, listID)
}
