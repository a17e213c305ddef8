// Package rules implements tracking rule management, evaluation, and the
// materialized per-rule document cache.
package rules

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

type ruleRepo interface {
	GetByID(ctx context.Context, ruleID uuid.UUID) (*domain.Rule, error)
	GetForUpdate(ctx context.Context, ruleID uuid.UUID) (*domain.Rule, error)
	ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Rule, error)
	ListByType(ctx context.Context, t domain.RuleType) ([]*domain.Rule, error)
	ListDirty(ctx context.Context) ([]*domain.Rule, error)
	Create(ctx context.Context, rule *domain.Rule) (*domain.Rule, error)
	Update(ctx context.Context, ruleID uuid.UUID, params domain.RuleUpdateParams) (*domain.Rule, error)
	Delete(ctx context.Context, ruleID uuid.UUID) error
	MarkDirty(ctx context.Context, ruleID uuid.UUID) error
	SetClean(ctx context.Context, ruleID uuid.UUID, evaluatedAt time.Time) error
	ReplaceDocs(ctx context.Context, ruleID uuid.UUID, docIDs []uuid.UUID) error
	CachedDocs(ctx context.Context, ruleID uuid.UUID) ([]uuid.UUID, error)
	ReplaceNameIndex(ctx context.Context, ruleID uuid.UUID, docIDs []uuid.UUID) error
	NameIndexDocs(ctx context.Context, ruleID uuid.UUID) ([]uuid.UUID, error)
}

type documentRepo interface {
	IDsByGroup(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
	IDsByArea(ctx context.Context, areaID uuid.UUID) ([]uuid.UUID, error)
	IDsByPersonRole(ctx context.Context, personID uuid.UUID, role domain.PersonRole) ([]uuid.UUID, error)
	IDsByState(ctx context.Context, state string) ([]uuid.UUID, error)
	IDsByText(ctx context.Context, substr string) ([]uuid.UUID, error)
	FilterIDsByState(ctx context.Context, ids []uuid.UUID, state string) ([]uuid.UUID, error)
	AllNames(ctx context.Context) ([]domain.NamedDocument, error)
	GroupExists(ctx context.Context, id uuid.UUID) (bool, error)
	PersonExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type listRepo interface {
	GetByID(ctx context.Context, listID uuid.UUID) (*domain.CommunityList, error)
	MarkDirty(ctx context.Context, listID uuid.UUID) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

type evalFunc func(ctx context.Context, rule *domain.Rule) ([]uuid.UUID, error)

// Service implements rule management and evaluation. The evaluator set is a
// closed registry keyed by rule type; adding a variant means adding a
// registry entry here.
type Service struct {
	log        *slog.Logger
	rules      ruleRepo
	documents  documentRepo
	lists      listRepo
	tx         txManager
	metrics    metrics.Recorder
	cfg        config.CacheConfig
	evaluators map[domain.RuleType]evalFunc
}

// NewService creates a new rules service.
func NewService(
	logger *slog.Logger,
	rules ruleRepo,
	documents documentRepo,
	lists listRepo,
	tx txManager,
	recorder metrics.Recorder,
	cfg config.CacheConfig,
) *Service {
	s := &Service{
		log:       logger.With("service", "rules"),
		rules:     rules,
		documents: documents,
		lists:     lists,
		tx:        tx,
		metrics:   recorder,
		cfg:       cfg,
	}
	s.evaluators = map[domain.RuleType]evalFunc{
		domain.RuleTypeGroup:        s.evalGroup,
		domain.RuleTypeArea:         s.evalArea,
		domain.RuleTypeAuthor:       s.evalPersonRole(domain.PersonRoleAuthor),
		domain.RuleTypeAD:           s.evalPersonRole(domain.PersonRoleAD),
		domain.RuleTypeShepherd:     s.evalPersonRole(domain.PersonRoleShepherd),
		domain.RuleTypeState:        s.evalState,
		domain.RuleTypeText:         s.evalText,
		domain.RuleTypeNameContains: s.evalNameContains,
		// Declared but not implemented: both resolve to the empty set.
		domain.RuleTypeRefTo:   s.evalEmpty,
		domain.RuleTypeRefFrom: s.evalEmpty,
	}
	return s
}

// ListByList returns all rules of a list.
func (s *Service) ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Rule, error) {
	return s.rules.ListByList(ctx, listID)
}
