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

// ===========================================================================
// Mocks with configurable func fields.
// ===========================================================================

type mockRuleRepo struct {
	GetByIDFunc          func(ctx context.Context, ruleID uuid.UUID) (*domain.Rule, error)
	GetForUpdateFunc     func(ctx context.Context, ruleID uuid.UUID) (*domain.Rule, error)
	ListByListFunc       func(ctx context.Context, listID uuid.UUID) ([]*domain.Rule, error)
	ListByTypeFunc       func(ctx context.Context, t domain.RuleType) ([]*domain.Rule, error)
	ListDirtyFunc        func(ctx context.Context) ([]*domain.Rule, error)
	CreateFunc           func(ctx context.Context, rule *domain.Rule) (*domain.Rule, error)
	UpdateFunc           func(ctx context.Context, ruleID uuid.UUID, params domain.RuleUpdateParams) (*domain.Rule, error)
	DeleteFunc           func(ctx context.Context, ruleID uuid.UUID) error
	MarkDirtyFunc        func(ctx context.Context, ruleID uuid.UUID) error
	SetCleanFunc         func(ctx context.Context, ruleID uuid.UUID, evaluatedAt time.Time) error
	ReplaceDocsFunc      func(ctx context.Context, ruleID uuid.UUID, docIDs []uuid.UUID) error
	CachedDocsFunc       func(ctx context.Context, ruleID uuid.UUID) ([]uuid.UUID, error)
	ReplaceNameIndexFunc func(ctx context.Context, ruleID uuid.UUID, docIDs []uuid.UUID) error
	NameIndexDocsFunc    func(ctx context.Context, ruleID uuid.UUID) ([]uuid.UUID, error)
}

func (m *mockRuleRepo) GetByID(ctx context.Context, ruleID uuid.UUID) (*domain.Rule, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, ruleID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockRuleRepo) GetForUpdate(ctx context.Context, ruleID uuid.UUID) (*domain.Rule, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, ruleID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockRuleRepo) ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Rule, error) {
	if m.ListByListFunc != nil {
		return m.ListByListFunc(ctx, listID)
	}
	return []*domain.Rule{}, nil
}

func (m *mockRuleRepo) ListByType(ctx context.Context, t domain.RuleType) ([]*domain.Rule, error) {
	if m.ListByTypeFunc != nil {
		return m.ListByTypeFunc(ctx, t)
	}
	return []*domain.Rule{}, nil
}

func (m *mockRuleRepo) ListDirty(ctx context.Context) ([]*domain.Rule, error) {
	if m.ListDirtyFunc != nil {
		return m.ListDirtyFunc(ctx)
	}
	return []*domain.Rule{}, nil
}

func (m *mockRuleRepo) Create(ctx context.Context, rule *domain.Rule) (*domain.Rule, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rule)
	}
	return rule, nil
}

func (m *mockRuleRepo) Update(ctx context.Context, ruleID uuid.UUID, params domain.RuleUpdateParams) (*domain.Rule, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, ruleID, params)
	}
	return nil, domain.ErrNotFound
}

func (m *mockRuleRepo) Delete(ctx context.Context, ruleID uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ruleID)
	}
	return nil
}

func (m *mockRuleRepo) MarkDirty(ctx context.Context, ruleID uuid.UUID) error {
	if m.MarkDirtyFunc != nil {
		return m.MarkDirtyFunc(ctx, ruleID)
	}
	return nil
}

func (m *mockRuleRepo) SetClean(ctx context.Context, ruleID uuid.UUID, evaluatedAt time.Time) error {
	if m.SetCleanFunc != nil {
		return m.SetCleanFunc(ctx, ruleID, evaluatedAt)
	}
	return nil
}

func (m *mockRuleRepo) ReplaceDocs(ctx context.Context, ruleID uuid.UUID, docIDs []uuid.UUID) error {
	if m.ReplaceDocsFunc != nil {
		return m.ReplaceDocsFunc(ctx, ruleID, docIDs)
	}
	return nil
}

func (m *mockRuleRepo) CachedDocs(ctx context.Context, ruleID uuid.UUID) ([]uuid.UUID, error) {
	if m.CachedDocsFunc != nil {
		return m.CachedDocsFunc(ctx, ruleID)
	}
	return []uuid.UUID{}, nil
}

func (m *mockRuleRepo) ReplaceNameIndex(ctx context.Context, ruleID uuid.UUID, docIDs []uuid.UUID) error {
	if m.ReplaceNameIndexFunc != nil {
		return m.ReplaceNameIndexFunc(ctx, ruleID, docIDs)
	}
	return nil
}

func (m *mockRuleRepo) NameIndexDocs(ctx context.Context, ruleID uuid.UUID) ([]uuid.UUID, error) {
	if m.NameIndexDocsFunc != nil {
		return m.NameIndexDocsFunc(ctx, ruleID)
	}
	return []uuid.UUID{}, nil
}

type mockDocumentRepo struct {
	IDsByGroupFunc       func(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
	IDsByAreaFunc        func(ctx context.Context, areaID uuid.UUID) ([]uuid.UUID, error)
	IDsByPersonRoleFunc  func(ctx context.Context, personID uuid.UUID, role domain.PersonRole) ([]uuid.UUID, error)
	IDsByStateFunc       func(ctx context.Context, state string) ([]uuid.UUID, error)
	IDsByTextFunc        func(ctx context.Context, substr string) ([]uuid.UUID, error)
	FilterIDsByStateFunc func(ctx context.Context, ids []uuid.UUID, state string) ([]uuid.UUID, error)
	AllNamesFunc         func(ctx context.Context) ([]domain.NamedDocument, error)
	GroupExistsFunc      func(ctx context.Context, id uuid.UUID) (bool, error)
	PersonExistsFunc     func(ctx context.Context, id uuid.UUID) (bool, error)
}

func (m *mockDocumentRepo) IDsByGroup(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	if m.IDsByGroupFunc != nil {
		return m.IDsByGroupFunc(ctx, groupID)
	}
	return []uuid.UUID{}, nil
}

func (m *mockDocumentRepo) IDsByArea(ctx context.Context, areaID uuid.UUID) ([]uuid.UUID, error) {
	if m.IDsByAreaFunc != nil {
		return m.IDsByAreaFunc(ctx, areaID)
	}
	return []uuid.UUID{}, nil
}

func (m *mockDocumentRepo) IDsByPersonRole(ctx context.Context, personID uuid.UUID, role domain.PersonRole) ([]uuid.UUID, error) {
	if m.IDsByPersonRoleFunc != nil {
		return m.IDsByPersonRoleFunc(ctx, personID, role)
	}
	return []uuid.UUID{}, nil
}

func (m *mockDocumentRepo) IDsByState(ctx context.Context, state string) ([]uuid.UUID, error) {
	if m.IDsByStateFunc != nil {
		return m.IDsByStateFunc(ctx, state)
	}
	return []uuid.UUID{}, nil
}

func (m *mockDocumentRepo) IDsByText(ctx context.Context, substr string) ([]uuid.UUID, error) {
	if m.IDsByTextFunc != nil {
		return m.IDsByTextFunc(ctx, substr)
	}
	return []uuid.UUID{}, nil
}

func (m *mockDocumentRepo) FilterIDsByState(ctx context.Context, ids []uuid.UUID, state string) ([]uuid.UUID, error) {
	if m.FilterIDsByStateFunc != nil {
		return m.FilterIDsByStateFunc(ctx, ids, state)
	}
	return ids, nil
}

func (m *mockDocumentRepo) AllNames(ctx context.Context) ([]domain.NamedDocument, error) {
	if m.AllNamesFunc != nil {
		return m.AllNamesFunc(ctx)
	}
	return []domain.NamedDocument{}, nil
}

func (m *mockDocumentRepo) GroupExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.GroupExistsFunc != nil {
		return m.GroupExistsFunc(ctx, id)
	}
	return true, nil
}

func (m *mockDocumentRepo) PersonExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.PersonExistsFunc != nil {
		return m.PersonExistsFunc(ctx, id)
	}
	return true, nil
}

type mockListRepo struct {
	GetByIDFunc   func(ctx context.Context, listID uuid.UUID) (*domain.CommunityList, error)
	MarkDirtyFunc func(ctx context.Context, listID uuid.UUID) error
}

func (m *mockListRepo) GetByID(ctx context.Context, listID uuid.UUID) (*domain.CommunityList, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, listID)
	}
	return &domain.CommunityList{ID: listID}, nil
}

func (m *mockListRepo) MarkDirty(ctx context.Context, listID uuid.UUID) error {
	if m.MarkDirtyFunc != nil {
		return m.MarkDirtyFunc(ctx, listID)
	}
	return nil
}

// mockTxManager runs the callback directly on the caller's context.
type mockTxManager struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}

func newTestService(rules *mockRuleRepo, docs *mockDocumentRepo, lists *mockListRepo) *Service {
	return NewService(
		slog.Default(),
		rules,
		docs,
		lists,
		&mockTxManager{},
		metrics.Nop{},
		config.CacheConfig{RecomputeTimeout: time.Second},
	)
}
