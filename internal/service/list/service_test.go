package list

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

type mockListRepo struct {
	GetByIDFunc      func(ctx context.Context, listID uuid.UUID) (*domain.CommunityList, error)
	GetForUpdateFunc func(ctx context.Context, listID uuid.UUID) (*domain.CommunityList, error)
	GetByPersonFunc  func(ctx context.Context, personID uuid.UUID) (*domain.CommunityList, error)
	GetByGroupFunc   func(ctx context.Context, groupID uuid.UUID) (*domain.CommunityList, error)
	CreateFunc       func(ctx context.Context, l *domain.CommunityList) (*domain.CommunityList, error)
	UpdateConfigFunc func(ctx context.Context, listID uuid.UUID, params domain.ListUpdateParams) (*domain.CommunityList, error)
	MarkDirtyFunc    func(ctx context.Context, listID uuid.UUID) error
	SetCleanFunc     func(ctx context.Context, listID uuid.UUID) error
	AddPinFunc       func(ctx context.Context, listID, docID uuid.UUID) error
	RemovePinFunc    func(ctx context.Context, listID, docID uuid.UUID) error
	PinnedDocsFunc   func(ctx context.Context, listID uuid.UUID) ([]uuid.UUID, error)
	ReplaceCacheFunc func(ctx context.Context, listID uuid.UUID, docIDs []uuid.UUID) error
	CachedDocsFunc   func(ctx context.Context, listID uuid.UUID) ([]uuid.UUID, error)
}

func (m *mockListRepo) GetByID(ctx context.Context, listID uuid.UUID) (*domain.CommunityList, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, listID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockListRepo) GetForUpdate(ctx context.Context, listID uuid.UUID) (*domain.CommunityList, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, listID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockListRepo) GetByPerson(ctx context.Context, personID uuid.UUID) (*domain.CommunityList, error) {
	if m.GetByPersonFunc != nil {
		return m.GetByPersonFunc(ctx, personID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockListRepo) GetByGroup(ctx context.Context, groupID uuid.UUID) (*domain.CommunityList, error) {
	if m.GetByGroupFunc != nil {
		return m.GetByGroupFunc(ctx, groupID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockListRepo) Create(ctx context.Context, l *domain.CommunityList) (*domain.CommunityList, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, l)
	}
	l.ID = uuid.New()
	return l, nil
}

func (m *mockListRepo) UpdateConfig(ctx context.Context, listID uuid.UUID, params domain.ListUpdateParams) (*domain.CommunityList, error) {
	if m.UpdateConfigFunc != nil {
		return m.UpdateConfigFunc(ctx, listID, params)
	}
	return nil, domain.ErrNotFound
}

func (m *mockListRepo) MarkDirty(ctx context.Context, listID uuid.UUID) error {
	if m.MarkDirtyFunc != nil {
		return m.MarkDirtyFunc(ctx, listID)
	}
	return nil
}

func (m *mockListRepo) SetClean(ctx context.Context, listID uuid.UUID) error {
	if m.SetCleanFunc != nil {
		return m.SetCleanFunc(ctx, listID)
	}
	return nil
}

func (m *mockListRepo) AddPin(ctx context.Context, listID, docID uuid.UUID) error {
	if m.AddPinFunc != nil {
		return m.AddPinFunc(ctx, listID, docID)
	}
	return nil
}

func (m *mockListRepo) RemovePin(ctx context.Context, listID, docID uuid.UUID) error {
	if m.RemovePinFunc != nil {
		return m.RemovePinFunc(ctx, listID, docID)
	}
	return nil
}

func (m *mockListRepo) PinnedDocs(ctx context.Context, listID uuid.UUID) ([]uuid.UUID, error) {
	if m.PinnedDocsFunc != nil {
		return m.PinnedDocsFunc(ctx, listID)
	}
	return []uuid.UUID{}, nil
}

func (m *mockListRepo) ReplaceCache(ctx context.Context, listID uuid.UUID, docIDs []uuid.UUID) error {
	if m.ReplaceCacheFunc != nil {
		return m.ReplaceCacheFunc(ctx, listID, docIDs)
	}
	return nil
}

func (m *mockListRepo) CachedDocs(ctx context.Context, listID uuid.UUID) ([]uuid.UUID, error) {
	if m.CachedDocsFunc != nil {
		return m.CachedDocsFunc(ctx, listID)
	}
	return []uuid.UUID{}, nil
}

type mockRuleProvider struct {
	ListByListFunc func(ctx context.Context, listID uuid.UUID) ([]*domain.Rule, error)
	FreshDocsFunc  func(ctx context.Context, ruleID uuid.UUID) ([]uuid.UUID, error)
}

func (m *mockRuleProvider) ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Rule, error) {
	if m.ListByListFunc != nil {
		return m.ListByListFunc(ctx, listID)
	}
	return []*domain.Rule{}, nil
}

func (m *mockRuleProvider) FreshDocs(ctx context.Context, ruleID uuid.UUID) ([]uuid.UUID, error) {
	if m.FreshDocsFunc != nil {
		return m.FreshDocsFunc(ctx, ruleID)
	}
	return []uuid.UUID{}, nil
}

type mockDocumentRepo struct {
	GetByIDFunc             func(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	GetByIDsFunc            func(ctx context.Context, ids []uuid.UUID) ([]*domain.Document, error)
	AuthorNamesByDocIDsFunc func(ctx context.Context, docIDs []uuid.UUID) (map[uuid.UUID][]string, error)
	PersonsByIDsFunc        func(ctx context.Context, ids []uuid.UUID) ([]*domain.Person, error)
	GroupsByIDsFunc         func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Group, error)
	GroupExistsFunc         func(ctx context.Context, id uuid.UUID) (bool, error)
	PersonExistsFunc        func(ctx context.Context, id uuid.UUID) (bool, error)
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Document, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	return []*domain.Document{}, nil
}

func (m *mockDocumentRepo) AuthorNamesByDocIDs(ctx context.Context, docIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	if m.AuthorNamesByDocIDsFunc != nil {
		return m.AuthorNamesByDocIDsFunc(ctx, docIDs)
	}
	return map[uuid.UUID][]string{}, nil
}

func (m *mockDocumentRepo) PersonsByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Person, error) {
	if m.PersonsByIDsFunc != nil {
		return m.PersonsByIDsFunc(ctx, ids)
	}
	return []*domain.Person{}, nil
}

func (m *mockDocumentRepo) GroupsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Group, error) {
	if m.GroupsByIDsFunc != nil {
		return m.GroupsByIDsFunc(ctx, ids)
	}
	return map[uuid.UUID]*domain.Group{}, nil
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

type mockChangeRecordRepo struct {
	GetByDocIDsFunc func(ctx context.Context, docIDs []uuid.UUID) (map[uuid.UUID]*domain.ChangeRecord, error)
}

func (m *mockChangeRecordRepo) GetByDocIDs(ctx context.Context, docIDs []uuid.UUID) (map[uuid.UUID]*domain.ChangeRecord, error) {
	if m.GetByDocIDsFunc != nil {
		return m.GetByDocIDsFunc(ctx, docIDs)
	}
	return map[uuid.UUID]*domain.ChangeRecord{}, nil
}

type mockTxManager struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}

type testDeps struct {
	lists   *mockListRepo
	rules   *mockRuleProvider
	docs    *mockDocumentRepo
	changes *mockChangeRecordRepo
}

func newTestService(d testDeps) *Service {
	if d.lists == nil {
		d.lists = &mockListRepo{}
	}
	if d.rules == nil {
		d.rules = &mockRuleProvider{}
	}
	if d.docs == nil {
		d.docs = &mockDocumentRepo{}
	}
	if d.changes == nil {
		d.changes = &mockChangeRecordRepo{}
	}
	return NewService(
		slog.Default(),
		d.lists,
		d.rules,
		d.docs,
		d.changes,
		&mockTxManager{},
		metrics.Nop{},
		config.CacheConfig{RecomputeTimeout: time.Second},
	)
}
