package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/config"
	"github.com/docwatch/docwatch-backend/internal/domain"
	"github.com/docwatch/docwatch-backend/internal/metrics"
	"github.com/docwatch/docwatch-backend/internal/service/list"
)

// ===========================================================================
// Mocks with configurable func fields.
// ===========================================================================

type mockAggregator struct {
	GetFunc func(ctx context.Context, listID uuid.UUID) (*list.Contents, error)
}

func (m *mockAggregator) Get(ctx context.Context, listID uuid.UUID) (*list.Contents, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, listID)
	}
	return nil, domain.ErrNotFound
}

type mockListRepo struct {
	GetByPersonFunc func(ctx context.Context, personID uuid.UUID) (*domain.CommunityList, error)
}

func (m *mockListRepo) GetByPerson(ctx context.Context, personID uuid.UUID) (*domain.CommunityList, error) {
	if m.GetByPersonFunc != nil {
		return m.GetByPersonFunc(ctx, personID)
	}
	return nil, domain.ErrNotFound
}

type mockEventRepo struct {
	RecentForDocumentsFunc func(ctx context.Context, docIDs []uuid.UUID, since time.Time, limit int, significantOnly bool) ([]*domain.DocumentEvent, error)
}

func (m *mockEventRepo) RecentForDocuments(ctx context.Context, docIDs []uuid.UUID, since time.Time, limit int, significantOnly bool) ([]*domain.DocumentEvent, error) {
	if m.RecentForDocumentsFunc != nil {
		return m.RecentForDocumentsFunc(ctx, docIDs, since, limit, significantOnly)
	}
	return []*domain.DocumentEvent{}, nil
}

type mockDocumentRepo struct {
	PersonIDsByEmailFunc    func(ctx context.Context, email string) ([]uuid.UUID, error)
	AuthorNamesByDocIDsFunc func(ctx context.Context, docIDs []uuid.UUID) (map[uuid.UUID][]string, error)
	PersonsByIDsFunc        func(ctx context.Context, ids []uuid.UUID) ([]*domain.Person, error)
	GroupsByIDsFunc         func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Group, error)
}

func (m *mockDocumentRepo) PersonIDsByEmail(ctx context.Context, email string) ([]uuid.UUID, error) {
	if m.PersonIDsByEmailFunc != nil {
		return m.PersonIDsByEmailFunc(ctx, email)
	}
	return []uuid.UUID{}, nil
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

type testDeps struct {
	aggregator *mockAggregator
	lists      *mockListRepo
	events     *mockEventRepo
	documents  *mockDocumentRepo
}

func newTestService(d testDeps) *Service {
	if d.aggregator == nil {
		d.aggregator = &mockAggregator{}
	}
	if d.lists == nil {
		d.lists = &mockListRepo{}
	}
	if d.events == nil {
		d.events = &mockEventRepo{}
	}
	if d.documents == nil {
		d.documents = &mockDocumentRepo{}
	}
	return NewService(
		slog.Default(),
		d.aggregator,
		d.lists,
		d.events,
		d.documents,
		metrics.Nop{},
		config.FeedConfig{
			MaxItems: 50,
			Lookback: 14 * 24 * time.Hour,
			BaseURL:  "http://feeds.example.org",
		},
	)
}
