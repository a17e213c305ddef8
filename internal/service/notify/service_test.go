package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/config"
	"github.com/docwatch/docwatch-backend/internal/domain"
	"github.com/docwatch/docwatch-backend/internal/metrics"
)

// ===========================================================================
// Mocks with configurable func fields.
// ===========================================================================

type mockEventRepo struct {
	InsertFunc           func(ctx context.Context, ev *domain.DocumentEvent) error
	ListUndispatchedFunc func(ctx context.Context, before time.Time, limit int) ([]*domain.DocumentEvent, error)
	MarkDispatchedFunc   func(ctx context.Context, eventID uuid.UUID) error

	mu         sync.Mutex
	dispatched []uuid.UUID
}

func (m *mockEventRepo) Insert(ctx context.Context, ev *domain.DocumentEvent) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, ev)
	}
	return nil
}

func (m *mockEventRepo) ListUndispatched(ctx context.Context, before time.Time, limit int) ([]*domain.DocumentEvent, error) {
	if m.ListUndispatchedFunc != nil {
		return m.ListUndispatchedFunc(ctx, before, limit)
	}
	return []*domain.DocumentEvent{}, nil
}

func (m *mockEventRepo) MarkDispatched(ctx context.Context, eventID uuid.UUID) error {
	if m.MarkDispatchedFunc != nil {
		return m.MarkDispatchedFunc(ctx, eventID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatched = append(m.dispatched, eventID)
	return nil
}

func (m *mockEventRepo) Dispatched() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uuid.UUID(nil), m.dispatched...)
}

type mockChangeRecordRepo struct {
	UpsertFunc func(ctx context.Context, docID uuid.UUID, at time.Time, newVersion, significant bool) error
}

func (m *mockChangeRecordRepo) Upsert(ctx context.Context, docID uuid.UUID, at time.Time, newVersion, significant bool) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, docID, at, newVersion, significant)
	}
	return nil
}

type mockDocumentRepo struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Document, error)
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

type mockListRepo struct {
	TrackingDocumentFunc func(ctx context.Context, docID uuid.UUID) ([]uuid.UUID, error)
}

func (m *mockListRepo) TrackingDocument(ctx context.Context, docID uuid.UUID) ([]uuid.UUID, error) {
	if m.TrackingDocumentFunc != nil {
		return m.TrackingDocumentFunc(ctx, docID)
	}
	return []uuid.UUID{}, nil
}

type mockSubscriptionRepo struct {
	ListByListFunc func(ctx context.Context, listID uuid.UUID) ([]*domain.Subscription, error)
}

func (m *mockSubscriptionRepo) ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Subscription, error) {
	if m.ListByListFunc != nil {
		return m.ListByListFunc(ctx, listID)
	}
	return []*domain.Subscription{}, nil
}

// mockNotificationRepo claims like the real table: first claim per
// (event, list) wins, repeats lose. Safe for concurrent dispatch.
type mockNotificationRepo struct {
	ClaimFunc func(ctx context.Context, eventID, listID uuid.UUID, significant bool) (bool, error)

	mu      sync.Mutex
	claimed map[[2]uuid.UUID]bool
}

func (m *mockNotificationRepo) Claim(ctx context.Context, eventID, listID uuid.UUID, significant bool) (bool, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(ctx, eventID, listID, significant)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimed == nil {
		m.claimed = make(map[[2]uuid.UUID]bool)
	}
	key := [2]uuid.UUID{eventID, listID}
	if m.claimed[key] {
		return false, nil
	}
	m.claimed[key] = true
	return true, nil
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

type mockPublisher struct {
	PublishFunc func(ev *domain.DocumentEvent)

	mu        sync.Mutex
	published []*domain.DocumentEvent
}

func (m *mockPublisher) Publish(ev *domain.DocumentEvent) {
	if m.PublishFunc != nil {
		m.PublishFunc(ev)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, ev)
}

func (m *mockPublisher) Published() []*domain.DocumentEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.DocumentEvent(nil), m.published...)
}

// recordingMailer captures every delivered message, thread-safe.
type recordingMailer struct {
	SendFunc func(ctx context.Context, msg Message) error

	mu   sync.Mutex
	sent []Message
}

func (m *recordingMailer) Send(ctx context.Context, msg Message) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

type testDeps struct {
	events        *mockEventRepo
	changes       *mockChangeRecordRepo
	documents     *mockDocumentRepo
	lists         *mockListRepo
	subscriptions *mockSubscriptionRepo
	notifications *mockNotificationRepo
	bus           *mockPublisher
	mailer        *recordingMailer
	cfg           *config.NotifyConfig
}

func newTestService(d testDeps) *Service {
	if d.events == nil {
		d.events = &mockEventRepo{}
	}
	if d.changes == nil {
		d.changes = &mockChangeRecordRepo{}
	}
	if d.documents == nil {
		d.documents = &mockDocumentRepo{}
	}
	if d.lists == nil {
		d.lists = &mockListRepo{}
	}
	if d.subscriptions == nil {
		d.subscriptions = &mockSubscriptionRepo{}
	}
	if d.notifications == nil {
		d.notifications = &mockNotificationRepo{}
	}
	if d.bus == nil {
		d.bus = &mockPublisher{}
	}
	if d.mailer == nil {
		d.mailer = &recordingMailer{}
	}
	cfg := config.NotifyConfig{
		SignificantStates: []string{"lc", "iesg-approved", "rfc", "dead"},
		QueueSize:         16,
		MailRetries:       1,
		MailRetryDelay:    time.Millisecond,
		FromAddress:       "docwatch@example.org",
		CatchUpInterval:   time.Minute,
		CatchUpBatch:      100,
	}
	if d.cfg != nil {
		cfg = *d.cfg
	}
	return NewService(
		slog.Default(),
		d.events,
		d.changes,
		d.documents,
		d.lists,
		d.subscriptions,
		d.notifications,
		&mockTxManager{},
		d.bus,
		d.mailer,
		metrics.Nop{},
		cfg,
	)
}
