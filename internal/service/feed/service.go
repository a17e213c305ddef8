// Package feed renders a list's recent tracked events as an Atom 1.0
// feed, with namespaced document extensions on each entry.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/config"
	"github.com/docwatch/docwatch-backend/internal/domain"
	"github.com/docwatch/docwatch-backend/internal/metrics"
	"github.com/docwatch/docwatch-backend/internal/service/list"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type listAggregator interface {
	Get(ctx context.Context, listID uuid.UUID) (*list.Contents, error)
}

type listRepo interface {
	GetByPerson(ctx context.Context, personID uuid.UUID) (*domain.CommunityList, error)
}

type eventRepo interface {
	RecentForDocuments(ctx context.Context, docIDs []uuid.UUID, since time.Time, limit int, significantOnly bool) ([]*domain.DocumentEvent, error)
}

type documentRepo interface {
	PersonIDsByEmail(ctx context.Context, email string) ([]uuid.UUID, error)
	AuthorNamesByDocIDs(ctx context.Context, docIDs []uuid.UUID) (map[uuid.UUID][]string, error)
	PersonsByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Person, error)
	GroupsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Group, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements feed production.
type Service struct {
	log        *slog.Logger
	aggregator listAggregator
	lists      listRepo
	events     eventRepo
	documents  documentRepo
	metrics    metrics.Recorder
	cfg        config.FeedConfig
}

// NewService creates a new feed service.
func NewService(
	logger *slog.Logger,
	aggregator listAggregator,
	lists listRepo,
	events eventRepo,
	documents documentRepo,
	recorder metrics.Recorder,
	cfg config.FeedConfig,
) *Service {
	return &Service{
		log:        logger.With("service", "feed"),
		aggregator: aggregator,
		lists:      lists,
		events:     events,
		documents:  documents,
		metrics:    recorder,
		cfg:        cfg,
	}
}

// Render produces the Atom feed for a list: recent events of the list's
// aggregated documents, most-recent-first, bounded by the configured item
// count and lookback window. significantOnly filters strictly to events
// the classifier stamped significant at ingest time.
func (s *Service) Render(ctx context.Context, listID uuid.UUID, since time.Time, significantOnly bool) ([]byte, error) {
	feed, err := s.BuildFeed(ctx, listID, since, significantOnly)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordFeedRender()
	return feed.Encode()
}

// RenderByEmail resolves the list owned by the person behind an email
// address and renders its feed. An address resolving to several persons
// fails the whole render with domain.ErrAmbiguousOwner so the caller can
// disambiguate; this is never reported as an internal failure.
func (s *Service) RenderByEmail(ctx context.Context, email string, since time.Time, significantOnly bool) ([]byte, error) {
	personIDs, err := s.documents.PersonIDsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("resolve email: %w", err)
	}
	switch len(personIDs) {
	case 0:
		return nil, fmt.Errorf("email %q: %w", email, domain.ErrNotFound)
	case 1:
	default:
		return nil, fmt.Errorf("email %q resolves to %d persons: %w", email, len(personIDs), domain.ErrAmbiguousOwner)
	}

	l, err := s.lists.GetByPerson(ctx, personIDs[0])
	if err != nil {
		return nil, fmt.Errorf("get list by person: %w", err)
	}
	return s.Render(ctx, l.ID, since, significantOnly)
}

// BuildFeed assembles the feed model without encoding it.
func (s *Service) BuildFeed(ctx context.Context, listID uuid.UUID, since time.Time, significantOnly bool) (*AtomFeed, error) {
	contents, err := s.aggregator.Get(ctx, listID)
	if err != nil {
		return nil, err
	}

	floor := time.Now().Add(-s.cfg.Lookback)
	if since.Before(floor) {
		since = floor
	}

	docIDs := make([]uuid.UUID, len(contents.Documents))
	docsByID := make(map[uuid.UUID]*domain.Document, len(contents.Documents))
	for i, d := range contents.Documents {
		docIDs[i] = d.ID
		docsByID[d.ID] = d
	}

	events, err := s.events.RecentForDocuments(ctx, docIDs, since, s.cfg.MaxItems, significantOnly)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	lookups, err := s.entryLookups(ctx, events, docsByID)
	if err != nil {
		return nil, err
	}

	return s.buildAtom(contents.List, events, docsByID, lookups), nil
}

// entryLookups batch-loads the relations feed entries reference.
type entryLookups struct {
	authors map[uuid.UUID][]string
	groups  map[uuid.UUID]*domain.Group
	persons map[uuid.UUID]string
}

func (s *Service) entryLookups(ctx context.Context, events []*domain.DocumentEvent, docsByID map[uuid.UUID]*domain.Document) (*entryLookups, error) {
	seen := make(map[uuid.UUID]struct{})
	var docIDs []uuid.UUID
	var groupIDs, personIDs []uuid.UUID
	for _, ev := range events {
		if _, dup := seen[ev.DocumentID]; dup {
			continue
		}
		seen[ev.DocumentID] = struct{}{}
		docIDs = append(docIDs, ev.DocumentID)

		doc := docsByID[ev.DocumentID]
		if doc == nil {
			continue
		}
		if doc.GroupID != nil {
			groupIDs = append(groupIDs, *doc.GroupID)
		}
		if doc.ShepherdID != nil {
			personIDs = append(personIDs, *doc.ShepherdID)
		}
		if doc.ADID != nil {
			personIDs = append(personIDs, *doc.ADID)
		}
	}

	authors, err := s.documents.AuthorNamesByDocIDs(ctx, docIDs)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	groups, err := s.documents.GroupsByIDs(ctx, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	persons, err := s.documents.PersonsByIDs(ctx, personIDs)
	if err != nil {
		return nil, fmt.Errorf("load persons: %w", err)
	}

	lookups := &entryLookups{
		authors: authors,
		groups:  groups,
		persons: make(map[uuid.UUID]string, len(persons)),
	}
	for _, p := range persons {
		lookups.persons[p.ID] = p.Name
	}
	return lookups, nil
}
