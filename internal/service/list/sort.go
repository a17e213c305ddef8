package list

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

// sortDocuments orders docs in place per the configured method. The
// date-based methods read DocumentChangeRecord rather than re-querying
// event history per document; documents without a record sort last.
// Canonical name is the tie-breaker everywhere, so ordering is total and
// stable across recomputes.
func (s *Service) sortDocuments(ctx context.Context, method domain.SortMethod, docs []*domain.Document) error {
	switch method {
	case domain.SortByName, "":
		sortBy(docs, func(a, b *domain.Document) bool { return a.Name < b.Name })

	case domain.SortByTitle:
		sortBy(docs, func(a, b *domain.Document) bool {
			if a.Title != b.Title {
				return a.Title < b.Title
			}
			return a.Name < b.Name
		})

	case domain.SortByGroup:
		groups, err := s.groupAcronyms(ctx, docs)
		if err != nil {
			return err
		}
		sortBy(docs, func(a, b *domain.Document) bool {
			ga, gb := groups[a.ID], groups[b.ID]
			if ga != gb {
				return ga < gb
			}
			return a.Name < b.Name
		})

	case domain.SortByRevDate:
		sortBy(docs, func(a, b *domain.Document) bool {
			if !a.RevTime.Equal(b.RevTime) {
				return a.RevTime.After(b.RevTime)
			}
			return a.Name < b.Name
		})

	case domain.SortByChanged:
		records, err := s.changeTimes(ctx, docs, func(r *domain.ChangeRecord) time.Time {
			return r.LastChangedAt
		})
		if err != nil {
			return err
		}
		sortByTime(docs, records)

	case domain.SortBySignificant:
		records, err := s.changeTimes(ctx, docs, func(r *domain.ChangeRecord) time.Time {
			if r.LastSignificantAt == nil {
				return time.Time{}
			}
			return *r.LastSignificantAt
		})
		if err != nil {
			return err
		}
		sortByTime(docs, records)

	default:
		return domain.NewValidationError("sort_method", "unknown sort method")
	}
	return nil
}

func sortBy(docs []*domain.Document, less func(a, b *domain.Document) bool) {
	sort.Slice(docs, func(i, j int) bool { return less(docs[i], docs[j]) })
}

// sortByTime orders most-recent-first; zero times sort last.
func sortByTime(docs []*domain.Document, times map[uuid.UUID]time.Time) {
	sortBy(docs, func(a, b *domain.Document) bool {
		ta, tb := times[a.ID], times[b.ID]
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return a.Name < b.Name
	})
}

func (s *Service) changeTimes(ctx context.Context, docs []*domain.Document, pick func(*domain.ChangeRecord) time.Time) (map[uuid.UUID]time.Time, error) {
	ids := make([]uuid.UUID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	records, err := s.changes.GetByDocIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load change records: %w", err)
	}
	times := make(map[uuid.UUID]time.Time, len(records))
	for id, r := range records {
		times[id] = pick(r)
	}
	return times, nil
}

func (s *Service) groupAcronyms(ctx context.Context, docs []*domain.Document) (map[uuid.UUID]string, error) {
	var groupIDs []uuid.UUID
	for _, d := range docs {
		if d.GroupID != nil {
			groupIDs = append(groupIDs, *d.GroupID)
		}
	}
	groups, err := s.documents.GroupsByIDs(ctx, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	acronyms := make(map[uuid.UUID]string, len(docs))
	for _, d := range docs {
		if d.GroupID != nil {
			if g, ok := groups[*d.GroupID]; ok {
				acronyms[d.ID] = g.Acronym
			}
		}
	}
	return acronyms, nil
}
