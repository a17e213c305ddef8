package list

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

// Contents is a list together with its aggregated, ordered documents.
type Contents struct {
	List      *domain.CommunityList
	Documents []*domain.Document
}

// Get returns the list's aggregated document set, ordered by the list's
// configured sort method. The aggregate is pins ∪ every rule's cached set,
// deduplicated; a stale-marked list is recomputed before the read returns,
// so no read ever serves a pre-dirty value past one recompute cycle.
//
// The recompute is bounded by the configured timeout; on expiry the last
// cached aggregate is served and the list stays dirty.
func (s *Service) Get(ctx context.Context, listID uuid.UUID) (*Contents, error) {
	l, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}

	if l.Dirty {
		recomputeCtx, cancel := context.WithTimeout(ctx, s.cfg.RecomputeTimeout)
		err = s.recompute(recomputeCtx, listID)
		cancel()
		switch {
		case err == nil:
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			s.log.Warn("list recompute timed out, serving last cached aggregate", "list_id", listID)
		default:
			return nil, err
		}
	}

	ids, err := s.lists.CachedDocs(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("read list cache: %w", err)
	}

	// Deleted documents still referenced by a stale cache are skipped
	// here and disappear for good on the next recompute.
	docs, err := s.documents.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	if err := s.sortDocuments(ctx, l.SortMethod, docs); err != nil {
		return nil, err
	}
	return &Contents{List: l, Documents: docs}, nil
}

// recompute rebuilds the list's materialized aggregate under the list's
// row lock. Every rule cache is read through FreshDocs inside the same
// transaction: the rule row is locked and a stale cache is re-evaluated
// in place, so the union always reflects the current state of every rule.
// A rule edit that commits while we wait for the list lock is therefore
// part of the union, and clearing the dirty flag below never consumes an
// invalidation the union did not observe. Lock order is list before rule,
// everywhere.
func (s *Service) recompute(ctx context.Context, listID uuid.UUID) error {
	start := time.Now()

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		l, err := s.lists.GetForUpdate(txCtx, listID)
		if err != nil {
			return fmt.Errorf("lock list: %w", err)
		}
		if !l.Dirty {
			// A concurrent reader recomputed while we waited for the lock.
			return nil
		}

		seen := make(map[uuid.UUID]struct{})
		var union []uuid.UUID

		pins, err := s.lists.PinnedDocs(txCtx, listID)
		if err != nil {
			return fmt.Errorf("read pins: %w", err)
		}
		for _, id := range pins {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				union = append(union, id)
			}
		}

		rules, err := s.rules.ListByList(txCtx, listID)
		if err != nil {
			return fmt.Errorf("list rules: %w", err)
		}
		for _, r := range rules {
			ids, err := s.rules.FreshDocs(txCtx, r.ID)
			if err != nil {
				return fmt.Errorf("refresh rule %s: %w", r.ID, err)
			}
			for _, id := range ids {
				if _, dup := seen[id]; !dup {
					seen[id] = struct{}{}
					union = append(union, id)
				}
			}
		}

		if err := s.lists.ReplaceCache(txCtx, listID, union); err != nil {
			return fmt.Errorf("replace list cache: %w", err)
		}
		if err := s.lists.SetClean(txCtx, listID); err != nil {
			return fmt.Errorf("clear dirty flag: %w", err)
		}
		s.metrics.RecordListRecompute(time.Since(start))
		return nil
	})
}
