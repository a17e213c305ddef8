package rules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CachedDocs returns a rule's document set, recomputing it first if the
// rule is stale-marked. The recompute runs in a transaction holding the
// rule's row lock, so concurrent readers either wait for the fresh value
// or find the flag already cleared; a dirty mark is never skipped.
//
// The recompute is bounded by the configured timeout. On expiry the
// last-known-good cached set is served and the rule stays dirty for the
// next reader to retry.
func (s *Service) CachedDocs(ctx context.Context, ruleID uuid.UUID) ([]uuid.UUID, error) {
	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("get rule: %w", err)
	}
	if !rule.Dirty {
		return s.rules.CachedDocs(ctx, ruleID)
	}

	recomputeCtx, cancel := context.WithTimeout(ctx, s.cfg.RecomputeTimeout)
	defer cancel()

	err = s.recompute(recomputeCtx, ruleID)
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		s.log.Warn("rule recompute timed out, serving last cached set", "rule_id", ruleID)
	default:
		return nil, err
	}

	return s.rules.CachedDocs(ctx, ruleID)
}

// recompute re-evaluates a rule and replaces its cached set under the
// rule's row lock.
func (s *Service) recompute(ctx context.Context, ruleID uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		_, err := s.FreshDocs(txCtx, ruleID)
		return err
	})
}

// FreshDocs returns a rule's current document set for callers already
// inside a transaction. The rule row is locked; a stale cache is
// re-evaluated and replaced in place, a clean one is read as stored. The
// list aggregator unions rule sets through this during its own locked
// recompute, so a rule edit that committed before the list lock was
// acquired is always reflected in the aggregate, never consumed by a
// union of the pre-edit cache.
func (s *Service) FreshDocs(ctx context.Context, ruleID uuid.UUID) ([]uuid.UUID, error) {
	rule, err := s.rules.GetForUpdate(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("lock rule: %w", err)
	}
	if !rule.Dirty {
		return s.rules.CachedDocs(ctx, ruleID)
	}

	start := time.Now()
	ids, err := s.Evaluate(ctx, rule)
	if err != nil {
		return nil, err
	}
	if err := s.rules.ReplaceDocs(ctx, rule.ID, ids); err != nil {
		return nil, fmt.Errorf("replace rule docs: %w", err)
	}
	if err := s.rules.SetClean(ctx, rule.ID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("clear dirty flag: %w", err)
	}
	s.metrics.RecordRuleRecompute(string(rule.Type), time.Since(start))
	return ids, nil
}

// Invalidate stale-marks a rule and cascades the mark to its owning list,
// atomically. A rule edit followed by any read of the rule's cache must
// observe the edit.
func (s *Service) Invalidate(ctx context.Context, ruleID uuid.UUID) error {
	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return fmt.Errorf("get rule: %w", err)
	}
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.rules.MarkDirty(txCtx, rule.ID); err != nil {
			return fmt.Errorf("mark rule dirty: %w", err)
		}
		if err := s.lists.MarkDirty(txCtx, rule.ListID); err != nil {
			return fmt.Errorf("mark list dirty: %w", err)
		}
		return nil
	})
}

// RecomputeDirty recomputes every stale-marked rule. Run from the sweep
// binary after a bulk corpus change.
func (s *Service) RecomputeDirty(ctx context.Context) error {
	dirty, err := s.rules.ListDirty(ctx)
	if err != nil {
		return fmt.Errorf("list dirty rules: %w", err)
	}
	for _, rule := range dirty {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.recompute(ctx, rule.ID); err != nil {
			// One failing rule must not abort recompute of the rest.
			s.log.Error("recompute rule", "rule_id", rule.ID, "error", err)
		}
	}
	return nil
}
