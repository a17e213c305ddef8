package rules

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

// RebuildNameIndex recomputes a name_contains rule's index entries by
// scanning every canonical document name against the rule's pattern, then
// replaces the stored entries wholesale. The replace runs in a transaction
// holding the rule's row lock, so a concurrent evaluation never observes a
// half-replaced index. Idempotent: rebuilding twice with no corpus change
// yields an identical index.
func (s *Service) RebuildNameIndex(ctx context.Context, ruleID uuid.UUID) error {
	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return fmt.Errorf("get rule: %w", err)
	}
	if rule.Type != domain.RuleTypeNameContains {
		return nil
	}

	re, err := compilePattern(rule.Text)
	if err != nil {
		// The pattern was validated at edit time; a stored pattern that
		// no longer compiles leaves the previous index in place.
		return fmt.Errorf("rule %s: %w", rule.ID, err)
	}

	names, err := s.documents.AllNames(ctx)
	if err != nil {
		return fmt.Errorf("scan document names: %w", err)
	}

	var matched []uuid.UUID
	for _, n := range names {
		if re.MatchString(n.Name) {
			matched = append(matched, n.ID)
		}
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.rules.GetForUpdate(txCtx, rule.ID); err != nil {
			return fmt.Errorf("lock rule: %w", err)
		}
		if err := s.rules.ReplaceNameIndex(txCtx, rule.ID, matched); err != nil {
			return fmt.Errorf("replace name index: %w", err)
		}
		return nil
	})
}

// RebuildAllNameIndexes rebuilds the index of every name_contains rule and
// stale-marks the ones whose match set actually moved; an unchanged index
// leaves the rule and its list clean. This is the periodic sweep that picks
// up documents created after the rule was last edited; new documents are
// not rule edits and would otherwise never re-match.
func (s *Service) RebuildAllNameIndexes(ctx context.Context) error {
	nameRules, err := s.rules.ListByType(ctx, domain.RuleTypeNameContains)
	if err != nil {
		return fmt.Errorf("list name_contains rules: %w", err)
	}

	names, err := s.documents.AllNames(ctx)
	if err != nil {
		return fmt.Errorf("scan document names: %w", err)
	}

	for _, rule := range nameRules {
		re, err := compilePattern(rule.Text)
		if err != nil {
			// One bad pattern must not abort the sweep for other rules.
			s.log.Error("stored pattern no longer compiles", "rule_id", rule.ID, "error", err)
			continue
		}

		var matched []uuid.UUID
		for _, n := range names {
			if re.MatchString(n.Name) {
				matched = append(matched, n.ID)
			}
		}

		if err := s.replaceIndexLocked(ctx, rule, matched); err != nil {
			s.log.Error("rebuild name index", "rule_id", rule.ID, "error", err)
		}
	}
	return nil
}

// replaceIndexLocked replaces one rule's index entries under the rule's
// row lock and, only when the match set moved, stale-marks the rule and
// cascades to the owning list in the same transaction.
func (s *Service) replaceIndexLocked(ctx context.Context, rule *domain.Rule, matched []uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.rules.GetForUpdate(txCtx, rule.ID); err != nil {
			return fmt.Errorf("lock rule: %w", err)
		}
		prev, err := s.rules.NameIndexDocs(txCtx, rule.ID)
		if err != nil {
			return fmt.Errorf("read name index: %w", err)
		}
		if sameIDSet(prev, matched) {
			return nil
		}
		if err := s.rules.ReplaceNameIndex(txCtx, rule.ID, matched); err != nil {
			return fmt.Errorf("replace name index: %w", err)
		}
		if err := s.rules.MarkDirty(txCtx, rule.ID); err != nil {
			return fmt.Errorf("mark rule dirty: %w", err)
		}
		if err := s.lists.MarkDirty(txCtx, rule.ListID); err != nil {
			return fmt.Errorf("mark list dirty: %w", err)
		}
		return nil
	})
}

func sameIDSet(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[uuid.UUID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
