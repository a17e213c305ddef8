package rules

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// DeleteRule removes a rule together with its cached set and name index
// entries, and stale-marks the owning list so its next read drops the
// rule's contribution.
func (s *Service) DeleteRule(ctx context.Context, ruleID uuid.UUID) error {
	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return fmt.Errorf("get rule: %w", err)
	}

	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.rules.Delete(txCtx, rule.ID); err != nil {
			return fmt.Errorf("delete rule: %w", err)
		}
		if err := s.lists.MarkDirty(txCtx, rule.ListID); err != nil {
			return fmt.Errorf("mark list dirty: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	s.log.Info("rule deleted", "rule_id", rule.ID, "list_id", rule.ListID)
	return nil
}
