package rules

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

// UpdateRule applies partial parameter updates to a rule. The rule type is
// immutable; changing strategy means deleting and re-creating the rule.
// A name_contains pattern change rebuilds the rule's index; every update
// stale-marks the rule and its owning list.
func (s *Service) UpdateRule(ctx context.Context, ruleID uuid.UUID, input UpdateRuleInput) (*domain.Rule, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("get rule: %w", err)
	}

	if input.Text != nil && rule.Type == domain.RuleTypeNameContains {
		if _, err := compilePattern(*input.Text); err != nil {
			return nil, err
		}
	}
	if err := s.checkReferences(ctx, input.GroupID, input.PersonID); err != nil {
		return nil, err
	}

	var updated *domain.Rule
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var updateErr error
		updated, updateErr = s.rules.Update(txCtx, ruleID, domain.RuleUpdateParams{
			Text:     input.Text,
			GroupID:  input.GroupID,
			PersonID: input.PersonID,
			State:    input.State,
		})
		if updateErr != nil {
			return fmt.Errorf("update rule: %w", updateErr)
		}
		if err := s.lists.MarkDirty(txCtx, updated.ListID); err != nil {
			return fmt.Errorf("mark list dirty: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if updated.Type == domain.RuleTypeNameContains && input.Text != nil {
		if err := s.RebuildNameIndex(ctx, updated.ID); err != nil {
			return nil, err
		}
	}

	if _, err := s.CachedDocs(ctx, updated.ID); err != nil {
		return nil, err
	}

	s.log.Info("rule updated", "rule_id", updated.ID, "list_id", updated.ListID)
	return updated, nil
}
