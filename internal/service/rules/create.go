package rules

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

// CreateRule validates and creates a tracking rule. Invalid parameters
// (bad pattern, unknown group or person) are rejected before anything is
// written; the owning list's cached aggregate is untouched on rejection.
// On success the rule's name index is built, its cache is computed, and
// the owning list is stale-marked.
func (s *Service) CreateRule(ctx context.Context, input CreateRuleInput) (*domain.Rule, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.Type == domain.RuleTypeNameContains {
		if _, err := compilePattern(input.Text); err != nil {
			return nil, err
		}
	}
	if err := s.checkReferences(ctx, input.GroupID, input.PersonID); err != nil {
		return nil, err
	}
	if _, err := s.lists.GetByID(ctx, input.ListID); err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}

	var created *domain.Rule
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		rule := &domain.Rule{
			ID:       uuid.New(),
			ListID:   input.ListID,
			Type:     input.Type,
			Text:     input.Text,
			GroupID:  input.GroupID,
			PersonID: input.PersonID,
			State:    input.State,
		}

		var createErr error
		created, createErr = s.rules.Create(txCtx, rule)
		if createErr != nil {
			return fmt.Errorf("create rule: %w", createErr)
		}
		if err := s.lists.MarkDirty(txCtx, created.ListID); err != nil {
			return fmt.Errorf("mark list dirty: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if created.Type == domain.RuleTypeNameContains {
		if err := s.RebuildNameIndex(ctx, created.ID); err != nil {
			return nil, err
		}
	}

	// Compute the cache eagerly so the next list read needs no rule work.
	if _, err := s.CachedDocs(ctx, created.ID); err != nil {
		return nil, err
	}

	s.log.Info("rule created", "rule_id", created.ID, "list_id", created.ListID, "type", created.Type)
	return created, nil
}
