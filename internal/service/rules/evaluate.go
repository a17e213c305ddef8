package rules

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

// Evaluate expands a rule against the current corpus. It is total: an
// unmatched rule, a missing person reference, or an unimplemented rule
// type all return the empty set, never an error. Real errors come only
// from the corpus queries themselves.
//
// A non-empty rule State narrows any variant's result to documents
// currently in that state.
func (s *Service) Evaluate(ctx context.Context, rule *domain.Rule) ([]uuid.UUID, error) {
	eval, ok := s.evaluators[rule.Type]
	if !ok {
		// Unknown tags persisted by an older build degrade to empty
		// rather than poisoning the owning list's aggregation.
		s.log.Warn("unknown rule type", "rule_id", rule.ID, "type", rule.Type)
		return []uuid.UUID{}, nil
	}

	ids, err := eval(ctx, rule)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s rule: %w", rule.Type, err)
	}

	if rule.State != "" && rule.Type != domain.RuleTypeState && len(ids) > 0 {
		ids, err = s.documents.FilterIDsByState(ctx, ids, rule.State)
		if err != nil {
			return nil, fmt.Errorf("filter by state: %w", err)
		}
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

func (s *Service) evalGroup(ctx context.Context, rule *domain.Rule) ([]uuid.UUID, error) {
	if rule.GroupID == nil {
		return nil, nil
	}
	return s.documents.IDsByGroup(ctx, *rule.GroupID)
}

func (s *Service) evalArea(ctx context.Context, rule *domain.Rule) ([]uuid.UUID, error) {
	if rule.GroupID == nil {
		return nil, nil
	}
	return s.documents.IDsByArea(ctx, *rule.GroupID)
}

func (s *Service) evalPersonRole(role domain.PersonRole) evalFunc {
	return func(ctx context.Context, rule *domain.Rule) ([]uuid.UUID, error) {
		if rule.PersonID == nil {
			// The person directory is eventually consistent; an
			// unresolved reference matches nothing.
			return nil, nil
		}
		return s.documents.IDsByPersonRole(ctx, *rule.PersonID, role)
	}
}

func (s *Service) evalState(ctx context.Context, rule *domain.Rule) ([]uuid.UUID, error) {
	if rule.State == "" {
		return nil, nil
	}
	return s.documents.IDsByState(ctx, rule.State)
}

func (s *Service) evalText(ctx context.Context, rule *domain.Rule) ([]uuid.UUID, error) {
	if rule.Text == "" {
		return nil, nil
	}
	return s.documents.IDsByText(ctx, rule.Text)
}

// evalNameContains reads the precomputed name index instead of scanning
// the corpus with a regex. The index is kept fresh by RebuildNameIndex.
func (s *Service) evalNameContains(ctx context.Context, rule *domain.Rule) ([]uuid.UUID, error) {
	return s.rules.NameIndexDocs(ctx, rule.ID)
}

func (s *Service) evalEmpty(ctx context.Context, rule *domain.Rule) ([]uuid.UUID, error) {
	return nil, nil
}
