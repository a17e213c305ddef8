package rules

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

// CreateRuleInput holds the parameters for creating a tracking rule.
type CreateRuleInput struct {
	ListID   uuid.UUID
	Type     domain.RuleType
	Text     string
	GroupID  *uuid.UUID
	PersonID *uuid.UUID
	State    string
}

// Validate checks structural fields and collects all errors. Reference
// existence and regex compilation are checked separately in CreateRule,
// since they need repository and compile calls.
func (i *CreateRuleInput) Validate() error {
	var errs []domain.FieldError

	if i.ListID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "list_id", Message: "required"})
	}
	if !i.Type.IsValid() {
		errs = append(errs, domain.FieldError{Field: "type", Message: "unknown rule type"})
	}

	switch i.Type {
	case domain.RuleTypeGroup, domain.RuleTypeArea:
		if i.GroupID == nil {
			errs = append(errs, domain.FieldError{Field: "group_id", Message: "required"})
		}
	case domain.RuleTypeAuthor, domain.RuleTypeAD, domain.RuleTypeShepherd:
		// PersonID may be nil: the person directory is eventually
		// consistent, and a missing reference evaluates to the empty set.
	case domain.RuleTypeState:
		if i.State == "" {
			errs = append(errs, domain.FieldError{Field: "state", Message: "required"})
		}
	case domain.RuleTypeText, domain.RuleTypeNameContains:
		if i.Text == "" {
			errs = append(errs, domain.FieldError{Field: "text", Message: "required"})
		} else if len(i.Text) > 500 {
			errs = append(errs, domain.FieldError{Field: "text", Message: "too long (max 500)"})
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdateRuleInput holds partial updates for a rule's parameters.
type UpdateRuleInput struct {
	Text     *string
	GroupID  *uuid.UUID
	PersonID *uuid.UUID
	State    *string
}

// Validate checks the fields that are present.
func (i *UpdateRuleInput) Validate() error {
	var errs []domain.FieldError

	if i.Text != nil && len(*i.Text) > 500 {
		errs = append(errs, domain.FieldError{Field: "text", Message: "too long (max 500)"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// compilePattern compiles a name_contains pattern, converting compile
// failures into a validation error so bad patterns are rejected at edit
// time and never reach evaluation.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, domain.NewValidationError("text", fmt.Sprintf("invalid pattern: %v", err))
	}
	return re, nil
}

// checkReferences verifies that referenced groups and persons exist in the
// corpus. A missing group is a configuration error; a missing person is
// tolerated (see Validate) but a present reference must resolve.
func (s *Service) checkReferences(ctx context.Context, groupID, personID *uuid.UUID) error {
	if groupID != nil {
		ok, err := s.documents.GroupExists(ctx, *groupID)
		if err != nil {
			return fmt.Errorf("check group: %w", err)
		}
		if !ok {
			return domain.NewValidationError("group_id", "unknown group")
		}
	}
	if personID != nil {
		ok, err := s.documents.PersonExists(ctx, *personID)
		if err != nil {
			return fmt.Errorf("check person: %w", err)
		}
		if !ok {
			return domain.NewValidationError("person_id", "unknown person")
		}
	}
	return nil
}
