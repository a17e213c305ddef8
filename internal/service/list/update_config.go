package list

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

// UpdateConfigInput holds partial updates for a list's configuration.
type UpdateConfigInput struct {
	SortMethod    *domain.SortMethod
	DisplayFields []domain.DisplayField // nil = leave unchanged
}

// Validate checks the fields that are present.
func (i *UpdateConfigInput) Validate() error {
	var errs []domain.FieldError

	if i.SortMethod != nil && !i.SortMethod.IsValid() {
		errs = append(errs, domain.FieldError{Field: "sort_method", Message: "unknown sort method"})
	}
	if i.DisplayFields != nil && len(i.DisplayFields) == 0 {
		errs = append(errs, domain.FieldError{Field: "display_fields", Message: "at least one field required"})
	}
	for _, f := range i.DisplayFields {
		if !f.IsValid() {
			errs = append(errs, domain.FieldError{Field: "display_fields", Message: fmt.Sprintf("unknown field %q", f)})
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdateConfig updates the list's sort method and/or display fields.
// Configuration only affects presentation, so the cached aggregate stays
// valid and is not stale-marked.
func (s *Service) UpdateConfig(ctx context.Context, listID uuid.UUID, input UpdateConfigInput) (*domain.CommunityList, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.lists.UpdateConfig(ctx, listID, domain.ListUpdateParams{
		SortMethod:    input.SortMethod,
		DisplayFields: input.DisplayFields,
	})
	if err != nil {
		return nil, fmt.Errorf("update list config: %w", err)
	}
	return updated, nil
}
