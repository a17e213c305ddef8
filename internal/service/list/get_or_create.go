package list

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

// GetOrCreateForPerson returns the person's list, creating it on first
// access. Creation races are resolved by retrying the lookup after a
// unique-violation.
func (s *Service) GetOrCreateForPerson(ctx context.Context, personID uuid.UUID) (*domain.CommunityList, error) {
	if personID == uuid.Nil {
		return nil, domain.NewValidationError("person_id", "required")
	}
	ok, err := s.documents.PersonExists(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("check person: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("person %s: %w", personID, domain.ErrNotFound)
	}
	return s.getOrCreate(ctx,
		func(ctx context.Context) (*domain.CommunityList, error) {
			return s.lists.GetByPerson(ctx, personID)
		},
		&domain.CommunityList{PersonID: &personID},
	)
}

// GetOrCreateForGroup returns the group's list, creating it on first access.
func (s *Service) GetOrCreateForGroup(ctx context.Context, groupID uuid.UUID) (*domain.CommunityList, error) {
	if groupID == uuid.Nil {
		return nil, domain.NewValidationError("group_id", "required")
	}
	ok, err := s.documents.GroupExists(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("check group: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, domain.ErrNotFound)
	}
	return s.getOrCreate(ctx,
		func(ctx context.Context) (*domain.CommunityList, error) {
			return s.lists.GetByGroup(ctx, groupID)
		},
		&domain.CommunityList{GroupID: &groupID},
	)
}

func (s *Service) getOrCreate(
	ctx context.Context,
	lookup func(ctx context.Context) (*domain.CommunityList, error),
	blank *domain.CommunityList,
) (*domain.CommunityList, error) {
	l, err := lookup(ctx)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup list: %w", err)
	}

	created, err := s.lists.Create(ctx, blank)
	if err == nil {
		s.log.Info("list created", "list_id", created.ID)
		return created, nil
	}
	if errors.Is(err, domain.ErrAlreadyExists) {
		// Lost a creation race; the winner's list is the list.
		return lookup(ctx)
	}
	return nil, fmt.Errorf("create list: %w", err)
}
