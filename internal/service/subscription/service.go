// Package subscription implements email subscription management for
// community lists.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

type subscriptionRepo interface {
	Create(ctx context.Context, s *domain.Subscription) (*domain.Subscription, error)
	Delete(ctx context.Context, subscriptionID uuid.UUID) error
	ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Subscription, error)
}

type listRepo interface {
	GetByID(ctx context.Context, listID uuid.UUID) (*domain.CommunityList, error)
}

// Service implements subscription management. Any address may subscribe
// to any list; subscriptions are independent of list ownership.
type Service struct {
	log           *slog.Logger
	subscriptions subscriptionRepo
	lists         listRepo
}

// NewService creates a new subscription service.
func NewService(logger *slog.Logger, subscriptions subscriptionRepo, lists listRepo) *Service {
	return &Service{
		log:           logger.With("service", "subscription"),
		subscriptions: subscriptions,
		lists:         lists,
	}
}

// SubscribeInput holds the parameters for creating a subscription.
type SubscribeInput struct {
	ListID   uuid.UUID
	Email    string
	NotifyOn domain.NotifyFilter
}

// Validate checks all fields and collects all errors.
func (i *SubscribeInput) Validate() error {
	var errs []domain.FieldError

	if i.ListID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "list_id", Message: "required"})
	}
	if i.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "required"})
	} else if _, err := mail.ParseAddress(i.Email); err != nil {
		errs = append(errs, domain.FieldError{Field: "email", Message: "invalid address"})
	}
	if i.NotifyOn != "" && !i.NotifyOn.IsValid() {
		errs = append(errs, domain.FieldError{Field: "notify_on", Message: "unknown filter"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Subscribe creates an email subscription on a list.
func (s *Service) Subscribe(ctx context.Context, input SubscribeInput) (*domain.Subscription, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.lists.GetByID(ctx, input.ListID); err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}

	notifyOn := input.NotifyOn
	if notifyOn == "" {
		notifyOn = domain.NotifyAll
	}

	created, err := s.subscriptions.Create(ctx, &domain.Subscription{
		ListID:   input.ListID,
		Email:    input.Email,
		NotifyOn: notifyOn,
	})
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	s.log.Info("subscription created", "subscription_id", created.ID, "list_id", created.ListID)
	return created, nil
}

// Unsubscribe removes a subscription.
func (s *Service) Unsubscribe(ctx context.Context, subscriptionID uuid.UUID) error {
	if err := s.subscriptions.Delete(ctx, subscriptionID); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	s.log.Info("subscription removed", "subscription_id", subscriptionID)
	return nil
}

// ListByList returns every subscription attached to a list.
func (s *Service) ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Subscription, error) {
	return s.subscriptions.ListByList(ctx, listID)
}
