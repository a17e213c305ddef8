package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

// IngestEventInput is one document change as emitted by the corpus.
type IngestEventInput struct {
	DocumentID  uuid.UUID
	Kind        domain.EventKind
	Description string
	Actor       string
	State       string // target state for state_changed events
	OccurredAt  time.Time
}

// Validate checks all fields and collects all errors.
func (i *IngestEventInput) Validate() error {
	var errs []domain.FieldError

	if i.DocumentID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "document_id", Message: "required"})
	}
	switch i.Kind {
	case domain.EventKindNewRevision, domain.EventKindStateChanged, domain.EventKindComment:
	default:
		errs = append(errs, domain.FieldError{Field: "kind", Message: "unknown event kind"})
	}
	if i.Kind == domain.EventKindStateChanged && i.State == "" {
		errs = append(errs, domain.FieldError{Field: "state", Message: "required for state_changed"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Ingest classifies and records one corpus event. Irrelevant events are
// dropped without side effects and return nil. Relevant events are
// persisted together with the document's change record update in one
// transaction, then handed to the async dispatcher: mail delivery never
// blocks or fails the write that triggered it.
func (s *Service) Ingest(ctx context.Context, input IngestEventInput) (*domain.DocumentEvent, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	doc, err := s.documents.GetByID(ctx, input.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	ev := &domain.DocumentEvent{
		ID:          uuid.New(),
		DocumentID:  doc.ID,
		Kind:        input.Kind,
		Description: input.Description,
		Actor:       input.Actor,
		State:       input.State,
		CreatedAt:   occurredAt,
	}

	c := s.Classify(doc, ev)
	if !c.Relevant {
		s.metrics.RecordEventDropped()
		s.log.Debug("irrelevant event dropped", "document_id", doc.ID, "kind", ev.Kind)
		return nil, nil
	}
	ev.Significant = c.Significant

	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.events.Insert(txCtx, ev); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		newVersion := ev.Kind == domain.EventKindNewRevision
		if err := s.changes.Upsert(txCtx, doc.ID, occurredAt, newVersion, ev.Significant); err != nil {
			return fmt.Errorf("update change record: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.metrics.RecordEventIngested(string(ev.Kind), ev.Significant)
	s.bus.Publish(ev)
	return ev, nil
}
