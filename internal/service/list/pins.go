package list

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// PinDocument adds a document to the list's explicit set and stale-marks
// the aggregate. Pinning an already-pinned document is a no-op.
func (s *Service) PinDocument(ctx context.Context, listID, docID uuid.UUID) error {
	if _, err := s.documents.GetByID(ctx, docID); err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if _, err := s.lists.GetByID(ctx, listID); err != nil {
		return fmt.Errorf("get list: %w", err)
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.lists.AddPin(txCtx, listID, docID); err != nil {
			return fmt.Errorf("add pin: %w", err)
		}
		if err := s.lists.MarkDirty(txCtx, listID); err != nil {
			return fmt.Errorf("mark list dirty: %w", err)
		}
		return nil
	})
}

// UnpinDocument removes a document from the list's explicit set and
// stale-marks the aggregate.
func (s *Service) UnpinDocument(ctx context.Context, listID, docID uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.lists.RemovePin(txCtx, listID, docID); err != nil {
			return fmt.Errorf("remove pin: %w", err)
		}
		if err := s.lists.MarkDirty(txCtx, listID); err != nil {
			return fmt.Errorf("mark list dirty: %w", err)
		}
		return nil
	})
}
