package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

// maxConcurrentLists bounds the dispatch fan-out per event.
const maxConcurrentLists = 8

// Dispatch fans one ingested event out to every list tracking the
// affected document. The lists' materialized caches are the source of
// truth here; rules are never re-evaluated inline with an event.
//
// Per list, the (event, list) notification record is claimed first, so a
// retried dispatch never mails the same subscribers twice. A failure on
// one list never aborts dispatch to the others.
func (s *Service) Dispatch(ctx context.Context, ev *domain.DocumentEvent) error {
	doc, err := s.documents.GetByID(ctx, ev.DocumentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	listIDs, err := s.lists.TrackingDocument(ctx, ev.DocumentID)
	if err != nil {
		return fmt.Errorf("find tracking lists: %w", err)
	}

	if len(listIDs) > 0 {
		msg := s.compose(doc, ev)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxConcurrentLists)
		for _, listID := range listIDs {
			g.Go(func() error {
				if err := s.dispatchToList(gctx, ev, listID, msg); err != nil {
					// Log and swallow: other lists keep going.
					s.log.Error("dispatch to list failed", "event_id", ev.ID, "list_id", listID, "error", err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	// The stamp removes the event from the catch-up sweep. Without it a
	// crashed or dropped dispatch would never be retried; the per-list
	// claims above keep the retry from double-mailing anyone.
	if err := s.events.MarkDispatched(ctx, ev.ID); err != nil {
		return fmt.Errorf("mark dispatched: %w", err)
	}
	return nil
}

// DispatchPending re-dispatches persisted events whose fan-out never
// completed: dropped from a full bus buffer, or interrupted by a crash
// after the event row committed. Together with the bus path this makes
// delivery at-least-once; notification claims make it exactly-once per
// subscriber. The cutoff leaves the newest events to the bus.
func (s *Service) DispatchPending(ctx context.Context) error {
	before := time.Now().Add(-s.cfg.CatchUpInterval)
	events, err := s.events.ListUndispatched(ctx, before, s.cfg.CatchUpBatch)
	if err != nil {
		return fmt.Errorf("list undispatched events: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	s.log.Info("catching up on undispatched events", "count", len(events))
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Dispatch(ctx, ev); err != nil {
			// One stuck event must not starve the rest of the batch.
			s.log.Error("catch-up dispatch failed", "event_id", ev.ID, "error", err)
		}
	}
	return nil
}

func (s *Service) dispatchToList(ctx context.Context, ev *domain.DocumentEvent, listID uuid.UUID, msg Message) error {
	claimed, err := s.notifications.Claim(ctx, ev.ID, listID, ev.Significant)
	if err != nil {
		return fmt.Errorf("claim notification: %w", err)
	}
	if !claimed {
		// Already dispatched, possibly by a retry or a concurrent worker.
		return nil
	}
	s.metrics.RecordDispatch(1)

	subs, err := s.subscriptions.ListByList(ctx, listID)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}

	for _, sub := range subs {
		if sub.NotifyOn == domain.NotifySignificant && !ev.Significant {
			continue
		}

		m := msg
		m.To = sub.Email
		if err := s.sendWithRetry(ctx, m); err != nil {
			// Transient transport failure for one subscriber must not
			// block the others; the claim stands, delivery is best-effort.
			s.metrics.RecordMailFailed()
			s.log.Error("mail delivery failed", "event_id", ev.ID, "list_id", listID, "to", sub.Email, "error", err)
			continue
		}
		s.metrics.RecordMailSent()
	}
	return nil
}

// compose builds the single notification content block for an event. The
// same block goes to every matching subscriber of every matching list.
func (s *Service) compose(doc *domain.Document, ev *domain.DocumentEvent) Message {
	var subject string
	switch ev.Kind {
	case domain.EventKindNewRevision:
		subject = fmt.Sprintf("New revision of %s (%s)", doc.Name, doc.Rev)
	case domain.EventKindStateChanged:
		subject = fmt.Sprintf("%s changed state to %s", doc.Name, ev.State)
	default:
		subject = fmt.Sprintf("%s changed", doc.Name)
	}

	body := fmt.Sprintf("Document: %s\nTitle: %s\n\n%s\n\nTime: %s\n",
		doc.Name, doc.Title, ev.Description, ev.CreatedAt.Format(time.RFC1123))
	if ev.Actor != "" {
		body += fmt.Sprintf("By: %s\n", ev.Actor)
	}

	return Message{
		From:    s.cfg.FromAddress,
		Subject: subject,
		Body:    body,
	}
}
