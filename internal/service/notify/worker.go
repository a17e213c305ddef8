package notify

import (
	"context"
	"time"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

// subscriber is the bus side the worker consumes from.
type subscriber interface {
	Subscribe(buffer int) (<-chan *domain.DocumentEvent, func())
}

// Worker consumes ingested events from the bus and runs Dispatch for
// each, decoupling mail fan-out from the write path. A periodic catch-up
// sweep re-dispatches persisted events the bus path lost (full buffer,
// crash mid-dispatch), making delivery at-least-once end to end.
type Worker struct {
	svc *Service
	bus subscriber
}

// NewWorker creates a dispatch worker.
func NewWorker(svc *Service, bus subscriber) *Worker {
	return &Worker{svc: svc, bus: bus}
}

// Run processes events until the context is cancelled or the bus closes.
// The catch-up sweep runs once at start, then on the configured interval.
func (w *Worker) Run(ctx context.Context) error {
	events, unsubscribe := w.bus.Subscribe(w.svc.cfg.QueueSize)
	defer unsubscribe()

	w.svc.log.Info("dispatch worker started", "queue_size", w.svc.cfg.QueueSize)

	if err := w.svc.DispatchPending(ctx); err != nil {
		w.svc.log.Error("catch-up sweep failed", "error", err)
	}

	ticker := time.NewTicker(w.svc.cfg.CatchUpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.svc.log.Info("dispatch worker stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := w.svc.DispatchPending(ctx); err != nil {
				w.svc.log.Error("catch-up sweep failed", "error", err)
			}
		case ev, ok := <-events:
			if !ok {
				w.svc.log.Info("event bus closed, dispatch worker stopping")
				return nil
			}
			if err := w.svc.Dispatch(ctx, ev); err != nil {
				w.svc.log.Error("dispatch failed", "event_id", ev.ID, "error", err)
			}
		}
	}
}
