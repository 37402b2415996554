package audit

import (
	"context"
	"log/slog"
)

// Worker drains published records into the store. Store failures are logged
// and skipped; losing one audit record is preferable to wedging the drain
// loop behind a failing sink.
type Worker struct {
	store  Store
	inbox  <-chan Record
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Record, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run consumes records until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case record := <-w.inbox:
			if err := w.store.Append(ctx, record); err != nil {
				w.logger.ErrorContext(ctx, "failed to persist audit record",
					"error", err,
					"record_id", record.ID,
					"action", record.Action,
				)
			}
		}
	}
}
