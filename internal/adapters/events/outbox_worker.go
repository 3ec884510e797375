package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ticketrail/settlement/internal/application"
)

// OutboxWorker drains the audit outbox on a poll interval so state-mutating
// requests never block on broker availability.
type OutboxWorker struct {
	logger   *slog.Logger
	service  *application.Service
	interval time.Duration
}

func NewOutboxWorker(logger *slog.Logger, service *application.Service, interval time.Duration) *OutboxWorker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &OutboxWorker{logger: logger, service: service, interval: interval}
}

func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if err := w.service.FlushOutbox(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "outbox flush failed",
				"module", "events.outbox_worker",
				"layer", "adapter",
				"operation", "flush",
				"outcome", "failure",
				"error", err,
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
