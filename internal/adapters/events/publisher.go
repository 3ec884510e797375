package events

import (
	"context"
	"log/slog"

	"github.com/ticketrail/settlement/internal/contracts"
)

// LoggingPublisher writes envelopes to the structured log instead of a
// broker. Used when no Kafka brokers are configured (local/dev runs).
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) PublishDomain(ctx context.Context, envelope contracts.EventEnvelope) error {
	p.log(ctx, "domain event published", envelope)
	return nil
}

func (p *LoggingPublisher) PublishAnalytics(ctx context.Context, envelope contracts.EventEnvelope) error {
	p.log(ctx, "analytics event published", envelope)
	return nil
}

func (p *LoggingPublisher) log(ctx context.Context, msg string, envelope contracts.EventEnvelope) {
	p.logger.InfoContext(ctx, msg,
		"module", "events.publisher",
		"layer", "adapter",
		"operation", "publish",
		"outcome", "success",
		"event_id", envelope.EventID,
		"event_type", envelope.EventType,
		"partition_key", envelope.PartitionKey,
	)
}
