package ports

import (
	"context"

	"github.com/ticketrail/settlement/internal/contracts"
)

// DomainPublisher delivers state-transition events to downstream indexers.
type DomainPublisher interface {
	PublishDomain(ctx context.Context, envelope contracts.EventEnvelope) error
}

// AnalyticsPublisher delivers non-authoritative telemetry events.
type AnalyticsPublisher interface {
	PublishAnalytics(ctx context.Context, envelope contracts.EventEnvelope) error
}
