package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/ticketrail/settlement/internal/contracts"
	"github.com/ticketrail/settlement/internal/domain"
	"github.com/ticketrail/settlement/internal/ports"
)

// FlushOutbox drains pending audit events to their publishers. Run by the
// worker process on a poll interval.
func (s *Service) FlushOutbox(ctx context.Context) error {
	if s.outbox == nil {
		return nil
	}
	pending, err := s.outbox.ListPending(ctx, s.cfg.OutboxFlushBatchSize)
	if err != nil {
		return err
	}
	for _, rec := range pending {
		switch rec.EventClass {
		case domain.CanonicalEventClassDomain, domain.CanonicalEventClassOps:
			if s.domainEvents != nil {
				if err := s.domainEvents.PublishDomain(ctx, rec.Envelope); err != nil {
					return err
				}
			}
		case domain.CanonicalEventClassAnalyticsOnly:
			if s.analytics != nil {
				_ = s.analytics.PublishAnalytics(ctx, rec.Envelope)
			}
		default:
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedEventClass, rec.EventClass)
		}
		if err := s.outbox.MarkSent(ctx, rec.RecordID, s.nowFn()); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) enqueueEvent(ctx context.Context, eventType, traceID string, data any, partitionKey string, now time.Time) error {
	if s.outbox == nil {
		return nil
	}
	if !domain.IsCanonicalEmittedEvent(eventType) {
		return domain.ErrUnsupportedEventType
	}
	b, err := json.Marshal(data)
	if err != nil {
		return domain.ErrInvalidInput
	}
	if strings.TrimSpace(traceID) == "" {
		traceID = uuid.NewString()
	}
	env := contracts.EventEnvelope{
		EventID:          uuid.NewString(),
		EventType:        eventType,
		EventClass:       domain.CanonicalEventClass(eventType),
		OccurredAt:       now,
		PartitionKeyPath: domain.CanonicalPartitionKeyPath(eventType),
		PartitionKey:     partitionKey,
		SourceService:    s.cfg.ServiceName,
		TraceID:          traceID,
		SchemaVersion:    "v1",
		Data:             b,
	}
	return s.outbox.Enqueue(ctx, ports.OutboxRecord{
		RecordID:   uuid.NewString(),
		EventClass: env.EventClass,
		Envelope:   env,
		CreatedAt:  now,
	})
}

func (s *Service) enqueueOrderFunded(ctx context.Context, rec domain.EscrowRecord, traceID string, now time.Time) error {
	return s.enqueueEvent(ctx, domain.EventOrderFunded, traceID, contracts.OrderFundedPayload{
		SaleID:       rec.SaleID.Hex(),
		TicketCommit: rec.TicketCommit.Hex(),
		Seller:       rec.Seller.Hex(),
		Buyer:        rec.Buyer.Hex(),
		Amount:       rec.Amount,
		FundedAt:     now.UTC().Format(time.RFC3339),
	}, rec.SaleID.Hex(), now)
}

func (s *Service) enqueueOrderSettled(ctx context.Context, rec domain.EscrowRecord, split domain.FeeSplit, traceID string, now time.Time) error {
	return s.enqueueEvent(ctx, domain.EventOrderSettled, traceID, contracts.OrderSettledPayload{
		SaleID:          rec.SaleID.Hex(),
		EvidenceRef:     rec.EvidenceRef,
		FoundationShare: split.Foundation,
		PoolShare:       split.Pool,
		SellerNet:       split.SellerNet,
		SettledAt:       now.UTC().Format(time.RFC3339),
	}, rec.SaleID.Hex(), now)
}

func (s *Service) enqueueOrderCancelled(ctx context.Context, rec domain.EscrowRecord, traceID string, now time.Time) error {
	return s.enqueueEvent(ctx, domain.EventOrderCancelled, traceID, contracts.OrderCancelledPayload{
		SaleID:      rec.SaleID.Hex(),
		Refunded:    rec.Amount,
		CancelledAt: now.UTC().Format(time.RFC3339),
	}, rec.SaleID.Hex(), now)
}

func (s *Service) enqueueOrderRefunded(ctx context.Context, rec domain.EscrowRecord, traceID string, now time.Time) error {
	return s.enqueueEvent(ctx, domain.EventOrderRefunded, traceID, contracts.OrderRefundedPayload{
		SaleID:     rec.SaleID.Hex(),
		Recipient:  rec.Buyer.Hex(),
		Amount:     rec.Amount,
		Reason:     rec.RefundReason,
		RefundedAt: now.UTC().Format(time.RFC3339),
	}, rec.SaleID.Hex(), now)
}

func (s *Service) enqueuePoolToppedUp(ctx context.Context, amount, newBalance uint64, traceID string, now time.Time) error {
	return s.enqueueEvent(ctx, domain.EventPoolToppedUp, traceID, contracts.PoolToppedUpPayload{
		Pool:       ports.PoolLockKey,
		Amount:     amount,
		NewBalance: newBalance,
		ToppedUpAt: now.UTC().Format(time.RFC3339),
	}, ports.PoolLockKey, now)
}

func (s *Service) enqueuePoolRefundIssued(ctx context.Context, entry domain.RefundEntry, traceID string) error {
	return s.enqueueEvent(ctx, domain.EventPoolRefundIssued, traceID, contracts.PoolRefundIssuedPayload{
		SaleID:     entry.SaleID.Hex(),
		Recipient:  entry.Recipient.Hex(),
		Amount:     entry.Amount,
		Reason:     entry.Reason,
		RefundedAt: entry.RefundedAt.UTC().Format(time.RFC3339),
	}, entry.SaleID.Hex(), entry.RefundedAt)
}

func (s *Service) enqueuePoolSwept(ctx context.Context, to common.Address, amount uint64, traceID string, now time.Time) error {
	return s.enqueueEvent(ctx, domain.EventPoolSwept, traceID, contracts.PoolSweptPayload{
		Pool:      ports.PoolLockKey,
		Recipient: to.Hex(),
		Amount:    amount,
		SweptAt:   now.UTC().Format(time.RFC3339),
	}, ports.PoolLockKey, now)
}

func (s *Service) enqueueFeeConfigChanged(ctx context.Context, cfg domain.FeeConfig, traceID string, now time.Time) error {
	return s.enqueueEvent(ctx, domain.EventFeeConfigChanged, traceID, contracts.FeeConfigChangedPayload{
		Scope:             "fees",
		ObolBps:           cfg.ObolBps,
		ProtectBps:        cfg.ProtectBps,
		FoundationAddress: cfg.FoundationAddress.Hex(),
		ChangedAt:         now.UTC().Format(time.RFC3339),
	}, "fees", now)
}

func (s *Service) enqueueAuthorizationChanged(ctx context.Context, role string, principal common.Address, allowed bool, traceID string, now time.Time) error {
	return s.enqueueEvent(ctx, domain.EventAuthorizationChanged, traceID, contracts.AuthorizationChangedPayload{
		Scope:     "authorization",
		Role:      role,
		Principal: principal.Hex(),
		Allowed:   allowed,
		ChangedAt: now.UTC().Format(time.RFC3339),
	}, "authorization", now)
}
