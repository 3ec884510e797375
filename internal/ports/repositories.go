package ports

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ticketrail/settlement/internal/contracts"
	"github.com/ticketrail/settlement/internal/domain"
)

// EscrowRepository owns EscrowRecord rows keyed by sale id. Create must
// reject an existing sale id with domain.ErrConflict; UpdateStatus must only
// move a record out of fromStatus (compare-and-swap), returning
// domain.ErrWrongState when the stored status differs.
type EscrowRepository interface {
	Create(ctx context.Context, rec domain.EscrowRecord) error
	GetBySaleID(ctx context.Context, saleID common.Hash) (domain.EscrowRecord, error)
	UpdateStatus(ctx context.Context, saleID common.Hash, fromStatus string, rec domain.EscrowRecord) error
}

// PoolRepository owns the protection pool's spendable balance and its refund
// ledger. Credit/Debit are atomic; Debit fails with
// domain.ErrInsufficientPoolBalance rather than going negative. MarkRefunded
// must reject a sale id already present with domain.ErrAlreadyRefunded;
// UnmarkRefunded removes an entry when the payout it guarded was rolled back.
type PoolRepository interface {
	Balance(ctx context.Context) (uint64, error)
	Credit(ctx context.Context, amount uint64) error
	Debit(ctx context.Context, amount uint64) error
	IsRefunded(ctx context.Context, saleID common.Hash) (bool, error)
	MarkRefunded(ctx context.Context, entry domain.RefundEntry) error
	UnmarkRefunded(ctx context.Context, saleID common.Hash) error
}

// AuthorizationRepository holds the confirmer and resolver allow-lists.
type AuthorizationRepository interface {
	SetAllowed(ctx context.Context, role string, principal common.Address, allowed bool, at time.Time) error
	IsAllowed(ctx context.Context, role string, principal common.Address) (bool, error)
}

// FeeConfigRepository holds the single current fee schedule.
type FeeConfigRepository interface {
	Get(ctx context.Context) (domain.FeeConfig, error)
	Set(ctx context.Context, cfg domain.FeeConfig, at time.Time) error
}

type OutboxRecord struct {
	RecordID   string
	EventClass string
	Envelope   contracts.EventEnvelope
	CreatedAt  time.Time
}

// OutboxRepository stages audit events inside the mutating operation; the
// worker drains it asynchronously so the event stream survives restarts.
type OutboxRepository interface {
	Enqueue(ctx context.Context, record OutboxRecord) error
	ListPending(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkSent(ctx context.Context, recordID string, at time.Time) error
}
