package application

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ticketrail/settlement/internal/domain"
	"github.com/ticketrail/settlement/internal/ports"
)

type Config struct {
	ServiceName          string
	Owner                common.Address
	OutboxFlushBatchSize int
}

// Actor is the authenticated caller of an operation. Principal is the
// account the transport layer resolved from the bearer credential; role
// checks (owner, confirmer, resolver) happen inside the engine, never in the
// adapter.
type Actor struct {
	Principal common.Address
	RequestID string
}

// FundInput carries the order together with the value the buyer sent.
// DeclaredSaleID, when present, is verified against the recomputed id.
type FundInput struct {
	Order          domain.Order
	DeclaredSaleID *common.Hash
	SentValue      uint64
}

type SettleInput struct {
	Order          domain.Order
	DeclaredSaleID *common.Hash
	EvidenceRef    string
}

type CancelInput struct {
	Order          domain.Order
	DeclaredSaleID *common.Hash
}

type RefundFromPoolInput struct {
	Order          domain.Order
	DeclaredSaleID *common.Hash
	Reason         string
}

type PoolRefundInput struct {
	SaleID common.Hash
	To     common.Address
	Amount uint64
	Reason string
}

type SweepInput struct {
	To     common.Address
	Amount uint64
}

// SettleResult reports the fee split actually paid out.
type SettleResult struct {
	Record domain.EscrowRecord
	Split  domain.FeeSplit
}

type Service struct {
	cfg Config

	escrow ports.EscrowRepository
	pool   ports.PoolRepository
	authz  ports.AuthorizationRepository
	fees   ports.FeeConfigRepository
	outbox ports.OutboxRepository

	registry   ports.TicketRegistry
	revocation ports.RevocationAuthority
	transferor ports.FundsTransferor

	locks ports.SaleLocker

	domainEvents ports.DomainPublisher
	analytics    ports.AnalyticsPublisher

	nowFn func() time.Time
}

type Dependencies struct {
	Config Config

	Escrow ports.EscrowRepository
	Pool   ports.PoolRepository
	Authz  ports.AuthorizationRepository
	Fees   ports.FeeConfigRepository
	Outbox ports.OutboxRepository

	Registry   ports.TicketRegistry
	Revocation ports.RevocationAuthority
	Transferor ports.FundsTransferor

	Locks ports.SaleLocker

	DomainEvents ports.DomainPublisher
	Analytics    ports.AnalyticsPublisher
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "settlement-engine"
	}
	if cfg.OutboxFlushBatchSize <= 0 {
		cfg.OutboxFlushBatchSize = 100
	}
	return &Service{
		cfg:          cfg,
		escrow:       deps.Escrow,
		pool:         deps.Pool,
		authz:        deps.Authz,
		fees:         deps.Fees,
		outbox:       deps.Outbox,
		registry:     deps.Registry,
		revocation:   deps.Revocation,
		transferor:   deps.Transferor,
		locks:        deps.Locks,
		domainEvents: deps.DomainEvents,
		analytics:    deps.Analytics,
		nowFn:        func() time.Time { return time.Now().UTC() },
	}
}
