package postgres

import (
	"time"
)

type escrowModel struct {
	SaleID       string     `gorm:"column:sale_id;primaryKey"`
	TicketCommit string     `gorm:"column:ticket_commit"`
	Seller       string     `gorm:"column:seller"`
	Buyer        string     `gorm:"column:buyer"`
	Amount       uint64     `gorm:"column:amount"`
	Status       string     `gorm:"column:status"`
	FundedAt     time.Time  `gorm:"column:funded_at"`
	ClosedAt     *time.Time `gorm:"column:closed_at"`
	EvidenceRef  string     `gorm:"column:evidence_ref"`
	RefundReason string     `gorm:"column:refund_reason"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (escrowModel) TableName() string { return "escrow_records" }

// poolBalanceModel is a single-row table; all credits and debits run as
// atomic balance arithmetic against that row.
type poolBalanceModel struct {
	PoolID    string    `gorm:"column:pool_id;primaryKey"`
	Balance   uint64    `gorm:"column:balance"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (poolBalanceModel) TableName() string { return "pool_balances" }

type refundLedgerModel struct {
	SaleID     string    `gorm:"column:sale_id;primaryKey"`
	Recipient  string    `gorm:"column:recipient"`
	Amount     uint64    `gorm:"column:amount"`
	Reason     string    `gorm:"column:reason"`
	RefundedAt time.Time `gorm:"column:refunded_at"`
}

func (refundLedgerModel) TableName() string { return "pool_refund_ledger" }

type authorizationModel struct {
	Role      string    `gorm:"column:role;primaryKey"`
	Principal string    `gorm:"column:principal;primaryKey"`
	Allowed   bool      `gorm:"column:allowed"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (authorizationModel) TableName() string { return "authorizations" }

type feeConfigModel struct {
	ConfigID          string    `gorm:"column:config_id;primaryKey"`
	ObolBps           uint32    `gorm:"column:obol_bps"`
	ProtectBps        uint32    `gorm:"column:protect_bps"`
	FoundationAddress string    `gorm:"column:foundation_address"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (feeConfigModel) TableName() string { return "fee_configs" }

type outboxModel struct {
	RecordID   string     `gorm:"column:record_id;primaryKey"`
	EventClass string     `gorm:"column:event_class"`
	Envelope   string     `gorm:"column:envelope;type:jsonb"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	SentAt     *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string { return "settlement_outbox" }
