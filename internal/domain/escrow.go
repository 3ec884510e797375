package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	EscrowStatusFunded    = "funded"
	EscrowStatusSettled   = "settled"
	EscrowStatusCancelled = "cancelled"
	EscrowStatusRefunded  = "refunded"
)

// EscrowRecord is the per-sale escrow state. A record is created in "funded"
// and transitions out of it exactly once; the three terminal states have no
// outgoing transitions and a record never re-enters "funded".
type EscrowRecord struct {
	SaleID       common.Hash    `json:"sale_id"`
	TicketCommit common.Hash    `json:"ticket_commit"`
	Seller       common.Address `json:"seller"`
	Buyer        common.Address `json:"buyer"`
	Amount       uint64         `json:"amount"`
	Status       string         `json:"status"`
	FundedAt     time.Time      `json:"funded_at"`
	ClosedAt     *time.Time     `json:"closed_at,omitempty"`
	EvidenceRef  string         `json:"evidence_ref,omitempty"`
	RefundReason string         `json:"refund_reason,omitempty"`
}

// IsTerminal reports whether the record has left the funded state.
func (r EscrowRecord) IsTerminal() bool {
	return r.Status != EscrowStatusFunded
}

// RefundEntry is one row of the pool's refund ledger: the proof that a sale
// has already been compensated. A sale id appears at most once.
type RefundEntry struct {
	SaleID     common.Hash    `json:"sale_id"`
	Recipient  common.Address `json:"recipient"`
	Amount     uint64         `json:"amount"`
	Reason     string         `json:"reason"`
	RefundedAt time.Time      `json:"refunded_at"`
}
