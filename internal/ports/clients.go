package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// TicketInfo is the registry's metadata for an anchored ticket commitment.
type TicketInfo struct {
	EventCommit  common.Hash
	HolderCommit common.Hash
	PolicyCommit common.Hash
	Assurance    string
	URI          string
}

// TicketRegistry is the external registry that proves a ticket/sale fact was
// durably recorded. Read-only; consulted before settlement.
type TicketRegistry interface {
	IsAnchored(ctx context.Context, ticketCommit common.Hash) (bool, error)
	GetTicket(ctx context.Context, ticketCommit common.Hash) (TicketInfo, error)
}

// RevocationAuthority marks ticket commitments as fraudulent. Read-only.
type RevocationAuthority interface {
	IsRevoked(ctx context.Context, ticketCommit common.Hash) (bool, error)
}

// Payment is one outbound payout leg.
type Payment struct {
	To     common.Address
	Amount uint64
}

// FundsTransferor is the outbound value rail. Calls complete or fail
// synchronously; TransferBatch is atomic on the rail side (all legs or
// none), which is what lets a settlement remain all-or-nothing. The engine
// treats any error as domain.ErrTransferFailed and rolls its own state back.
type FundsTransferor interface {
	Transfer(ctx context.Context, to common.Address, amount uint64) error
	TransferBatch(ctx context.Context, payments []Payment) error
}
