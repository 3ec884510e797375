package domain

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// saleIDDomainTag separates sale-id preimages from any other Keccak use of
// the same field tuple.
const saleIDDomainTag = "ticketrail.sale.v1"

// Order is a proposed ticket transfer with an agreed price and expiry. It is
// ephemeral: the engine persists an EscrowRecord at funding time and keys it
// by the order's deterministic SaleID.
type Order struct {
	TicketCommit   common.Hash    `json:"ticket_commit"`
	Seller         common.Address `json:"seller"`
	Buyer          common.Address `json:"buyer"`
	Price          uint64         `json:"price"`
	Expiry         time.Time      `json:"expiry"`
	MaxPriceCapBps uint32         `json:"max_price_cap_bps"`
}

// ComputeSaleID derives the order's unique identifier as Keccak-256 over the
// packed field tuple. Two orders with identical fields always yield the same
// id; the engine never trusts a caller-supplied id without recomputing it.
func ComputeSaleID(order Order) common.Hash {
	buf := make([]byte, 0, len(saleIDDomainTag)+32+20+20+8+8+4)
	buf = append(buf, saleIDDomainTag...)
	buf = append(buf, order.TicketCommit.Bytes()...)
	buf = append(buf, order.Seller.Bytes()...)
	buf = append(buf, order.Buyer.Bytes()...)
	buf = binary.BigEndian.AppendUint64(buf, order.Price)
	buf = binary.BigEndian.AppendUint64(buf, uint64(order.Expiry.Unix()))
	buf = binary.BigEndian.AppendUint32(buf, order.MaxPriceCapBps)
	return common.BytesToHash(crypto.Keccak256(buf))
}

// ValidateOrder enforces the funding-time invariants: positive price,
// distinct parties, a real ticket commitment, and an unexpired deadline.
// MaxPriceCapBps is carried for compliance collaborators, not enforced here.
func ValidateOrder(order Order, now time.Time) error {
	if order.Price == 0 {
		return ErrInvalidOrder
	}
	if order.Seller == order.Buyer {
		return ErrInvalidOrder
	}
	if order.Seller == (common.Address{}) || order.Buyer == (common.Address{}) {
		return ErrInvalidOrder
	}
	if order.TicketCommit == (common.Hash{}) {
		return ErrInvalidOrder
	}
	if order.Expiry.IsZero() {
		return ErrInvalidOrder
	}
	if !now.Before(order.Expiry) {
		return ErrExpired
	}
	return nil
}

// ParseAddress accepts a 0x-prefixed hex principal or account identifier.
func ParseAddress(raw string) (common.Address, error) {
	raw = strings.TrimSpace(raw)
	if !common.IsHexAddress(raw) {
		return common.Address{}, ErrInvalidInput
	}
	return common.HexToAddress(raw), nil
}

// MustParseAddress is ParseAddress for configuration values already
// validated at load time.
func MustParseAddress(raw string) common.Address {
	addr, err := ParseAddress(raw)
	if err != nil {
		panic("invalid address: " + raw)
	}
	return addr
}

// ParseHash accepts a 0x-prefixed 32-byte hex identifier (sale id or ticket
// commitment).
func ParseHash(raw string) (common.Hash, error) {
	cut := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(raw), "0x"), "0X")
	if len(cut) != 2*common.HashLength {
		return common.Hash{}, ErrInvalidInput
	}
	for _, c := range cut {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return common.Hash{}, ErrInvalidInput
		}
	}
	return common.HexToHash(cut), nil
}
