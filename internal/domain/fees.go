package domain

import "github.com/ethereum/go-ethereum/common"

// BpsDenominator is the basis-point scale for fee shares.
const BpsDenominator = 10_000

// FeeConfig is the process-wide fee schedule. It is versionless: the latest
// value applies to every future settlement.
type FeeConfig struct {
	ObolBps           uint32         `json:"obol_bps"`
	ProtectBps        uint32         `json:"protect_bps"`
	FoundationAddress common.Address `json:"foundation_address"`
}

// Validate rejects schedules whose combined share exceeds the whole, and
// schedules that route a non-zero foundation share nowhere.
func (c FeeConfig) Validate() error {
	if uint64(c.ObolBps)+uint64(c.ProtectBps) > BpsDenominator {
		return ErrInvalidInput
	}
	if c.ObolBps > 0 && c.FoundationAddress == (common.Address{}) {
		return ErrInvalidInput
	}
	return nil
}

// FeeSplit is the settlement-time division of the escrowed amount.
// Foundation + Pool + SellerNet always equals the original amount exactly.
type FeeSplit struct {
	Foundation uint64 `json:"foundation"`
	Pool       uint64 `json:"pool"`
	SellerNet  uint64 `json:"seller_net"`
}

// SplitAmount computes the fee split for a settlement. Both fee shares
// truncate toward zero and the seller absorbs the remainder, so no value is
// created or destroyed by rounding.
func SplitAmount(amount uint64, cfg FeeConfig) FeeSplit {
	foundation := bpsShare(amount, cfg.ObolBps)
	pool := bpsShare(amount, cfg.ProtectBps)
	return FeeSplit{
		Foundation: foundation,
		Pool:       pool,
		SellerNet:  amount - foundation - pool,
	}
}

// bpsShare returns amount*bps/10000 truncated, without overflowing uint64:
// the quotient and remainder of amount/10000 are scaled separately.
func bpsShare(amount uint64, bps uint32) uint64 {
	q := amount / BpsDenominator
	r := amount % BpsDenominator
	return q*uint64(bps) + r*uint64(bps)/BpsDenominator
}
