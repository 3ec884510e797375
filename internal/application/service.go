package application

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ticketrail/settlement/internal/domain"
	"github.com/ticketrail/settlement/internal/ports"
)

// Fund records the buyer's escrow for a sale. The sent value must equal the
// order price exactly; the record is written before control returns, and no
// external call happens on this path, so funding has no reentrancy surface.
func (s *Service) Fund(ctx context.Context, actor Actor, input FundInput) (domain.EscrowRecord, error) {
	now := s.nowFn()
	if err := domain.ValidateOrder(input.Order, now); err != nil {
		return domain.EscrowRecord{}, err
	}
	saleID, err := verifySaleID(input.Order, input.DeclaredSaleID)
	if err != nil {
		return domain.EscrowRecord{}, err
	}
	if input.SentValue != input.Order.Price {
		return domain.EscrowRecord{}, domain.ErrWrongAmount
	}

	release, err := s.locks.Acquire(ctx, saleID.Hex())
	if err != nil {
		return domain.EscrowRecord{}, err
	}
	defer release()

	rec := domain.EscrowRecord{
		SaleID:       saleID,
		TicketCommit: input.Order.TicketCommit,
		Seller:       input.Order.Seller,
		Buyer:        input.Order.Buyer,
		Amount:       input.Order.Price,
		Status:       domain.EscrowStatusFunded,
		FundedAt:     now,
	}
	if err := s.escrow.Create(ctx, rec); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.EscrowRecord{}, domain.ErrDuplicateSale
		}
		return domain.EscrowRecord{}, err
	}
	if err := s.enqueueOrderFunded(ctx, rec, actor.RequestID, now); err != nil {
		return domain.EscrowRecord{}, err
	}
	return rec, nil
}

// ConfirmAndSettle attests registry inscription and pays out the fee split.
// The record flips to settled before any value moves; the pool is credited
// through its own entry point and the foundation/seller legs go out as one
// atomic batch. Any downstream failure rolls the flip (and the pool credit)
// back, so callers observe full success or full failure only.
func (s *Service) ConfirmAndSettle(ctx context.Context, actor Actor, input SettleInput) (SettleResult, error) {
	allowed, err := s.authz.IsAllowed(ctx, domain.RoleConfirmer, actor.Principal)
	if err != nil {
		return SettleResult{}, err
	}
	if !allowed {
		return SettleResult{}, domain.ErrUnauthorized
	}
	saleID, err := verifySaleID(input.Order, input.DeclaredSaleID)
	if err != nil {
		return SettleResult{}, err
	}

	release, err := s.locks.Acquire(ctx, saleID.Hex())
	if err != nil {
		return SettleResult{}, err
	}
	defer release()

	rec, err := s.fundedRecord(ctx, saleID)
	if err != nil {
		return SettleResult{}, err
	}

	anchored, err := s.registry.IsAnchored(ctx, rec.TicketCommit)
	if err != nil {
		return SettleResult{}, err
	}
	if !anchored {
		return SettleResult{}, domain.ErrNotAnchored
	}
	revoked, err := s.revocation.IsRevoked(ctx, rec.TicketCommit)
	if err != nil {
		return SettleResult{}, err
	}
	if revoked {
		return SettleResult{}, domain.ErrTicketRevoked
	}

	feeCfg, err := s.fees.Get(ctx)
	if err != nil {
		return SettleResult{}, err
	}
	split := domain.SplitAmount(rec.Amount, feeCfg)

	now := s.nowFn()
	settled := rec
	settled.Status = domain.EscrowStatusSettled
	settled.ClosedAt = &now
	settled.EvidenceRef = strings.TrimSpace(input.EvidenceRef)
	if err := s.escrow.UpdateStatus(ctx, saleID, domain.EscrowStatusFunded, settled); err != nil {
		return SettleResult{}, err
	}

	if split.Pool > 0 {
		if err := s.creditPool(ctx, split.Pool); err != nil {
			s.revertEscrowStatus(ctx, saleID, domain.EscrowStatusSettled, rec)
			return SettleResult{}, err
		}
	}

	if err := s.payoutSettlement(ctx, feeCfg.FoundationAddress, rec.Seller, split); err != nil {
		if split.Pool > 0 {
			s.debitPoolBestEffort(ctx, split.Pool)
		}
		s.revertEscrowStatus(ctx, saleID, domain.EscrowStatusSettled, rec)
		return SettleResult{}, domain.ErrTransferFailed
	}

	if err := s.enqueueOrderSettled(ctx, settled, split, actor.RequestID, now); err != nil {
		return SettleResult{}, err
	}
	return SettleResult{Record: settled, Split: split}, nil
}

// Cancel returns the full escrowed amount to the buyer. The buyer may cancel
// any time before a confirmer acts; after expiry an authorized confirmer may
// cancel on the buyer's behalf.
func (s *Service) Cancel(ctx context.Context, actor Actor, input CancelInput) (domain.EscrowRecord, error) {
	saleID, err := verifySaleID(input.Order, input.DeclaredSaleID)
	if err != nil {
		return domain.EscrowRecord{}, err
	}

	release, err := s.locks.Acquire(ctx, saleID.Hex())
	if err != nil {
		return domain.EscrowRecord{}, err
	}
	defer release()

	rec, err := s.fundedRecord(ctx, saleID)
	if err != nil {
		return domain.EscrowRecord{}, err
	}

	now := s.nowFn()
	if actor.Principal != rec.Buyer {
		confirmer, err := s.authz.IsAllowed(ctx, domain.RoleConfirmer, actor.Principal)
		if err != nil {
			return domain.EscrowRecord{}, err
		}
		if !confirmer || now.Before(input.Order.Expiry) {
			return domain.EscrowRecord{}, domain.ErrUnauthorized
		}
	}

	cancelled := rec
	cancelled.Status = domain.EscrowStatusCancelled
	cancelled.ClosedAt = &now
	if err := s.escrow.UpdateStatus(ctx, saleID, domain.EscrowStatusFunded, cancelled); err != nil {
		return domain.EscrowRecord{}, err
	}
	if err := s.transferor.Transfer(ctx, rec.Buyer, rec.Amount); err != nil {
		s.revertEscrowStatus(ctx, saleID, domain.EscrowStatusCancelled, rec)
		return domain.EscrowRecord{}, domain.ErrTransferFailed
	}
	if err := s.enqueueOrderCancelled(ctx, cancelled, actor.RequestID, now); err != nil {
		return domain.EscrowRecord{}, err
	}
	return cancelled, nil
}

// RefundFromPool closes a still-funded sale as refunded and pays the buyer
// out of the protection pool. The pool's refund ledger guarantees the sale
// can never be compensated twice; a pool-side rejection rolls the escrow
// flip back so the two components stay consistent.
func (s *Service) RefundFromPool(ctx context.Context, actor Actor, input RefundFromPoolInput) (domain.EscrowRecord, error) {
	confirmer, err := s.authz.IsAllowed(ctx, domain.RoleConfirmer, actor.Principal)
	if err != nil {
		return domain.EscrowRecord{}, err
	}
	if !confirmer {
		resolver, err := s.authz.IsAllowed(ctx, domain.RoleResolver, actor.Principal)
		if err != nil {
			return domain.EscrowRecord{}, err
		}
		if !resolver {
			return domain.EscrowRecord{}, domain.ErrUnauthorized
		}
	}
	saleID, err := verifySaleID(input.Order, input.DeclaredSaleID)
	if err != nil {
		return domain.EscrowRecord{}, err
	}

	release, err := s.locks.Acquire(ctx, saleID.Hex())
	if err != nil {
		return domain.EscrowRecord{}, err
	}
	defer release()

	rec, err := s.fundedRecord(ctx, saleID)
	if err != nil {
		return domain.EscrowRecord{}, err
	}

	now := s.nowFn()
	reason := strings.TrimSpace(input.Reason)
	refunded := rec
	refunded.Status = domain.EscrowStatusRefunded
	refunded.ClosedAt = &now
	refunded.RefundReason = reason
	if err := s.escrow.UpdateStatus(ctx, saleID, domain.EscrowStatusFunded, refunded); err != nil {
		return domain.EscrowRecord{}, err
	}

	if err := s.issuePoolRefund(ctx, domain.RefundEntry{
		SaleID:     saleID,
		Recipient:  rec.Buyer,
		Amount:     rec.Amount,
		Reason:     reason,
		RefundedAt: now,
	}, actor.RequestID); err != nil {
		s.revertEscrowStatus(ctx, saleID, domain.EscrowStatusRefunded, rec)
		return domain.EscrowRecord{}, err
	}

	if err := s.enqueueOrderRefunded(ctx, refunded, actor.RequestID, now); err != nil {
		return domain.EscrowRecord{}, err
	}
	return refunded, nil
}

// GetEscrowRecord returns the current state of a sale's escrow.
func (s *Service) GetEscrowRecord(ctx context.Context, saleID common.Hash) (domain.EscrowRecord, error) {
	return s.escrow.GetBySaleID(ctx, saleID)
}

// fundedRecord loads a record and requires it to still be open. An absent
// record and a terminal record both surface as ErrWrongState: either way the
// sale is not in the funded state the operation requires.
func (s *Service) fundedRecord(ctx context.Context, saleID common.Hash) (domain.EscrowRecord, error) {
	rec, err := s.escrow.GetBySaleID(ctx, saleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.EscrowRecord{}, domain.ErrWrongState
		}
		return domain.EscrowRecord{}, err
	}
	if rec.Status != domain.EscrowStatusFunded {
		return domain.EscrowRecord{}, domain.ErrWrongState
	}
	return rec, nil
}

// payoutSettlement sends the foundation and seller legs as one atomic batch.
// Zero-value legs are dropped rather than sent.
func (s *Service) payoutSettlement(ctx context.Context, foundation, seller common.Address, split domain.FeeSplit) error {
	legs := make([]ports.Payment, 0, 2)
	if split.Foundation > 0 {
		legs = append(legs, ports.Payment{To: foundation, Amount: split.Foundation})
	}
	if split.SellerNet > 0 {
		legs = append(legs, ports.Payment{To: seller, Amount: split.SellerNet})
	}
	if len(legs) == 0 {
		return nil
	}
	return s.transferor.TransferBatch(ctx, legs)
}

// revertEscrowStatus undoes a status flip after a downstream failure, while
// the per-sale lock is still held. Failure to revert leaves the record in
// the flipped state, which is safe (terminal, no value moved) but logged by
// the repository layer.
func (s *Service) revertEscrowStatus(ctx context.Context, saleID common.Hash, fromStatus string, original domain.EscrowRecord) {
	_ = s.escrow.UpdateStatus(ctx, saleID, fromStatus, original)
}

// verifySaleID recomputes the sale id from the order fields and, when the
// caller declared one, requires the two to match before any state mutation.
func verifySaleID(order domain.Order, declared *common.Hash) (common.Hash, error) {
	saleID := domain.ComputeSaleID(order)
	if declared != nil && *declared != saleID {
		return common.Hash{}, domain.ErrInvalidOrder
	}
	return saleID, nil
}
