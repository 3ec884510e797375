package application

import (
	"context"
	"strings"

	"github.com/ticketrail/settlement/internal/domain"
	"github.com/ticketrail/settlement/internal/ports"
)

// TopUp increases the pool's spendable balance. Any caller may contribute;
// there is no authorization gate on deposits.
func (s *Service) TopUp(ctx context.Context, actor Actor, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, domain.ErrInvalidInput
	}
	release, err := s.locks.Acquire(ctx, ports.PoolLockKey)
	if err != nil {
		return 0, err
	}
	defer release()

	if err := s.pool.Credit(ctx, amount); err != nil {
		return 0, err
	}
	balance, err := s.pool.Balance(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.enqueuePoolToppedUp(ctx, amount, balance, actor.RequestID, s.nowFn()); err != nil {
		return 0, err
	}
	return balance, nil
}

// RefundBuyer compensates the buyer of a revoked or fraudulent sale out of
// the pool, at most once per sale id. Only registered resolvers may call it
// directly; the escrow ledger reaches the same mechanics through
// RefundFromPool after its own authorization check.
func (s *Service) RefundBuyer(ctx context.Context, actor Actor, input PoolRefundInput) error {
	resolver, err := s.authz.IsAllowed(ctx, domain.RoleResolver, actor.Principal)
	if err != nil {
		return err
	}
	if !resolver {
		return domain.ErrUnauthorized
	}
	if input.Amount == 0 {
		return domain.ErrInvalidInput
	}
	return s.issuePoolRefund(ctx, domain.RefundEntry{
		SaleID:     input.SaleID,
		Recipient:  input.To,
		Amount:     input.Amount,
		Reason:     strings.TrimSpace(input.Reason),
		RefundedAt: s.nowFn(),
	}, actor.RequestID)
}

// Sweep moves pool funds out for rebalancing or emergency recovery.
// Owner-only.
func (s *Service) Sweep(ctx context.Context, actor Actor, input SweepInput) error {
	if actor.Principal != s.cfg.Owner {
		return domain.ErrUnauthorized
	}
	if input.Amount == 0 {
		return domain.ErrInvalidInput
	}

	release, err := s.locks.Acquire(ctx, ports.PoolLockKey)
	if err != nil {
		return err
	}
	if err := s.pool.Debit(ctx, input.Amount); err != nil {
		release()
		return err
	}
	release()

	if err := s.transferor.Transfer(ctx, input.To, input.Amount); err != nil {
		s.creditPoolBestEffort(ctx, input.Amount)
		return domain.ErrTransferFailed
	}
	return s.enqueuePoolSwept(ctx, input.To, input.Amount, actor.RequestID, s.nowFn())
}

// PoolBalance returns the pool's current spendable funds.
func (s *Service) PoolBalance(ctx context.Context) (uint64, error) {
	return s.pool.Balance(ctx)
}

// issuePoolRefund is the pool's at-most-once payout path. The refund-ledger
// insert and the balance decrement commit before the transfer goes out, so a
// reentrant attempt against the same sale id is rejected at the membership
// check before a second transfer can be issued. A failed transfer restores
// the pre-call ledger state: the refund did not actually occur.
func (s *Service) issuePoolRefund(ctx context.Context, entry domain.RefundEntry, requestID string) error {
	release, err := s.locks.Acquire(ctx, ports.PoolLockKey)
	if err != nil {
		return err
	}
	if err := s.pool.MarkRefunded(ctx, entry); err != nil {
		release()
		return err
	}
	if err := s.pool.Debit(ctx, entry.Amount); err != nil {
		_ = s.pool.UnmarkRefunded(ctx, entry.SaleID)
		release()
		return err
	}
	release()

	if err := s.transferor.Transfer(ctx, entry.Recipient, entry.Amount); err != nil {
		s.rollbackPoolRefund(ctx, entry)
		return domain.ErrTransferFailed
	}
	return s.enqueuePoolRefundIssued(ctx, entry, requestID)
}

func (s *Service) rollbackPoolRefund(ctx context.Context, entry domain.RefundEntry) {
	release, err := s.locks.Acquire(ctx, ports.PoolLockKey)
	if err != nil {
		return
	}
	defer release()
	_ = s.pool.Credit(ctx, entry.Amount)
	_ = s.pool.UnmarkRefunded(ctx, entry.SaleID)
}

// creditPool routes a settlement fee share into the pool through the pool's
// own entry point; the escrow side never touches pool state directly.
func (s *Service) creditPool(ctx context.Context, amount uint64) error {
	release, err := s.locks.Acquire(ctx, ports.PoolLockKey)
	if err != nil {
		return err
	}
	defer release()
	return s.pool.Credit(ctx, amount)
}

func (s *Service) creditPoolBestEffort(ctx context.Context, amount uint64) {
	release, err := s.locks.Acquire(ctx, ports.PoolLockKey)
	if err != nil {
		return
	}
	defer release()
	_ = s.pool.Credit(ctx, amount)
}

func (s *Service) debitPoolBestEffort(ctx context.Context, amount uint64) {
	release, err := s.locks.Acquire(ctx, ports.PoolLockKey)
	if err != nil {
		return
	}
	defer release()
	_ = s.pool.Debit(ctx, amount)
}
