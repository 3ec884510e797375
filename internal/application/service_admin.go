package application

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ticketrail/settlement/internal/domain"
)

// SetConfirmer grants or revokes the confirmer role. Owner-only; idempotent.
func (s *Service) SetConfirmer(ctx context.Context, actor Actor, principal common.Address, allowed bool) error {
	return s.setAuthorization(ctx, actor, domain.RoleConfirmer, principal, allowed)
}

// SetResolver grants or revokes the resolver role. Owner-only; idempotent.
// The confirmer and resolver namespaces are independent.
func (s *Service) SetResolver(ctx context.Context, actor Actor, principal common.Address, allowed bool) error {
	return s.setAuthorization(ctx, actor, domain.RoleResolver, principal, allowed)
}

func (s *Service) setAuthorization(ctx context.Context, actor Actor, role string, principal common.Address, allowed bool) error {
	if actor.Principal != s.cfg.Owner {
		return domain.ErrUnauthorized
	}
	if principal == (common.Address{}) {
		return domain.ErrInvalidInput
	}
	now := s.nowFn()
	if err := s.authz.SetAllowed(ctx, role, principal, allowed, now); err != nil {
		return err
	}
	return s.enqueueAuthorizationChanged(ctx, role, principal, allowed, actor.RequestID, now)
}

// IsConfirmer reports whether the principal may settle escrows.
func (s *Service) IsConfirmer(ctx context.Context, principal common.Address) (bool, error) {
	return s.authz.IsAllowed(ctx, domain.RoleConfirmer, principal)
}

// IsResolver reports whether the principal may trigger pool refunds.
func (s *Service) IsResolver(ctx context.Context, principal common.Address) (bool, error) {
	return s.authz.IsAllowed(ctx, domain.RoleResolver, principal)
}

// SetFees replaces the fee schedule. Owner-only; the new schedule applies to
// every settlement after the call returns.
func (s *Service) SetFees(ctx context.Context, actor Actor, cfg domain.FeeConfig) error {
	if actor.Principal != s.cfg.Owner {
		return domain.ErrUnauthorized
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	now := s.nowFn()
	if err := s.fees.Set(ctx, cfg, now); err != nil {
		return err
	}
	return s.enqueueFeeConfigChanged(ctx, cfg, actor.RequestID, now)
}

// FeeConfig returns the current fee schedule.
func (s *Service) FeeConfig(ctx context.Context) (domain.FeeConfig, error) {
	return s.fees.Get(ctx)
}
