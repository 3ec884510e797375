package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ticketrail/settlement/internal/domain"
)

func TestEscrowRepositoryCreateAndCAS(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	saleID := common.HexToHash("0x01")
	rec := domain.EscrowRecord{SaleID: saleID, Amount: 100, Status: domain.EscrowStatusFunded, FundedAt: time.Now().UTC()}

	if err := repos.Escrow.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repos.Escrow.Create(ctx, rec); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate Create: got %v, want ErrConflict", err)
	}

	settled := rec
	settled.Status = domain.EscrowStatusSettled
	if err := repos.Escrow.UpdateStatus(ctx, saleID, domain.EscrowStatusFunded, settled); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	// The swap only moves a record out of the expected state.
	if err := repos.Escrow.UpdateStatus(ctx, saleID, domain.EscrowStatusFunded, settled); !errors.Is(err, domain.ErrWrongState) {
		t.Fatalf("stale CAS: got %v, want ErrWrongState", err)
	}
	if err := repos.Escrow.UpdateStatus(ctx, common.HexToHash("0x02"), domain.EscrowStatusFunded, settled); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing record: got %v, want ErrNotFound", err)
	}
}

func TestPoolRepositoryBalanceAndLedger(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()

	if err := repos.Pool.Debit(ctx, 1); !errors.Is(err, domain.ErrInsufficientPoolBalance) {
		t.Fatalf("debit empty pool: got %v", err)
	}
	if err := repos.Pool.Credit(ctx, 100); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if err := repos.Pool.Debit(ctx, 101); !errors.Is(err, domain.ErrInsufficientPoolBalance) {
		t.Fatalf("over-debit: got %v", err)
	}
	if err := repos.Pool.Debit(ctx, 100); err != nil {
		t.Fatalf("Debit: %v", err)
	}
	balance, err := repos.Pool.Balance(ctx)
	if err != nil || balance != 0 {
		t.Fatalf("balance %d err %v, want 0", balance, err)
	}

	entry := domain.RefundEntry{SaleID: common.HexToHash("0x03"), Amount: 10, RefundedAt: time.Now().UTC()}
	if err := repos.Pool.MarkRefunded(ctx, entry); err != nil {
		t.Fatalf("MarkRefunded: %v", err)
	}
	if err := repos.Pool.MarkRefunded(ctx, entry); !errors.Is(err, domain.ErrAlreadyRefunded) {
		t.Fatalf("duplicate mark: got %v, want ErrAlreadyRefunded", err)
	}
	if err := repos.Pool.UnmarkRefunded(ctx, entry.SaleID); err != nil {
		t.Fatalf("UnmarkRefunded: %v", err)
	}
	marked, err := repos.Pool.IsRefunded(ctx, entry.SaleID)
	if err != nil || marked {
		t.Fatalf("unmarked sale still in ledger, marked=%v err=%v", marked, err)
	}
}

func TestAuthorizationRepositoryRoles(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	principal := common.HexToAddress("0x04")
	now := time.Now().UTC()

	if err := repos.Authz.SetAllowed(ctx, "janitor", principal, true, now); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("unknown role: got %v, want ErrInvalidInput", err)
	}
	if err := repos.Authz.SetAllowed(ctx, domain.RoleConfirmer, principal, true, now); err != nil {
		t.Fatalf("SetAllowed: %v", err)
	}
	allowed, err := repos.Authz.IsAllowed(ctx, domain.RoleConfirmer, principal)
	if err != nil || !allowed {
		t.Fatalf("confirmer grant lost, allowed=%v err=%v", allowed, err)
	}
	allowed, err = repos.Authz.IsAllowed(ctx, domain.RoleResolver, principal)
	if err != nil || allowed {
		t.Fatalf("confirmer grant leaked into resolver namespace")
	}
	if err := repos.Authz.SetAllowed(ctx, domain.RoleConfirmer, principal, false, now); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	allowed, _ = repos.Authz.IsAllowed(ctx, domain.RoleConfirmer, principal)
	if allowed {
		t.Fatal("revoked principal still allowed")
	}
}
