package memory

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ticketrail/settlement/internal/ports"
)

// StaticTicketRegistry treats every ticket as anchored unless explicitly
// marked otherwise. Used when no registry endpoint is configured.
type StaticTicketRegistry struct {
	mu         sync.RWMutex
	unanchored map[common.Hash]struct{}
}

func NewStaticTicketRegistry() *StaticTicketRegistry {
	return &StaticTicketRegistry{unanchored: make(map[common.Hash]struct{})}
}

func (r *StaticTicketRegistry) MarkUnanchored(ticketCommit common.Hash) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unanchored[ticketCommit] = struct{}{}
}

func (r *StaticTicketRegistry) IsAnchored(_ context.Context, ticketCommit common.Hash) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, blocked := r.unanchored[ticketCommit]
	return !blocked, nil
}

func (r *StaticTicketRegistry) GetTicket(_ context.Context, ticketCommit common.Hash) (ports.TicketInfo, error) {
	return ports.TicketInfo{HolderCommit: ticketCommit, Assurance: "local", URI: ""}, nil
}

// StaticRevocationAuthority revokes nothing unless told to.
type StaticRevocationAuthority struct {
	mu      sync.RWMutex
	revoked map[common.Hash]struct{}
}

func NewStaticRevocationAuthority() *StaticRevocationAuthority {
	return &StaticRevocationAuthority{revoked: make(map[common.Hash]struct{})}
}

func (r *StaticRevocationAuthority) Revoke(ticketCommit common.Hash) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[ticketCommit] = struct{}{}
}

func (r *StaticRevocationAuthority) IsRevoked(_ context.Context, ticketCommit common.Hash) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.revoked[ticketCommit]
	return ok, nil
}

// LedgerTransferor records transfers in memory. TransferBatch appends all
// legs or none, mirroring the treasury's all-or-nothing contract.
type LedgerTransferor struct {
	mu       sync.Mutex
	payments []ports.Payment
}

func NewLedgerTransferor() *LedgerTransferor {
	return &LedgerTransferor{}
}

func (t *LedgerTransferor) Transfer(_ context.Context, to common.Address, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.payments = append(t.payments, ports.Payment{To: to, Amount: amount})
	return nil
}

func (t *LedgerTransferor) TransferBatch(_ context.Context, payments []ports.Payment) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.payments = append(t.payments, payments...)
	return nil
}

func (t *LedgerTransferor) Payments() []ports.Payment {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ports.Payment, len(t.payments))
	copy(out, t.payments)
	return out
}

var (
	_ ports.TicketRegistry      = (*StaticTicketRegistry)(nil)
	_ ports.RevocationAuthority = (*StaticRevocationAuthority)(nil)
	_ ports.FundsTransferor     = (*LedgerTransferor)(nil)
)
