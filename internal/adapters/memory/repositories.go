// Package memory provides the in-process persistence adapters. The dev
// runtime uses them when no database is configured; unit tests use them as
// the reference implementation of the repository contracts.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ticketrail/settlement/internal/domain"
	"github.com/ticketrail/settlement/internal/ports"
)

type Repositories struct {
	Escrow *EscrowRepository
	Pool   *PoolRepository
	Authz  *AuthorizationRepository
	Fees   *FeeConfigRepository
	Outbox *OutboxRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		Escrow: &EscrowRepository{rows: map[common.Hash]domain.EscrowRecord{}},
		Pool:   &PoolRepository{refunds: map[common.Hash]domain.RefundEntry{}},
		Authz:  &AuthorizationRepository{allowed: map[string]map[common.Address]bool{}},
		Fees:   &FeeConfigRepository{},
		Outbox: &OutboxRepository{rows: map[string]ports.OutboxRecord{}},
	}
}

type EscrowRepository struct {
	mu   sync.Mutex
	rows map[common.Hash]domain.EscrowRecord
}

func (r *EscrowRepository) Create(_ context.Context, rec domain.EscrowRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[rec.SaleID]; ok {
		return domain.ErrConflict
	}
	r.rows[rec.SaleID] = rec
	return nil
}

func (r *EscrowRepository) GetBySaleID(_ context.Context, saleID common.Hash) (domain.EscrowRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[saleID]
	if !ok {
		return domain.EscrowRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

func (r *EscrowRepository) UpdateStatus(_ context.Context, saleID common.Hash, fromStatus string, rec domain.EscrowRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.rows[saleID]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Status != fromStatus {
		return domain.ErrWrongState
	}
	r.rows[saleID] = rec
	return nil
}

type PoolRepository struct {
	mu      sync.Mutex
	balance uint64
	refunds map[common.Hash]domain.RefundEntry
}

func (r *PoolRepository) Balance(_ context.Context) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balance, nil
}

func (r *PoolRepository) Credit(_ context.Context, amount uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balance += amount
	return nil
}

func (r *PoolRepository) Debit(_ context.Context, amount uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if amount > r.balance {
		return domain.ErrInsufficientPoolBalance
	}
	r.balance -= amount
	return nil
}

func (r *PoolRepository) IsRefunded(_ context.Context, saleID common.Hash) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.refunds[saleID]
	return ok, nil
}

func (r *PoolRepository) MarkRefunded(_ context.Context, entry domain.RefundEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.refunds[entry.SaleID]; ok {
		return domain.ErrAlreadyRefunded
	}
	r.refunds[entry.SaleID] = entry
	return nil
}

func (r *PoolRepository) UnmarkRefunded(_ context.Context, saleID common.Hash) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.refunds, saleID)
	return nil
}

type AuthorizationRepository struct {
	mu      sync.Mutex
	allowed map[string]map[common.Address]bool
}

func (r *AuthorizationRepository) SetAllowed(_ context.Context, role string, principal common.Address, allowed bool, _ time.Time) error {
	if !domain.IsKnownRole(role) {
		return domain.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.allowed[role]
	if !ok {
		set = map[common.Address]bool{}
		r.allowed[role] = set
	}
	if allowed {
		set[principal] = true
	} else {
		delete(set, principal)
	}
	return nil
}

func (r *AuthorizationRepository) IsAllowed(_ context.Context, role string, principal common.Address) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allowed[role][principal], nil
}

type FeeConfigRepository struct {
	mu  sync.Mutex
	cfg domain.FeeConfig
	set bool
}

func (r *FeeConfigRepository) Get(_ context.Context) (domain.FeeConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.set {
		return domain.FeeConfig{}, domain.ErrNotFound
	}
	return r.cfg, nil
}

func (r *FeeConfigRepository) Set(_ context.Context, cfg domain.FeeConfig, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
	r.set = true
	return nil
}

type OutboxRepository struct {
	mu    sync.Mutex
	rows  map[string]ports.OutboxRecord
	order []string
	sent  map[string]time.Time
}

func (r *OutboxRepository) Enqueue(_ context.Context, record ports.OutboxRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[record.RecordID]; ok {
		return domain.ErrConflict
	}
	r.rows[record.RecordID] = record
	r.order = append(r.order, record.RecordID)
	return nil
}

func (r *OutboxRepository) ListPending(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.OutboxRecord, 0, limit)
	for _, id := range r.order {
		if _, done := r.sent[id]; done {
			continue
		}
		out = append(out, r.rows[id])
		if len(out) == limit {
			break
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *OutboxRepository) MarkSent(_ context.Context, recordID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[recordID]; !ok {
		return domain.ErrNotFound
	}
	if r.sent == nil {
		r.sent = map[string]time.Time{}
	}
	r.sent[recordID] = at
	return nil
}
