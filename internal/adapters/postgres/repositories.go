package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ticketrail/settlement/internal/domain"
	"github.com/ticketrail/settlement/internal/ports"
)

const poolRowID = "protection"

type Repositories struct {
	Escrow ports.EscrowRepository
	Pool   ports.PoolRepository
	Authz  ports.AuthorizationRepository
	Fees   ports.FeeConfigRepository
	Outbox ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Escrow: &escrowRepository{db: db},
		Pool:   &poolRepository{db: db},
		Authz:  &authorizationRepository{db: db},
		Fees:   &feeConfigRepository{db: db},
		Outbox: &outboxRepository{db: db},
	}
}

type escrowRepository struct {
	db *gorm.DB
}

func (r *escrowRepository) Create(ctx context.Context, rec domain.EscrowRecord) error {
	row := toEscrowModel(rec)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *escrowRepository) GetBySaleID(ctx context.Context, saleID common.Hash) (domain.EscrowRecord, error) {
	var row escrowModel
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", strings.ToLower(saleID.Hex())).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.EscrowRecord{}, domain.ErrNotFound
		}
		return domain.EscrowRecord{}, err
	}
	return toDomainEscrow(row)
}

// UpdateStatus is a compare-and-swap on the status column: the row moves out
// of fromStatus or the call fails, so two racing closers cannot both win.
func (r *escrowRepository) UpdateStatus(ctx context.Context, saleID common.Hash, fromStatus string, rec domain.EscrowRecord) error {
	res := r.db.WithContext(ctx).
		Model(&escrowModel{}).
		Where("sale_id = ?", strings.ToLower(saleID.Hex())).
		Where("status = ?", fromStatus).
		Updates(map[string]any{
			"status":        rec.Status,
			"closed_at":     rec.ClosedAt,
			"evidence_ref":  rec.EvidenceRef,
			"refund_reason": rec.RefundReason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&escrowModel{}).
			Where("sale_id = ?", strings.ToLower(saleID.Hex())).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrWrongState
	}
	return nil
}

type poolRepository struct {
	db *gorm.DB
}

func (r *poolRepository) Balance(ctx context.Context) (uint64, error) {
	var row poolBalanceModel
	err := r.db.WithContext(ctx).
		Where("pool_id = ?", poolRowID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.Balance, nil
}

func (r *poolRepository) Credit(ctx context.Context, amount uint64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pool_id"}},
			DoUpdates: clause.Assignments(map[string]any{"balance": gorm.Expr("pool_balances.balance + ?", amount), "updated_at": time.Now().UTC()}),
		}).
		Create(&poolBalanceModel{PoolID: poolRowID, Balance: amount, UpdatedAt: time.Now().UTC()}).Error
}

// Debit only succeeds when the row holds enough balance; the guard runs in
// the same statement so the balance can never go negative under concurrency.
func (r *poolRepository) Debit(ctx context.Context, amount uint64) error {
	res := r.db.WithContext(ctx).
		Model(&poolBalanceModel{}).
		Where("pool_id = ?", poolRowID).
		Where("balance >= ?", amount).
		Updates(map[string]any{"balance": gorm.Expr("balance - ?", amount), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInsufficientPoolBalance
	}
	return nil
}

func (r *poolRepository) IsRefunded(ctx context.Context, saleID common.Hash) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&refundLedgerModel{}).
		Where("sale_id = ?", strings.ToLower(saleID.Hex())).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *poolRepository) MarkRefunded(ctx context.Context, entry domain.RefundEntry) error {
	row := refundLedgerModel{
		SaleID:     strings.ToLower(entry.SaleID.Hex()),
		Recipient:  strings.ToLower(entry.Recipient.Hex()),
		Amount:     entry.Amount,
		Reason:     entry.Reason,
		RefundedAt: entry.RefundedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyRefunded
		}
		return err
	}
	return nil
}

func (r *poolRepository) UnmarkRefunded(ctx context.Context, saleID common.Hash) error {
	return r.db.WithContext(ctx).
		Where("sale_id = ?", strings.ToLower(saleID.Hex())).
		Delete(&refundLedgerModel{}).Error
}

type authorizationRepository struct {
	db *gorm.DB
}

func (r *authorizationRepository) SetAllowed(ctx context.Context, role string, principal common.Address, allowed bool, at time.Time) error {
	row := authorizationModel{
		Role:      role,
		Principal: strings.ToLower(principal.Hex()),
		Allowed:   allowed,
		UpdatedAt: at,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role"}, {Name: "principal"}},
			DoUpdates: clause.AssignmentColumns([]string{"allowed", "updated_at"}),
		}).
		Create(&row).Error
}

func (r *authorizationRepository) IsAllowed(ctx context.Context, role string, principal common.Address) (bool, error) {
	var row authorizationModel
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Where("principal = ?", strings.ToLower(principal.Hex())).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return row.Allowed, nil
}

type feeConfigRepository struct {
	db *gorm.DB
}

const feeConfigRowID = "current"

func (r *feeConfigRepository) Get(ctx context.Context) (domain.FeeConfig, error) {
	var row feeConfigModel
	err := r.db.WithContext(ctx).
		Where("config_id = ?", feeConfigRowID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.FeeConfig{}, domain.ErrNotFound
		}
		return domain.FeeConfig{}, err
	}
	return toDomainFeeConfig(row)
}

func (r *feeConfigRepository) Set(ctx context.Context, cfg domain.FeeConfig, at time.Time) error {
	row := feeConfigModel{
		ConfigID:          feeConfigRowID,
		ObolBps:           cfg.ObolBps,
		ProtectBps:        cfg.ProtectBps,
		FoundationAddress: strings.ToLower(cfg.FoundationAddress.Hex()),
		UpdatedAt:         at,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "config_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"obol_bps", "protect_bps", "foundation_address", "updated_at"}),
		}).
		Create(&row).Error
}

type outboxRepository struct {
	db *gorm.DB
}

func (r *outboxRepository) Enqueue(ctx context.Context, record ports.OutboxRecord) error {
	row, err := toOutboxModel(record)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]ports.OutboxRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("sent_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	records := make([]ports.OutboxRecord, 0, len(rows))
	for _, row := range rows {
		record, err := toOutboxRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, recordID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("record_id = ?", recordID).
		Update("sent_at", at).Error
}
