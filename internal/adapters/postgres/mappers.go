package postgres

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ticketrail/settlement/internal/contracts"
	"github.com/ticketrail/settlement/internal/domain"
	"github.com/ticketrail/settlement/internal/ports"
)

func toEscrowModel(rec domain.EscrowRecord) escrowModel {
	return escrowModel{
		SaleID:       strings.ToLower(rec.SaleID.Hex()),
		TicketCommit: strings.ToLower(rec.TicketCommit.Hex()),
		Seller:       strings.ToLower(rec.Seller.Hex()),
		Buyer:        strings.ToLower(rec.Buyer.Hex()),
		Amount:       rec.Amount,
		Status:       rec.Status,
		FundedAt:     rec.FundedAt,
		ClosedAt:     rec.ClosedAt,
		EvidenceRef:  rec.EvidenceRef,
		RefundReason: rec.RefundReason,
	}
}

func toDomainEscrow(row escrowModel) (domain.EscrowRecord, error) {
	saleID, err := domain.ParseHash(row.SaleID)
	if err != nil {
		return domain.EscrowRecord{}, fmt.Errorf("escrow row %s: bad sale_id: %w", row.SaleID, err)
	}
	ticketCommit, err := domain.ParseHash(row.TicketCommit)
	if err != nil {
		return domain.EscrowRecord{}, fmt.Errorf("escrow row %s: bad ticket_commit: %w", row.SaleID, err)
	}
	seller, err := domain.ParseAddress(row.Seller)
	if err != nil {
		return domain.EscrowRecord{}, fmt.Errorf("escrow row %s: bad seller: %w", row.SaleID, err)
	}
	buyer, err := domain.ParseAddress(row.Buyer)
	if err != nil {
		return domain.EscrowRecord{}, fmt.Errorf("escrow row %s: bad buyer: %w", row.SaleID, err)
	}
	return domain.EscrowRecord{
		SaleID:       saleID,
		TicketCommit: ticketCommit,
		Seller:       seller,
		Buyer:        buyer,
		Amount:       row.Amount,
		Status:       row.Status,
		FundedAt:     row.FundedAt,
		ClosedAt:     row.ClosedAt,
		EvidenceRef:  row.EvidenceRef,
		RefundReason: row.RefundReason,
	}, nil
}

func toDomainFeeConfig(row feeConfigModel) (domain.FeeConfig, error) {
	cfg := domain.FeeConfig{ObolBps: row.ObolBps, ProtectBps: row.ProtectBps}
	if row.FoundationAddress != "" {
		addr, err := domain.ParseAddress(row.FoundationAddress)
		if err != nil {
			return domain.FeeConfig{}, fmt.Errorf("fee config row: bad foundation_address: %w", err)
		}
		cfg.FoundationAddress = addr
	}
	return cfg, nil
}

func toOutboxModel(record ports.OutboxRecord) (outboxModel, error) {
	raw, err := json.Marshal(record.Envelope)
	if err != nil {
		return outboxModel{}, fmt.Errorf("marshal outbox envelope: %w", err)
	}
	return outboxModel{
		RecordID:   record.RecordID,
		EventClass: record.EventClass,
		Envelope:   string(raw),
		CreatedAt:  record.CreatedAt,
	}, nil
}

func toOutboxRecord(row outboxModel) (ports.OutboxRecord, error) {
	var envelope contracts.EventEnvelope
	if err := json.Unmarshal([]byte(row.Envelope), &envelope); err != nil {
		return ports.OutboxRecord{}, fmt.Errorf("unmarshal outbox envelope %s: %w", row.RecordID, err)
	}
	return ports.OutboxRecord{
		RecordID:   row.RecordID,
		EventClass: row.EventClass,
		Envelope:   envelope,
		CreatedAt:  row.CreatedAt,
	}, nil
}
