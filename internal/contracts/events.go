package contracts

import (
	"encoding/json"
	"time"
)

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	EventClass       string          `json:"event_class,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    string          `json:"schema_version"`
	Data             json.RawMessage `json:"data"`
}

type OrderFundedPayload struct {
	SaleID       string `json:"sale_id"`
	TicketCommit string `json:"ticket_commit"`
	Seller       string `json:"seller"`
	Buyer        string `json:"buyer"`
	Amount       uint64 `json:"amount"`
	FundedAt     string `json:"funded_at"`
}

type OrderSettledPayload struct {
	SaleID          string `json:"sale_id"`
	EvidenceRef     string `json:"evidence_ref"`
	FoundationShare uint64 `json:"foundation_share"`
	PoolShare       uint64 `json:"pool_share"`
	SellerNet       uint64 `json:"seller_net"`
	SettledAt       string `json:"settled_at"`
}

type OrderCancelledPayload struct {
	SaleID      string `json:"sale_id"`
	Refunded    uint64 `json:"refunded"`
	CancelledAt string `json:"cancelled_at"`
}

type OrderRefundedPayload struct {
	SaleID     string `json:"sale_id"`
	Recipient  string `json:"recipient"`
	Amount     uint64 `json:"amount"`
	Reason     string `json:"reason"`
	RefundedAt string `json:"refunded_at"`
}

type PoolToppedUpPayload struct {
	Pool       string `json:"pool"`
	Amount     uint64 `json:"amount"`
	NewBalance uint64 `json:"new_balance"`
	ToppedUpAt string `json:"topped_up_at"`
}

type PoolRefundIssuedPayload struct {
	SaleID     string `json:"sale_id"`
	Recipient  string `json:"recipient"`
	Amount     uint64 `json:"amount"`
	Reason     string `json:"reason"`
	RefundedAt string `json:"refunded_at"`
}

type PoolSweptPayload struct {
	Pool      string `json:"pool"`
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
	SweptAt   string `json:"swept_at"`
}

type FeeConfigChangedPayload struct {
	Scope             string `json:"scope"`
	ObolBps           uint32 `json:"obol_bps"`
	ProtectBps        uint32 `json:"protect_bps"`
	FoundationAddress string `json:"foundation_address"`
	ChangedAt         string `json:"changed_at"`
}

type AuthorizationChangedPayload struct {
	Scope     string `json:"scope"`
	Role      string `json:"role"`
	Principal string `json:"principal"`
	Allowed   bool   `json:"allowed"`
	ChangedAt string `json:"changed_at"`
}
