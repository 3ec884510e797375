package contracts

type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorResponse struct {
	Status string       `json:"status"`
	Error  ErrorPayload `json:"error"`
}

// OrderRequest carries the full order field tuple; the engine recomputes the
// sale id from it and, when SaleID is supplied, verifies the two match.
type OrderRequest struct {
	SaleID         string `json:"sale_id,omitempty"`
	TicketCommit   string `json:"ticket_commit"`
	Seller         string `json:"seller"`
	Buyer          string `json:"buyer"`
	Price          uint64 `json:"price"`
	Expiry         int64  `json:"expiry"`
	MaxPriceCapBps uint32 `json:"max_price_cap_bps"`
}

type FundRequest struct {
	Order     OrderRequest `json:"order"`
	SentValue uint64       `json:"sent_value"`
}

type SettleRequest struct {
	Order       OrderRequest `json:"order"`
	EvidenceRef string       `json:"evidence_ref"`
}

type CancelRequest struct {
	Order OrderRequest `json:"order"`
}

type RefundFromPoolRequest struct {
	Order  OrderRequest `json:"order"`
	Reason string       `json:"reason"`
}

type EscrowRecordResponse struct {
	SaleID       string `json:"sale_id"`
	TicketCommit string `json:"ticket_commit"`
	Seller       string `json:"seller"`
	Buyer        string `json:"buyer"`
	Amount       uint64 `json:"amount"`
	Status       string `json:"status"`
	FundedAt     string `json:"funded_at"`
	ClosedAt     string `json:"closed_at,omitempty"`
	EvidenceRef  string `json:"evidence_ref,omitempty"`
	RefundReason string `json:"refund_reason,omitempty"`
}

type SettleResponse struct {
	Record          EscrowRecordResponse `json:"record"`
	FoundationShare uint64               `json:"foundation_share"`
	PoolShare       uint64               `json:"pool_share"`
	SellerNet       uint64               `json:"seller_net"`
}

type TopUpRequest struct {
	Amount uint64 `json:"amount"`
}

type PoolRefundRequest struct {
	SaleID string `json:"sale_id"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
	Reason string `json:"reason"`
}

type SweepRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type PoolBalanceResponse struct {
	Balance uint64 `json:"balance"`
}

type SetAuthorizationRequest struct {
	Allowed bool `json:"allowed"`
}

type AuthorizationResponse struct {
	Role      string `json:"role"`
	Principal string `json:"principal"`
	Allowed   bool   `json:"allowed"`
}

type SetFeesRequest struct {
	ObolBps           uint32 `json:"obol_bps"`
	ProtectBps        uint32 `json:"protect_bps"`
	FoundationAddress string `json:"foundation_address"`
}

type FeeConfigResponse struct {
	ObolBps           uint32 `json:"obol_bps"`
	ProtectBps        uint32 `json:"protect_bps"`
	FoundationAddress string `json:"foundation_address"`
}

type SaleIDResponse struct {
	SaleID string `json:"sale_id"`
}
