package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/ticketrail/settlement/internal/application"
	"github.com/ticketrail/settlement/internal/contracts"
	"github.com/ticketrail/settlement/internal/domain"
)

type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) computeSaleID(w http.ResponseWriter, r *http.Request) {
	var req contracts.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
		return
	}
	order, _, err := parseOrder(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "sale id computed", contracts.SaleIDResponse{SaleID: domain.ComputeSaleID(order).Hex()})
}

func (h *Handler) fund(w http.ResponseWriter, r *http.Request) {
	var req contracts.FundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
		return
	}
	order, declared, err := parseOrder(req.Order)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	rec, err := h.service.Fund(r.Context(), actorFromContext(r.Context()), application.FundInput{
		Order:          order,
		DeclaredSaleID: declared,
		SentValue:      req.SentValue,
	})
	if err != nil {
		h.writeServiceError(w, r, "fund", err)
		return
	}
	writeSuccess(w, http.StatusCreated, "order funded", toEscrowRecordResponse(rec))
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	var req contracts.SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
		return
	}
	order, declared, err := parseOrder(req.Order)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	result, err := h.service.ConfirmAndSettle(r.Context(), actorFromContext(r.Context()), application.SettleInput{
		Order:          order,
		DeclaredSaleID: declared,
		EvidenceRef:    req.EvidenceRef,
	})
	if err != nil {
		h.writeServiceError(w, r, "settle", err)
		return
	}
	writeSuccess(w, http.StatusOK, "order settled", contracts.SettleResponse{
		Record:          toEscrowRecordResponse(result.Record),
		FoundationShare: result.Split.Foundation,
		PoolShare:       result.Split.Pool,
		SellerNet:       result.Split.SellerNet,
	})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	var req contracts.CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
		return
	}
	order, declared, err := parseOrder(req.Order)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	rec, err := h.service.Cancel(r.Context(), actorFromContext(r.Context()), application.CancelInput{
		Order:          order,
		DeclaredSaleID: declared,
	})
	if err != nil {
		h.writeServiceError(w, r, "cancel", err)
		return
	}
	writeSuccess(w, http.StatusOK, "order cancelled", toEscrowRecordResponse(rec))
}

func (h *Handler) refundFromPool(w http.ResponseWriter, r *http.Request) {
	var req contracts.RefundFromPoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
		return
	}
	order, declared, err := parseOrder(req.Order)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	rec, err := h.service.RefundFromPool(r.Context(), actorFromContext(r.Context()), application.RefundFromPoolInput{
		Order:          order,
		DeclaredSaleID: declared,
		Reason:         req.Reason,
	})
	if err != nil {
		h.writeServiceError(w, r, "refund_from_pool", err)
		return
	}
	writeSuccess(w, http.StatusOK, "order refunded", toEscrowRecordResponse(rec))
}

func (h *Handler) getEscrowRecord(w http.ResponseWriter, r *http.Request) {
	saleID, err := domain.ParseHash(chi.URLParam(r, "sale_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid sale id", requestIDFromContext(r.Context()))
		return
	}
	rec, err := h.service.GetEscrowRecord(r.Context(), saleID)
	if err != nil {
		h.writeServiceError(w, r, "get_escrow_record", err)
		return
	}
	writeSuccess(w, http.StatusOK, "escrow record", toEscrowRecordResponse(rec))
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	statusCode, code := mapDomainError(err)
	logOperationError(r.Context(), operation, statusCode, code, err)
	writeError(w, statusCode, code, err.Error(), requestIDFromContext(r.Context()))
}

func parseOrder(req contracts.OrderRequest) (domain.Order, *common.Hash, error) {
	ticketCommit, err := domain.ParseHash(req.TicketCommit)
	if err != nil {
		return domain.Order{}, nil, err
	}
	seller, err := domain.ParseAddress(req.Seller)
	if err != nil {
		return domain.Order{}, nil, err
	}
	buyer, err := domain.ParseAddress(req.Buyer)
	if err != nil {
		return domain.Order{}, nil, err
	}
	order := domain.Order{
		TicketCommit:   ticketCommit,
		Seller:         seller,
		Buyer:          buyer,
		Price:          req.Price,
		Expiry:         time.Unix(req.Expiry, 0).UTC(),
		MaxPriceCapBps: req.MaxPriceCapBps,
	}
	var declared *common.Hash
	if req.SaleID != "" {
		saleID, err := domain.ParseHash(req.SaleID)
		if err != nil {
			return domain.Order{}, nil, err
		}
		declared = &saleID
	}
	return order, declared, nil
}

func toEscrowRecordResponse(rec domain.EscrowRecord) contracts.EscrowRecordResponse {
	out := contracts.EscrowRecordResponse{
		SaleID:       rec.SaleID.Hex(),
		TicketCommit: rec.TicketCommit.Hex(),
		Seller:       rec.Seller.Hex(),
		Buyer:        rec.Buyer.Hex(),
		Amount:       rec.Amount,
		Status:       rec.Status,
		FundedAt:     rec.FundedAt.UTC().Format(time.RFC3339),
		EvidenceRef:  rec.EvidenceRef,
		RefundReason: rec.RefundReason,
	}
	if rec.ClosedAt != nil {
		out.ClosedAt = rec.ClosedAt.UTC().Format(time.RFC3339)
	}
	return out
}
