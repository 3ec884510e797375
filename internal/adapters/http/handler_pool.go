package http

import (
	"encoding/json"
	"net/http"

	"github.com/ticketrail/settlement/internal/application"
	"github.com/ticketrail/settlement/internal/contracts"
	"github.com/ticketrail/settlement/internal/domain"
)

func (h *Handler) topUp(w http.ResponseWriter, r *http.Request) {
	var req contracts.TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
		return
	}
	balance, err := h.service.TopUp(r.Context(), actorFromContext(r.Context()), req.Amount)
	if err != nil {
		h.writeServiceError(w, r, "pool_top_up", err)
		return
	}
	writeSuccess(w, http.StatusOK, "pool topped up", contracts.PoolBalanceResponse{Balance: balance})
}

func (h *Handler) refundBuyer(w http.ResponseWriter, r *http.Request) {
	var req contracts.PoolRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
		return
	}
	saleID, err := domain.ParseHash(req.SaleID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid sale id", requestIDFromContext(r.Context()))
		return
	}
	to, err := domain.ParseAddress(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid recipient", requestIDFromContext(r.Context()))
		return
	}
	if err := h.service.RefundBuyer(r.Context(), actorFromContext(r.Context()), application.PoolRefundInput{
		SaleID: saleID,
		To:     to,
		Amount: req.Amount,
		Reason: req.Reason,
	}); err != nil {
		h.writeServiceError(w, r, "pool_refund", err)
		return
	}
	writeSuccess(w, http.StatusOK, "refund issued", nil)
}

func (h *Handler) sweep(w http.ResponseWriter, r *http.Request) {
	var req contracts.SweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
		return
	}
	to, err := domain.ParseAddress(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid recipient", requestIDFromContext(r.Context()))
		return
	}
	if err := h.service.Sweep(r.Context(), actorFromContext(r.Context()), application.SweepInput{
		To:     to,
		Amount: req.Amount,
	}); err != nil {
		h.writeServiceError(w, r, "pool_sweep", err)
		return
	}
	writeSuccess(w, http.StatusOK, "pool swept", nil)
}

func (h *Handler) poolBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.service.PoolBalance(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "pool_balance", err)
		return
	}
	writeSuccess(w, http.StatusOK, "pool balance", contracts.PoolBalanceResponse{Balance: balance})
}
