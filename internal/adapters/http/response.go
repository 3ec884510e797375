package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ticketrail/settlement/internal/contracts"
	"github.com/ticketrail/settlement/internal/domain"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	writeJSON(w, statusCode, contracts.SuccessResponse{Status: "success", Message: message, Data: data})
}

func writeError(w http.ResponseWriter, statusCode int, code, message, requestID string) {
	writeJSON(w, statusCode, contracts.ErrorResponse{
		Status: "error",
		Error:  contracts.ErrorPayload{Code: code, Message: message, RequestID: requestID},
	})
}

// mapDomainError translates engine sentinels into transport status codes and
// stable error codes callers can branch on.
func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, "unauthorized"
	case errors.Is(err, domain.ErrInvalidOrder):
		return http.StatusBadRequest, "invalid_order"
	case errors.Is(err, domain.ErrExpired):
		return http.StatusBadRequest, "expired"
	case errors.Is(err, domain.ErrWrongAmount):
		return http.StatusBadRequest, "wrong_amount"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrDuplicateSale):
		return http.StatusConflict, "duplicate_sale"
	case errors.Is(err, domain.ErrAlreadyRefunded):
		return http.StatusConflict, "already_refunded"
	case errors.Is(err, domain.ErrWrongState):
		return http.StatusConflict, "wrong_state"
	case errors.Is(err, domain.ErrInsufficientPoolBalance):
		return http.StatusConflict, "insufficient_pool_balance"
	case errors.Is(err, domain.ErrNotAnchored):
		return http.StatusPreconditionFailed, "not_anchored"
	case errors.Is(err, domain.ErrTicketRevoked):
		return http.StatusPreconditionFailed, "ticket_revoked"
	case errors.Is(err, domain.ErrTransferFailed):
		return http.StatusBadGateway, "transfer_failed"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
