package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ticketrail/settlement/internal/contracts"
	"github.com/ticketrail/settlement/internal/domain"
)

func (h *Handler) setConfirmer(w http.ResponseWriter, r *http.Request) {
	h.setAuthorization(w, r, domain.RoleConfirmer)
}

func (h *Handler) setResolver(w http.ResponseWriter, r *http.Request) {
	h.setAuthorization(w, r, domain.RoleResolver)
}

func (h *Handler) setAuthorization(w http.ResponseWriter, r *http.Request, role string) {
	principal, err := domain.ParseAddress(chi.URLParam(r, "principal"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid principal", requestIDFromContext(r.Context()))
		return
	}
	var req contracts.SetAuthorizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
		return
	}
	actor := actorFromContext(r.Context())
	if role == domain.RoleConfirmer {
		err = h.service.SetConfirmer(r.Context(), actor, principal, req.Allowed)
	} else {
		err = h.service.SetResolver(r.Context(), actor, principal, req.Allowed)
	}
	if err != nil {
		h.writeServiceError(w, r, "set_authorization", err)
		return
	}
	writeSuccess(w, http.StatusOK, "authorization updated", contracts.AuthorizationResponse{
		Role:      role,
		Principal: principal.Hex(),
		Allowed:   req.Allowed,
	})
}

func (h *Handler) getConfirmer(w http.ResponseWriter, r *http.Request) {
	h.getAuthorization(w, r, domain.RoleConfirmer)
}

func (h *Handler) getResolver(w http.ResponseWriter, r *http.Request) {
	h.getAuthorization(w, r, domain.RoleResolver)
}

func (h *Handler) getAuthorization(w http.ResponseWriter, r *http.Request, role string) {
	principal, err := domain.ParseAddress(chi.URLParam(r, "principal"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid principal", requestIDFromContext(r.Context()))
		return
	}
	var allowed bool
	if role == domain.RoleConfirmer {
		allowed, err = h.service.IsConfirmer(r.Context(), principal)
	} else {
		allowed, err = h.service.IsResolver(r.Context(), principal)
	}
	if err != nil {
		h.writeServiceError(w, r, "get_authorization", err)
		return
	}
	writeSuccess(w, http.StatusOK, "authorization", contracts.AuthorizationResponse{
		Role:      role,
		Principal: principal.Hex(),
		Allowed:   allowed,
	})
}

func (h *Handler) setFees(w http.ResponseWriter, r *http.Request) {
	var req contracts.SetFeesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
		return
	}
	foundation, err := domain.ParseAddress(req.FoundationAddress)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid foundation address", requestIDFromContext(r.Context()))
		return
	}
	cfg := domain.FeeConfig{
		ObolBps:           req.ObolBps,
		ProtectBps:        req.ProtectBps,
		FoundationAddress: foundation,
	}
	if err := h.service.SetFees(r.Context(), actorFromContext(r.Context()), cfg); err != nil {
		h.writeServiceError(w, r, "set_fees", err)
		return
	}
	writeSuccess(w, http.StatusOK, "fee config updated", toFeeConfigResponse(cfg))
}

func (h *Handler) getFees(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.FeeConfig(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "get_fees", err)
		return
	}
	writeSuccess(w, http.StatusOK, "fee config", toFeeConfigResponse(cfg))
}

func toFeeConfigResponse(cfg domain.FeeConfig) contracts.FeeConfigResponse {
	return contracts.FeeConfigResponse{
		ObolBps:           cfg.ObolBps,
		ProtectBps:        cfg.ProtectBps,
		FoundationAddress: cfg.FoundationAddress.Hex(),
	}
}
