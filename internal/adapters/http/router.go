package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers the settlement engine's HTTP surface. Everything under
// /v1 requires a verified principal; role checks (owner, confirmer,
// resolver, buyer) stay inside the engine.
func NewRouter(handler *Handler, verifier TokenVerifier) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeSuccess(w, http.StatusOK, "ok", nil) })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { writeSuccess(w, http.StatusOK, "ready", nil) })

	r.Route("/v1", func(r chi.Router) {
		// Sale-id derivation is pure; no credential required.
		r.Post("/orders/sale-id", handler.computeSaleID)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(verifier))

			r.Post("/orders/fund", handler.fund)
			r.Post("/orders/settle", handler.settle)
			r.Post("/orders/cancel", handler.cancel)
			r.Post("/orders/refund", handler.refundFromPool)
			r.Get("/orders/{sale_id}", handler.getEscrowRecord)

			r.Post("/pool/topups", handler.topUp)
			r.Post("/pool/refunds", handler.refundBuyer)
			r.Post("/pool/sweeps", handler.sweep)
			r.Get("/pool/balance", handler.poolBalance)

			r.Put("/admin/confirmers/{principal}", handler.setConfirmer)
			r.Put("/admin/resolvers/{principal}", handler.setResolver)
			r.Get("/admin/confirmers/{principal}", handler.getConfirmer)
			r.Get("/admin/resolvers/{principal}", handler.getResolver)
			r.Put("/admin/fees", handler.setFees)
			r.Get("/admin/fees", handler.getFees)
		})
	})
	return r
}
