package handler

import (
	"net/http"

	"github.com/EAS-COD-System/EAS-COD/internal/adapters/shopify"
	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
)

// HandleCreateOrder accepts a submission for the shop named in the query or body.
// The shop must have an installed session.
func (h *CODHandler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	req, err := decodeOrderRequest(w, r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	shop := r.URL.Query().Get("shop")
	if shop == "" {
		shop = string(req.Shop)
	}
	if domain.NormalizeShopDomain(shop) == "" {
		h.respondWithError(w, r, domain.NewAuthError(domain.MissingShopParam, nil))
		return
	}

	h.submit(w, r, shop, req)
}

// HandleProxySubmit is the app proxy route. The shop comes from the signed
// query string, never from the body.
func (h *CODHandler) HandleProxySubmit(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !shopify.VerifyProxySignature(query, h.creds.APISecret) {
		h.respondWithError(w, r, domain.NewAuthError(domain.InvalidSignature, nil))
		return
	}

	req, err := decodeOrderRequest(w, r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	shop := query.Get("shop")
	if shop == "" {
		h.respondWithError(w, r, domain.NewAuthError(domain.MissingShopParam, nil))
		return
	}

	h.submit(w, r, shop, req)
}

func (h *CODHandler) submit(w http.ResponseWriter, r *http.Request, shop string, req *OrderRequest) {
	result, err := h.orders.Submit(r.Context(), shop, req.submission())
	if err != nil {
		h.countSubmission(domain.ErrorCode(err))
		h.respondWithError(w, r, err)
		return
	}
	h.countSubmission("ok")

	respondWithJSON(w, http.StatusOK, OrderResponse{
		OK:        true,
		OrderID:   result.OrderID,
		OrderName: result.OrderName,
		Redirect:  result.RedirectURL,
	})
}

func (h *CODHandler) countSubmission(outcome string) {
	if h.metrics != nil {
		h.metrics.Submissions.WithLabelValues(outcome).Inc()
	}
}
