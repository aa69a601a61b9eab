package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/EAS-COD-System/EAS-COD/internal/adapters/shopify"
	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/EAS-COD-System/EAS-COD/internal/core/service"
)

const maxWebhookBytes = 1 << 20

type callbackQuery struct {
	Shop  string `validate:"required"`
	Code  string `validate:"required"`
	State string `validate:"required"`
}

// HandleAuth starts the install by redirecting to the consent page.
func (h *CODHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.install.Begin(r.Context(), r.URL.Query().Get("shop"))
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (h *CODHandler) HandleAuthCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !shopify.VerifyOAuthHMAC(query, h.creds.APISecret) {
		h.respondWithError(w, r, domain.NewAuthError(domain.InvalidSignature, nil))
		return
	}

	params := callbackQuery{
		Shop:  query.Get("shop"),
		Code:  query.Get("code"),
		State: query.Get("state"),
	}
	if params.Shop == "" {
		h.respondWithError(w, r, domain.NewAuthError(domain.MissingShopParam, nil))
		return
	}
	if err := h.validate.Struct(params); err != nil {
		h.respondWithError(w, r, domain.NewAuthError(domain.InvalidState, err))
		return
	}

	session, err := h.install.Complete(r.Context(), service.CallbackParams{
		Shop:  params.Shop,
		Code:  params.Code,
		State: params.State,
	})
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	http.Redirect(w, r, "https://"+session.Shop+"/admin/apps", http.StatusFound)
}

type uninstallPayload struct {
	Domain          string `json:"domain"`
	MyshopifyDomain string `json:"myshopify_domain"`
}

// HandleAppUninstalled removes the shop's data once Shopify reports the app
// was uninstalled.
func (h *CODHandler) HandleAppUninstalled(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		h.respondWithError(w, r, badRequest("unreadable webhook body"))
		return
	}

	if !shopify.VerifyWebhookHMAC(body, r.Header.Get("X-Shopify-Hmac-Sha256"), h.creds.APISecret) {
		h.respondWithError(w, r, domain.NewAuthError(domain.InvalidSignature, nil))
		return
	}

	shop := r.Header.Get("X-Shopify-Shop-Domain")
	if shop == "" {
		var payload uninstallPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			h.respondWithError(w, r, errors.Join(badRequest("invalid webhook body"), err))
			return
		}
		shop = payload.MyshopifyDomain
		if shop == "" {
			shop = payload.Domain
		}
	}

	if err := h.install.Uninstall(r.Context(), shop, r.Header.Get("X-Shopify-Webhook-Id")); err != nil {
		h.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, okResponse{OK: true})
}
