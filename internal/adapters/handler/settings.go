package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/EAS-COD-System/EAS-COD/internal/adapters/shopify"
	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/EAS-COD-System/EAS-COD/internal/core/service"
)

type SettingsRequest struct {
	ThankYouURL      string `json:"thankYouUrl"`
	SheetsWebhookURL string `json:"sheetsWebhookUrl"`
}

type SettingsBody struct {
	Shop             string    `json:"shop"`
	ThankYouURL      string    `json:"thankYouUrl"`
	SheetsWebhookURL string    `json:"sheetsWebhookUrl"`
	UpdatedAt        time.Time `json:"updatedAt,omitempty"`
}

type SettingsResponse struct {
	OK       bool         `json:"ok"`
	Settings SettingsBody `json:"settings"`
}

type OrderBody struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	OrderName string    `json:"orderName"`
	Country   string    `json:"country"`
	Currency  string    `json:"currency,omitempty"`
	Total     string    `json:"total"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

type OrdersResponse struct {
	OK     bool        `json:"ok"`
	Orders []OrderBody `json:"orders"`
}

// sessionShop returns the shop of the embedded admin's bearer session token.
func (h *CODHandler) sessionShop(r *http.Request) (string, error) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return "", domain.NewAuthError(domain.InvalidToken, nil)
	}
	shop, err := shopify.VerifySessionToken(token, h.creds.APIKey, h.creds.APISecret)
	if err != nil {
		return "", domain.NewAuthError(domain.InvalidToken, err)
	}
	return shop, nil
}

func toSettingsResponse(s *domain.ShopSettings) SettingsResponse {
	return SettingsResponse{
		OK: true,
		Settings: SettingsBody{
			Shop:             s.Shop,
			ThankYouURL:      s.ThankYouURL,
			SheetsWebhookURL: s.SheetsWebhookURL,
			UpdatedAt:        s.UpdatedAt,
		},
	}
}

func (h *CODHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	shop, err := h.sessionShop(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	settings, err := h.settings.Get(r.Context(), shop)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toSettingsResponse(settings))
}

func (h *CODHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	shop, err := h.sessionShop(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	var req SettingsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.respondWithError(w, r, badRequest("invalid JSON body"))
		return
	}

	settings, err := h.settings.Update(r.Context(), shop, service.SettingsInput{
		ThankYouURL:      req.ThankYouURL,
		SheetsWebhookURL: req.SheetsWebhookURL,
	})
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toSettingsResponse(settings))
}

func (h *CODHandler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	shop, err := h.sessionShop(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	limit, err := intParam(r, "limit")
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	offset, err := intParam(r, "offset")
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	records, err := h.query.List(r.Context(), shop, limit, offset)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	resp := OrdersResponse{OK: true, Orders: make([]OrderBody, 0, len(records))}
	for _, rec := range records {
		resp.Orders = append(resp.Orders, OrderBody{
			ID:        rec.ID.String(),
			OrderID:   rec.VendorOrderID,
			OrderName: rec.OrderName,
			Country:   rec.Country.String(),
			Currency:  rec.Currency,
			Total:     rec.Total.StringFixed(2),
			Phone:     rec.Phone,
			CreatedAt: rec.CreatedAt,
		})
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(name + " must be an integer")
	}
	return n, nil
}
