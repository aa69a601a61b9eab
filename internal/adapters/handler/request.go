package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
)

const maxBodyBytes = 64 << 10

// flexString accepts a JSON string or number. Storefront themes send
// quantity, price and variant ids either way.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

// OrderRequest is the storefront payload. Both the snake_case form field
// names and the camelCase names are accepted.
type OrderRequest struct {
	Shop          flexString `json:"shop"`
	VariantID     flexString `json:"variant_id"`
	VariantIDAlt  flexString `json:"variantId"`
	Quantity      flexString `json:"quantity"`
	FullName      flexString `json:"full_name"`
	RecipientName flexString `json:"recipientName"`
	Phone         flexString `json:"phone"`
	Address       flexString `json:"address"`
	Address1      flexString `json:"address1"`
	City          flexString `json:"city"`
	Province      flexString `json:"province"`
	Zip           flexString `json:"zip"`
	Country       flexString `json:"country"`
	Price         flexString `json:"price"`
	Currency      flexString `json:"currency"`
	Redirect      flexString `json:"redirect"`
	RedirectURL   flexString `json:"redirectUrl"`
}

func first(values ...flexString) string {
	for _, v := range values {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}

func (req *OrderRequest) submission() domain.OrderSubmission {
	return domain.OrderSubmission{
		VariantID:     first(req.VariantID, req.VariantIDAlt),
		Quantity:      first(req.Quantity),
		RecipientName: first(req.FullName, req.RecipientName),
		Phone:         first(req.Phone),
		Address: domain.Address{
			Address1: first(req.Address, req.Address1),
			City:     first(req.City),
			Province: first(req.Province),
			Zip:      first(req.Zip),
		},
		Country:     first(req.Country),
		Price:       first(req.Price),
		Currency:    first(req.Currency),
		RedirectURL: first(req.Redirect, req.RedirectURL),
	}
}

func orderRequestFromForm(form url.Values) *OrderRequest {
	get := func(key string) flexString { return flexString(form.Get(key)) }
	return &OrderRequest{
		Shop:          get("shop"),
		VariantID:     get("variant_id"),
		VariantIDAlt:  get("variantId"),
		Quantity:      get("quantity"),
		FullName:      get("full_name"),
		RecipientName: get("recipientName"),
		Phone:         get("phone"),
		Address:       get("address"),
		Address1:      get("address1"),
		City:          get("city"),
		Province:      get("province"),
		Zip:           get("zip"),
		Country:       get("country"),
		Price:         get("price"),
		Currency:      get("currency"),
		Redirect:      get("redirect"),
		RedirectURL:   get("redirectUrl"),
	}
}

// decodeOrderRequest reads a JSON or form encoded body.
func decodeOrderRequest(w http.ResponseWriter, r *http.Request) (*OrderRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, badRequest("invalid form body")
		}
		return orderRequestFromForm(r.PostForm), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, badRequest("invalid form body")
		}
		return orderRequestFromForm(r.PostForm), nil
	}

	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, badRequest("request body too large")
		}
		return nil, badRequest("invalid JSON body")
	}
	return &req, nil
}
