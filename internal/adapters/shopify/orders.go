package shopify

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
)

const codTag = "COD"

type restOrderRequest struct {
	Order restOrder `json:"order"`
}

type restOrder struct {
	FinancialStatus string         `json:"financial_status"`
	Currency        string         `json:"currency,omitempty"`
	Tags            string         `json:"tags"`
	Phone           string         `json:"phone"`
	LineItems       []restLineItem `json:"line_items"`
	ShippingAddress restAddress    `json:"shipping_address"`
}

type restLineItem struct {
	VariantID int64  `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price,omitempty"`
}

type restAddress struct {
	Name        string `json:"name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name,omitempty"`
	Phone       string `json:"phone"`
	Address1    string `json:"address1"`
	City        string `json:"city,omitempty"`
	Province    string `json:"province,omitempty"`
	Zip         string `json:"zip,omitempty"`
	CountryCode string `json:"country_code"`
}

type restOrderResponse struct {
	Order struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"order"`
}

// CreateOrder posts a pending-payment order to the REST orders endpoint.
func (c *Client) CreateOrder(ctx context.Context, shop, token string, order *domain.NormalizedOrder) (*domain.VendorOrderResult, error) {
	variantID, err := numericVariantID(order.VariantID)
	if err != nil {
		return nil, err
	}

	item := restLineItem{VariantID: variantID, Quantity: order.Quantity}
	if order.HasPrice {
		item.Price = order.Price.StringFixed(2)
	}

	req := restOrderRequest{Order: restOrder{
		FinancialStatus: "pending",
		Currency:        order.Currency,
		Tags:            codTag,
		Phone:           order.PhoneE164,
		LineItems:       []restLineItem{item},
		ShippingAddress: restAddress{
			Name:        order.RecipientName,
			FirstName:   order.FirstName(),
			LastName:    order.LastName(),
			Phone:       order.PhoneE164,
			Address1:    order.Address.Address1,
			City:        order.Address.City,
			Province:    order.Address.Province,
			Zip:         order.Address.Zip,
			CountryCode: order.Country.String(),
		},
	}}

	resp, err := doJSON[restOrderRequest, restOrderResponse](c, ctx, http.MethodPost, c.apiURL(shop, "orders.json"), token, req)
	if err != nil {
		return nil, err
	}

	return &domain.VendorOrderResult{
		OrderID:   strconv.FormatInt(resp.Order.ID, 10),
		OrderName: resp.Order.Name,
	}, nil
}

const variantGIDPrefix = "gid://shopify/ProductVariant/"

// numericVariantID accepts "123" or "gid://shopify/ProductVariant/123".
func numericVariantID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, variantGIDPrefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.VendorError{
			StatusCode: http.StatusUnprocessableEntity,
			Message:    "variant_id must be a numeric id or ProductVariant gid",
			UserErrors: []domain.UserError{{Field: []string{"variant_id"}, Message: "invalid variant id"}},
		}
	}
	return id, nil
}

func variantGID(raw string) string {
	if strings.HasPrefix(raw, "gid://") {
		return raw
	}
	return variantGIDPrefix + raw
}
