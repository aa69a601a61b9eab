package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MinQuantity = 1
	MaxQuantity = 20
)

type Address struct {
	Address1 string
	City     string
	Province string
	Zip      string
}

// OrderSubmission is the raw storefront payload. Quantity and Price are kept
// as received so that malformed input is reported by Normalize.
type OrderSubmission struct {
	VariantID     string
	Quantity      string
	RecipientName string
	Phone         string
	Address       Address
	Country       string
	Price         string
	Currency      string
	RedirectURL   string
}

// NormalizedOrder is a submission that passed validation. Only Normalize
// constructs it.
type NormalizedOrder struct {
	VariantID     string
	Quantity      int
	RecipientName string
	PhoneE164     string
	Address       Address
	Country       CountryCode
	Price         decimal.Decimal
	HasPrice      bool
	Currency      string
	RedirectURL   string
}

// FirstName and LastName split the recipient name at the first space.
func (o *NormalizedOrder) FirstName() string {
	first, _, _ := strings.Cut(o.RecipientName, " ")
	return first
}

func (o *NormalizedOrder) LastName() string {
	_, last, _ := strings.Cut(o.RecipientName, " ")
	return strings.TrimSpace(last)
}

// Total is the line total, zero when no price was supplied.
func (o *NormalizedOrder) Total() decimal.Decimal {
	if !o.HasPrice {
		return decimal.Zero
	}
	return o.Price.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// VendorOrderResult is what a successful submission returns to the storefront.
type VendorOrderResult struct {
	OrderID     string
	OrderName   string
	RedirectURL string
}

// OrderRecord is the local audit row written after the vendor accepted an order.
type OrderRecord struct {
	ID            uuid.UUID
	Shop          string
	VendorOrderID string
	OrderName     string
	Country       CountryCode
	Currency      string
	Total         decimal.Decimal
	Phone         string
	CreatedAt     time.Time
}

func NewOrderRecord(shop string, order *NormalizedOrder, result *VendorOrderResult, now time.Time) *OrderRecord {
	return &OrderRecord{
		ID:            uuid.New(),
		Shop:          shop,
		VendorOrderID: result.OrderID,
		OrderName:     result.OrderName,
		Country:       order.Country,
		Currency:      order.Currency,
		Total:         order.Total(),
		Phone:         order.PhoneE164,
		CreatedAt:     now.UTC(),
	}
}

// OrderPlaced is the event published to notifiers.
type OrderPlaced struct {
	Shop      string    `json:"shop"`
	OrderID   string    `json:"order_id"`
	OrderName string    `json:"order_name"`
	VariantID string    `json:"variant_id"`
	Quantity  int       `json:"quantity"`
	Name      string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Currency  string    `json:"currency,omitempty"`
	Total     string    `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

func NewOrderPlaced(shop string, order *NormalizedOrder, result *VendorOrderResult, now time.Time) OrderPlaced {
	return OrderPlaced{
		Shop:      shop,
		OrderID:   result.OrderID,
		OrderName: result.OrderName,
		VariantID: order.VariantID,
		Quantity:  order.Quantity,
		Name:      order.RecipientName,
		Phone:     order.PhoneE164,
		Address:   order.Address.Address1,
		City:      order.Address.City,
		Country:   order.Country.String(),
		Currency:  order.Currency,
		Total:     order.Total().StringFixed(2),
		CreatedAt: now.UTC(),
	}
}
