package domain

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"github.com/shopspring/decimal"
)

// Normalize validates a raw submission and converts it to canonical form.
// Checks run in a fixed order and stop at the first failure.
func Normalize(raw OrderSubmission) (*NormalizedOrder, error) {
	variant := strings.TrimSpace(raw.VariantID)
	name := strings.TrimSpace(raw.RecipientName)
	phone := strings.TrimSpace(raw.Phone)
	address1 := strings.TrimSpace(raw.Address.Address1)
	country := strings.TrimSpace(raw.Country)

	required := []struct {
		field, value string
	}{
		{"variant_id", variant},
		{"full_name", name},
		{"phone", phone},
		{"address", address1},
		{"country", country},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, newMissingField(r.field)
		}
	}

	qty, err := parseQuantity(raw.Quantity)
	if err != nil {
		return nil, err
	}

	code := ResolveCountry(country)

	e164, err := normalizePhone(phone, code)
	if err != nil {
		return nil, err
	}

	price, hasPrice, err := parsePrice(raw.Price)
	if err != nil {
		return nil, err
	}

	redirect := strings.TrimSpace(raw.RedirectURL)
	if redirect != "" && !isAbsoluteHTTPURL(redirect) {
		return nil, &ValidationError{Kind: InvalidRedirect, Field: "redirect", Value: redirect}
	}

	return &NormalizedOrder{
		VariantID:     variant,
		Quantity:      qty,
		RecipientName: name,
		PhoneE164:     e164,
		Address: Address{
			Address1: address1,
			City:     strings.TrimSpace(raw.Address.City),
			Province: strings.TrimSpace(raw.Address.Province),
			Zip:      strings.TrimSpace(raw.Address.Zip),
		},
		Country:     code,
		Price:       price,
		HasPrice:    hasPrice,
		Currency:    strings.ToUpper(strings.TrimSpace(raw.Currency)),
		RedirectURL: redirect,
	}, nil
}

func parseQuantity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	q, err := strconv.Atoi(raw)
	if err != nil || q < MinQuantity || q > MaxQuantity {
		return 0, &ValidationError{Kind: InvalidQuantity, Field: "quantity", Value: raw}
	}
	return q, nil
}

// normalizePhone requires the number to be valid for the resolved region,
// not merely parseable.
func normalizePhone(raw string, region CountryCode) (string, error) {
	invalid := &ValidationError{Kind: InvalidPhone, Field: "phone", Value: raw}

	num, err := phonenumbers.Parse(raw, region.String())
	if err != nil {
		return "", invalid
	}
	if !phonenumbers.IsValidNumberForRegion(num, region.String()) {
		return "", invalid
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func parsePrice(raw string) (decimal.Decimal, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false, &ValidationError{Kind: InvalidPrice, Field: "price", Value: raw}
	}
	return d, true, nil
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// BuildRedirect appends the order name and country to a thank-you URL,
// keeping any query the base already carries.
func BuildRedirect(base, orderName string, country CountryCode) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	params := "order=" + url.QueryEscape(orderName) + "&country=" + url.QueryEscape(country.String())
	if u.RawQuery == "" {
		u.RawQuery = params
	} else {
		u.RawQuery = u.RawQuery + "&" + params
	}
	return u.String(), nil
}
