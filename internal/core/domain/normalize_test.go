package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmission() OrderSubmission {
	return OrderSubmission{
		VariantID:     "123",
		Quantity:      "2",
		RecipientName: "Jane",
		Phone:         "0712345678",
		Address:       Address{Address1: "Main St", City: "Nairobi"},
		Country:       "kenya",
		Price:         "500",
		Currency:      "kes",
	}
}

func TestResolveCountry(t *testing.T) {
	tests := []struct {
		in   string
		want CountryCode
	}{
		{"kenya", "KE"},
		{"Kenya", "KE"},
		{"KENYA", "KE"},
		{"  tanzania ", "TZ"},
		{"Uganda", "UG"},
		{"zambia", "ZM"},
		{"ZimBabwe", "ZW"},
		{"ke", "KE"},
		{"UG", "UG"},
		{"narnia", "NARNIA"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveCountry(tt.in))
		})
	}
}

func TestNormalize_DemoSubmission(t *testing.T) {
	order, err := Normalize(validSubmission())
	require.NoError(t, err)

	assert.Equal(t, "123", order.VariantID)
	assert.Equal(t, 2, order.Quantity)
	assert.Equal(t, CountryCode("KE"), order.Country)
	assert.Equal(t, "+254712345678", order.PhoneE164)
	assert.Equal(t, "KES", order.Currency)
	assert.True(t, order.HasPrice)
	assert.Equal(t, "1000.00", order.Total().StringFixed(2))
}

func TestNormalize_MissingFields(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*OrderSubmission)
	}{
		{"variant_id", func(s *OrderSubmission) { s.VariantID = "" }},
		{"full_name", func(s *OrderSubmission) { s.RecipientName = "   " }},
		{"phone", func(s *OrderSubmission) { s.Phone = "" }},
		{"address", func(s *OrderSubmission) { s.Address.Address1 = "" }},
		{"country", func(s *OrderSubmission) { s.Country = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(&sub)

			_, err := Normalize(sub)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, MissingField, ve.Kind)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestNormalize_QuantityBounds(t *testing.T) {
	for _, q := range []string{"0", "21", "-1", "abc", "", "2.5"} {
		t.Run("reject "+q, func(t *testing.T) {
			sub := validSubmission()
			sub.Quantity = q

			_, err := Normalize(sub)
			assert.True(t, IsErrorCode(err, ErrCodeInvalidQuantity), "got %v", err)
		})
	}

	for _, q := range []string{"1", "20"} {
		t.Run("accept "+q, func(t *testing.T) {
			sub := validSubmission()
			sub.Quantity = q

			_, err := Normalize(sub)
			assert.NoError(t, err)
		})
	}
}

func TestNormalize_Phone(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		country string
		want    string
	}{
		{"kenya local", "0712345678", "kenya", "+254712345678"},
		{"kenya international", "+254712345678", "KE", "+254712345678"},
		{"uganda local", "0772123456", "uganda", "+256772123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			sub.Phone = tt.phone
			sub.Country = tt.country

			order, err := Normalize(sub)
			require.NoError(t, err)
			assert.Equal(t, tt.want, order.PhoneE164)
		})
	}
}

func TestNormalize_InvalidPhone(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		country string
	}{
		{"too short", "12345", "kenya"},
		{"wrong region", "+256772123456", "kenya"},
		{"letters", "not-a-phone", "kenya"},
		{"unknown country", "0712345678", "narnia"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			sub.Phone = tt.phone
			sub.Country = tt.country

			_, err := Normalize(sub)
			assert.True(t, IsErrorCode(err, ErrCodeInvalidPhone), "got %v", err)
		})
	}
}

func TestNormalize_Price(t *testing.T) {
	sub := validSubmission()
	sub.Price = ""
	order, err := Normalize(sub)
	require.NoError(t, err)
	assert.False(t, order.HasPrice)
	assert.True(t, order.Total().IsZero())

	sub.Price = "-1"
	_, err = Normalize(sub)
	assert.True(t, IsErrorCode(err, ErrCodeInvalidPrice))

	sub.Price = "ten"
	_, err = Normalize(sub)
	assert.True(t, IsErrorCode(err, ErrCodeInvalidPrice))
}

func TestNormalize_RedirectOverride(t *testing.T) {
	sub := validSubmission()
	sub.RedirectURL = "https://shop.example.com/thanks"
	order, err := Normalize(sub)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/thanks", order.RedirectURL)

	sub.RedirectURL = "/relative/thanks"
	_, err = Normalize(sub)
	assert.True(t, IsErrorCode(err, ErrCodeInvalidRedirect))

	sub.RedirectURL = "javascript:alert(1)"
	_, err = Normalize(sub)
	assert.True(t, IsErrorCode(err, ErrCodeInvalidRedirect))
}

func TestNormalize_NameSplit(t *testing.T) {
	sub := validSubmission()
	sub.RecipientName = "Jane  Wanjiru Doe"
	order, err := Normalize(sub)
	require.NoError(t, err)

	assert.Equal(t, "Jane", order.FirstName())
	assert.Equal(t, "Wanjiru Doe", order.LastName())
}

func TestBuildRedirect(t *testing.T) {
	tests := []struct {
		name string
		base string
		want string
	}{
		{"plain", "https://example.com/thank-you", "https://example.com/thank-you?order=%231001&country=KE"},
		{"existing query", "https://example.com/thanks?lang=en", "https://example.com/thanks?lang=en&order=%231001&country=KE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildRedirect(tt.base, "#1001", "KE")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
