package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	validation := &SubmissionError{
		Kind: Validation,
		Err:  &ValidationError{Kind: InvalidPhone, Field: "phone"},
	}
	vendor := &SubmissionError{
		Kind: Vendor,
		Err:  &VendorError{StatusCode: 422, Message: "bad variant"},
	}

	assert.Equal(t, ErrCodeInvalidPhone, ErrorCode(validation))
	assert.Equal(t, ErrCodeVendor, ErrorCode(vendor))
	assert.Equal(t, ErrCodeNotInstalled, ErrorCode(NewNotInstalledError("demo.myshopify.com")))
	assert.Equal(t, ErrCodeInvalidSignature, ErrorCode(NewAuthError(InvalidSignature, nil)))
	assert.Equal(t, ErrCodeInternal, ErrorCode(errors.New("boom")))
	assert.Equal(t, ErrCodeVendor, ErrorCode(fmt.Errorf("wrapped: %w", vendor)))
}

func TestSubmissionError_Unwrap(t *testing.T) {
	inner := &VendorError{UserErrors: []UserError{{Field: []string{"lineItems"}, Message: "Variant not found"}}}
	err := &SubmissionError{Kind: Vendor, Err: inner}

	var ve *VendorError
	assert.True(t, errors.As(err, &ve))
	assert.True(t, ve.IsClientError())
	assert.Contains(t, err.Error(), "Variant not found")
}

func TestValidationError_InvalidRedirectNamesField(t *testing.T) {
	assert.Equal(t, "sheets_webhook_url must be an absolute http(s) URL",
		(&ValidationError{Kind: InvalidRedirect, Field: "sheets_webhook_url"}).Error())
	assert.Equal(t, "redirect must be an absolute http(s) URL", (&ValidationError{Kind: InvalidRedirect}).Error())
}

func TestVendorError_IsClientError(t *testing.T) {
	assert.True(t, (&VendorError{StatusCode: 422}).IsClientError())
	assert.False(t, (&VendorError{StatusCode: 502}).IsClientError())
	assert.False(t, (&VendorError{Message: "transport"}).IsClientError())
}

func TestIsValidShopDomain(t *testing.T) {
	assert.True(t, IsValidShopDomain("demo.myshopify.com"))
	assert.True(t, IsValidShopDomain("my-store-2.myshopify.com"))
	assert.False(t, IsValidShopDomain(".myshopify.com"))
	assert.False(t, IsValidShopDomain("demo.example.com"))
	assert.False(t, IsValidShopDomain("evil.com/.myshopify.com"))
	assert.False(t, IsValidShopDomain("a.b.myshopify.com"))
}
