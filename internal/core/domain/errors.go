package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Stable error codes surfaced in API responses.
const (
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeInvalidQuantity  = "INVALID_QUANTITY"
	ErrCodeInvalidPhone     = "INVALID_PHONE"
	ErrCodeInvalidPrice     = "INVALID_PRICE"
	ErrCodeInvalidRedirect  = "INVALID_REDIRECT"
	ErrCodeNotInstalled     = "NOT_INSTALLED"
	ErrCodeVendor           = "VENDOR_ERROR"
	ErrCodeMissingShopParam = "MISSING_SHOP_PARAM"
	ErrCodeInvalidShop      = "INVALID_SHOP"
	ErrCodeInvalidSignature = "INVALID_SIGNATURE"
	ErrCodeInvalidToken     = "INVALID_SESSION_TOKEN"
	ErrCodeInvalidState     = "INVALID_STATE"
	ErrCodeExchangeFailed   = "EXCHANGE_FAILED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSettingsNotFound = errors.New("settings not found")
	ErrStateNotFound    = errors.New("oauth state not found")
)

// ValidationKind enumerates why a submission failed normalization.
type ValidationKind string

const (
	MissingField    ValidationKind = ErrCodeMissingField
	InvalidQuantity ValidationKind = ErrCodeInvalidQuantity
	InvalidPhone    ValidationKind = ErrCodeInvalidPhone
	InvalidPrice    ValidationKind = ErrCodeInvalidPrice
	InvalidRedirect ValidationKind = ErrCodeInvalidRedirect
)

type ValidationError struct {
	Kind  ValidationKind
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingField:
		return fmt.Sprintf("missing required field: %s", e.Field)
	case InvalidQuantity:
		return "quantity must be a whole number between 1 and 20"
	case InvalidPhone:
		return "Invalid phone number"
	case InvalidPrice:
		return "price must be a non-negative amount"
	case InvalidRedirect:
		if e.Field != "" {
			return fmt.Sprintf("%s must be an absolute http(s) URL", e.Field)
		}
		return "redirect must be an absolute http(s) URL"
	}
	return "invalid submission"
}

func (e *ValidationError) Code() string { return string(e.Kind) }

func newMissingField(field string) *ValidationError {
	return &ValidationError{Kind: MissingField, Field: field}
}

// UserError is a field-level error reported by the vendor.
type UserError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
}

// VendorError is returned when the commerce API rejects or fails a call.
// Details holds the vendor's error body verbatim for client-side display.
type VendorError struct {
	StatusCode int
	Message    string
	UserErrors []UserError
	Details    json.RawMessage
}

func (e *VendorError) Error() string {
	if len(e.UserErrors) > 0 {
		msgs := make([]string, 0, len(e.UserErrors))
		for _, ue := range e.UserErrors {
			msgs = append(msgs, ue.Message)
		}
		return fmt.Sprintf("vendor rejected request: %s", strings.Join(msgs, "; "))
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("vendor error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("vendor error: %s", e.Message)
}

func (e *VendorError) Code() string { return ErrCodeVendor }

// IsClientError reports whether the vendor blamed the request rather than itself.
func (e *VendorError) IsClientError() bool {
	if len(e.UserErrors) > 0 {
		return true
	}
	return e.StatusCode >= 400 && e.StatusCode < 500
}

type SubmissionKind string

const (
	NotInstalled SubmissionKind = ErrCodeNotInstalled
	Validation   SubmissionKind = "VALIDATION"
	Vendor       SubmissionKind = ErrCodeVendor
)

// SubmissionError is the failure of one order submission. Err is a
// *ValidationError for Validation and a *VendorError for Vendor.
type SubmissionError struct {
	Kind SubmissionKind
	Shop string
	Err  error
}

func (e *SubmissionError) Error() string {
	switch e.Kind {
	case NotInstalled:
		return "Not installed"
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return string(e.Kind)
	}
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *SubmissionError) Code() string {
	if e.Kind == Validation {
		var ve *ValidationError
		if errors.As(e.Err, &ve) {
			return ve.Code()
		}
	}
	return string(e.Kind)
}

func NewNotInstalledError(shop string) *SubmissionError {
	return &SubmissionError{Kind: NotInstalled, Shop: shop}
}

type AuthKind string

const (
	MissingShopParam AuthKind = ErrCodeMissingShopParam
	InvalidShop      AuthKind = ErrCodeInvalidShop
	InvalidSignature AuthKind = ErrCodeInvalidSignature
	InvalidToken     AuthKind = ErrCodeInvalidToken
	InvalidState     AuthKind = ErrCodeInvalidState
	ExchangeFailed   AuthKind = ErrCodeExchangeFailed
)

type AuthError struct {
	Kind AuthKind
	Err  error
}

func (e *AuthError) Error() string {
	var msg string
	switch e.Kind {
	case MissingShopParam:
		msg = "Missing shop"
	case InvalidShop:
		msg = "invalid shop (expected like your-store.myshopify.com)"
	case InvalidSignature:
		msg = "Invalid signature"
	case InvalidToken:
		msg = "invalid session token"
	case InvalidState:
		msg = "invalid or expired state"
	case ExchangeFailed:
		msg = "token exchange failed"
	default:
		msg = "authentication failed"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Code() string { return string(e.Kind) }

func NewAuthError(kind AuthKind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

type coder interface {
	Code() string
}

// ErrorCode returns the stable code carried by err, or ErrCodeInternal.
func ErrorCode(err error) string {
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ErrCodeInternal
}

// IsErrorCode checks if an error has a specific code
func IsErrorCode(err error, code string) bool {
	return ErrorCode(err) == code
}
