package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	vendor4xx := &domain.VendorError{StatusCode: http.StatusUnprocessableEntity}
	vendor5xx := &domain.VendorError{StatusCode: http.StatusBadGateway}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &domain.ValidationError{Kind: domain.InvalidPhone}, http.StatusBadRequest},
		{"not installed", domain.NewNotInstalledError("x.myshopify.com"), http.StatusBadRequest},
		{"vendor user errors", &domain.SubmissionError{Kind: domain.Vendor, Err: vendor4xx}, http.StatusBadRequest},
		{"vendor outage", &domain.SubmissionError{Kind: domain.Vendor, Err: vendor5xx}, http.StatusInternalServerError},
		{"bad signature", domain.NewAuthError(domain.InvalidSignature, nil), http.StatusUnauthorized},
		{"bad token", domain.NewAuthError(domain.InvalidToken, nil), http.StatusUnauthorized},
		{"invalid state", domain.NewAuthError(domain.InvalidState, nil), http.StatusBadRequest},
		{"exchange failed wrapping vendor 4xx", domain.NewAuthError(domain.ExchangeFailed, vendor4xx), http.StatusInternalServerError},
		{"bad request", badRequest("nope"), http.StatusBadRequest},
		{"wrapped transport", fmt.Errorf("post: %w", errors.New("connection refused")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
