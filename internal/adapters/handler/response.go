package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
)

type okResponse struct {
	OK bool `json:"ok"`
}

type OrderResponse struct {
	OK        bool   `json:"ok"`
	OrderID   string `json:"orderId"`
	OrderName string `json:"orderName"`
	Redirect  string `json:"redirect"`
}

type ErrorResponse struct {
	OK      bool            `json:"ok"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details,omitempty"`
}

// requestError reports a body or query the handler could not parse.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func (e *requestError) Code() string { return "INVALID_REQUEST" }

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

func respondWithJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// statusFor maps an error to the HTTP status of the response.
func statusFor(err error) int {
	var (
		vendorErr *domain.VendorError
		authErr   *domain.AuthError
		valErr    *domain.ValidationError
		subErr    *domain.SubmissionError
		reqErr    *requestError
	)

	switch {
	case errors.As(err, &authErr):
		switch authErr.Kind {
		case domain.InvalidSignature, domain.InvalidToken:
			return http.StatusUnauthorized
		case domain.ExchangeFailed:
			return http.StatusInternalServerError
		}
		return http.StatusBadRequest
	case errors.As(err, &vendorErr):
		if vendorErr.IsClientError() {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	case errors.As(err, &valErr), errors.As(err, &subErr), errors.As(err, &reqErr):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondWithError writes the failure envelope. Server-side failures get a
// generic message; the cause only goes to the log.
func (h *CODHandler) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := ErrorResponse{
		OK:    false,
		Error: err.Error(),
		Code:  domain.ErrorCode(err),
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", resp.Code,
			"error", err,
		)
		resp.Error = "Internal server error"
	} else {
		var vendorErr *domain.VendorError
		if errors.As(err, &vendorErr) {
			resp.Details = vendorErr.Details
		}
		h.logger.Debug("request rejected", slog.String("path", r.URL.Path), slog.String("code", resp.Code), slog.Any("error", err))
	}

	respondWithJSON(w, status, resp)
}
