package middleware

import (
	"net/http"
	"time"
)

const timeoutBody = `{"ok":false,"error":"Request timeout","code":"TIMEOUT"}`

// Timeout bounds the whole request. The handler's context is cancelled at the
// deadline and the client gets a 503 with the failure envelope.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}
