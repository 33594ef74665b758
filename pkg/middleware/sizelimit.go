package middleware

import (
	"fmt"
	"net/http"
)

// DefaultMaxRequestSize caps request bodies at 10MB unless configured.
const DefaultMaxRequestSize = 10 * 1024 * 1024

// MaxRequestSizeHeader announces the effective limit to clients.
const MaxRequestSizeHeader = "X-Max-Request-Size"

// RequestSizeLimiter bounds request body sizes. Bulk delete bodies are
// small id lists, so the default limit is generous.
type RequestSizeLimiter struct {
	maxSize int64
}

// NewRequestSizeLimiter creates a limiter for maxSize bytes. Zero or
// negative selects DefaultMaxRequestSize.
func NewRequestSizeLimiter(maxSize int64) *RequestSizeLimiter {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}
	return &RequestSizeLimiter{maxSize: maxSize}
}

// Middleware wraps request bodies in a MaxBytesReader.
func (rsl *RequestSizeLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, rsl.maxSize)
		w.Header().Set(MaxRequestSizeHeader, fmt.Sprintf("%d", rsl.maxSize))
		next.ServeHTTP(w, r)
	})
}
