// Package requestid assigns every request an id that rides the
// context through handlers and into log lines.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey keeps this package's context value collision-free.
type contextKey string

const (
	// RequestIDKey is the context key the id is stored under.
	RequestIDKey contextKey = "request_id"
	// RequestIDHeader is the header the id is read from and echoed on.
	RequestIDHeader = "X-Request-ID"
)

// FromContext returns the request id, or "" when the middleware never
// ran.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID stores id on ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// Middleware propagates an inbound X-Request-ID or mints a UUID when
// the caller sent none, echoing it on the response so clients can
// quote it back.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
