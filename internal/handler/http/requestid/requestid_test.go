package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestFromContext_Empty(t *testing.T) {
	if got := FromContext(context.Background()); got != "" {
		t.Errorf("expected empty id without middleware, got %q", got)
	}
}

func TestWithRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc-123")
	if got := FromContext(ctx); got != "abc-123" {
		t.Errorf("expected abc-123, got %q", got)
	}
}

func TestMiddleware_GeneratesUUIDWhenAbsent(t *testing.T) {
	var seen string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/feed/scroll", nil))

	if seen == "" {
		t.Fatal("no request id reached the handler")
	}
	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("generated id is not a uuid: %q", seen)
	}
	if echo := w.Header().Get(RequestIDHeader); echo != seen {
		t.Errorf("response header %q does not match context id %q", echo, seen)
	}
}

func TestMiddleware_PropagatesInboundID(t *testing.T) {
	var seen string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/feed/scroll", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-7")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if seen != "client-supplied-7" {
		t.Errorf("inbound id not propagated, got %q", seen)
	}
	if echo := w.Header().Get(RequestIDHeader); echo != "client-supplied-7" {
		t.Errorf("inbound id not echoed, got %q", echo)
	}
}

func TestMiddleware_DistinctRequestsDistinctIDs(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	ids := make(map[string]struct{})
	for range 20 {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/feed/scroll", nil))
		ids[w.Header().Get(RequestIDHeader)] = struct{}{}
	}

	if len(ids) != 20 {
		t.Errorf("expected 20 distinct ids, got %d", len(ids))
	}
}
