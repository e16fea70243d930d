// Package respond writes JSON responses and keeps internal error
// detail out of client-visible bodies. The feed routes carry their own
// richer error envelope; this package backs the ambient middleware
// (panic recovery) that has no domain error to map.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// JSON writes v with the given status code. Encoding failures after
// WriteHeader can only be logged; the status line is already on the
// wire.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// safeFragments marks error text that is fine to show a caller:
// validation phrasing, not internals.
var safeFragments = []string{
	"required",
	"invalid",
	"not found",
	"must be",
	"cannot be",
	"too long",
	"too large",
}

// SafeError returns err to the client only when its message reads like
// a validation error; anything else is logged (sanitized) and replaced
// with a generic body. A 5xx code always takes the generic path.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	safe := false
	if code < 500 {
		lower := strings.ToLower(msg)
		for _, fragment := range safeFragments {
			if strings.Contains(lower, fragment) {
				safe = true
				break
			}
		}
	}

	if safe {
		JSON(w, code, map[string]string{"error": msg})
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}
