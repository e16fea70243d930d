package feed

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON mirrors respond.JSON's encode-after-WriteHeader idiom without
// depending on the handler/http/respond helper, since this
// package's error envelope shape differs from SafeError's.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("feed handler: failed to encode JSON response", slog.Any("error", err))
	}
}
