package http

import (
	"net/http"
)

const (
	// maxUserHeader bounds the opaque X-Scroll-User identifier; real
	// values are short usernames or uuids.
	maxUserHeader = 256

	// maxPathLength bounds the URI path; detail routes carry a
	// url-encoded compound id, which never legitimately approaches 2KB.
	maxPathLength = 2048

	// maxBodyBytes bounds request bodies; respond payloads and config
	// uploads are the only bodies this engine accepts.
	maxBodyBytes = 10 << 20
)

// InputValidation returns middleware that rejects oversized inputs
// before any handler parses them.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.Header.Get("X-Scroll-User")) > maxUserHeader {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"user header too large"}`))
				return
			}

			if len(r.URL.Path) > maxPathLength {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestURITooLong)
				_, _ = w.Write([]byte(`{"error":"URI too long"}`))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

			next.ServeHTTP(w, r)
		})
	}
}
