package feed

import "net/http"

// defaultUser is used when a caller identifies no one; this package
// carries no authentication, so "user" is just whatever opaque string
// the caller sends.
const defaultUser = "default"

func userOf(r *http.Request) string {
	if u := r.Header.Get("X-Scroll-User"); u != "" {
		return u
	}
	if u := r.URL.Query().Get("user"); u != "" {
		return u
	}
	return defaultUser
}
