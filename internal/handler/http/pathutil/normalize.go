package pathutil

import (
	"regexp"
	"strings"
)

// pathPatterns maps dynamic routes to bounded metric labels. The only
// dynamic route this engine serves is the detail view, whose tail is a
// url-encoded compound id with unbounded cardinality.
var pathPatterns = []struct {
	pattern  *regexp.Regexp
	template string
}{
	{pattern: regexp.MustCompile(`^/feed/detail/.+$`), template: "/feed/detail/:itemId"},
}

// NormalizePath rewrites dynamic URL paths to a fixed template so
// Prometheus path labels stay bounded: every /feed/detail/{itemId}
// request records as /feed/detail/:itemId. Static paths (/feed/scroll,
// /feed/config, /healthz, /metrics) pass through unchanged, as does
// anything unrecognized.
//
// Query strings and trailing slashes are stripped first:
//
//	NormalizePath("/feed/detail/reddit%3Aabc123")  // "/feed/detail/:itemId"
//	NormalizePath("/feed/scroll?cursor=x&limit=5") // "/feed/scroll"
//	NormalizePath("/feed/config/")                 // "/feed/config"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.pattern.MatchString(path) {
			return p.template
		}
	}
	return path
}
