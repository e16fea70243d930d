// Package resolver implements the two compound-expression resolvers used
// by the engine: ContentIdResolver for "source:localId"
// lookup, and FeedFilterResolver for "?filter=" parsing.
package resolver

import (
	"regexp"
	"strings"

	"scrollfeed/internal/adapter"
)

// FallbackPattern is one entry in the ordered list of regexes consulted
// when a compound id contains no colon.
type FallbackPattern struct {
	Pattern    *regexp.Regexp
	SourceType string
}

// Resolved is the outcome of ContentIdResolver.Resolve: the owning
// adapter plus the (possibly transformed) local id to pass to it.
type Resolved struct {
	Adapter adapter.SourceAdapter
	LocalID string
}

// ContentIdResolver parses compound ids into (adapter, localId) pairs.
type ContentIdResolver struct {
	registry      *adapter.Registry
	fallbacks     []FallbackPattern
	defaultSource string
}

// NewContentIdResolver constructs a resolver over registry, with
// fallbacks consulted in order for colon-less ids, and defaultSource
// used when no fallback matches.
func NewContentIdResolver(registry *adapter.Registry, fallbacks []FallbackPattern, defaultSource string) *ContentIdResolver {
	return &ContentIdResolver{registry: registry, fallbacks: fallbacks, defaultSource: defaultSource}
}

// Resolve applies a four-step algorithm: split on the first colon, look
// up the prefix in the registry, or fall back to pattern matching and a
// default source for colon-less ids. It returns (nil, false) if no
// adapter can be determined.
func (r *ContentIdResolver) Resolve(compoundID string) (Resolved, bool) {
	prefix, rest, hasColon := strings.Cut(compoundID, ":")
	if !hasColon {
		return r.resolveNoColon(compoundID)
	}

	if a, localID, ok := r.registry.ByPrefix(prefix, rest); ok {
		return Resolved{Adapter: a, LocalID: localID}, true
	}
	return Resolved{}, false
}

// resolveNoColon applies fallback patterns in order, then the default
// source.
func (r *ContentIdResolver) resolveNoColon(id string) (Resolved, bool) {
	for _, fb := range r.fallbacks {
		if fb.Pattern.MatchString(id) {
			if a, ok := r.registry.Get(fb.SourceType); ok {
				return Resolved{Adapter: a, LocalID: id}, true
			}
		}
	}
	if r.defaultSource == "" {
		return Resolved{}, false
	}
	a, ok := r.registry.Get(r.defaultSource)
	if !ok {
		return Resolved{}, false
	}
	return Resolved{Adapter: a, LocalID: id}, true
}
