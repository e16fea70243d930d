package pool

import (
	"scrollfeed/internal/resilience/circuitbreaker"
)

// newSourceBreaker returns a circuit breaker tuned for adapter fetch
// calls: tolerant of occasional upstream hiccups, tripping after a
// sustained failure run rather than a single timeout.
func newSourceBreaker(sourceType string) *circuitbreaker.CircuitBreaker {
	cfg := circuitbreaker.SourceFetchConfig()
	cfg.Name = "source-fetch:" + sourceType
	return circuitbreaker.New(cfg)
}
