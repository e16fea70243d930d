package pool

import (
	"time"

	"golang.org/x/time/rate"
)

// Refill politeness: sessions for different users all page the same
// upstreams, and nothing else stops twenty cold-starting users from
// ganging up on one origin in the same second. Each source gets one
// process-wide limiter; a refill tick that cannot take a token simply
// skips that source until a later tick, without degrading it.
const (
	sourceRefillInterval = 200 * time.Millisecond
	sourceRefillBurst    = 5
)

func newSourceLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(sourceRefillInterval), sourceRefillBurst)
}
