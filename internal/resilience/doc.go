// Package resilience groups the fault-tolerance building blocks the
// engine puts between itself and flaky upstreams: circuit breakers
// around adapter fetches and LLM prompt calls, and retry with
// exponential backoff for calls worth a second attempt inside one
// request.
//
//	cb := circuitbreaker.New(circuitbreaker.SourceFetchConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return adapter.Fetch(ctx, query)
//	})
//
//	err := retry.WithBackoff(ctx, retry.ScrapeConfig(), func() error {
//	    return fetchListing()
//	})
package resilience
