package adapter

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"scrollfeed/internal/resilience/retry"
	"scrollfeed/internal/scrollerr"
)

// maxScrapeBodySize bounds how much HTML a library/scrapbook adapter
// will read for one page.
const maxScrapeBodySize = 10 * 1024 * 1024

// safeHTTPClient returns an http.Client whose redirect targets are
// re-validated for SSRF on every hop.
func safeHTTPClient(base *http.Client) *http.Client {
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}
	client := *base
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 5 {
			return fmt.Errorf("too many redirects: %d", len(via))
		}
		return validateFetchURL(req.URL.String())
	}
	return &client
}

// validateFetchURL blocks non-http(s) schemes and hostnames that
// resolve to a private, loopback, or link-local address.
func validateFetchURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme %q not allowed", u.Scheme)
	}
	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("empty hostname")
	}
	ips, err := net.LookupIP(hostname)
	if err != nil {
		return fmt.Errorf("dns lookup failed for %s: %w", hostname, err)
	}
	for _, ip := range ips {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() {
			return fmt.Errorf("hostname %q resolves to non-public address %s", hostname, ip)
		}
	}
	return nil
}

// fetchDocument fetches urlStr and parses it as HTML with goquery,
// enforcing the size cap and SSRF validation every scraping adapter
// needs. It retries transient network and 5xx failures with backoff; no
// circuit breaker here, since pool.Manager already wraps every adapter
// Fetch call in one and a per-adapter breaker would double-trip.
func fetchDocument(ctx context.Context, client *http.Client, urlStr, userAgent string) (*goquery.Document, error) {
	if err := validateFetchURL(urlStr); err != nil {
		return nil, err
	}

	var doc *goquery.Document
	err := retry.WithBackoff(ctx, retry.ScrapeConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &retry.HTTPError{StatusCode: resp.StatusCode, Message: urlStr}
		}

		limited := io.LimitReader(resp.Body, maxScrapeBodySize)
		doc, err = goquery.NewDocumentFromReader(limited)
		return err
	})
	return doc, err
}

// scrollfeedAdapterError wraps a scrape failure in the engine's fetch
// error taxonomy.
func scrollfeedAdapterError(sourceType string, err error) error {
	return scrollerr.Fetchf(sourceType, err)
}
