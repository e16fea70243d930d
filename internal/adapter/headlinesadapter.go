package adapter

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"scrollfeed/internal/feeditem"
)

// HeadlineSelectors configures where on a headlines page each field
// lives: the one thing HeadlinesAdapter needs to know: how to turn a
// listing page into cards.
type HeadlineSelectors struct {
	ItemSelector  string
	TitleSelector string
	URLSelector   string
	URLPrefix     string
}

// HeadlinesAdapter is the built-in "headlines" pseudo-source: a
// library/scrapbook-tier scraper over a plain headlines listing page,
// with readability-based full-article enrichment on GetDetail.
//
// The tier is whatever the constructor is given; there is no default. A
// deployment that wants both tiers constructs a second instance under a
// different sourceType with tier set to feeditem.TierScrapbook.
type HeadlinesAdapter struct {
	sourceType string
	pageURL    string
	selectors  HeadlineSelectors
	tier       feeditem.Tier
	client     *http.Client
}

// NewHeadlinesAdapter constructs a HeadlinesAdapter. tier must be
// feeditem.TierLibrary or feeditem.TierScrapbook.
func NewHeadlinesAdapter(sourceType, pageURL string, selectors HeadlineSelectors, tier feeditem.Tier, client *http.Client) *HeadlinesAdapter {
	return &HeadlinesAdapter{
		sourceType: sourceType,
		pageURL:    pageURL,
		selectors:  selectors,
		tier:       tier,
		client:     safeHTTPClient(client),
	}
}

func (a *HeadlinesAdapter) SourceType() string { return a.sourceType }

func (a *HeadlinesAdapter) Prefixes() []Prefix { return nil }

func (a *HeadlinesAdapter) Fetch(ctx context.Context, query Query) (FetchResult, error) {
	doc, err := fetchDocument(ctx, a.client, a.pageURL, "ScrollfeedBot/1.0")
	if err != nil {
		return FetchResult{}, scrollfeedAdapterError(a.sourceType, err)
	}
	return FetchResult{Items: a.extract(doc)}, nil
}

func (a *HeadlinesAdapter) extract(doc *goquery.Document) []feeditem.FeedItem {
	var items []feeditem.FeedItem
	doc.Find(a.selectors.ItemSelector).Each(func(i int, itemEl *goquery.Selection) {
		title := strings.TrimSpace(itemEl.Find(a.selectors.TitleSelector).Text())
		if title == "" {
			return
		}

		href, exists := itemEl.Find(a.selectors.URLSelector).Attr("href")
		if !exists || strings.TrimSpace(href) == "" {
			return
		}
		link := makeAbsoluteURL(strings.TrimSpace(href), a.selectors.URLPrefix)

		localID := link
		items = append(items, feeditem.FeedItem{
			ID:        a.sourceType + ":" + localID,
			Source:    a.sourceType,
			Tier:      a.tier,
			Title:     title,
			Link:      &link,
			Timestamp: time.Now(),
			Priority:  -i,
			Meta: feeditem.Meta{
				"bridgeLink":  feeditem.String(link),
				"bridgeTitle": feeditem.String(title),
			},
		})
	})
	return items
}

func (a *HeadlinesAdapter) GetItem(ctx context.Context, localID string) (*feeditem.FeedItem, error) {
	result, err := a.Fetch(ctx, Query{})
	if err != nil {
		return nil, err
	}
	for i := range result.Items {
		if result.Items[i].ID == a.sourceType+":"+localID {
			return &result.Items[i], nil
		}
	}
	return nil, nil
}

// GetDetail fetches the linked article and extracts its readable body
// with go-readability. A missing meta.bridgeLink falls back to localID as
// the link; a link that fails URL validation or cannot be fetched is an
// error. When readability cannot extract a body, the list card's title
// is returned instead.
func (a *HeadlinesAdapter) GetDetail(ctx context.Context, localID string, meta feeditem.Meta) ([]feeditem.DetailSection, error) {
	link, ok := meta.StringAt("bridgeLink")
	if !ok || link == "" {
		link = localID
	}
	if err := validateFetchURL(link); err != nil {
		return nil, scrollfeedAdapterError(a.sourceType, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "ScrollfeedBot/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, scrollfeedAdapterError(a.sourceType, err)
	}
	defer resp.Body.Close()

	parsedURL, _ := url.Parse(link)
	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil || article.TextContent == "" {
		title, _ := meta.StringAt("bridgeTitle")
		return []feeditem.DetailSection{{Kind: feeditem.SectionBody, Text: title}}, nil
	}

	return []feeditem.DetailSection{{Kind: feeditem.SectionBody, Text: article.TextContent}}, nil
}

// makeAbsoluteURL converts a relative href to absolute using prefix.
func makeAbsoluteURL(href, prefix string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if prefix == "" {
		return href
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(href, "/")
}
