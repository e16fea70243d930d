package adapter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"scrollfeed/internal/feeditem"
	"scrollfeed/internal/scrollerr"
)

// WireAdapter fetches an RSS/Atom feed with gofeed, generalized into
// one of many SourceAdapters instead of the system's only content
// source.
//
// Pagination is synthetic: gofeed has no continuation token, so Fetch
// slices the parsed item list by an offset encoded in PageToken.
type WireAdapter struct {
	sourceType string
	feedURL    string
	parser     *gofeed.Parser
}

// NewWireAdapter constructs a WireAdapter over feedURL using client for
// the underlying HTTP fetch. sourceType is this instance's unique
// registry key (e.g. "hn", "techcrunch"), distinct from
// feeditem.TierWire, the tier every item it emits is stamped with.
// Registry.Register panics on a duplicate SourceType, so every
// WireAdapter instance in a registry needs its own sourceType.
func NewWireAdapter(sourceType, feedURL string, client *http.Client) *WireAdapter {
	fp := gofeed.NewParser()
	fp.UserAgent = "ScrollfeedBot/1.0"
	if client != nil {
		fp.Client = client
	}
	return &WireAdapter{sourceType: sourceType, feedURL: feedURL, parser: fp}
}

func (a *WireAdapter) SourceType() string { return a.sourceType }

func (a *WireAdapter) Prefixes() []Prefix { return nil }

func (a *WireAdapter) Fetch(ctx context.Context, query Query) (FetchResult, error) {
	feed, err := a.parser.ParseURLWithContext(a.feedURL, ctx)
	if err != nil {
		return FetchResult{}, scrollerr.Fetchf(a.SourceType(), err)
	}

	offset := decodeOffset(query.PageToken)
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = len(feed.Items)
	}

	end := offset + pageSize
	if end > len(feed.Items) {
		end = len(feed.Items)
	}
	if offset > len(feed.Items) {
		offset = len(feed.Items)
	}

	page := feed.Items[offset:end]
	items := make([]feeditem.FeedItem, 0, len(page))
	for i, it := range page {
		items = append(items, a.toFeedItem(it, offset+i))
	}

	return FetchResult{
		Items:    items,
		HasMore:  end < len(feed.Items),
		NextPage: encodeOffset(end),
	}, nil
}

func (a *WireAdapter) toFeedItem(it *gofeed.Item, priority int) feeditem.FeedItem {
	published := time.Now()
	if it.PublishedParsed != nil {
		published = *it.PublishedParsed
	}

	body := it.Content
	if body == "" {
		body = it.Description
	}

	var image *string
	if it.Image != nil && it.Image.URL != "" {
		image = &it.Image.URL
	}

	link := it.Link
	return feeditem.FeedItem{
		ID:        a.SourceType() + ":" + it.GUID,
		Source:    a.SourceType(),
		Tier:      feeditem.TierWire,
		Title:     it.Title,
		Body:      body,
		Image:     image,
		Link:      &link,
		Timestamp: published,
		Priority:  -priority,
		Meta:      feeditem.Meta{"bridgeLink": feeditem.String(link)},
	}
}

func (a *WireAdapter) GetItem(ctx context.Context, localID string) (*feeditem.FeedItem, error) {
	feed, err := a.parser.ParseURLWithContext(a.feedURL, ctx)
	if err != nil {
		return nil, scrollerr.Fetchf(a.SourceType(), err)
	}
	for i, it := range feed.Items {
		if it.GUID == localID {
			item := a.toFeedItem(it, i)
			return &item, nil
		}
	}
	return nil, nil
}

func (a *WireAdapter) GetDetail(ctx context.Context, localID string, meta feeditem.Meta) ([]feeditem.DetailSection, error) {
	item, err := a.GetItem(ctx, localID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	return []feeditem.DetailSection{
		{Kind: feeditem.SectionBody, Text: item.Body},
	}, nil
}

func decodeOffset(token string) int {
	if token == "" {
		return 0
	}
	var n int
	if _, err := fmt.Sscanf(token, "%d", &n); err != nil || n < 0 {
		return 0
	}
	return n
}

func encodeOffset(n int) string {
	return fmt.Sprintf("%d", n)
}
