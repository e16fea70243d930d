package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"scrollfeed/internal/feeditem"
)

// RedditAdapter is a library-tier adapter over Reddit's public JSON
// listing API, scoped to one subreddit per instance. It stamps
// meta.subreddit on every item so FeedFilterResolver's subsource match
// (e.g. "reddit:ProgrammerHumor") can
// operate without Reddit-specific knowledge in the resolver.
type RedditAdapter struct {
	sourceType string
	subreddit  string
	listing    string // "hot", "top", "new"; defaults to "hot"
	client     *http.Client
}

// NewRedditAdapter constructs a RedditAdapter for one subreddit.
func NewRedditAdapter(sourceType, subreddit, listing string, client *http.Client) *RedditAdapter {
	if listing == "" {
		listing = "hot"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &RedditAdapter{sourceType: sourceType, subreddit: subreddit, listing: listing, client: client}
}

func (a *RedditAdapter) SourceType() string { return a.sourceType }

func (a *RedditAdapter) Prefixes() []Prefix { return nil }

type redditListingResponse struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data struct {
				ID          string  `json:"id"`
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				Author      string  `json:"author"`
				Subreddit   string  `json:"subreddit"`
				Permalink   string  `json:"permalink"`
				URL         string  `json:"url"`
				Thumbnail   string  `json:"thumbnail"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				CreatedUTC  float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (a *RedditAdapter) Fetch(ctx context.Context, query Query) (FetchResult, error) {
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	endpoint := fmt.Sprintf("https://www.reddit.com/r/%s/%s.json", a.subreddit, a.listing)
	params := url.Values{}
	params.Set("limit", strconv.Itoa(pageSize))
	if query.PageToken != "" {
		params.Set("after", query.PageToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return FetchResult{}, scrollfeedAdapterError(a.sourceType, err)
	}
	req.Header.Set("User-Agent", "ScrollfeedBot/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return FetchResult{}, scrollfeedAdapterError(a.sourceType, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return FetchResult{}, scrollfeedAdapterError(a.sourceType, fmt.Errorf("reddit: HTTP %d", resp.StatusCode))
	}

	var listing redditListingResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return FetchResult{}, scrollfeedAdapterError(a.sourceType, err)
	}

	items := make([]feeditem.FeedItem, 0, len(listing.Data.Children))
	for i, child := range listing.Data.Children {
		d := child.Data
		link := "https://www.reddit.com" + d.Permalink
		items = append(items, feeditem.FeedItem{
			ID:        a.sourceType + ":" + d.ID,
			Source:    a.sourceType,
			Tier:      feeditem.TierLibrary,
			Title:     d.Title,
			Body:      d.Selftext,
			Link:      &link,
			Timestamp: time.Unix(int64(d.CreatedUTC), 0),
			Priority:  d.Score - i,
			Meta: feeditem.Meta{
				// The detail view reads the post body back out of the
				// echoed meta; list items are not held server-side.
				"body":         feeditem.String(d.Selftext),
				"subreddit":    feeditem.String(d.Subreddit),
				"author":       feeditem.String(d.Author),
				"score":        feeditem.Int(int64(d.Score)),
				"numComments":  feeditem.Int(int64(d.NumComments)),
				"externalLink": feeditem.String(d.URL),
				"bridgeLink":   feeditem.String(link),
				"bridgeTitle":  feeditem.String(d.Title),
				"sourceLabel":  feeditem.String("r/" + d.Subreddit),
			},
		})
	}

	return FetchResult{
		Items:    items,
		HasMore:  listing.Data.After != "",
		NextPage: listing.Data.After,
	}, nil
}

func (a *RedditAdapter) GetItem(ctx context.Context, localID string) (*feeditem.FeedItem, error) {
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

type redditCommentsResponse []struct {
	Data struct {
		Children []struct {
			Data struct {
				Author string `json:"author"`
				Body   string `json:"body"`
				Score  int    `json:"score"`
				Depth  int    `json:"depth"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// GetDetail fetches the post's top-level comment tree in addition to
// its self-text body.
func (a *RedditAdapter) GetDetail(ctx context.Context, localID string, meta feeditem.Meta) ([]feeditem.DetailSection, error) {
	body, _ := meta.StringAt("body")
	sections := []feeditem.DetailSection{{Kind: feeditem.SectionBody, Text: body}}

	endpoint := fmt.Sprintf("https://www.reddit.com/comments/%s.json", localID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return sections, nil
	}
	req.Header.Set("User-Agent", "ScrollfeedBot/1.0")

	resp, err := a.client.Do(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		if resp != nil {
			resp.Body.Close()
		}
		return sections, nil
	}
	defer resp.Body.Close()

	var payload redditCommentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || len(payload) < 2 {
		return sections, nil
	}

	var comments []feeditem.Comment
	for _, child := range payload[1].Data.Children {
		d := child.Data
		if d.Body == "" {
			continue
		}
		comments = append(comments, feeditem.Comment{Author: d.Author, Body: d.Body, Score: d.Score, Depth: d.Depth})
	}
	if len(comments) > 0 {
		sections = append(sections, feeditem.DetailSection{Kind: feeditem.SectionComments, Comments: comments})
	}

	return sections, nil
}
