package adapter

import (
	"context"
	"time"

	"scrollfeed/internal/feeditem"
)

// JournalEntry is one personal record surfaced by JournalAdapter.
type JournalEntry struct {
	ID        string
	Title     string
	Body      string
	Timestamp time.Time
}

// JournalStore is the external collaborator holding a user's journal
// entries; persistence is an external concern this adapter never owns.
type JournalStore interface {
	ListEntries(ctx context.Context, user string, pageSize int, pageToken string) (entries []JournalEntry, nextPage string, hasMore bool, err error)
	GetEntry(ctx context.Context, user, id string) (*JournalEntry, error)
}

// JournalAdapter is a scrapbook-tier adapter surfacing a user's own past
// journal entries back into their feed as personal memories, with no
// external wire protocol and a plain value-type entry shape.
type JournalAdapter struct {
	sourceType string
	store      JournalStore
}

// NewJournalAdapter constructs a JournalAdapter over store.
func NewJournalAdapter(sourceType string, store JournalStore) *JournalAdapter {
	return &JournalAdapter{sourceType: sourceType, store: store}
}

func (a *JournalAdapter) SourceType() string { return a.sourceType }

func (a *JournalAdapter) Prefixes() []Prefix { return nil }

func (a *JournalAdapter) Fetch(ctx context.Context, query Query) (FetchResult, error) {
	user, _ := query.Params["user"].(string)
	entries, nextPage, hasMore, err := a.store.ListEntries(ctx, user, query.PageSize, query.PageToken)
	if err != nil {
		return FetchResult{}, scrollfeedAdapterError(a.sourceType, err)
	}

	items := make([]feeditem.FeedItem, 0, len(entries))
	for i, e := range entries {
		items = append(items, feeditem.FeedItem{
			ID:        a.sourceType + ":" + e.ID,
			Source:    a.sourceType,
			Tier:      feeditem.TierScrapbook,
			Title:     e.Title,
			Body:      e.Body,
			Timestamp: e.Timestamp,
			Priority:  -i,
			Meta:      feeditem.Meta{"body": feeditem.String(e.Body)},
		})
	}

	return FetchResult{Items: items, HasMore: hasMore, NextPage: nextPage}, nil
}

func (a *JournalAdapter) GetItem(ctx context.Context, localID string) (*feeditem.FeedItem, error) {
	entries, _, _, err := a.store.ListEntries(ctx, "", 0, "")
	if err != nil {
		return nil, scrollfeedAdapterError(a.sourceType, err)
	}
	for _, e := range entries {
		if e.ID == localID {
			item := feeditem.FeedItem{
				ID:        a.sourceType + ":" + e.ID,
				Source:    a.sourceType,
				Tier:      feeditem.TierScrapbook,
				Title:     e.Title,
				Body:      e.Body,
				Timestamp: e.Timestamp,
			}
			return &item, nil
		}
	}
	return nil, nil
}

func (a *JournalAdapter) GetDetail(ctx context.Context, localID string, meta feeditem.Meta) ([]feeditem.DetailSection, error) {
	if body, ok := meta.StringAt("body"); ok {
		return []feeditem.DetailSection{{Kind: feeditem.SectionBody, Text: body}}, nil
	}
	entry, err := a.store.GetEntry(ctx, "", localID)
	if err != nil {
		return nil, scrollfeedAdapterError(a.sourceType, err)
	}
	if entry == nil {
		return nil, nil
	}
	return []feeditem.DetailSection{
		{Kind: feeditem.SectionMetadata, Stats: []feeditem.StatLine{
			{Label: "logged", Value: entry.Timestamp.Format(time.RFC3339)},
		}},
		{Kind: feeditem.SectionBody, Text: entry.Body},
	}, nil
}
