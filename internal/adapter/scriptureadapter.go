package adapter

import (
	"context"
	"fmt"
	"time"

	"scrollfeed/internal/feeditem"
)

// ScriptureVerse is one entry in a static scripture corpus.
type ScriptureVerse struct {
	Reference string
	Text      string
}

// ScriptureAdapter is a compass-tier adapter over a static, in-process
// scripture corpus, parameterized by book: a named query with
// sourceType="scripture" and Params{"book": "bom"} selects one. No
// external wire protocol exists for
// this content, the same plain value-type handling
// needs no library.
type ScriptureAdapter struct {
	sourceType string
	corpus     map[string][]ScriptureVerse // book -> verses, in reading order
}

// NewScriptureAdapter constructs a ScriptureAdapter over corpus, keyed
// by book name as referenced from QueryConfig.Params["book"].
func NewScriptureAdapter(sourceType string, corpus map[string][]ScriptureVerse) *ScriptureAdapter {
	return &ScriptureAdapter{sourceType: sourceType, corpus: corpus}
}

func (a *ScriptureAdapter) SourceType() string { return a.sourceType }

func (a *ScriptureAdapter) Prefixes() []Prefix { return nil }

func (a *ScriptureAdapter) Fetch(ctx context.Context, query Query) (FetchResult, error) {
	book, _ := query.Params["book"].(string)
	verses, ok := a.corpus[book]
	if !ok || len(verses) == 0 {
		return FetchResult{}, nil
	}

	offset := decodeOffset(query.PageToken)
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = len(verses)
	}
	end := offset + pageSize
	if end > len(verses) {
		end = len(verses)
	}
	if offset > len(verses) {
		offset = len(verses)
	}

	items := make([]feeditem.FeedItem, 0, end-offset)
	for i, v := range verses[offset:end] {
		localID := fmt.Sprintf("%s-%d", book, offset+i)
		items = append(items, feeditem.FeedItem{
			ID:        a.sourceType + ":" + localID,
			Source:    a.sourceType,
			Tier:      feeditem.TierCompass,
			Title:     v.Reference,
			Body:      v.Text,
			Timestamp: time.Now(),
			Priority:  -(offset + i),
			Meta:      feeditem.Meta{"book": feeditem.String(book)},
		})
	}

	return FetchResult{
		Items:    items,
		HasMore:  end < len(verses),
		NextPage: encodeOffset(end),
	}, nil
}

func (a *ScriptureAdapter) GetItem(ctx context.Context, localID string) (*feeditem.FeedItem, error) {
	for book, verses := range a.corpus {
		for i, v := range verses {
			if fmt.Sprintf("%s-%d", book, i) == localID {
				item := feeditem.FeedItem{
					ID:        a.sourceType + ":" + localID,
					Source:    a.sourceType,
					Tier:      feeditem.TierCompass,
					Title:     v.Reference,
					Body:      v.Text,
					Timestamp: time.Now(),
					Meta:      feeditem.Meta{"book": feeditem.String(book)},
				}
				return &item, nil
			}
		}
	}
	return nil, nil
}

func (a *ScriptureAdapter) GetDetail(ctx context.Context, localID string, meta feeditem.Meta) ([]feeditem.DetailSection, error) {
	item, err := a.GetItem(ctx, localID)
	if err != nil || item == nil {
		return nil, err
	}
	return []feeditem.DetailSection{{Kind: feeditem.SectionBody, Text: item.Body}}, nil
}
