package adapter_test

import (
	"context"
	"errors"
	"testing"

	"scrollfeed/internal/adapter"
	"scrollfeed/internal/feeditem"
)

type bundleChildAdapter struct {
	sourceType string
	items      []feeditem.FeedItem
	hasMore    bool
	fetchErr   error
}

func (a *bundleChildAdapter) SourceType() string         { return a.sourceType }
func (a *bundleChildAdapter) Prefixes() []adapter.Prefix { return nil }
func (a *bundleChildAdapter) Fetch(ctx context.Context, q adapter.Query) (adapter.FetchResult, error) {
	if a.fetchErr != nil {
		return adapter.FetchResult{}, a.fetchErr
	}
	return adapter.FetchResult{Items: a.items, HasMore: a.hasMore}, nil
}
func (a *bundleChildAdapter) GetItem(ctx context.Context, localID string) (*feeditem.FeedItem, error) {
	for i := range a.items {
		if a.items[i].ID == a.sourceType+":"+localID {
			return &a.items[i], nil
		}
	}
	return nil, nil
}
func (a *bundleChildAdapter) GetDetail(ctx context.Context, localID string, meta feeditem.Meta) ([]feeditem.DetailSection, error) {
	return []feeditem.DetailSection{{Kind: feeditem.SectionBody, Text: "from " + a.sourceType}}, nil
}

func childItem(sourceType, localID string, priority int) feeditem.FeedItem {
	return feeditem.FeedItem{ID: sourceType + ":" + localID, Source: sourceType, Priority: priority}
}

func TestBundleAdapter_FetchRetagsChildItemsUnderOwnIdentity(t *testing.T) {
	t.Parallel()

	reddit := &bundleChildAdapter{sourceType: "reddit", items: []feeditem.FeedItem{childItem("reddit", "a1", 1)}}
	hn := &bundleChildAdapter{sourceType: "hn", items: []feeditem.FeedItem{childItem("hn", "b1", 2)}}
	bundle := adapter.NewBundleAdapter("news-bundle", feeditem.TierWire, reddit, hn)

	result, err := bundle.Fetch(context.Background(), adapter.Query{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("len(result.Items) = %d, want 2", len(result.Items))
	}
	for _, item := range result.Items {
		if item.Source != "news-bundle" || item.Tier != feeditem.TierWire {
			t.Errorf("item = %+v, want source news-bundle tier wire", item)
		}
	}
}

func TestBundleAdapter_FetchSortsMergedItemsByPriorityDescending(t *testing.T) {
	t.Parallel()

	reddit := &bundleChildAdapter{sourceType: "reddit", items: []feeditem.FeedItem{childItem("reddit", "low", 1)}}
	hn := &bundleChildAdapter{sourceType: "hn", items: []feeditem.FeedItem{childItem("hn", "high", 5)}}
	bundle := adapter.NewBundleAdapter("news-bundle", feeditem.TierWire, reddit, hn)

	result, err := bundle.Fetch(context.Background(), adapter.Query{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if result.Items[0].Priority != 5 || result.Items[1].Priority != 1 {
		t.Errorf("priorities = [%d %d], want [5 1]", result.Items[0].Priority, result.Items[1].Priority)
	}
}

func TestBundleAdapter_FetchOneFailingChildDoesNotFailTheBundle(t *testing.T) {
	t.Parallel()

	ok := &bundleChildAdapter{sourceType: "hn", items: []feeditem.FeedItem{childItem("hn", "b1", 1)}}
	broken := &bundleChildAdapter{sourceType: "reddit", fetchErr: errors.New("down")}
	bundle := adapter.NewBundleAdapter("news-bundle", feeditem.TierWire, ok, broken)

	result, err := bundle.Fetch(context.Background(), adapter.Query{})
	if err != nil {
		t.Fatalf("Fetch() error = %v, want nil (one failing child degrades, not errors)", err)
	}
	if len(result.Items) != 1 {
		t.Errorf("len(result.Items) = %d, want 1 (only the healthy child)", len(result.Items))
	}
}

func TestBundleAdapter_FetchHasMoreIfAnyChildHasMore(t *testing.T) {
	t.Parallel()

	a := &bundleChildAdapter{sourceType: "hn", hasMore: false}
	b := &bundleChildAdapter{sourceType: "reddit", hasMore: true}
	bundle := adapter.NewBundleAdapter("news-bundle", feeditem.TierWire, a, b)

	result, err := bundle.Fetch(context.Background(), adapter.Query{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !result.HasMore {
		t.Error("HasMore = false, want true since one child has more")
	}
}

func TestBundleAdapter_GetItemDispatchesToOwningChild(t *testing.T) {
	t.Parallel()

	hn := &bundleChildAdapter{sourceType: "hn", items: []feeditem.FeedItem{childItem("hn", "b1", 1)}}
	bundle := adapter.NewBundleAdapter("news-bundle", feeditem.TierWire, hn)

	item, err := bundle.GetItem(context.Background(), "hn/b1")
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if item == nil || item.Source != "news-bundle" {
		t.Errorf("GetItem() = %+v, want a retagged item under news-bundle", item)
	}
}

func TestBundleAdapter_GetItemMalformedLocalIDReturnsNilNil(t *testing.T) {
	t.Parallel()

	bundle := adapter.NewBundleAdapter("news-bundle", feeditem.TierWire)
	item, err := bundle.GetItem(context.Background(), "no-slash")
	if err != nil || item != nil {
		t.Errorf("GetItem(no-slash) = (%+v, %v), want (nil, nil)", item, err)
	}
}

func TestBundleAdapter_GetDetailDispatchesToOwningChild(t *testing.T) {
	t.Parallel()

	hn := &bundleChildAdapter{sourceType: "hn"}
	bundle := adapter.NewBundleAdapter("news-bundle", feeditem.TierWire, hn)

	sections, err := bundle.GetDetail(context.Background(), "hn/b1", feeditem.Meta{})
	if err != nil {
		t.Fatalf("GetDetail() error = %v", err)
	}
	if len(sections) != 1 || sections[0].Text != "from hn" {
		t.Errorf("GetDetail() = %+v, want the hn child's section", sections)
	}
}
