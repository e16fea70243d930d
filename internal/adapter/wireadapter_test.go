package adapter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"scrollfeed/internal/adapter"
	"scrollfeed/internal/feeditem"
)

const testRSSFeed = `<?xml version="1.0"?>
<rss version="2.0">
<channel>
<title>Test Feed</title>
<item>
<title>First Post</title>
<guid>guid-1</guid>
<link>https://example.com/1</link>
<description>first body</description>
<pubDate>Mon, 02 Jan 2023 15:00:00 GMT</pubDate>
</item>
<item>
<title>Second Post</title>
<guid>guid-2</guid>
<link>https://example.com/2</link>
<description>second body</description>
<pubDate>Tue, 03 Jan 2023 15:00:00 GMT</pubDate>
</item>
</channel>
</rss>`

func newTestWireServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testRSSFeed))
	}))
}

func TestWireAdapter_FetchParsesFeedItemsAsWireTier(t *testing.T) {
	t.Parallel()

	srv := newTestWireServer(t)
	defer srv.Close()

	a := adapter.NewWireAdapter("hn", srv.URL, srv.Client())
	result, err := a.Fetch(context.Background(), adapter.Query{PageSize: 10})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("len(result.Items) = %d, want 2", len(result.Items))
	}
	if result.Items[0].ID != "hn:guid-1" || result.Items[0].Tier != feeditem.TierWire {
		t.Errorf("Items[0] = %+v, want id hn:guid-1 tier wire", result.Items[0])
	}
}

func TestWireAdapter_FetchPaginatesByOffset(t *testing.T) {
	t.Parallel()

	srv := newTestWireServer(t)
	defer srv.Close()

	a := adapter.NewWireAdapter("hn", srv.URL, srv.Client())
	first, err := a.Fetch(context.Background(), adapter.Query{PageSize: 1})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(first.Items) != 1 || !first.HasMore {
		t.Fatalf("first page = %d items, hasMore=%v; want 1 item, hasMore=true", len(first.Items), first.HasMore)
	}

	second, err := a.Fetch(context.Background(), adapter.Query{PageSize: 1, PageToken: first.NextPage})
	if err != nil {
		t.Fatalf("Fetch() second page error = %v", err)
	}
	if len(second.Items) != 1 || second.HasMore {
		t.Fatalf("second page = %d items, hasMore=%v; want 1 item, hasMore=false", len(second.Items), second.HasMore)
	}
	if second.Items[0].ID != "hn:guid-2" {
		t.Errorf("second.Items[0].ID = %q, want hn:guid-2", second.Items[0].ID)
	}
}

func TestWireAdapter_FetchParserErrorPropagates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := adapter.NewWireAdapter("hn", srv.URL, srv.Client())
	_, err := a.Fetch(context.Background(), adapter.Query{})
	if err == nil {
		t.Error("Fetch() against a 404 feed URL = nil error, want an error")
	}
}

func TestWireAdapter_GetItemFindsByGUID(t *testing.T) {
	t.Parallel()

	srv := newTestWireServer(t)
	defer srv.Close()

	a := adapter.NewWireAdapter("hn", srv.URL, srv.Client())
	item, err := a.GetItem(context.Background(), "guid-2")
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if item == nil || item.Title != "Second Post" {
		t.Errorf("GetItem(\"guid-2\") = %+v, want title %q", item, "Second Post")
	}
}

func TestWireAdapter_GetItemMissingGUIDReturnsNilNil(t *testing.T) {
	t.Parallel()

	srv := newTestWireServer(t)
	defer srv.Close()

	a := adapter.NewWireAdapter("hn", srv.URL, srv.Client())
	item, err := a.GetItem(context.Background(), "nonexistent")
	if err != nil || item != nil {
		t.Errorf("GetItem(nonexistent) = (%+v, %v), want (nil, nil)", item, err)
	}
}

func TestWireAdapter_GetDetailReturnsBody(t *testing.T) {
	t.Parallel()

	srv := newTestWireServer(t)
	defer srv.Close()

	a := adapter.NewWireAdapter("hn", srv.URL, srv.Client())
	sections, err := a.GetDetail(context.Background(), "guid-1", feeditem.Meta{})
	if err != nil {
		t.Fatalf("GetDetail() error = %v", err)
	}
	if len(sections) != 1 || sections[0].Text != "first body" {
		t.Errorf("GetDetail() = %+v, want one body section with %q", sections, "first body")
	}
}
