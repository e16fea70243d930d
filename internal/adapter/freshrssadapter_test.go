package adapter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"scrollfeed/internal/adapter"
	"scrollfeed/internal/feeditem"
)

func TestFreshRSSAdapter_FetchMapsStreamItemsToWireTier(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "GoogleLogin auth=tok123" {
			t.Errorf("Authorization header = %q, want GoogleLogin auth=tok123", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [
				{"id": "item1", "title": "Headline", "published": 1700000000,
				 "summary": {"content": "body text"},
				 "canonical": [{"href": "https://example.com/a"}],
				 "origin": {"title": "Example Feed"}}
			],
			"continuation": "next-page-token"
		}`))
	}))
	defer srv.Close()

	a := adapter.NewFreshRSSAdapter(srv.URL, "tok123", srv.Client())
	result, err := a.Fetch(context.Background(), adapter.Query{PageSize: 10})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("len(result.Items) = %d, want 1", len(result.Items))
	}
	item := result.Items[0]
	if item.ID != "freshrss:item1" || item.Tier != feeditem.TierWire {
		t.Errorf("item = %+v, want id freshrss:item1 tier wire", item)
	}
	if !result.HasMore || result.NextPage != "next-page-token" {
		t.Errorf("HasMore/NextPage = %v/%q, want true/next-page-token", result.HasMore, result.NextPage)
	}
}

func TestFreshRSSAdapter_FetchOnNonOKStatusReturnsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := adapter.NewFreshRSSAdapter(srv.URL, "tok", srv.Client())
	_, err := a.Fetch(context.Background(), adapter.Query{})
	if err == nil {
		t.Error("Fetch() with a 500 response = nil error, want an error")
	}
}

func TestFreshRSSAdapter_MarkConsumedPostsReadTagPerID(t *testing.T) {
	t.Parallel()

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Query().Get("a") != "user/-/state/com.google/read" {
			t.Errorf("edit-tag query = %q, want the read-state tag", r.URL.RawQuery)
		}
	}))
	defer srv.Close()

	a := adapter.NewFreshRSSAdapter(srv.URL, "tok", srv.Client())
	err := a.MarkConsumed(context.Background(), "alice", []string{"item1", "item2"})
	if err != nil {
		t.Fatalf("MarkConsumed() error = %v", err)
	}
	if hits != 2 {
		t.Errorf("hits = %d, want 2 (one POST per localID)", hits)
	}
}

func TestFreshRSSAdapter_GetItemAlwaysReturnsNilNil(t *testing.T) {
	t.Parallel()

	a := adapter.NewFreshRSSAdapter("http://unused.invalid", "tok", nil)
	item, err := a.GetItem(context.Background(), "anything")
	if err != nil || item != nil {
		t.Errorf("GetItem() = (%+v, %v), want (nil, nil)", item, err)
	}
}

func TestFreshRSSAdapter_GetDetailReturnsBodyFromMeta(t *testing.T) {
	t.Parallel()

	a := adapter.NewFreshRSSAdapter("http://unused.invalid", "tok", nil)
	meta := feeditem.Meta{}.With("body", feeditem.String("the article body"))
	sections, err := a.GetDetail(context.Background(), "item1", meta)
	if err != nil {
		t.Fatalf("GetDetail() error = %v", err)
	}
	if len(sections) != 1 || sections[0].Text != "the article body" {
		t.Errorf("GetDetail() = %+v, want one body section", sections)
	}
}
