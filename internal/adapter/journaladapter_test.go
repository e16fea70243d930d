package adapter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"scrollfeed/internal/adapter"
	"scrollfeed/internal/feeditem"
)

type fakeJournalStore struct {
	entries []adapter.JournalEntry
	listErr error
	getErr  error
}

func (s *fakeJournalStore) ListEntries(ctx context.Context, user string, pageSize int, pageToken string) ([]adapter.JournalEntry, string, bool, error) {
	if s.listErr != nil {
		return nil, "", false, s.listErr
	}
	return s.entries, "", false, nil
}

func (s *fakeJournalStore) GetEntry(ctx context.Context, user, id string) (*adapter.JournalEntry, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	for _, e := range s.entries {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

func TestJournalAdapter_FetchMapsEntriesToScrapbookItems(t *testing.T) {
	t.Parallel()

	store := &fakeJournalStore{entries: []adapter.JournalEntry{
		{ID: "1", Title: "first", Body: "one", Timestamp: time.Now()},
		{ID: "2", Title: "second", Body: "two", Timestamp: time.Now()},
	}}
	a := adapter.NewJournalAdapter("journal", store)

	result, err := a.Fetch(context.Background(), adapter.Query{PageSize: 10})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("len(result.Items) = %d, want 2", len(result.Items))
	}
	if result.Items[0].ID != "journal:1" || result.Items[0].Tier != feeditem.TierScrapbook {
		t.Errorf("Items[0] = %+v, want id journal:1 tier scrapbook", result.Items[0])
	}
}

func TestJournalAdapter_FetchPropagatesStoreError(t *testing.T) {
	t.Parallel()

	store := &fakeJournalStore{listErr: errors.New("store down")}
	a := adapter.NewJournalAdapter("journal", store)

	_, err := a.Fetch(context.Background(), adapter.Query{})
	if err == nil {
		t.Error("Fetch() with a failing store = nil error, want an error")
	}
}

func TestJournalAdapter_GetItemFindsByLocalID(t *testing.T) {
	t.Parallel()

	store := &fakeJournalStore{entries: []adapter.JournalEntry{
		{ID: "1", Title: "first", Timestamp: time.Now()},
	}}
	a := adapter.NewJournalAdapter("journal", store)

	item, err := a.GetItem(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if item == nil || item.Title != "first" {
		t.Errorf("GetItem(\"1\") = %+v, want title %q", item, "first")
	}
}

func TestJournalAdapter_GetItemMissingReturnsNilNil(t *testing.T) {
	t.Parallel()

	a := adapter.NewJournalAdapter("journal", &fakeJournalStore{})
	item, err := a.GetItem(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if item != nil {
		t.Errorf("GetItem(nonexistent) = %+v, want nil", item)
	}
}

func TestJournalAdapter_GetDetailPrefersMetaBodyOverStoreLookup(t *testing.T) {
	t.Parallel()

	store := &fakeJournalStore{getErr: errors.New("should not be called")}
	a := adapter.NewJournalAdapter("journal", store)

	meta := feeditem.Meta{}.With("body", feeditem.String("cached body"))
	sections, err := a.GetDetail(context.Background(), "1", meta)
	if err != nil {
		t.Fatalf("GetDetail() error = %v", err)
	}
	if len(sections) != 1 || sections[0].Text != "cached body" {
		t.Errorf("GetDetail() = %+v, want one body section with cached text", sections)
	}
}

func TestJournalAdapter_GetDetailFallsBackToStoreWhenMetaEmpty(t *testing.T) {
	t.Parallel()

	store := &fakeJournalStore{entries: []adapter.JournalEntry{
		{ID: "1", Body: "from store", Timestamp: time.Now()},
	}}
	a := adapter.NewJournalAdapter("journal", store)

	sections, err := a.GetDetail(context.Background(), "1", feeditem.Meta{})
	if err != nil {
		t.Fatalf("GetDetail() error = %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("len(sections) = %d, want 2 (metadata + body)", len(sections))
	}
}
