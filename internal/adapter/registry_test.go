package adapter_test

import (
	"context"
	"testing"

	"scrollfeed/internal/adapter"
	"scrollfeed/internal/feeditem"
)

type regTestAdapter struct {
	sourceType string
	prefixes   []adapter.Prefix
}

func (a *regTestAdapter) SourceType() string         { return a.sourceType }
func (a *regTestAdapter) Prefixes() []adapter.Prefix { return a.prefixes }
func (a *regTestAdapter) Fetch(ctx context.Context, q adapter.Query) (adapter.FetchResult, error) {
	return adapter.FetchResult{}, nil
}
func (a *regTestAdapter) GetItem(ctx context.Context, localID string) (*feeditem.FeedItem, error) {
	return nil, nil
}
func (a *regTestAdapter) GetDetail(ctx context.Context, localID string, meta feeditem.Meta) ([]feeditem.DetailSection, error) {
	return nil, nil
}

func TestRegister_DuplicateSourceTypePanics(t *testing.T) {
	t.Parallel()

	reg := adapter.NewRegistry()
	reg.Register(&regTestAdapter{sourceType: "reddit"})

	defer func() {
		if recover() == nil {
			t.Error("Register with a duplicate source type did not panic")
		}
	}()
	reg.Register(&regTestAdapter{sourceType: "reddit"})
}

func TestByPrefix_SourceTypeIsAlwaysAnImplicitPrefix(t *testing.T) {
	t.Parallel()

	reg := adapter.NewRegistry()
	reg.Register(&regTestAdapter{sourceType: "journal"})

	a, localID, ok := reg.ByPrefix("journal", "42")
	if !ok {
		t.Fatal("ByPrefix(sourceType) = false, want true")
	}
	if a.SourceType() != "journal" || localID != "42" {
		t.Errorf("ByPrefix = {%s %s}, want {journal 42}", a.SourceType(), localID)
	}
}

func TestByPrefix_DeclaredPrefixAppliesTransform(t *testing.T) {
	t.Parallel()

	reg := adapter.NewRegistry()
	reg.Register(&regTestAdapter{
		sourceType: "scripture",
		prefixes: []adapter.Prefix{
			{Prefix: "hymn", IDTransform: func(tail string) string { return "song/hymn/" + tail }},
		},
	})

	_, localID, ok := reg.ByPrefix("hymn", "42")
	if !ok {
		t.Fatal("ByPrefix(\"hymn\") = false, want true")
	}
	if localID != "song/hymn/42" {
		t.Errorf("localID = %q, want %q", localID, "song/hymn/42")
	}
}

func TestByPrefix_UnknownPrefixFails(t *testing.T) {
	t.Parallel()

	reg := adapter.NewRegistry()
	_, _, ok := reg.ByPrefix("nonexistent", "1")
	if ok {
		t.Error("ByPrefix with an unregistered prefix succeeded, want false")
	}
}

func TestSourceTypes_ReturnsSortedList(t *testing.T) {
	t.Parallel()

	reg := adapter.NewRegistry()
	reg.Register(&regTestAdapter{sourceType: "reddit"})
	reg.Register(&regTestAdapter{sourceType: "hn"})
	reg.Register(&regTestAdapter{sourceType: "journal"})

	got := reg.SourceTypes()
	want := []string{"hn", "journal", "reddit"}
	if len(got) != len(want) {
		t.Fatalf("SourceTypes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SourceTypes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAll_ReturnsEverySourceTypeSortedOrder(t *testing.T) {
	t.Parallel()

	reg := adapter.NewRegistry()
	reg.Register(&regTestAdapter{sourceType: "zeta"})
	reg.Register(&regTestAdapter{sourceType: "alpha"})

	all := reg.All()
	if len(all) != 2 {
		t.Fatalf("len(All()) = %d, want 2", len(all))
	}
	if all[0].SourceType() != "alpha" || all[1].SourceType() != "zeta" {
		t.Errorf("All() = [%s %s], want [alpha zeta]", all[0].SourceType(), all[1].SourceType())
	}
}

func TestGet_UnknownSourceTypeFails(t *testing.T) {
	t.Parallel()

	reg := adapter.NewRegistry()
	_, ok := reg.Get("nonexistent")
	if ok {
		t.Error("Get with an unregistered source type succeeded, want false")
	}
}
