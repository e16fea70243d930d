package tier_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"scrollfeed/internal/feeditem"
	"scrollfeed/internal/scrollconfig"
	"scrollfeed/internal/tier"
)

func buildPool() []feeditem.FeedItem {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var pool []feeditem.FeedItem
	add := func(t feeditem.Tier, n int) {
		for i := 0; i < n; i++ {
			pool = append(pool, feeditem.FeedItem{
				ID:        string(t) + ":" + string(rune('a'+i)),
				Source:    string(t),
				Tier:      t,
				Priority:  1,
				Timestamp: base.Add(-time.Duration(i) * time.Minute),
			})
		}
	}
	add(feeditem.TierWire, 10)
	add(feeditem.TierLibrary, 10)
	add(feeditem.TierScrapbook, 10)
	add(feeditem.TierCompass, 10)
	return pool
}

func TestAssemble_InterleavesInCanonicalTierOrder(t *testing.T) {
	t.Parallel()

	svc := tier.NewAssemblyService()
	cfg := scrollconfig.Defaults()
	cfg.Tiers[feeditem.TierWire] = scrollconfig.TierConfig{Allocation: 2}
	cfg.Tiers[feeditem.TierLibrary] = scrollconfig.TierConfig{Allocation: 2}
	cfg.Tiers[feeditem.TierScrapbook] = scrollconfig.TierConfig{Allocation: 2}
	cfg.Tiers[feeditem.TierCompass] = scrollconfig.TierConfig{Allocation: 2}

	got := svc.Assemble(buildPool(), cfg, 1, 8)

	wantTierOrder := []feeditem.Tier{
		feeditem.TierWire, feeditem.TierLibrary, feeditem.TierScrapbook, feeditem.TierCompass,
		feeditem.TierWire, feeditem.TierLibrary, feeditem.TierScrapbook, feeditem.TierCompass,
	}
	if len(got) != len(wantTierOrder) {
		t.Fatalf("len(Assemble) = %d, want %d", len(got), len(wantTierOrder))
	}
	for i, item := range got {
		if item.Tier != wantTierOrder[i] {
			t.Errorf("position %d: tier = %q, want %q", i, item.Tier, wantTierOrder[i])
		}
	}
}

func TestAssemble_RespectsEffectiveLimit(t *testing.T) {
	t.Parallel()

	svc := tier.NewAssemblyService()
	cfg := scrollconfig.Defaults()

	got := svc.Assemble(buildPool(), cfg, 1, 3)
	if len(got) != 3 {
		t.Errorf("len(Assemble) with effectiveLimit=3 = %d, want 3", len(got))
	}
}

func TestAssemble_SkipsExhaustedTiersWithoutStalling(t *testing.T) {
	t.Parallel()

	svc := tier.NewAssemblyService()
	cfg := scrollconfig.Defaults()
	cfg.Tiers[feeditem.TierWire] = scrollconfig.TierConfig{Allocation: 1}
	cfg.Tiers[feeditem.TierLibrary] = scrollconfig.TierConfig{Allocation: 0}
	cfg.Tiers[feeditem.TierScrapbook] = scrollconfig.TierConfig{Allocation: 0}
	cfg.Tiers[feeditem.TierCompass] = scrollconfig.TierConfig{Allocation: 5}

	got := svc.Assemble(buildPool(), cfg, 1, 100)

	var wire, compass int
	for _, item := range got {
		switch item.Tier {
		case feeditem.TierWire:
			wire++
		case feeditem.TierCompass:
			compass++
		default:
			t.Errorf("unexpected tier %q in result with zero allocation", item.Tier)
		}
	}
	if wire != 1 || compass != 5 {
		t.Errorf("wire=%d compass=%d, want wire=1 compass=5", wire, compass)
	}
}

func TestAssemble_DeterministicGivenSameInputs(t *testing.T) {
	t.Parallel()

	svc := tier.NewAssemblyService()
	cfg := scrollconfig.Defaults()
	pool := buildPool()

	first := svc.Assemble(pool, cfg, 2, 6)
	second := svc.Assemble(pool, cfg, 2, 6)

	if diff := cmp.Diff(first, second, cmp.AllowUnexported(feeditem.MetaValue{})); diff != "" {
		t.Errorf("repeated Assemble calls diverged (-first +second):\n%s", diff)
	}
}

func TestAssemble_EmptyPoolReturnsEmptyResult(t *testing.T) {
	t.Parallel()

	svc := tier.NewAssemblyService()
	cfg := scrollconfig.Defaults()

	got := svc.Assemble(nil, cfg, 1, 20)
	if len(got) != 0 {
		t.Errorf("Assemble(nil pool) = %v, want empty", got)
	}
}
