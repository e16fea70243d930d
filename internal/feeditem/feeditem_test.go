package feeditem_test

import (
	"testing"

	"scrollfeed/internal/feeditem"
)

func TestTier_ValidAcceptsOnlyTheFourCanonicalTiers(t *testing.T) {
	t.Parallel()

	for _, tier := range feeditem.Tiers {
		if !tier.Valid() {
			t.Errorf("%q.Valid() = false, want true", tier)
		}
	}
	if feeditem.Tier("nonsense").Valid() {
		t.Error("Tier(\"nonsense\").Valid() = true, want false")
	}
}

func TestTiers_ListsAllFourInInterleaveOrder(t *testing.T) {
	t.Parallel()

	want := []feeditem.Tier{feeditem.TierWire, feeditem.TierLibrary, feeditem.TierScrapbook, feeditem.TierCompass}
	if len(feeditem.Tiers) != len(want) {
		t.Fatalf("len(Tiers) = %d, want %d", len(feeditem.Tiers), len(want))
	}
	for i, tier := range want {
		if feeditem.Tiers[i] != tier {
			t.Errorf("Tiers[%d] = %q, want %q", i, feeditem.Tiers[i], tier)
		}
	}
}
