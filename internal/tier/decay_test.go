package tier_test

import (
	"testing"

	"scrollfeed/internal/feeditem"
	"scrollfeed/internal/tier"
)

func TestDecayFactor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		batchNumber      int
		wireDecayBatches int
		want             float64
	}{
		{name: "first batch is full strength", batchNumber: 1, wireDecayBatches: 10, want: 1},
		{name: "halfway through decay window", batchNumber: 6, wireDecayBatches: 10, want: 0.5},
		{name: "last batch of window", batchNumber: 10, wireDecayBatches: 10, want: 0.1},
		{name: "past the window clamps to zero", batchNumber: 50, wireDecayBatches: 10, want: 0},
		{name: "zero decay window clamps to zero", batchNumber: 1, wireDecayBatches: 0, want: 0},
		{name: "negative decay window clamps to zero", batchNumber: 1, wireDecayBatches: -3, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tier.DecayFactor(tt.batchNumber, tt.wireDecayBatches)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("DecayFactor(%d, %d) = %v, want %v", tt.batchNumber, tt.wireDecayBatches, got, tt.want)
			}
		})
	}
}

func TestEffective_ConservesTotalAllocation(t *testing.T) {
	t.Parallel()

	configured := tier.Allocations{
		feeditem.TierWire:      4,
		feeditem.TierLibrary:   3,
		feeditem.TierScrapbook: 2,
		feeditem.TierCompass:   1,
	}

	for batch := 1; batch <= 12; batch++ {
		got := tier.Effective(configured, batch, 10)

		var total int
		for _, t := range feeditem.Tiers {
			total += got[t]
		}
		wantTotal := 4 + 3 + 2 + 1
		if total != wantTotal {
			t.Errorf("batch %d: total allocation = %d, want %d (got %+v)", batch, total, wantTotal, got)
		}
	}
}

func TestEffective_FirstBatchMatchesConfigured(t *testing.T) {
	t.Parallel()

	configured := tier.Allocations{
		feeditem.TierWire:      4,
		feeditem.TierLibrary:   3,
		feeditem.TierScrapbook: 2,
		feeditem.TierCompass:   1,
	}

	got := tier.Effective(configured, 1, 10)
	for tr, want := range configured {
		if got[tr] != want {
			t.Errorf("tier %q at batch 1 = %d, want %d (no decay yet)", tr, got[tr], want)
		}
	}
}

func TestEffective_FullyDecayedRedistributesAllWireSlots(t *testing.T) {
	t.Parallel()

	configured := tier.Allocations{
		feeditem.TierWire:      4,
		feeditem.TierLibrary:   3,
		feeditem.TierScrapbook: 2,
		feeditem.TierCompass:   1,
	}

	got := tier.Effective(configured, 999, 10)

	if got[feeditem.TierWire] != 0 {
		t.Errorf("wire allocation at full decay = %d, want 0", got[feeditem.TierWire])
	}

	var nonWireTotal int
	for _, t := range []feeditem.Tier{feeditem.TierLibrary, feeditem.TierScrapbook, feeditem.TierCompass} {
		nonWireTotal += got[t]
	}
	if nonWireTotal != 3+2+1+4 {
		t.Errorf("non-wire total after full redistribution = %d, want %d", nonWireTotal, 3+2+1+4)
	}
}

func TestEffective_NoNonWireAllocationLeavesFreedSlotsUnfilled(t *testing.T) {
	t.Parallel()

	configured := tier.Allocations{
		feeditem.TierWire:      4,
		feeditem.TierLibrary:   0,
		feeditem.TierScrapbook: 0,
		feeditem.TierCompass:   0,
	}

	got := tier.Effective(configured, 999, 10)

	var total int
	for _, t := range feeditem.Tiers {
		total += got[t]
	}
	if total != 0 {
		t.Errorf("total allocation with no non-wire tiers configured = %d, want 0 (freed slots stay unfilled)", total)
	}
}

func TestEffective_DeterministicAcrossRepeatedCalls(t *testing.T) {
	t.Parallel()

	configured := tier.Allocations{
		feeditem.TierWire:      5,
		feeditem.TierLibrary:   5,
		feeditem.TierScrapbook: 5,
		feeditem.TierCompass:   5,
	}

	first := tier.Effective(configured, 3, 10)
	for i := 0; i < 10; i++ {
		again := tier.Effective(configured, 3, 10)
		for _, tr := range feeditem.Tiers {
			if again[tr] != first[tr] {
				t.Fatalf("Effective is not deterministic: tier %q got %d then %d", tr, first[tr], again[tr])
			}
		}
	}
}
