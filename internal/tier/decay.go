// Package tier implements TierAssemblyService: wire decay,
// largest-remainder redistribution, per-tier selection, and deterministic
// interleaving.
package tier

import (
	"math"

	"scrollfeed/internal/feeditem"
)

// DecayFactor computes clamp(1 - (batchNumber-1)/wireDecayBatches, 0, 1).
// batchNumber is 1-indexed.
func DecayFactor(batchNumber, wireDecayBatches int) float64 {
	if wireDecayBatches <= 0 {
		return 0
	}
	f := 1 - float64(batchNumber-1)/float64(wireDecayBatches)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Allocations is the effective per-tier slot count for one batch, after
// wire decay and redistribution.
type Allocations map[feeditem.Tier]int

// Effective computes the effective per-tier allocation for a batch
// number, given the configured allocations: wireEff = floor(wire*decay),
// and freed = wire.allocation - wireEff slots redistributed to the three
// non-wire tiers proportionally to their configured allocations using
// largest-remainder rounding, so the total equals sum(configured)
// exactly whenever any non-wire tier has a nonzero allocation; when all
// three are zero the freed slots stay unallocated.
func Effective(configured Allocations, batchNumber, wireDecayBatches int) Allocations {
	decay := DecayFactor(batchNumber, wireDecayBatches)
	wireConfigured := configured[feeditem.TierWire]
	wireEff := int(math.Floor(float64(wireConfigured) * decay))
	freed := wireConfigured - wireEff

	nonWire := []feeditem.Tier{feeditem.TierLibrary, feeditem.TierScrapbook, feeditem.TierCompass}
	nonWireTotal := 0
	for _, t := range nonWire {
		nonWireTotal += configured[t]
	}

	out := Allocations{feeditem.TierWire: wireEff}
	if freed <= 0 || nonWireTotal == 0 {
		// Freed slots (if any) remain unfilled; wire keeps them per the
		// "if all non-wire allocations are zero" rule. A non-positive
		// freed (decay==1) needs no redistribution either.
		for _, t := range nonWire {
			out[t] = configured[t]
		}
		return out
	}

	distributeLargestRemainder(out, nonWire, configured, freed, nonWireTotal)
	return out
}

// distributeLargestRemainder adds `freed` slots across nonWire tiers
// proportionally to their share of nonWireTotal, using largest-remainder
// rounding: each tier first gets floor(share), then the tiers with the
// largest fractional remainders receive the leftover units one at a time.
func distributeLargestRemainder(out Allocations, nonWire []feeditem.Tier, configured Allocations, freed, nonWireTotal int) {
	type share struct {
		tier      feeditem.Tier
		base      int
		remainder float64
	}

	shares := make([]share, len(nonWire))
	assigned := 0
	for i, t := range nonWire {
		exact := float64(freed) * float64(configured[t]) / float64(nonWireTotal)
		base := int(math.Floor(exact))
		shares[i] = share{tier: t, base: base, remainder: exact - float64(base)}
		assigned += base
	}

	leftover := freed - assigned
	// Stable selection of the largest remainders; ties broken by the
	// fixed tier order (library, scrapbook, compass) for determinism.
	for leftover > 0 {
		bestIdx := -1
		for i := range shares {
			if bestIdx == -1 || shares[i].remainder > shares[bestIdx].remainder {
				bestIdx = i
			}
		}
		shares[bestIdx].base++
		shares[bestIdx].remainder = -1 // consumed, never picked again
		leftover--
	}

	for _, t := range nonWire {
		for _, s := range shares {
			if s.tier == t {
				out[t] = configured[t] + s.base
			}
		}
	}
}
