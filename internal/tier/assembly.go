package tier

import (
	"scrollfeed/internal/feeditem"
	"scrollfeed/internal/scrollconfig"
)

// AssemblyService assembles one batch from an already seen-filtered
// pool. It holds no state; every call is a pure function of its
// arguments, which is what makes the "two runs with the same pool,
// config, and batch number produce the same sequence" invariant trivial
// to test.
type AssemblyService struct{}

// NewAssemblyService constructs an AssemblyService.
func NewAssemblyService() *AssemblyService { return &AssemblyService{} }

// Assemble computes the decayed per-tier allocation, selects eligible
// items per tier, and interleaves them deterministically in
// wire/library/scrapbook/compass round-robin order until the result
// reaches min(sum(allocation), effectiveLimit) items or every tier is
// exhausted.
func (s *AssemblyService) Assemble(pool []feeditem.FeedItem, cfg scrollconfig.ScrollConfig, batchNumber, effectiveLimit int) []feeditem.FeedItem {
	configured := Allocations{}
	for t, tc := range cfg.Tiers {
		configured[t] = tc.Allocation
	}

	effective := Effective(configured, batchNumber, cfg.WireDecayBatches)
	selected := SelectPerTier(pool, cfg.Tiers, effective)

	total := 0
	for _, t := range feeditem.Tiers {
		total += len(selected[t])
	}
	target := total
	if effectiveLimit < target {
		target = effectiveLimit
	}
	if target < 0 {
		target = 0
	}

	result := make([]feeditem.FeedItem, 0, target)
	cursor := map[feeditem.Tier]int{}
	for len(result) < target {
		progressed := false
		for _, t := range feeditem.Tiers {
			if len(result) >= target {
				break
			}
			idx := cursor[t]
			queue := selected[t]
			if idx >= len(queue) {
				continue
			}
			result = append(result, queue[idx])
			cursor[t] = idx + 1
			progressed = true
		}
		if !progressed {
			break
		}
	}

	return result
}
