package tier

import (
	"sort"

	"scrollfeed/internal/feeditem"
	"scrollfeed/internal/scrollconfig"
)

// eligible filters pool to items whose tier matches t and whose source is
// enabled for t, then sorts by (priority desc, timestamp desc, id asc).
func eligible(pool []feeditem.FeedItem, t feeditem.Tier, tc scrollconfig.TierConfig) []feeditem.FeedItem {
	out := make([]feeditem.FeedItem, 0, len(pool))
	for _, item := range pool {
		if item.Tier != t {
			continue
		}
		if len(tc.EnabledSources) > 0 && !tc.EnabledSources[item.Source] {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.ID < b.ID
	})
	return out
}

// Selected holds, per tier, the ordered queue of eligible items the
// interleaver will draw from.
type Selected map[feeditem.Tier][]feeditem.FeedItem

// SelectPerTier builds the eligible, sorted, allocation-truncated queue
// for each of the four tiers.
func SelectPerTier(pool []feeditem.FeedItem, tiers map[feeditem.Tier]scrollconfig.TierConfig, effective Allocations) Selected {
	out := make(Selected, len(feeditem.Tiers))
	for _, t := range feeditem.Tiers {
		alloc := effective[t]
		if alloc <= 0 {
			out[t] = nil
			continue
		}
		items := eligible(pool, t, tiers[t])
		if len(items) > alloc {
			items = items[:alloc]
		}
		out[t] = items
	}
	return out
}
