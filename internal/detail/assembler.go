// Package detail implements DetailAssembler: resolving a
// compound id to its owning adapter, dispatching GetDetail, and
// enriching external items with bridge stats.
package detail

import (
	"context"
	"strconv"
	"time"

	"scrollfeed/internal/bridge"
	"scrollfeed/internal/feeditem"
	"scrollfeed/internal/resolver"
	"scrollfeed/internal/scrollerr"
)

// Assembler is DetailAssembler.
type Assembler struct {
	ids    *resolver.ContentIdResolver
	bridge *bridge.Service
}

// NewAssembler constructs an Assembler. bridge may be nil, in which
// case bridge enrichment is skipped entirely; useful for adapters with
// no externally-bridgeable content (e.g. purely personal sources).
func NewAssembler(ids *resolver.ContentIdResolver, bridgeSvc *bridge.Service) *Assembler {
	return &Assembler{ids: ids, bridge: bridgeSvc}
}

// GetDetail resolves the item id, dispatches to its adapter, and
// optionally enriches the result with bridge stats. meta is the
// requesting FeedItem's Meta, passed
// through unmodified to the adapter.
func (a *Assembler) GetDetail(ctx context.Context, itemID string, meta feeditem.Meta) ([]feeditem.DetailSection, error) {
	resolved, ok := a.ids.Resolve(itemID)
	if !ok {
		return nil, scrollerr.InvalidIDf(itemID)
	}

	sections, err := resolved.Adapter.GetDetail(ctx, resolved.LocalID, meta)
	if err != nil {
		return nil, err
	}
	if sections == nil {
		return nil, scrollerr.NotFoundf(itemID)
	}

	if a.bridge == nil {
		return sections, nil
	}

	ext, ok := bridge.ExternalItemFromMeta(resolved.Adapter.SourceType(), resolved.LocalID, meta)
	if !ok {
		return sections, nil
	}

	stats, err := a.bridge.GetBridgeStats(ctx, ext)
	if err != nil {
		// Bridge enrichment is best-effort: a query failure never turns
		// a successful detail fetch into an error. Bridge errors only
		// surface on the write path (Comment), not here on reads.
		return sections, nil
	}

	return append(sections, bridgeStatsSection(stats)), nil
}

func bridgeStatsSection(stats bridge.Stats) feeditem.DetailSection {
	rows := []feeditem.StatLine{
		{Label: "bridge.exists", Value: boolString(stats.Exists)},
	}
	if stats.Exists {
		rows = append(rows,
			feeditem.StatLine{Label: "bridge.anchorId", Value: stats.AnchorID},
			feeditem.StatLine{Label: "bridge.commentCount", Value: strconv.Itoa(stats.CommentCount)},
		)
		if !stats.LastActivityTs.IsZero() {
			rows = append(rows, feeditem.StatLine{Label: "bridge.lastActivity", Value: stats.LastActivityTs.Format(time.RFC3339)})
		}
	}
	return feeditem.DetailSection{Kind: feeditem.SectionStats, Stats: rows}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
