package adapter

import (
	"context"
	"sort"

	"scrollfeed/internal/feeditem"
)

// BundleAdapter aggregates several child adapters behind one registry
// entry. It demonstrates the "own source id vs child source id"
// per-adapter choice an aggregator can make: BundleAdapter re-tags
// every child item under its own SourceType rather than the child's,
// so a filter like `source:news-bundle` matches everything the bundle
// surfaces regardless of which child produced it. An aggregator that
// wanted per-child filterability instead would leave Source/ID alone
// and only use Prefixes to claim the children's id space, not the
// choice made here.
type BundleAdapter struct {
	sourceType string
	children   []SourceAdapter
	tier       feeditem.Tier
}

// NewBundleAdapter constructs a BundleAdapter over children, re-tagged
// under sourceType and tier.
func NewBundleAdapter(sourceType string, tier feeditem.Tier, children ...SourceAdapter) *BundleAdapter {
	return &BundleAdapter{sourceType: sourceType, children: children, tier: tier}
}

func (a *BundleAdapter) SourceType() string { return a.sourceType }

// Prefixes is empty: BundleAdapter re-tags every item under its own
// SourceType at Fetch time, so it never needs to claim a child's
// compound-id prefix for ContentIdResolver.
func (a *BundleAdapter) Prefixes() []Prefix { return nil }

func (a *BundleAdapter) Fetch(ctx context.Context, query Query) (FetchResult, error) {
	var merged []feeditem.FeedItem
	hasMore := false

	for _, child := range a.children {
		result, err := child.Fetch(ctx, query)
		if err != nil {
			// One failing child degrades the bundle's breadth, not the
			// whole fetch; pool.Manager's own circuit breaker tracks
			// BundleAdapter itself, not its children individually.
			continue
		}
		for _, item := range result.Items {
			merged = append(merged, a.retag(item, child.SourceType()))
		}
		hasMore = hasMore || result.HasMore
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Priority > merged[j].Priority })

	return FetchResult{Items: merged, HasMore: hasMore}, nil
}

// retag rewrites item's ID/Source to the bundle's own identity,
// preserving the child's source type in meta.bundleChildSource so
// detail/bridge code can still recover which child produced it.
func (a *BundleAdapter) retag(item feeditem.FeedItem, childSourceType string) feeditem.FeedItem {
	childLocalID := item.ID[len(childSourceType)+1:]
	item.ID = a.sourceType + ":" + childSourceType + "/" + childLocalID
	item.Source = a.sourceType
	item.Tier = a.tier
	item.Meta = item.Meta.With("bundleChildSource", feeditem.String(childSourceType))
	return item
}

func (a *BundleAdapter) GetItem(ctx context.Context, localID string) (*feeditem.FeedItem, error) {
	childSourceType, childLocalID, ok := splitBundleLocalID(localID)
	if !ok {
		return nil, nil
	}
	child := a.childByType(childSourceType)
	if child == nil {
		return nil, nil
	}
	item, err := child.GetItem(ctx, childLocalID)
	if err != nil || item == nil {
		return item, err
	}
	retagged := a.retag(*item, childSourceType)
	return &retagged, nil
}

func (a *BundleAdapter) GetDetail(ctx context.Context, localID string, meta feeditem.Meta) ([]feeditem.DetailSection, error) {
	childSourceType, childLocalID, ok := splitBundleLocalID(localID)
	if !ok {
		return nil, nil
	}
	child := a.childByType(childSourceType)
	if child == nil {
		return nil, nil
	}
	return child.GetDetail(ctx, childLocalID, meta)
}

func (a *BundleAdapter) childByType(sourceType string) SourceAdapter {
	for _, c := range a.children {
		if c.SourceType() == sourceType {
			return c
		}
	}
	return nil
}

func splitBundleLocalID(localID string) (childSourceType, childLocalID string, ok bool) {
	for i := 0; i < len(localID); i++ {
		if localID[i] == '/' {
			return localID[:i], localID[i+1:], true
		}
	}
	return "", "", false
}
