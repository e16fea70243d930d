// Package feed implements FeedAssemblyService: the single
// public entry point that resolves a filter expression or else runs the
// tier assembly pipeline, and stamps the response with a continuation
// cursor.
package feed

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"scrollfeed/internal/adapter"
	"scrollfeed/internal/feeditem"
	"scrollfeed/internal/pool"
	"scrollfeed/internal/resolver"
	"scrollfeed/internal/scrollconfig"
	"scrollfeed/internal/tier"
)

// maxBatch is the hard ceiling on effectiveLimit regardless of what a
// caller requests: well above the default batchSize of 10 so a
// filtered view can ask for a larger single page, while still bounding
// one call's assembly and marshaling cost.
const maxBatch = 50

// filterPageSizeMultiplier gives filtered requests a potentially higher
// per-source page size: a filtered request reads a fresh, wider pool so
// a narrow predicate still has enough candidates to fill effectiveLimit.
const filterPageSizeMultiplier = 3

// cursorStart is the sentinel value that resets a session exactly like
// an absent cursor.
const cursorStart = "start"

// Options carries the optional per-request parameters of GetNextBatch.
type Options struct {
	Cursor  string
	Limit   int
	Focus   string
	Sources []string
	NoCache bool
	Filter  string
}

// Batch is the response shape of GetNextBatch.
type Batch struct {
	Items   []feeditem.FeedItem
	HasMore bool
	Colors  scrollconfig.ColorPalette
	Cursor  string

	// Filtered reports which path assembled the batch: true for the
	// filter path, false for tier assembly.
	Filtered bool
}

// Service is FeedAssemblyService.
type Service struct {
	configs     *scrollconfig.Loader
	pool        *pool.Manager
	sourceTypes []string // fixed at startup: every registered adapter + built-in pseudo-sources
	assembly    *tier.AssemblyService
	logger      *slog.Logger
}

// NewService constructs a Service over its collaborators. registry's
// source types, plus the built-in pseudo-sources freshrss, headlines and
// entropy, form the fixed set of source types FeedFilterResolver accepts;
// queryNames and aliases are per-user (part of ScrollConfig) and so are
// not baked in here; GetNextBatch builds a fresh FeedFilterResolver
// per request from the loaded config. A nil logger falls back to
// slog.Default().
func NewService(configs *scrollconfig.Loader, poolMgr *pool.Manager, registry *adapter.Registry, assembly *tier.AssemblyService, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	sourceTypes := registry.SourceTypes()
	for _, builtin := range []string{"freshrss", "headlines", "entropy"} {
		known := false
		for _, st := range sourceTypes {
			if st == builtin {
				known = true
				break
			}
		}
		if !known {
			sourceTypes = append(sourceTypes, builtin)
		}
	}
	return &Service{configs: configs, pool: poolMgr, sourceTypes: sourceTypes, assembly: assembly, logger: logger}
}

// GetNextBatch orchestrates a batch: load config, resolve
// the filter (if any), and dispatch to the filtered or tier path.
func (s *Service) GetNextBatch(ctx context.Context, user string, opts Options) (Batch, error) {
	cfg, err := s.configs.Load(ctx, user)
	if err != nil {
		return Batch{}, err
	}

	effectiveLimit := cfg.BatchSize
	if opts.Limit != 0 {
		effectiveLimit = opts.Limit
	}
	if effectiveLimit > maxBatch {
		effectiveLimit = maxBatch
	}
	if effectiveLimit < 0 {
		effectiveLimit = 0
	}

	if opts.NoCache || isStartCursor(opts.Cursor) {
		s.pool.Reset(user)
	}

	if strings.TrimSpace(opts.Filter) != "" {
		filters := resolver.NewFeedFilterResolver(s.sourceTypes, queryNamesOf(cfg), cfg.Aliases)
		if result, ok := filters.Resolve(opts.Filter); ok {
			return s.filteredBatch(ctx, user, cfg, result, effectiveLimit), nil
		}
		// An invalid filter expression is logged, filter ignored, and
		// falls through to the tier path below.
		s.logger.Warn("invalid filter expression, falling back to tier path",
			slog.String("user", user), slog.String("filter", opts.Filter))
	}

	return s.tierBatch(ctx, user, cfg, effectiveLimit), nil
}

func isStartCursor(cursor string) bool {
	return cursor == "" || cursor == cursorStart
}

// filteredBatch builds a filtered batch: a fresh, wider pool, a
// predicate match, descending-timestamp order, then a hard slice to
// effectiveLimit. Bypasses TierAssemblyService entirely.
func (s *Service) filteredBatch(ctx context.Context, user string, cfg scrollconfig.ScrollConfig, result resolver.FilterResult, effectiveLimit int) Batch {
	fetchCfg := cfg
	fetchCfg.BatchSize = cfg.BatchSize * filterPageSizeMultiplier
	if fetchCfg.BatchSize <= 0 {
		fetchCfg.BatchSize = effectiveLimit * filterPageSizeMultiplier
	}

	pooled := s.pool.GetPool(ctx, user, fetchCfg)
	matched := matchFilter(pooled, result)

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if effectiveLimit < len(matched) {
		matched = matched[:effectiveLimit]
	}

	s.pool.MarkSeen(user, idsOf(matched))

	return Batch{
		Items:    matched,
		HasMore:  s.pool.HasMore(user),
		Colors:   scrollconfig.ExtractColors(cfg),
		Cursor:   newCursor(),
		Filtered: true,
	}
}

// tierBatch builds a batch via the normal tier-assembled path.
func (s *Service) tierBatch(ctx context.Context, user string, cfg scrollconfig.ScrollConfig, effectiveLimit int) Batch {
	pooled := s.pool.GetPool(ctx, user, cfg)
	batchNumber := s.pool.GetBatchNumber(user)

	items := s.assembly.Assemble(pooled, cfg, batchNumber, effectiveLimit)
	ids := idsOf(items)

	s.pool.MarkSeen(user, ids)
	s.pool.MarkConsumed(ctx, user, ids)
	if len(items) > 0 {
		s.pool.AdvanceBatch(user)
	}

	return Batch{
		Items:   items,
		HasMore: s.pool.HasMore(user),
		Colors:  scrollconfig.ExtractColors(cfg),
		Cursor:  newCursor(),
	}
}

func queryNamesOf(cfg scrollconfig.ScrollConfig) []string {
	out := make([]string, 0, len(cfg.QueryConfigs))
	for name := range cfg.QueryConfigs {
		out = append(out, name)
	}
	return out
}

func idsOf(items []feeditem.FeedItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

// newCursor mints an opaque session-continuation token. Its only
// contract is that passing it back as opts.Cursor continues the same
// session; callers must not parse it.
func newCursor() string {
	return uuid.NewString()
}

func matchFilter(items []feeditem.FeedItem, result resolver.FilterResult) []feeditem.FeedItem {
	out := make([]feeditem.FeedItem, 0, len(items))
	for _, item := range items {
		if matchesOne(item, result) {
			out = append(out, item)
		}
	}
	return out
}

func matchesOne(item feeditem.FeedItem, result resolver.FilterResult) bool {
	switch result.Kind {
	case resolver.FilterTier:
		return item.Tier == result.Tier
	case resolver.FilterSource:
		if item.Source != result.SourceType {
			return false
		}
		if len(result.Subsources) == 0 {
			return true
		}
		return matchesSubsource(item, result.Subsources)
	case resolver.FilterQuery:
		name, ok := item.Meta.StringAt("queryName")
		return ok && name == result.QueryName
	default:
		return false
	}
}

// matchesSubsource reads meta.subreddit / meta.sourceName for a source
// with subsources, case-insensitively.
func matchesSubsource(item feeditem.FeedItem, subsources []string) bool {
	var candidates []string
	if v, ok := item.Meta.StringAt("subreddit"); ok {
		candidates = append(candidates, v)
	}
	if v, ok := item.Meta.StringAt("sourceName"); ok {
		candidates = append(candidates, v)
	}
	for _, c := range candidates {
		for _, sub := range subsources {
			if strings.EqualFold(c, sub) {
				return true
			}
		}
	}
	return false
}
