package pool

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"scrollfeed/internal/adapter"
	"scrollfeed/internal/feeditem"
	"scrollfeed/internal/resilience/circuitbreaker"
	"scrollfeed/internal/scrollconfig"
)

// errNoAdapter indicates a poolSource named an adapter that is not
// registered; this is a config/wiring defect, not a runtime fetch
// failure, but it degrades the source the same way.
var errNoAdapter = errors.New("pool: no adapter registered for source type")

// errRateLimited means a refill tick found no token for the source;
// the source is skipped this tick, not degraded.
var errRateLimited = errors.New("pool: source refill rate limited")

// refillMultiplier is the small multiple of batchSize used as the pool
// refill threshold.
const refillMultiplier = 4

// defaultFetchTimeout bounds how long a single adapter call may block
// before the session degrades that source rather than stalling the batch.
const defaultFetchTimeout = 5 * time.Second

// defaultIdleTTL is how long a session may sit untouched before the
// warmer's sweep considers it idle and evicts it.
const defaultIdleTTL = time.Hour

// Manager is FeedPoolManager: the fair paging cache. It owns every
// Session exclusively; callers never touch Session fields directly.
type Manager struct {
	registry *adapter.Registry
	logger   *slog.Logger

	mu       sync.Mutex // guards the sessions, breakers, and limiters maps themselves
	sessions map[string]*Session
	breakers map[string]*circuitbreaker.CircuitBreaker
	limiters map[string]*rate.Limiter

	idleTTL      time.Duration
	fetchTimeout time.Duration
}

// NewManager constructs a Manager over registry. A nil logger falls back
// to slog.Default().
func NewManager(registry *adapter.Registry, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry:     registry,
		logger:       logger,
		sessions:     make(map[string]*Session),
		breakers:     make(map[string]*circuitbreaker.CircuitBreaker),
		limiters:     make(map[string]*rate.Limiter),
		idleTTL:      defaultIdleTTL,
		fetchTimeout: defaultFetchTimeout,
	}
}

// sessionFor returns the session for user, creating one lazily if absent.
func (m *Manager) sessionFor(user string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[user]
	if !ok {
		s = newSession()
		m.sessions[user] = s
	}
	return s
}

func (m *Manager) breakerFor(sourceType string) *circuitbreaker.CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.breakers[sourceType]
	if !ok {
		b = newSourceBreaker(sourceType)
		m.breakers[sourceType] = b
	}
	return b
}

func (m *Manager) limiterFor(sourceType string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.limiters[sourceType]
	if !ok {
		l = newSourceLimiter()
		m.limiters[sourceType] = l
	}
	return l
}

// Reset clears the session for user: triggered by an explicit reset
// request, nocache=1, or cursor absence.
func (m *Manager) Reset(user string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[user] = newSession()
}

// MarkSeen extends the seen set for user. Idempotent and
// monotone-growing.
func (m *Manager) MarkSeen(user string, ids []string) {
	s := m.sessionFor(user)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.seenIDs[id] = struct{}{}
	}
}

// GetBatchNumber returns the 1-indexed batch count for user.
func (m *Manager) GetBatchNumber(user string) int {
	s := m.sessionFor(user)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchCount == 0 {
		return 1
	}
	return s.batchCount
}

// AdvanceBatch increments the batch counter, called exactly once per
// non-filtered assembly that returns items.
func (m *Manager) AdvanceBatch(user string) {
	s := m.sessionFor(user)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchCount == 0 {
		s.batchCount = 1
	}
	s.batchCount++
}

// HasMore reports whether any enabled source still has unpaged items for
// user. Once every source reports hasMore=false and the pool is empty,
// this becomes permanently false for the session.
func (m *Manager) HasMore(user string) bool {
	s := m.sessionFor(user)
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.hasMoreLocked(s)
}

func (m *Manager) hasMoreLocked(s *Session) bool {
	for _, st := range s.sourceState {
		if st.hasMore {
			return true
		}
	}
	for _, items := range s.poolBySource {
		if len(items) > 0 {
			return true
		}
	}
	// No source state recorded yet (first call): optimistically true so
	// the caller attempts a refill.
	return len(s.sourceState) == 0
}

// MarkConsumed fans MarkConsumed out to adapters that opt in via
// adapter.ConsumedMarker; all others are no-ops.
func (m *Manager) MarkConsumed(ctx context.Context, user string, ids []string) {
	bySource := groupBySource(ids)
	for sourceType, localIDs := range bySource {
		a, ok := m.registry.Get(sourceType)
		if !ok {
			continue
		}
		marker, ok := a.(adapter.ConsumedMarker)
		if !ok {
			continue
		}
		if err := marker.MarkConsumed(ctx, user, localIDs); err != nil {
			m.logger.Warn("mark consumed failed",
				slog.String("source", sourceType), slog.String("user", user), slog.Any("error", err))
		}
	}
}

func groupBySource(ids []string) map[string][]string {
	out := make(map[string][]string)
	for _, id := range ids {
		src, local, ok := splitCompoundID(id)
		if !ok {
			continue
		}
		out[src] = append(out[src], local)
	}
	return out
}

func splitCompoundID(id string) (source, localID string, ok bool) {
	for i := 0; i < len(id); i++ {
		if id[i] == ':' {
			return id[:i], id[i+1:], true
		}
	}
	return "", "", false
}

// GetPool returns the current candidate pool for user, refilling from
// enabled sources if below the refill threshold, then excludes
// already-seen ids. Fetches are parallel
// across sources and serialized per user by the session's own mutex.
func (m *Manager) GetPool(ctx context.Context, user string, cfg scrollconfig.ScrollConfig) []feeditem.FeedItem {
	s := m.sessionFor(user)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	threshold := refillMultiplier * cfg.BatchSize
	if m.poolSizeLocked(s) < threshold {
		m.refillLocked(ctx, s, user, cfg)
	}

	return m.seenFilteredLocked(s)
}

func (m *Manager) poolSizeLocked(s *Session) int {
	n := 0
	for _, items := range s.poolBySource {
		n += len(items)
	}
	return n
}

func (m *Manager) seenFilteredLocked(s *Session) []feeditem.FeedItem {
	var out []feeditem.FeedItem
	for _, items := range s.poolBySource {
		for _, item := range items {
			if _, seen := s.seenIDs[item.ID]; !seen {
				out = append(out, item)
			}
		}
	}
	return out
}

// refillLocked requests at most one page per enabled, non-exhausted,
// non-degraded source, fetched in parallel, then merges the results into
// the pool and stamps named-query meta: fair paging across sources,
// with per-source stamping of query provenance.
func (m *Manager) refillLocked(ctx context.Context, s *Session, user string, cfg scrollconfig.ScrollConfig) {
	sources := m.poolSourcesLocked(s, cfg)
	if len(sources) == 0 {
		return
	}

	outcomes := make([]outcomeResult, len(sources))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, ps := range sources {
		i, ps := i, ps
		eg.Go(func() error {
			outcomes[i] = m.fetchOneSource(egCtx, user, ps, s, cfg)
			return nil
		})
	}
	_ = eg.Wait() // fetchOneSource never returns an error to the group; failures are recorded per-outcome

	for _, o := range outcomes {
		m.applyOutcomeLocked(s, o.source, o.result, o.err)
	}
}

// poolSource is one fetchable origin for a refill tick: either a plain
// registered adapter (queryName == "") or a named, parameterized
// invocation of one. Each gets its own
// paging identity (key) so a high-volume named query cannot monopolize
// its underlying adapter's page budget any more than a plain source can
// monopolize the pool.
type poolSource struct {
	key        string // session bookkeeping key: sourceType, or the query name
	sourceType string // adapter.SourceType() to dispatch to
	queryName  string // "" unless this is a named query
	params     map[string]any
}

// poolSourcesLocked enumerates every fetchable origin: one per registered
// adapter (respecting cfg.Sources[type].Enabled), plus one per configured
// named query, excluding any already marked degraded or exhausted for
// this session.
func (m *Manager) poolSourcesLocked(s *Session, cfg scrollconfig.ScrollConfig) []poolSource {
	var out []poolSource
	for _, a := range m.registry.All() {
		sourceType := a.SourceType()
		if sc, configured := cfg.Sources[sourceType]; configured && !sc.Enabled {
			continue
		}
		ps := poolSource{key: sourceType, sourceType: sourceType}
		if sc, ok := cfg.Sources[sourceType]; ok {
			ps.params = sc.Params
		}
		if m.fetchableLocked(s, ps.key) {
			out = append(out, ps)
		}
	}
	for queryName, qc := range cfg.QueryConfigs {
		ps := poolSource{key: queryName, sourceType: qc.SourceType, queryName: queryName, params: qc.Params}
		if m.fetchableLocked(s, ps.key) {
			out = append(out, ps)
		}
	}
	return out
}

// fetchableLocked reports whether key (a source type or query name) is
// still worth paging this tick: not degraded, and not already known
// exhausted.
func (m *Manager) fetchableLocked(s *Session, key string) bool {
	st, ok := s.sourceState[key]
	if !ok {
		return true // never paged; always worth a first attempt
	}
	return !st.degraded && st.hasMore
}

type outcomeResult struct {
	source poolSource
	result adapter.FetchResult
	err    error
}

func (m *Manager) fetchOneSource(ctx context.Context, user string, ps poolSource, s *Session, cfg scrollconfig.ScrollConfig) outcomeResult {
	a, ok := m.registry.Get(ps.sourceType)
	if !ok {
		return outcomeResult{source: ps, err: errNoAdapter}
	}

	if !m.limiterFor(ps.sourceType).Allow() {
		return outcomeResult{source: ps, err: errRateLimited}
	}

	pageToken := ""
	if st, exists := s.sourceState[ps.key]; exists {
		pageToken = st.pageToken
	}

	pageSize := cfg.BatchSize
	if pageSize <= 0 {
		pageSize = refillMultiplier
	}
	query := adapter.Query{PageSize: pageSize, PageToken: pageToken, Params: ps.params}

	fetchCtx, cancel := context.WithTimeout(ctx, m.fetchTimeout)
	defer cancel()

	breaker := m.breakerFor(ps.sourceType)
	raw, err := breaker.Execute(func() (interface{}, error) {
		return a.Fetch(fetchCtx, query)
	})
	if err != nil {
		m.logger.Warn("adapter fetch failed",
			slog.String("source", ps.sourceType), slog.String("pool_key", ps.key),
			slog.String("user", user), slog.Any("error", err))
		return outcomeResult{source: ps, err: err}
	}
	return outcomeResult{source: ps, result: raw.(adapter.FetchResult)}
}

func (m *Manager) applyOutcomeLocked(s *Session, ps poolSource, result adapter.FetchResult, err error) {
	if errors.Is(err, errRateLimited) {
		// No fetch happened; leave the source's paging state exactly as
		// it was so a later tick retries it.
		return
	}

	st, exists := s.sourceState[ps.key]
	if !exists {
		st = &sourceState{hasMore: true}
		s.sourceState[ps.key] = st
	}

	if err != nil {
		// A timed-out or failing fetch contributes zero items for this
		// tick but is not retried until Reset; mark degraded for the
		// session so later ticks skip this source until a manual reset.
		st.degraded = true
		return
	}

	st.pageToken = result.NextPage
	st.hasMore = result.HasMore

	existing := s.poolBySource[ps.key]
	for _, item := range result.Items {
		if ps.queryName != "" {
			if _, already := item.Meta.StringAt("queryName"); !already {
				item.Meta = item.Meta.With("queryName", feeditem.String(ps.queryName))
			}
		}
		existing = append(existing, item)
	}
	s.poolBySource[ps.key] = dedupeByID(existing)
}

// dedupeByID drops a duplicate id's second occurrence: if an adapter
// returns a duplicate id across pages, the second occurrence is
// filtered before reaching the caller.
func dedupeByID(items []feeditem.FeedItem) []feeditem.FeedItem {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}

// EvictIdle removes sessions that have been idle past the configured
// idle TTL. Callers invoke this periodically (e.g. from the warmer's
// cron tick); it is never required for correctness, only for bounding
// memory.
func (m *Manager) EvictIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for user, s := range m.sessions {
		s.mu.Lock()
		idle := s.idle(m.idleTTL)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, user)
		}
	}
}
