package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nbd-wtf/go-nostr"

	"scrollfeed/internal/feeditem"
	"scrollfeed/internal/scrollerr"
)

// Visibility enumerates the comment visibility options. Only
// VisibilityPublic is implemented by the Nostr protocol today (a plain
// kind:1 note); the others are accepted and logged but degrade to
// public, since connections/circle visibility requires a NIP-04/NIP-44
// encrypted-DM style anchor this repository does not yet build (open
// question, decided in favor of the simpler anchor model for now).
type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilityConnections Visibility = "connections"
	VisibilityCircle      Visibility = "circle"
)

// ParseVisibility maps a request-supplied visibility string onto a
// Visibility. Empty means public; qualified values like
// "circle:family" are kept whole, the qualifier naming the circle.
func ParseVisibility(s string) Visibility {
	if s == "" {
		return VisibilityPublic
	}
	return Visibility(s)
}

const defaultStatsTTL = 5 * time.Minute

// anchorKind is the Nostr event kind used for both anchors and
// comments: a plain kind:1 text note.
const anchorKind = nostr.KindTextNote

const bridgedTopicTag = "bridged"

// ExternalItem identifies the external item a bridge anchor or comment
// targets, carrying just enough of the FeedItem to format an anchor.
type ExternalItem struct {
	SourceType  string
	SourceLabel string // display name; falls back to SourceType if empty
	LocalID     string
	Title       string
	Snippet     string
	Link        string
	TopicHint   string // optional, source-specific
}

// Anchor is the public record discovered or created for one external
// item.
type Anchor struct {
	ID         string
	SourceType string
	LocalID    string
}

// Stats is the cached summary returned by GetBridgeStats.
type Stats struct {
	Exists         bool
	AnchorID       string
	CommentCount   int
	LastActivityTs time.Time
}

// Service is ContentBridgeService.
type Service struct {
	protocol SocialProtocol
	cache    *statsCache
	lazy     bool
	logger   *slog.Logger

	mu      sync.Mutex
	anchors map[string]string // cacheKey -> known anchor id, memoized to skip a relay round trip on repeat views
}

// NewService constructs a Service over protocol. lazyCreate defers
// anchor creation until the user's first comment, the default chosen
// for this repository, to avoid polluting relays with anchors for items
// nobody ever comments on. A nil logger falls back to slog.Default().
func NewService(protocol SocialProtocol, lazyCreate bool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		protocol: protocol,
		cache:    newStatsCache(defaultStatsTTL),
		lazy:     lazyCreate,
		logger:   logger,
		anchors:  make(map[string]string),
	}
}

func cacheKey(sourceType, localID string) string { return sourceType + ":" + localID }

// ExternalItemFromMeta builds an ExternalItem from a FeedItem's Meta by
// convention: an adapter that wants its content bridgeable populates
// meta.bridgeLink (and optionally bridgeTitle/bridgeSnippet/bridgeTopic/
// sourceLabel); an adapter that omits bridgeLink opts out of bridging
// entirely. Shared by internal/detail and internal/respond so both read
// the same convention.
func ExternalItemFromMeta(sourceType, localID string, meta feeditem.Meta) (ExternalItem, bool) {
	link, ok := meta.StringAt("bridgeLink")
	if !ok || link == "" {
		return ExternalItem{}, false
	}
	title, _ := meta.StringAt("bridgeTitle")
	snippet, _ := meta.StringAt("bridgeSnippet")
	topic, _ := meta.StringAt("bridgeTopic")
	label, _ := meta.StringAt("sourceLabel")

	return ExternalItem{
		SourceType:  sourceType,
		SourceLabel: label,
		LocalID:     localID,
		Title:       title,
		Snippet:     snippet,
		Link:        link,
		TopicHint:   topic,
	}, true
}

// GetOrCreateBridge looks up an existing anchor by
// its (ext, source, localId) tag; creates one if missing and creation is
// not deferred to the first comment. The second return value is false
// only in lazy mode when no anchor exists yet.
func (s *Service) GetOrCreateBridge(ctx context.Context, ext ExternalItem) (Anchor, bool, error) {
	key := cacheKey(ext.SourceType, ext.LocalID)

	s.mu.Lock()
	if id, ok := s.anchors[key]; ok {
		s.mu.Unlock()
		return Anchor{ID: id, SourceType: ext.SourceType, LocalID: ext.LocalID}, true, nil
	}
	s.mu.Unlock()

	found, err := s.lookupAnchor(ctx, ext)
	if err != nil {
		return Anchor{}, false, scrollerr.Bridgef(err)
	}
	if found != nil {
		s.remember(key, found.ID)
		return *found, true, nil
	}

	if s.lazy {
		return Anchor{}, false, nil
	}
	return s.createAnchor(ctx, ext)
}

// lookupAnchor queries by the anchor's own-source-id tag component
// (the first value of "ext", which is all a generic Nostr relay
// indexes) then filters client-side for an exact (sourceType, localId)
// match, since the tag has two meaningful values.
func (s *Service) lookupAnchor(ctx context.Context, ext ExternalItem) (*Anchor, error) {
	events, err := s.protocol.QueryByTag(ctx, "ext", ext.SourceType, anchorKind)
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		if tagMatches(ev.Tags, ext.SourceType, ext.LocalID) {
			return &Anchor{ID: ev.ID, SourceType: ext.SourceType, LocalID: ext.LocalID}, nil
		}
	}
	return nil, nil
}

func tagMatches(tags [][]string, sourceType, localID string) bool {
	for _, t := range tags {
		if len(t) >= 3 && t[0] == "ext" && t[1] == sourceType && t[2] == localID {
			return true
		}
	}
	return false
}

// createAnchor publishes a new bridge anchor.
func (s *Service) createAnchor(ctx context.Context, ext ExternalItem) (Anchor, bool, error) {
	tags := [][]string{
		{"r", ext.Link},
		{"ext", ext.SourceType, ext.LocalID},
		{"t", bridgedTopicTag},
	}
	if ext.TopicHint != "" {
		tags = append(tags, []string{"t", ext.TopicHint})
	}

	id, err := s.protocol.PublishNote(ctx, formatAnchorContent(ext), tags)
	if err != nil {
		return Anchor{}, false, scrollerr.Bridgef(err)
	}

	key := cacheKey(ext.SourceType, ext.LocalID)
	s.remember(key, id)
	s.cache.invalidate(key)

	return Anchor{ID: id, SourceType: ext.SourceType, LocalID: ext.LocalID}, true, nil
}

func formatAnchorContent(ext ExternalItem) string {
	label := ext.SourceLabel
	if label == "" {
		label = ext.SourceType
	}
	return fmt.Sprintf("\U0001F4CE From %s:\n\n\"%s\"\n\n%s\n\n%s", label, ext.Title, ext.Snippet, ext.Link)
}

// GetBridgeStats returns bridge stats for ext, cached for
// defaultStatsTTL to bound relay query cost.
func (s *Service) GetBridgeStats(ctx context.Context, ext ExternalItem) (Stats, error) {
	key := cacheKey(ext.SourceType, ext.LocalID)
	if stats, ok := s.cache.get(key); ok {
		return stats, nil
	}

	anchor, err := s.lookupAnchor(ctx, ext)
	if err != nil {
		return Stats{}, scrollerr.Bridgef(err)
	}
	if anchor == nil {
		stats := Stats{Exists: false}
		s.cache.set(key, stats)
		return stats, nil
	}
	s.remember(key, anchor.ID)

	replies, err := s.protocol.QueryReplies(ctx, anchor.ID)
	if err != nil {
		return Stats{}, scrollerr.Bridgef(err)
	}

	stats := Stats{Exists: true, AnchorID: anchor.ID, CommentCount: len(replies)}
	for _, r := range replies {
		if r.CreatedAt.After(stats.LastActivityTs) {
			stats.LastActivityTs = r.CreatedAt
		}
	}
	s.cache.set(key, stats)
	return stats, nil
}

// Comment ensures the anchor exists (creating it
// if this was deferred), publishes a threaded reply, and invalidates the
// cached stats so the next GetBridgeStats call queries the relay afresh
// and observes the increment.
func (s *Service) Comment(ctx context.Context, user string, ext ExternalItem, text string, visibility Visibility) error {
	if visibility != VisibilityPublic {
		s.logger.Warn("bridge comment visibility downgraded to public",
			slog.String("user", user), slog.String("requested", string(visibility)))
	}

	anchor, exists, err := s.GetOrCreateBridge(ctx, ext)
	if err != nil {
		return err
	}
	if !exists {
		anchor, exists, err = s.createAnchor(ctx, ext)
		if err != nil {
			return err
		}
		if !exists {
			return scrollerr.Bridgef(fmt.Errorf("anchor creation disabled for %q", user))
		}
	}

	replyTags := [][]string{{"e", anchor.ID, "", "root"}}
	if _, err := s.protocol.PublishNote(ctx, text, replyTags); err != nil {
		return scrollerr.Bridgef(err)
	}

	s.cache.invalidate(cacheKey(ext.SourceType, ext.LocalID))
	return nil
}

// GetThread returns the threaded reply tree for an anchor. The protocol
// returns a flat list; thread structure beyond root-level replies is
// left to the client, since nothing in this repository's scope renders
// nested comment trees.
func (s *Service) GetThread(ctx context.Context, anchorID string) ([]ProtocolEvent, error) {
	events, err := s.protocol.QueryReplies(ctx, anchorID)
	if err != nil {
		return nil, scrollerr.Bridgef(err)
	}
	return events, nil
}

func (s *Service) remember(key, anchorID string) {
	s.mu.Lock()
	s.anchors[key] = anchorID
	s.mu.Unlock()
}
