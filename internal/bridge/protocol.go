// Package bridge implements ContentBridgeService: the
// cross-source comment layer for external items, backed by a federated
// social protocol treated as a content-addressed event store.
package bridge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
)

// ProtocolEvent is a protocol-agnostic view of one published or queried
// record. Service never touches a *nostr.Event directly so a future
// SocialProtocol implementation over a different federated protocol
// would not require Service changes.
type ProtocolEvent struct {
	ID        string
	PubKey    string
	CreatedAt time.Time
	Content   string
	Tags      [][]string
}

// SocialProtocol is the narrow collaborator ContentBridgeService treats
// as a content-addressed event store.
type SocialProtocol interface {
	// PublishNote signs and broadcasts a public note with the given
	// content and tags, returning its event id.
	PublishNote(ctx context.Context, content string, tags [][]string) (eventID string, err error)

	// QueryByTag returns every event of kind carrying a tag named
	// tagName whose first value equals tagValue. Relays only index a
	// tag's first value, so multi-value tags (e.g. "ext") are matched
	// further by the caller.
	QueryByTag(ctx context.Context, tagName, tagValue string, kind int) ([]ProtocolEvent, error)

	// QueryReplies returns every event that threads as a reply to
	// anchorID via an "e" tag.
	QueryReplies(ctx context.Context, anchorID string) ([]ProtocolEvent, error)
}

// nostrProtocol is the Nostr-backed SocialProtocol implementation: a
// small relay pool, a single service-owned keypair that signs every
// anchor and comment on the user's behalf.
type nostrProtocol struct {
	relays    []string
	secretKey string
	pubKey    string
	timeout   time.Duration
}

// NewNostrProtocol constructs a SocialProtocol over relays, signing
// every published event with secretKey. secretKey accepts either a
// raw hex-encoded Nostr secret key or an NIP-19 bech32 "nsec1..."
// string, the form operators are more likely to paste from a key
// generator.
func NewNostrProtocol(relays []string, secretKey string) (SocialProtocol, error) {
	hexKey, err := decodeSecretKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("bridge: decode secret key: %w", err)
	}
	pub, err := nostr.GetPublicKey(hexKey)
	if err != nil {
		return nil, fmt.Errorf("bridge: derive public key: %w", err)
	}
	return &nostrProtocol{relays: relays, secretKey: hexKey, pubKey: pub, timeout: 10 * time.Second}, nil
}

func decodeSecretKey(secretKey string) (string, error) {
	if !strings.HasPrefix(secretKey, "nsec1") {
		return secretKey, nil
	}
	prefix, value, err := nip19.Decode(secretKey)
	if err != nil {
		return "", err
	}
	if prefix != "nsec" {
		return "", fmt.Errorf("expected nsec, got %s", prefix)
	}
	return value.(string), nil
}

func (p *nostrProtocol) PublishNote(ctx context.Context, content string, tags [][]string) (string, error) {
	ev := nostr.Event{
		PubKey:    p.pubKey,
		CreatedAt: nostr.Now(),
		Kind:      nostr.KindTextNote,
		Tags:      tagsFrom(tags),
		Content:   content,
	}
	if err := ev.Sign(p.secretKey); err != nil {
		return "", fmt.Errorf("bridge: sign event: %w", err)
	}

	var lastErr error
	published := false
	for _, url := range p.relays {
		relay, err := p.connect(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		publishCtx, cancel := context.WithTimeout(ctx, p.timeout)
		err = relay.Publish(publishCtx, ev)
		cancel()
		relay.Close()
		if err != nil {
			lastErr = err
			continue
		}
		published = true
	}
	if !published {
		return "", lastErr
	}
	return ev.ID, nil
}

func (p *nostrProtocol) QueryByTag(ctx context.Context, tagName, tagValue string, kind int) ([]ProtocolEvent, error) {
	return p.query(ctx, nostr.Filter{
		Kinds: []int{kind},
		Tags:  nostr.TagMap{tagName: []string{tagValue}},
	})
}

func (p *nostrProtocol) QueryReplies(ctx context.Context, anchorID string) ([]ProtocolEvent, error) {
	return p.query(ctx, nostr.Filter{
		Kinds: []int{nostr.KindTextNote},
		Tags:  nostr.TagMap{"e": []string{anchorID}},
	})
}

// query fans out to every relay and de-duplicates by event id, since
// the same event is commonly stored on more than one relay in the pool.
func (p *nostrProtocol) query(ctx context.Context, filter nostr.Filter) ([]ProtocolEvent, error) {
	seen := make(map[string]ProtocolEvent)
	var lastErr error
	for _, url := range p.relays {
		relay, err := p.connect(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		queryCtx, cancel := context.WithTimeout(ctx, p.timeout)
		events, err := relay.QuerySync(queryCtx, filter)
		cancel()
		relay.Close()
		if err != nil {
			lastErr = err
			continue
		}
		for _, ev := range events {
			seen[ev.ID] = protocolEventFrom(ev)
		}
	}
	if len(seen) == 0 && lastErr != nil {
		return nil, lastErr
	}

	out := make([]ProtocolEvent, 0, len(seen))
	for _, ev := range seen {
		out = append(out, ev)
	}
	return out, nil
}

func (p *nostrProtocol) connect(ctx context.Context, url string) (*nostr.Relay, error) {
	connectCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return nostr.RelayConnect(connectCtx, url)
}

func protocolEventFrom(ev *nostr.Event) ProtocolEvent {
	tags := make([][]string, len(ev.Tags))
	for i, t := range ev.Tags {
		tags[i] = []string(t)
	}
	return ProtocolEvent{
		ID:        ev.ID,
		PubKey:    ev.PubKey,
		CreatedAt: ev.CreatedAt.Time(),
		Content:   ev.Content,
		Tags:      tags,
	}
}

func tagsFrom(tags [][]string) nostr.Tags {
	out := make(nostr.Tags, len(tags))
	for i, t := range tags {
		out[i] = nostr.Tag(t)
	}
	return out
}
