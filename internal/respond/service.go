// Package respond implements the dispatch behind POST /feed/respond:
// resolving an interaction response to either the bridging comment
// path or a per-source InteractionResponder.
package respond

import (
	"context"
	"errors"

	"scrollfeed/internal/adapter"
	"scrollfeed/internal/bridge"
	"scrollfeed/internal/feeditem"
	"scrollfeed/internal/resolver"
	"scrollfeed/internal/scrollerr"
)

var (
	errBridgeNotConfigured = errors.New("respond: bridge not configured")
	errNotBridgeable       = errors.New("respond: item has no bridgeLink, not bridgeable")
)

// commentResponseValue is the well-known response value that routes to
// ContentBridgeService rather than a source-specific InteractionResponder,
// i.e. Respond(itemId, response="comment", ...).
const commentResponseValue = "comment"

// Result is the outcome POST /feed/respond returns to the client.
type Result struct {
	Success bool
	Action  string
}

// Service is the respond-dispatch orchestrator.
type Service struct {
	ids    *resolver.ContentIdResolver
	bridge *bridge.Service // nil disables the bridging comment path
}

// NewService constructs a Service. bridgeSvc may be nil.
func NewService(ids *resolver.ContentIdResolver, bridgeSvc *bridge.Service) *Service {
	return &Service{ids: ids, bridge: bridgeSvc}
}

// Dispatch resolves itemID to its adapter and routes the response:
// "comment" goes to ContentBridgeService.Comment (creating the anchor
// lazily if needed) with the caller's requested visibility; anything
// else goes to the adapter's InteractionResponder if it implements
// one, and is a silent no-op otherwise.
func (s *Service) Dispatch(ctx context.Context, user, itemID, response, visibility string, respCtx feeditem.Meta, meta feeditem.Meta) (Result, error) {
	resolved, ok := s.ids.Resolve(itemID)
	if !ok {
		return Result{}, scrollerr.InvalidIDf(itemID)
	}

	if response == commentResponseValue {
		return s.dispatchComment(ctx, user, resolved.Adapter.SourceType(), resolved.LocalID, visibility, respCtx, meta)
	}

	responder, ok := resolved.Adapter.(adapter.InteractionResponder)
	if !ok {
		return Result{Success: true, Action: "ignored"}, nil
	}
	if err := responder.Respond(ctx, user, resolved.LocalID, response, respCtx); err != nil {
		return Result{}, err
	}
	return Result{Success: true, Action: response}, nil
}

func (s *Service) dispatchComment(ctx context.Context, user, sourceType, localID, visibility string, respCtx, meta feeditem.Meta) (Result, error) {
	if s.bridge == nil {
		return Result{}, scrollerr.Bridgef(errBridgeNotConfigured)
	}

	ext, ok := bridge.ExternalItemFromMeta(sourceType, localID, meta)
	if !ok {
		return Result{}, scrollerr.Bridgef(errNotBridgeable)
	}

	text, _ := respCtx.StringAt("text")
	if err := s.bridge.Comment(ctx, user, ext, text, bridge.ParseVisibility(visibility)); err != nil {
		return Result{}, scrollerr.Bridgef(err)
	}
	return Result{Success: true, Action: commentResponseValue}, nil
}
