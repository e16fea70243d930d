package feeditem

import "time"

// Tier is one of the four canonical tiers a FeedItem may belong to.
type Tier string

const (
	TierWire      Tier = "wire"
	TierLibrary   Tier = "library"
	TierScrapbook Tier = "scrapbook"
	TierCompass   Tier = "compass"
)

// Tiers lists the four canonical tiers in round-robin interleave order.
var Tiers = []Tier{TierWire, TierLibrary, TierScrapbook, TierCompass}

// Valid reports whether t is one of the four canonical tier values.
func (t Tier) Valid() bool {
	switch t {
	case TierWire, TierLibrary, TierScrapbook, TierCompass:
		return true
	default:
		return false
	}
}

// FeedItem is the universal card produced by every adapter and returned
// by FeedAssemblyService.GetNextBatch. ID is compound ("source:localId"),
// unique across the system and stable across requests; Source is always
// the prefix of ID.
type FeedItem struct {
	ID        string
	Source    string
	Tier      Tier
	Title     string
	Body      string
	Image     *string
	Link      *string
	Timestamp time.Time
	Priority  int
	Meta      Meta

	Interaction *Interaction

	// Sections is never populated on list items; only GetDetail responses
	// set it.
	Sections []DetailSection
}

// InteractionKind tags which variant of Interaction is populated.
type InteractionKind string

const (
	InteractionButtons    InteractionKind = "buttons"
	InteractionTextInput  InteractionKind = "textInput"
	InteractionRating     InteractionKind = "rating"
	InteractionQuickReply InteractionKind = "quickReply"
)

// Button describes a single actionable choice in a ButtonsInteraction.
type Button struct {
	Label string
	Value string
	Style string
}

// Interaction is a union-typed action descriptor attached to a FeedItem.
// Exactly one of the kind-specific fields is meaningful, selected by Kind.
// Endpoint and Context are opaque to the core and echoed back by the
// client on response.
type Interaction struct {
	Kind InteractionKind

	Buttons []Button // InteractionButtons

	TextInputPlaceholder string // InteractionTextInput
	TextInputMaxLength   int    // InteractionTextInput

	RatingScale int // InteractionRating

	Endpoint string
	Context  Meta
}
