package adapter

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"scrollfeed/internal/feeditem"
)

// staticPrompts is the always-available fallback bank CompassAdapter
// degrades to when no PromptGenerator is configured, or the configured
// one errors.
var staticPrompts = []string{
	"What's one thing that went well today?",
	"Name something you're avoiding right now. Why?",
	"What would you tell a friend in your exact situation?",
	"What's draining your energy lately, and what's one way to address it?",
	"Pick one value you hold. Did today's choices reflect it?",
}

// PromptGenerator produces a fresh reflective prompt, optionally
// informed by recentTitles (the user's recent feed history) for
// continuity. Implementations wrap go-openai or anthropic-sdk-go;
// CompassAdapter works with neither configured, falling back to
// staticPrompts. A one-shot generation call is a narrow, optional
// enhancement, not a learning system, so it stays out of this scope.
type PromptGenerator interface {
	GeneratePrompt(ctx context.Context, recentTitles []string) (string, error)
}

// CompassAdapter is the built-in "entropy" pseudo-source: a compass-tier
// adapter emitting one reflective journal prompt per fetch, the
// "grounding actions" counterpart to HealthAdapter's numeric check-ins.
type CompassAdapter struct {
	sourceType string
	generator  PromptGenerator // nil falls back to staticPrompts
}

// NewCompassAdapter constructs a CompassAdapter. generator may be nil.
func NewCompassAdapter(sourceType string, generator PromptGenerator) *CompassAdapter {
	return &CompassAdapter{sourceType: sourceType, generator: generator}
}

func (a *CompassAdapter) SourceType() string { return a.sourceType }

func (a *CompassAdapter) Prefixes() []Prefix { return nil }

func (a *CompassAdapter) Fetch(ctx context.Context, query Query) (FetchResult, error) {
	recentTitles, _ := query.Params["recentTitles"].([]string)

	prompt := a.staticPrompt()
	if a.generator != nil {
		if generated, err := a.generator.GeneratePrompt(ctx, recentTitles); err == nil && generated != "" {
			prompt = generated
		}
	}

	localID := fmt.Sprintf("%d", time.Now().UnixNano())
	return FetchResult{Items: []feeditem.FeedItem{{
		ID:        a.sourceType + ":" + localID,
		Source:    a.sourceType,
		Tier:      feeditem.TierCompass,
		Title:     prompt,
		Timestamp: time.Now(),
		// GetDetail rebuilds its body from the echoed meta, so the
		// prompt has to ride along with the item.
		Meta: feeditem.Meta{"title": feeditem.String(prompt)},
		Interaction: &feeditem.Interaction{
			Kind:                 feeditem.InteractionTextInput,
			TextInputPlaceholder: "Write a few words...",
			TextInputMaxLength:   2000,
			Endpoint:             "/feed/respond",
		},
	}}}, nil
}

func (a *CompassAdapter) staticPrompt() string {
	return staticPrompts[rand.Intn(len(staticPrompts))]
}

func (a *CompassAdapter) GetItem(ctx context.Context, localID string) (*feeditem.FeedItem, error) {
	return nil, nil
}

func (a *CompassAdapter) GetDetail(ctx context.Context, localID string, meta feeditem.Meta) ([]feeditem.DetailSection, error) {
	title, _ := meta.StringAt("title")
	return []feeditem.DetailSection{{Kind: feeditem.SectionBody, Text: title}}, nil
}
