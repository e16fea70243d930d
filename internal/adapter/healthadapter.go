package adapter

import (
	"context"
	"fmt"
	"time"

	"scrollfeed/internal/feeditem"
)

// HealthLog is one prompted health check-in response.
type HealthLog struct {
	Timestamp time.Time
	Metric    string
	Rating    int
}

// HealthStore is the external collaborator recording check-in history.
type HealthStore interface {
	RecordRating(ctx context.Context, user, metric string, rating int) error
	LastRating(ctx context.Context, user, metric string) (*HealthLog, error)
}

// HealthAdapter is a compass-tier adapter prompting a periodic
// self-rated check-in (a grounding check) via a rating interaction.
// One instance covers one metric (mood,
// energy, sleep, ...); a deployment registers one per tracked metric.
type HealthAdapter struct {
	sourceType string
	metric     string
	scale      int
	store      HealthStore
}

// NewHealthAdapter constructs a HealthAdapter for one metric.
func NewHealthAdapter(sourceType, metric string, scale int, store HealthStore) *HealthAdapter {
	if scale <= 0 {
		scale = 5
	}
	return &HealthAdapter{sourceType: sourceType, metric: metric, scale: scale, store: store}
}

func (a *HealthAdapter) SourceType() string { return a.sourceType }

func (a *HealthAdapter) Prefixes() []Prefix { return nil }

// Fetch always returns exactly one prompt card: this is a periodic
// check-in, not a paginated list.
func (a *HealthAdapter) Fetch(ctx context.Context, query Query) (FetchResult, error) {
	user, _ := query.Params["user"].(string)
	localID := fmt.Sprintf("%s-%d", a.metric, time.Now().UTC().Truncate(24*time.Hour).Unix())

	title := fmt.Sprintf("How's your %s today?", a.metric)
	if last, err := a.store.LastRating(ctx, user, a.metric); err == nil && last != nil {
		title = fmt.Sprintf("How's your %s today? (last: %d/%d)", a.metric, last.Rating, a.scale)
	}

	return FetchResult{Items: []feeditem.FeedItem{{
		ID:        a.sourceType + ":" + localID,
		Source:    a.sourceType,
		Tier:      feeditem.TierCompass,
		Title:     title,
		Timestamp: time.Now(),
		Interaction: &feeditem.Interaction{
			Kind:        feeditem.InteractionRating,
			RatingScale: a.scale,
			Endpoint:    "/feed/respond",
			Context:     feeditem.Meta{"metric": feeditem.String(a.metric)},
		},
	}}}, nil
}

func (a *HealthAdapter) GetItem(ctx context.Context, localID string) (*feeditem.FeedItem, error) {
	result, err := a.Fetch(ctx, Query{})
	if err != nil {
		return nil, err
	}
	for i := range result.Items {
		if result.Items[i].ID == a.sourceType+":"+localID {
			return &result.Items[i], nil
		}
	}
	return nil, nil
}

func (a *HealthAdapter) GetDetail(ctx context.Context, localID string, meta feeditem.Meta) ([]feeditem.DetailSection, error) {
	return []feeditem.DetailSection{{Kind: feeditem.SectionBody, Text: fmt.Sprintf("Rate your %s for today.", a.metric)}}, nil
}

// Respond records the submitted rating. value is the numeric rating as
// a decimal string.
func (a *HealthAdapter) Respond(ctx context.Context, user, localID, value string, respCtx feeditem.Meta) error {
	var rating int
	if _, err := fmt.Sscanf(value, "%d", &rating); err != nil {
		return fmt.Errorf("healthadapter: invalid rating %q: %w", value, err)
	}
	return a.store.RecordRating(ctx, user, a.metric, rating)
}
