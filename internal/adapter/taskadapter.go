package adapter

import (
	"context"
	"time"

	"scrollfeed/internal/feeditem"
)

// Task is one outstanding personal to-do surfaced as a compass check-in.
type Task struct {
	ID        string
	Title     string
	Notes     string
	Due       time.Time
}

// TaskStore is the external collaborator holding a user's task list.
type TaskStore interface {
	ListOpen(ctx context.Context, user string) ([]Task, error)
	Complete(ctx context.Context, user, id string) error
	Snooze(ctx context.Context, user, id string, until time.Time) error
}

// TaskAdapter is a compass-tier adapter surfacing open tasks as
// grounding actions. Each open task becomes a card with a
// buttons interaction (complete/snooze) rather than passive content.
type TaskAdapter struct {
	sourceType string
	store      TaskStore
}

// NewTaskAdapter constructs a TaskAdapter over store.
func NewTaskAdapter(sourceType string, store TaskStore) *TaskAdapter {
	return &TaskAdapter{sourceType: sourceType, store: store}
}

func (a *TaskAdapter) SourceType() string { return a.sourceType }

func (a *TaskAdapter) Prefixes() []Prefix { return nil }

func (a *TaskAdapter) Fetch(ctx context.Context, query Query) (FetchResult, error) {
	user, _ := query.Params["user"].(string)
	tasks, err := a.store.ListOpen(ctx, user)
	if err != nil {
		return FetchResult{}, scrollfeedAdapterError(a.sourceType, err)
	}

	items := make([]feeditem.FeedItem, 0, len(tasks))
	for i, t := range tasks {
		items = append(items, a.toFeedItem(t, -i))
	}
	return FetchResult{Items: items}, nil
}

func (a *TaskAdapter) toFeedItem(t Task, priority int) feeditem.FeedItem {
	return feeditem.FeedItem{
		ID:        a.sourceType + ":" + t.ID,
		Source:    a.sourceType,
		Tier:      feeditem.TierCompass,
		Title:     t.Title,
		Body:      t.Notes,
		Timestamp: t.Due,
		Priority:  priority,
		Meta:      feeditem.Meta{"body": feeditem.String(t.Notes)},
		Interaction: &feeditem.Interaction{
			Kind: feeditem.InteractionButtons,
			Buttons: []feeditem.Button{
				{Label: "Done", Value: "complete", Style: "primary"},
				{Label: "Snooze", Value: "snooze", Style: "secondary"},
			},
			Endpoint: "/feed/respond",
		},
	}
}

func (a *TaskAdapter) GetItem(ctx context.Context, localID string) (*feeditem.FeedItem, error) {
	tasks, err := a.store.ListOpen(ctx, "")
	if err != nil {
		return nil, scrollfeedAdapterError(a.sourceType, err)
	}
	for i, t := range tasks {
		if t.ID == localID {
			item := a.toFeedItem(t, -i)
			return &item, nil
		}
	}
	return nil, nil
}

func (a *TaskAdapter) GetDetail(ctx context.Context, localID string, meta feeditem.Meta) ([]feeditem.DetailSection, error) {
	body, _ := meta.StringAt("body")
	return []feeditem.DetailSection{{Kind: feeditem.SectionBody, Text: body}}, nil
}

// Respond handles a TaskAdapter interaction response: "complete" marks
// the task done, "snooze" defers it 24h. respCtx is unused; TaskAdapter
// needs no additional context beyond the button value.
func (a *TaskAdapter) Respond(ctx context.Context, user, localID, value string, respCtx feeditem.Meta) error {
	switch value {
	case "complete":
		return a.store.Complete(ctx, user, localID)
	case "snooze":
		return a.store.Snooze(ctx, user, localID, time.Now().Add(24*time.Hour))
	default:
		return nil
	}
}
