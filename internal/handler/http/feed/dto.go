// Package feed wires FeedAssemblyService, DetailAssembler, the respond
// dispatcher, and ScrollConfigLoader onto a REST surface:
// GET /feed/scroll, GET /feed/detail/{itemId}, POST /feed/respond, and
// GET/PUT /feed/config.
package feed

import (
	"scrollfeed/internal/feeditem"
	"scrollfeed/internal/scrollconfig"
)

// itemDTO is the wire shape of a FeedItem.
type itemDTO struct {
	ID          string         `json:"id"`
	Source      string         `json:"source"`
	Tier        string         `json:"tier"`
	Title       string         `json:"title"`
	Body        string         `json:"body,omitempty"`
	Image       *string        `json:"image,omitempty"`
	Link        *string        `json:"link,omitempty"`
	Timestamp   string         `json:"timestamp"`
	Priority    int            `json:"priority"`
	Meta        map[string]any `json:"meta,omitempty"`
	Interaction *interactionDTO `json:"interaction,omitempty"`
	Sections    []sectionDTO   `json:"sections,omitempty"`
}

type buttonDTO struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Style string `json:"style,omitempty"`
}

type interactionDTO struct {
	Kind                 string         `json:"kind"`
	Buttons              []buttonDTO    `json:"buttons,omitempty"`
	TextInputPlaceholder string         `json:"textInputPlaceholder,omitempty"`
	TextInputMaxLength   int            `json:"textInputMaxLength,omitempty"`
	RatingScale          int            `json:"ratingScale,omitempty"`
	Endpoint             string         `json:"endpoint,omitempty"`
	Context              map[string]any `json:"context,omitempty"`
}

type commentDTO struct {
	Author string `json:"author"`
	Body   string `json:"body"`
	Score  int    `json:"score"`
	Depth  int    `json:"depth"`
}

type statLineDTO struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type mediaItemDTO struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

type sectionDTO struct {
	Kind             string          `json:"kind"`
	ArticleTitle     string          `json:"articleTitle,omitempty"`
	ArticleHTML      string          `json:"articleHtml,omitempty"`
	ArticleWordCount int             `json:"articleWordCount,omitempty"`
	Comments         []commentDTO    `json:"comments,omitempty"`
	EmbedProvider    string          `json:"embedProvider,omitempty"`
	EmbedURL         string          `json:"embedUrl,omitempty"`
	EmbedAspectRatio float64         `json:"embedAspectRatio,omitempty"`
	Text             string          `json:"text,omitempty"`
	Stats            []statLineDTO   `json:"stats,omitempty"`
	Media            []mediaItemDTO  `json:"media,omitempty"`
	Actions          []interactionDTO `json:"actions,omitempty"`
	PlayerContentID  string          `json:"playerContentId,omitempty"`
}

func toItemDTO(item feeditem.FeedItem) itemDTO {
	dto := itemDTO{
		ID:        item.ID,
		Source:    item.Source,
		Tier:      string(item.Tier),
		Title:     item.Title,
		Body:      item.Body,
		Image:     item.Image,
		Link:      item.Link,
		Timestamp: item.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Priority:  item.Priority,
		Meta:      metaToJSON(item.Meta),
	}
	if item.Interaction != nil {
		dto.Interaction = toInteractionDTO(*item.Interaction)
	}
	if len(item.Sections) > 0 {
		dto.Sections = toSectionDTOs(item.Sections)
	}
	return dto
}

func toInteractionDTO(in feeditem.Interaction) *interactionDTO {
	dto := &interactionDTO{
		Kind:                 string(in.Kind),
		TextInputPlaceholder: in.TextInputPlaceholder,
		TextInputMaxLength:   in.TextInputMaxLength,
		RatingScale:          in.RatingScale,
		Endpoint:             in.Endpoint,
		Context:              metaToJSON(in.Context),
	}
	for _, b := range in.Buttons {
		dto.Buttons = append(dto.Buttons, buttonDTO{Label: b.Label, Value: b.Value, Style: b.Style})
	}
	return dto
}

func toSectionDTOs(sections []feeditem.DetailSection) []sectionDTO {
	out := make([]sectionDTO, 0, len(sections))
	for _, s := range sections {
		d := sectionDTO{
			Kind:             string(s.Kind),
			ArticleTitle:     s.ArticleTitle,
			ArticleHTML:      s.ArticleHTML,
			ArticleWordCount: s.ArticleWordCount,
			EmbedProvider:    s.EmbedProvider,
			EmbedURL:         s.EmbedURL,
			EmbedAspectRatio: s.EmbedAspectRatio,
			Text:             s.Text,
			PlayerContentID:  s.PlayerContentID,
		}
		for _, c := range s.Comments {
			d.Comments = append(d.Comments, commentDTO{Author: c.Author, Body: c.Body, Score: c.Score, Depth: c.Depth})
		}
		for _, st := range s.Stats {
			d.Stats = append(d.Stats, statLineDTO{Label: st.Label, Value: st.Value})
		}
		for _, m := range s.Media {
			d.Media = append(d.Media, mediaItemDTO{URL: m.URL, Caption: m.Caption})
		}
		for _, a := range s.Actions {
			if dto := toInteractionDTO(a); dto != nil {
				d.Actions = append(d.Actions, *dto)
			}
		}
		out = append(out, d)
	}
	return out
}

// metaToJSON flattens an opaque Meta map into plain JSON values. Order of
// the AsX checks doesn't matter: a MetaValue only ever satisfies one.
func metaToJSON(m feeditem.Meta) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = metaValueToJSON(v)
	}
	return out
}

func metaValueToJSON(v feeditem.MetaValue) any {
	if s, ok := v.AsString(); ok {
		return s
	}
	if i, ok := v.AsInt(); ok {
		return i
	}
	if f, ok := v.AsFloat(); ok {
		return f
	}
	if b, ok := v.AsBool(); ok {
		return b
	}
	if list, ok := v.AsList(); ok {
		out := make([]any, 0, len(list))
		for _, item := range list {
			out = append(out, metaValueToJSON(item))
		}
		return out
	}
	return nil
}

// metaFromJSON builds a feeditem.Meta from a plain JSON object. Only
// string, float64 (JSON's only number type), and bool values are
// supported, which covers every meta key this repository's adapters
// actually read back (bridgeLink, body, text, rating, ...).
func metaFromJSON(m map[string]any) feeditem.Meta {
	if len(m) == 0 {
		return nil
	}
	out := make(feeditem.Meta, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			out[k] = feeditem.String(val)
		case float64:
			out[k] = feeditem.Float(val)
		case bool:
			out[k] = feeditem.Bool(val)
		}
	}
	return out
}

// colorsToJSON converts a tier color palette into a plain string map.
func colorsToJSON(c scrollconfig.ColorPalette) map[string]string {
	out := make(map[string]string, len(c))
	for t, v := range c {
		out[string(t)] = v
	}
	return out
}
