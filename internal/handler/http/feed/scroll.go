package feed

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"scrollfeed/internal/feed"
	httpmw "scrollfeed/internal/handler/http"
	"scrollfeed/internal/handler/http/requestid"
)

type scrollResponse struct {
	Items   []itemDTO         `json:"items"`
	HasMore bool              `json:"hasMore"`
	Colors  map[string]string `json:"colors"`
	Cursor  string            `json:"cursor"`
}

// ScrollHandler serves GET /feed/scroll.
type ScrollHandler struct {
	Svc    *feed.Service
	Logger *slog.Logger
}

func (h ScrollHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := feed.Options{
		Cursor:  q.Get("cursor"),
		Focus:   q.Get("focus"),
		Filter:  q.Get("filter"),
		NoCache: q.Get("nocache") == "1" || strings.EqualFold(q.Get("nocache"), "true"),
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			opts.Limit = limit
		}
	}
	if src := q.Get("source"); src != "" {
		opts.Sources = strings.Split(src, ",")
	}

	user := userOf(r)
	batch, err := h.Svc.GetNextBatch(r.Context(), user, opts)
	if err != nil {
		writeError(w, h.Logger, r, err)
		return
	}

	dtos := make([]itemDTO, 0, len(batch.Items))
	for _, item := range batch.Items {
		dtos = append(dtos, toItemDTO(item))
	}

	httpmw.RecordBatchServed(batch.Filtered, len(dtos))

	h.Logger.Info("feed scroll served",
		slog.String("request_id", requestid.FromContext(r.Context())),
		slog.String("user", user),
		slog.Int("count", len(dtos)),
		slog.Bool("has_more", batch.HasMore))

	writeJSON(w, http.StatusOK, scrollResponse{
		Items:   dtos,
		HasMore: batch.HasMore,
		Colors:  colorsToJSON(batch.Colors),
		Cursor:  batch.Cursor,
	})
}
