package feed

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"scrollfeed/internal/detail"
	"scrollfeed/internal/handler/http/pathutil"
	"scrollfeed/internal/handler/http/requestid"
)

type detailResponse struct {
	ItemID   string       `json:"itemId"`
	Sections []sectionDTO `json:"sections"`
}

// DetailHandler serves GET /feed/detail/{itemId}. itemId is the
// url-encoded compound id; an optional "meta" query parameter
// carries the requesting FeedItem's Meta as a JSON object, since the
// server holds no server-side record of the list item the client is
// drilling into; FeedItem is ephemeral and the session keeps no record
// of items already handed out.
type DetailHandler struct {
	Assembler *detail.Assembler
	Logger    *slog.Logger
	Prefix    string // URL path prefix to strip, e.g. "/feed/detail/"
}

func (h DetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathutil.ExtractItemID(r.URL.Path, h.Prefix)
	if err != nil {
		writeError(w, h.Logger, r, errBadItemID)
		return
	}

	var meta map[string]any
	if raw := r.URL.Query().Get("meta"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			writeError(w, h.Logger, r, errBadItemID)
			return
		}
	}

	sections, err := h.Assembler.GetDetail(r.Context(), itemID, metaFromJSON(meta))
	if err != nil {
		writeError(w, h.Logger, r, err)
		return
	}

	h.Logger.Info("feed detail served",
		slog.String("request_id", requestid.FromContext(r.Context())),
		slog.String("item_id", itemID),
		slog.Int("sections", len(sections)))

	writeJSON(w, http.StatusOK, detailResponse{ItemID: itemID, Sections: toSectionDTOs(sections)})
}
