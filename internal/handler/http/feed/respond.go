package feed

import (
	"encoding/json"
	"log/slog"
	"net/http"

	httpmw "scrollfeed/internal/handler/http"
	"scrollfeed/internal/handler/http/requestid"
	respondsvc "scrollfeed/internal/respond"
)

type respondRequest struct {
	ItemID   string         `json:"itemId"`
	Response string         `json:"response"`
	Context  map[string]any `json:"context"`
	// Visibility applies to the bridging comment path: "public" (the
	// default when absent), "connections", "circle:family", etc.
	Visibility string `json:"visibility"`
	// Meta carries the requesting FeedItem's Meta, the same convention
	// DetailHandler uses; needed for the bridging comment path, which
	// reads bridgeLink/bridgeTitle/bridgeSnippet off it.
	Meta map[string]any `json:"meta"`
}

type respondResponse struct {
	Success bool   `json:"success"`
	Action  string `json:"action"`
}

// RespondHandler serves POST /feed/respond.
type RespondHandler struct {
	Svc    *respondsvc.Service
	Logger *slog.Logger
}

func (h RespondHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" || req.Response == "" {
		writeError(w, h.Logger, r, errBadItemID)
		return
	}

	user := userOf(r)
	result, err := h.Svc.Dispatch(r.Context(), user, req.ItemID, req.Response, req.Visibility, metaFromJSON(req.Context), metaFromJSON(req.Meta))
	if req.Response == "comment" {
		httpmw.RecordBridgeComment(err == nil)
	}
	if err != nil {
		writeError(w, h.Logger, r, err)
		return
	}

	h.Logger.Info("feed respond dispatched",
		slog.String("request_id", requestid.FromContext(r.Context())),
		slog.String("user", user),
		slog.String("item_id", req.ItemID),
		slog.String("response", req.Response),
		slog.String("action", result.Action))

	writeJSON(w, http.StatusOK, respondResponse{Success: result.Success, Action: result.Action})
}
