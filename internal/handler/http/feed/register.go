package feed

import (
	"log/slog"
	"net/http"

	"scrollfeed/internal/detail"
	"scrollfeed/internal/feed"
	respondsvc "scrollfeed/internal/respond"
	"scrollfeed/internal/scrollconfig"
)

// Register wires the scroll, detail, respond, and config routes onto
// mux. None of these routes sit behind an auth layer; user
// authentication is explicitly out of scope.
func Register(mux *http.ServeMux, feedSvc *feed.Service, assembler *detail.Assembler, respondSvc *respondsvc.Service, loader *scrollconfig.Loader, store scrollconfig.ConfigStore, logger *slog.Logger) {
	mux.Handle("GET /feed/scroll", ScrollHandler{Svc: feedSvc, Logger: logger})
	mux.Handle("GET /feed/detail/", DetailHandler{Assembler: assembler, Logger: logger, Prefix: "/feed/detail/"})
	mux.Handle("POST /feed/respond", RespondHandler{Svc: respondSvc, Logger: logger})
	mux.Handle("GET /feed/config", ConfigHandler{Loader: loader, Store: store, Logger: logger})
	mux.Handle("PUT /feed/config", ConfigHandler{Loader: loader, Store: store, Logger: logger})
}
