package feed

import (
	"errors"
	"log/slog"
	"net/http"

	"scrollfeed/internal/handler/http/requestid"
	"scrollfeed/internal/scrollerr"
)

// errBadItemID covers malformed path/query input caught before a
// service call (unescape failure, bad meta JSON), surfaced as 400 just
// like scrollerr.ErrInvalidID.
var errBadItemID = errors.New("malformed item id or meta")

// errorEnvelope is the {error: {code, message, source?, details?}}
// shape returned to clients; the rest of this handler package otherwise
// follows respond.JSON's encoding idiom.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
}

// writeError maps a scrollerr sentinel kind to a status code and writes
// the error envelope. Anything that isn't one of the named sentinels is
// a 500, logged with its detail but not echoed back.
func writeError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	code, msg := classify(err)
	if code == http.StatusInternalServerError {
		logger.Error("feed handler internal error",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	writeJSON(w, code, errorEnvelope{Error: errorBody{Code: code, Message: msg}})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, scrollerr.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, scrollerr.ErrFetchUnavailable):
		return http.StatusServiceUnavailable, "upstream unavailable"
	case errors.Is(err, scrollerr.ErrFetchFailed):
		return http.StatusServiceUnavailable, "upstream fetch failed"
	case errors.Is(err, scrollerr.ErrInvalidID), errors.Is(err, scrollerr.ErrInvalidFilter), errors.Is(err, errBadItemID):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, scrollerr.ErrBridgeError):
		return http.StatusInternalServerError, "internal server error"
	case errors.Is(err, scrollerr.ErrConfigError):
		return http.StatusBadRequest, "invalid config"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
