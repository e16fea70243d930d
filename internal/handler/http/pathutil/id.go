package pathutil

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidItemID is returned when the path tail is not a usable
// compound item id.
var ErrInvalidItemID = errors.New("invalid item id")

// ExtractItemID pulls the url-encoded compound id out of a path like
// /feed/detail/reddit%3Aabc123 and decodes it. The prefix is the
// route's fixed head, e.g. "/feed/detail/". An empty or undecodable
// tail is ErrInvalidItemID; whether the decoded id resolves to an
// adapter is the resolver's call, not this function's.
func ExtractItemID(path, prefix string) (string, error) {
	encoded := strings.TrimPrefix(path, prefix)
	if encoded == "" || encoded == path {
		return "", ErrInvalidItemID
	}
	id, err := url.QueryUnescape(encoded)
	if err != nil || id == "" {
		return "", ErrInvalidItemID
	}
	return id, nil
}
