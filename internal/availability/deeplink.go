package availability

import (
	"net/url"
	"strings"
)

const libbySearchBase = "https://libbyapp.com/search/query-"

// DeepLink resolves the destination for an availability badge click.
//
// A Libby share link is a pre-resolved title page and always wins. Otherwise
// the catalog search URL's query parameter is rewritten into a Libby search
// deep link. With neither input, or a search URL that does not parse, there
// is no destination and ok is false; the caller skips navigation instead of
// failing the click.
func DeepLink(searchURL, libbyURL string) (dest string, ok bool) {
	if trimmed := strings.TrimSpace(libbyURL); trimmed != "" {
		return trimmed, true
	}
	trimmed := strings.TrimSpace(searchURL)
	if trimmed == "" {
		return "", false
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}
	query := u.Query().Get("query")
	return libbySearchBase + url.PathEscape(query), true
}
