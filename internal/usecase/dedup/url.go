package dedup

import (
	"net/url"
	"strings"
)

// NormalizeURL reduces a URL to lower-cased scheme, host and path, dropping the query
// string and fragment. When the URL cannot be parsed, or has no scheme or host, the raw
// string is lower-cased instead. The result is stable under repeated normalization.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.ToLower(raw)
	}
	return strings.ToLower(u.Scheme + "://" + u.Host + u.EscapedPath())
}
