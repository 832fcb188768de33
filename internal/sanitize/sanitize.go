// Package sanitize cleans user-authored content that the browser renders as
// markup or follows as a link. Plain-text fields are sent as entered and
// left to the client's escaping.
package sanitize

import (
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var ugc = bluemonday.UGCPolicy()

// HTML keeps safe formatting (links, emphasis, lists) and strips scripts,
// event handlers and javascript: URLs.
func HTML(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(ugc.Sanitize(s))
}

// URL returns s when it is an http(s) or scheme-less link and "" otherwise.
func URL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
		return s
	default:
		return ""
	}
}
