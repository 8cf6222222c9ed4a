package browser

import (
	"net/url"
	"strings"
)

// Known search engines. html.duckduckgo.com serves plain HTML results,
// which suits a text renderer far better than the script-heavy frontends.
const (
	EngineBrave = "brave"
	EngineDDG   = "ddg"
	EngineSearx = "searx"
)

// BuildSearchURL returns the results URL for a query on the named engine.
// Unknown or empty engines fall back to brave.
func BuildSearchURL(query, engine string) string {
	q := url.QueryEscape(strings.TrimSpace(query))
	switch strings.ToLower(engine) {
	case EngineDDG:
		return "https://html.duckduckgo.com/html/?q=" + q
	case EngineSearx:
		return "https://searx.be/search?q=" + q + "&format=html"
	default:
		return "https://search.brave.com/search?q=" + q
	}
}
