package snapshot

import (
	"strings"

	"golang.org/x/net/html"
)

// parseAttrs tokenizes a marker's raw attribute string into key/value
// pairs. Snapshot attrs use HTML attribute syntax (double-quoted,
// single-quoted, or bare values, entities included), so the HTML tokenizer
// does the heavy lifting; keys come back lowercased. Malformed input
// degrades to however much the tokenizer could read, never an error.
func parseAttrs(attrsRaw string) []html.Attribute {
	attrsRaw = strings.TrimSpace(attrsRaw)
	if attrsRaw == "" {
		return nil
	}
	z := html.NewTokenizer(strings.NewReader("<x " + attrsRaw + ">"))
	tt := z.Next()
	if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
		return nil
	}
	return z.Token().Attr
}

// attrValue returns the value of the named attribute and whether it was
// present. The tokenizer lowercases keys, so name must be lowercase; the
// first occurrence wins.
func attrValue(attrs []html.Attribute, name string) (string, bool) {
	for _, a := range attrs {
		if a.Key == name {
			return strings.TrimSpace(a.Val), true
		}
	}
	return "", false
}
