package snapshot

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// labelAttrs is the scan order for explicit label attributes, most
// descriptive first.
var labelAttrs = []string{
	"aria-label",
	"aria-description",
	"title",
	"alt",
	"data-tooltip",
	"data-title",
	"data-label",
	"data-text",
	"data-content",
	"placeholder",
	"value",
	"name",
}

// noiseValues are attribute values that name the widget, not its purpose.
var noiseValues = map[string]bool{
	"submit": true, "button": true, "text": true, "input": true,
	"true": true, "false": true, "1": true, "0": true,
	"on": true, "off": true, "yes": true, "no": true,
	"undefined": true, "null": true,
}

// classHints is the vocabulary of class tokens that imply a purpose. The
// first hint found as a substring of the class list wins, in this order.
var classHints = []string{
	"search", "login", "logout", "signin", "signout", "signup", "register",
	"submit", "send", "post", "share", "like", "follow", "subscribe",
	"menu", "nav", "navigation", "sidebar", "header", "footer",
	"close", "open", "toggle", "expand", "collapse", "show", "hide",
	"next", "prev", "previous", "forward", "backward", "back", "return",
	"home", "settings", "profile", "account", "user", "avatar",
	"cart", "checkout", "buy", "add", "remove", "delete", "edit",
	"download", "upload", "save", "cancel", "confirm", "ok", "apply",
	"help", "info", "about", "contact", "support", "faq",
	"play", "pause", "stop", "mute", "unmute", "volume",
	"copy", "paste", "cut", "undo", "redo", "refresh", "reload",
	"star", "favorite", "bookmark", "pin", "flag", "report",
	"comment", "reply", "quote", "retweet", "repost",
	"arrow", "chevron", "caret", "dropdown", "popover", "modal",
	"github", "twitter", "facebook", "linkedin", "youtube", "instagram",
}

const (
	maxAttrLabel = 40
	maxHrefLabel = 30
)

var (
	separatorReplacer = strings.NewReplacer("_", " ", "-", " ")

	// rolePrefixPattern and roleSuffixPattern drop role words that qualify a
	// label without describing it ("btn search", "search icon"). They match
	// whole tokens only, so words like "navigation" stay intact.
	rolePrefixPattern = regexp.MustCompile(`^(?i:btn|icon|img|link|nav)(?: |$)`)
	roleSuffixPattern = regexp.MustCompile(` (?i:btn|icon|img|link)$`)

	// opaqueIDPattern rejects generated ids like "a1b2c3" that carry no
	// meaning for a human.
	opaqueIDPattern = regexp.MustCompile(`^[a-z0-9]{6,}$`)

	lastSegmentPattern = regexp.MustCompile(`/([^/?#]+)/?(?:[?#]|$)`)
)

// ExtractLabel derives a human-readable label from a marker's raw attribute
// text, returning the fallback when nothing usable is found. Strategies are
// tried most-semantic-first: explicit label attributes, then the id, then
// known class tokens, then the href. It never fails; an empty result means
// the caller decides what an unlabeled element is worth.
func ExtractLabel(attrsRaw, fallback string) string {
	return extractLabel(parseAttrs(attrsRaw), fallback)
}

func extractLabel(attrs []html.Attribute, fallback string) string {
	for _, name := range labelAttrs {
		val, ok := attrValue(attrs, name)
		if !ok || len([]rune(val)) <= 1 || noiseValues[strings.ToLower(val)] {
			continue
		}
		if label := polishLabel(val, true); label != "" {
			return truncate(label, maxAttrLabel)
		}
	}

	if id, ok := attrValue(attrs, "id"); ok && !opaqueIDPattern.MatchString(id) && !strings.HasPrefix(id, ":") {
		if label := polishLabel(id, false); len([]rune(label)) > 2 {
			return truncate(label, maxAttrLabel)
		}
	}

	if classes, ok := attrValue(attrs, "class"); ok {
		lower := strings.ToLower(classes)
		for _, hint := range classHints {
			if strings.Contains(lower, hint) {
				return titleCase(hint)
			}
		}
	}

	if href, ok := attrValue(attrs, "href"); ok {
		if label := labelFromHref(href); label != "" {
			return label
		}
	}

	return fallback
}

// polishLabel turns an attribute value into display form: separators become
// spaces, leading (and optionally trailing) role words are dropped, and a
// fully lowercase result is title-cased.
func polishLabel(val string, stripSuffix bool) string {
	label := collapseSpace(separatorReplacer.Replace(val))
	label = rolePrefixPattern.ReplaceAllString(label, "")
	if stripSuffix {
		label = roleSuffixPattern.ReplaceAllString(label, "")
	}
	label = strings.TrimSpace(label)
	if isAllLower(label) {
		label = titleCase(label)
	}
	return label
}

// labelFromHref mines a link target for a usable label.
func labelFromHref(href string) string {
	switch href {
	case "", "#", "/", "javascript:void(0)", "javascript:;":
		return ""
	}
	switch {
	case strings.HasPrefix(href, "mailto:"):
		return "Email"
	case strings.HasPrefix(href, "tel:"):
		return "Phone"
	case strings.Contains(href, "/search"):
		return "Search"
	case strings.Contains(href, "/login"), strings.Contains(href, "/signin"):
		return "Login"
	case strings.Contains(href, "/signup"), strings.Contains(href, "/register"):
		return "Sign Up"
	}

	m := lastSegmentPattern.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	segment := m[1]
	if len([]rune(segment)) <= 2 || isAllDigits(segment) {
		return ""
	}
	label := collapseSpace(separatorReplacer.Replace(segment))
	if isAllLower(label) {
		label = titleCase(label)
	}
	return truncate(label, maxHrefLabel)
}

func isAllLower(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsLower(r) {
			cased = true
		}
	}
	return cased
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
