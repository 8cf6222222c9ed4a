package snapshot

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Per-kind label caps applied at acceptance time.
const (
	maxLinkLabel   = 50
	maxButtonLabel = 30
	maxInputLabel  = 50
	maxSelectLabel = 50
)

// BuildState parses snapshot text and classifies every marker into the
// categorized element model. It is a pure function: the same (title, url,
// rawText) triple always produces a structurally identical PageState.
func BuildState(title, url, rawText string) *PageState {
	state := &PageState{
		URL:        url,
		Title:      title,
		RawIDToTag: make(map[string]string),
		RawText:    rawText,
	}
	for _, m := range ParseMarkers(rawText) {
		classify(state, m)
	}
	return state
}

// classify applies the per-tag decision table to one marker. Every marker
// lands in RawIDToTag; only markers that yield a usable label become
// elements, and sequence numbers are handed out per kind at acceptance, so
// ids stay dense no matter how many candidates are discarded.
func classify(state *PageState, m RawMarker) {
	state.RawIDToTag[m.RawID] = m.Tag
	attrs := parseAttrs(m.AttrsRaw)

	switch m.Tag {
	case "a":
		href, _ := attrValue(attrs, "href")
		if uselessHref(href) && m.Text == "" {
			return
		}
		label := m.Text
		if label == "" {
			label = extractLabel(attrs, "")
		}
		if label == "" {
			return
		}
		state.Links = append(state.Links, PageElement{
			ID:       fmt.Sprintf("L%d", len(state.Links)+1),
			Kind:     KindLink,
			Label:    truncate(label, maxLinkLabel),
			RawID:    m.RawID,
			Href:     href,
			AttrsRaw: m.AttrsRaw,
		})

	case "button":
		label := m.Text
		if label == "" {
			label = extractLabel(attrs, "")
		}
		if label == "" {
			return
		}
		state.Buttons = append(state.Buttons, PageElement{
			ID:       fmt.Sprintf("B%d", len(state.Buttons)+1),
			Kind:     KindButton,
			Label:    truncate(label, maxButtonLabel),
			RawID:    m.RawID,
			AttrsRaw: m.AttrsRaw,
		})

	case "input", "textarea":
		inputType, _ := attrValue(attrs, "type")
		if inputType == "" {
			inputType = "text"
		}
		switch strings.ToLower(inputType) {
		case "submit", "button":
			label, _ := attrValue(attrs, "value")
			if label == "" {
				label = "Submit"
			}
			state.Buttons = append(state.Buttons, PageElement{
				ID:       fmt.Sprintf("B%d", len(state.Buttons)+1),
				Kind:     KindButton,
				Label:    truncate(label, maxButtonLabel),
				RawID:    m.RawID,
				AttrsRaw: m.AttrsRaw,
			})
			return
		case "hidden":
			return
		}
		n := len(state.Inputs) + 1
		label := m.Text
		if label == "" {
			label = inputFallbackLabel(attrs)
		}
		if label == "" {
			label = fmt.Sprintf("input-%d", n)
		}
		state.Inputs = append(state.Inputs, PageElement{
			ID:        fmt.Sprintf("I%d", n),
			Kind:      KindInput,
			Label:     truncate(label, maxInputLabel),
			RawID:     m.RawID,
			InputKind: inputType,
			AttrsRaw:  m.AttrsRaw,
		})

	case "select":
		n := len(state.Selects) + 1
		label := m.Text
		if label == "" {
			label = fmt.Sprintf("select-%d", n)
		}
		state.Selects = append(state.Selects, PageElement{
			ID:       fmt.Sprintf("S%d", n),
			Kind:     KindSelect,
			Label:    truncate(label, maxSelectLabel),
			RawID:    m.RawID,
			AttrsRaw: m.AttrsRaw,
		})
	}
}

// uselessHref reports whether a link target goes nowhere: empty, a bare
// anchor, or a javascript: no-op, with or without a trailing semicolon.
func uselessHref(href string) bool {
	href = strings.TrimSuffix(href, ";")
	switch href {
	case "", "#", "javascript:void(0)", "javascript:":
		return true
	}
	return false
}

// inputFallbackLabel names an unlabeled input from its most descriptive
// attribute, expanding terse form-field abbreviations.
func inputFallbackLabel(attrs []html.Attribute) string {
	for _, name := range []string{"placeholder", "name", "aria-label", "id"} {
		val, ok := attrValue(attrs, name)
		if !ok || val == "" {
			continue
		}
		label := collapseSpace(separatorReplacer.Replace(val))
		switch strings.ToLower(label) {
		case "pw":
			return "password"
		case "acct":
			return "username"
		}
		return label
	}
	return ""
}
