// Package snapshot turns the bracket-marker text serialization of a web
// page's interactive surface (e.g. `[77]<a/>` followed by tab-indented link
// text) into a categorized, labeled element model, and renders that model
// back into textual views for terminal users and LLM consumers.
package snapshot

import "strings"

// Kind classifies an interactive element.
type Kind string

const (
	KindLink   Kind = "link"
	KindButton Kind = "button"
	KindInput  Kind = "input"
	KindSelect Kind = "select"
)

// PageElement is one actionable item in a PageState. The ID is the kind
// letter plus a 1-based sequence number scoped to one state ("L3", "B1").
// RawID is the marker id from the snapshot that produced the state and is
// meaningless against any other snapshot.
type PageElement struct {
	ID        string
	Kind      Kind
	Label     string
	RawID     string
	Href      string // links only
	InputKind string // inputs only, default "text"
	AttrsRaw  string
}

// PageState is the classified result of one snapshot. It is immutable once
// built: actions replace the whole state, they never mutate it.
type PageState struct {
	URL     string
	Title   string
	Links   []PageElement
	Buttons []PageElement
	Inputs  []PageElement
	Selects []PageElement

	// RawIDToTag records every marker seen, including discarded ones
	// (hidden inputs, anchor-only links, empty buttons).
	RawIDToTag map[string]string

	// RawText is the full snapshot the state was built from.
	RawText string
}

// Find returns the element with the given ID ("L3", "B1", ...). IDs are
// compared exactly; callers accepting user input should upcase first.
func (s *PageState) Find(id string) (*PageElement, bool) {
	for _, seq := range [][]PageElement{s.Links, s.Buttons, s.Inputs, s.Selects} {
		for i := range seq {
			if seq[i].ID == id {
				return &seq[i], true
			}
		}
	}
	return nil, false
}

// Total counts interactive elements across all kinds.
func (s *PageState) Total() int {
	return len(s.Links) + len(s.Buttons) + len(s.Inputs) + len(s.Selects)
}

// StateDoc is the JSON export projection of a PageState. It is written out
// for diagnostics and downstream consumers; it is never parsed back.
type StateDoc struct {
	URL          string      `json:"url"`
	Title        string      `json:"title"`
	Links        []LinkDoc   `json:"links"`
	Buttons      []ButtonDoc `json:"buttons"`
	Inputs       []InputDoc  `json:"inputs"`
	Selects      []SelectDoc `json:"selects"`
	ElementCount int         `json:"element_count"`
}

type LinkDoc struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`
}

type ButtonDoc struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type InputDoc struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type SelectDoc struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Doc builds the export projection.
func (s *PageState) Doc() StateDoc {
	doc := StateDoc{
		URL:          s.URL,
		Title:        s.Title,
		Links:        make([]LinkDoc, 0, len(s.Links)),
		Buttons:      make([]ButtonDoc, 0, len(s.Buttons)),
		Inputs:       make([]InputDoc, 0, len(s.Inputs)),
		Selects:      make([]SelectDoc, 0, len(s.Selects)),
		ElementCount: s.Total(),
	}
	for _, el := range s.Links {
		doc.Links = append(doc.Links, LinkDoc{ID: el.ID, Label: el.Label, Href: el.Href})
	}
	for _, el := range s.Buttons {
		doc.Buttons = append(doc.Buttons, ButtonDoc{ID: el.ID, Label: el.Label})
	}
	for _, el := range s.Inputs {
		doc.Inputs = append(doc.Inputs, InputDoc{ID: el.ID, Label: el.Label, Type: el.InputKind})
	}
	for _, el := range s.Selects {
		doc.Selects = append(doc.Selects, SelectDoc{ID: el.ID, Label: el.Label})
	}
	return doc
}

// truncate caps s at max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// collapseSpace reduces whitespace runs to single spaces and trims.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
