package snapshot

import (
	"regexp"
	"strings"
)

// RawMarker is one parsed `[id]<tag attrs/>` token plus the cleaned text of
// its trailing block. Produced and consumed within a single parse pass.
type RawMarker struct {
	RawID    string
	Tag      string // lowercased
	AttrsRaw string
	Text     string
}

const maxMarkerText = 50

var (
	// markerPattern recognizes `[123]<tag ...>` anywhere in a line. The
	// attrs group is non-greedy so a self-closing slash stays out of it.
	markerPattern = regexp.MustCompile(`\[(\d+)\]<([a-zA-Z0-9]+)([^>]*?)/?>`)

	// nestedMarkerPattern matches marker substrings inside trailing text,
	// including the `*` prefix some snapshots put on fresh elements.
	nestedMarkerPattern = regexp.MustCompile(`\s*\*?\[\d+\]<[^>]+>\s*`)

	htmlCommentPattern = regexp.MustCompile(`<!--[^>]*-->`)
	nestedAriaPattern  = regexp.MustCompile(`aria-label=([^/>\]]+)`)
)

type scanState int

const (
	seekMarker scanState = iota
	accumulateText
)

// markerAccum is a marker whose trailing block is still being collected.
type markerAccum struct {
	marker RawMarker
	block  []string
	aria   string // first aria-label seen anywhere in the block
}

// ParseMarkers splits snapshot text into ordered RawMarkers. The scanner has
// two states: seeking the next marker line, and accumulating the tab-indented
// block that follows one. A marker's block runs to the next non-indented line,
// so an indented marker inside that block feeds the enclosing blocks (where
// cleanup reduces it to a delimiter) and simultaneously opens its own element
// whose block is the remainder of the run. If a block yields no visible text
// but carried an aria-label, that label stands in for the text. Lines that
// match neither role are structural noise and are skipped; malformed marker
// syntax is never an error, the parser is total over arbitrary input.
func ParseMarkers(rawText string) []RawMarker {
	var (
		markers []RawMarker
		open    []*markerAccum
		state   = seekMarker
	)

	flushOpen := func() {
		for _, acc := range open {
			m := acc.marker
			m.Text = cleanMarkerText(strings.Join(acc.block, " "))
			if m.Text == "" && acc.aria != "" {
				m.Text = truncate(acc.aria, maxMarkerText)
			}
			markers = append(markers, m)
		}
		open = nil
		state = seekMarker
	}

	for _, line := range strings.Split(rawText, "\n") {
		if state == accumulateText && strings.HasPrefix(line, "\t") {
			content := strings.TrimSpace(line)
			for _, acc := range open {
				acc.block = append(acc.block, content)
				if acc.aria == "" {
					if m := nestedAriaPattern.FindStringSubmatch(content); m != nil {
						acc.aria = strings.Trim(strings.TrimSpace(m[1]), `"'`)
					}
				}
			}
			if m := markerPattern.FindStringSubmatch(line); m != nil {
				open = append(open, openMarker(m))
			}
			continue
		}

		flushOpen()
		if m := markerPattern.FindStringSubmatch(line); m != nil {
			open = append(open, openMarker(m))
			state = accumulateText
		}
	}
	flushOpen()

	return markers
}

func openMarker(m []string) *markerAccum {
	return &markerAccum{marker: RawMarker{
		RawID:    m[1],
		Tag:      strings.ToLower(m[2]),
		AttrsRaw: strings.TrimSpace(m[3]),
	}}
}

// cleanMarkerText normalizes an accumulated trailing block: nested marker
// substrings become delimiters and only the segment before the first
// delimiter survives (nested markers belong to their own elements), HTML
// comments are stripped, whitespace runs collapse, and the result is capped.
func cleanMarkerText(text string) string {
	text = nestedMarkerPattern.ReplaceAllString(text, "|")
	if i := strings.IndexByte(text, '|'); i >= 0 {
		text = text[:i]
	}
	text = htmlCommentPattern.ReplaceAllString(text, "")
	return truncate(collapseSpace(text), maxMarkerText)
}
