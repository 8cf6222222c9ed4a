package snapshot

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Mode selects one of the three pure render projections.
type Mode string

const (
	ModeMenu    Mode = "menu"
	ModeCompact Mode = "compact"
	ModeInline  Mode = "inline"
)

// Limits caps renderer output. Zero values select the defaults.
type Limits struct {
	MaxLinks   int
	MaxButtons int
	MaxChars   int
}

func (l Limits) withDefaults() Limits {
	if l.MaxLinks <= 0 {
		l.MaxLinks = 25
	}
	if l.MaxButtons <= 0 {
		l.MaxButtons = 15
	}
	if l.MaxChars <= 0 {
		l.MaxChars = 4000
	}
	return l
}

// Budget the inline render switches to when a page has few interactive
// elements and is therefore probably an article worth reading.
const inlineWideChars = 8000

var (
	markerScrubPattern = regexp.MustCompile(`\[\d+\]<[^>]+>`)
	shadowScrubPattern = regexp.MustCompile(`\|SHADOW\([^)]+\)\|`)
	scrollScrubPattern = regexp.MustCompile(`\|SCROLL[^|]*\|`)
)

// Render projects a state through the named mode. Unknown modes fall back to
// the verbose menu.
func Render(state *PageState, mode Mode, limits Limits) string {
	switch mode {
	case ModeCompact:
		return RenderCompact(state)
	case ModeInline:
		return RenderInline(state, limits)
	default:
		return RenderMenu(state, limits)
	}
}

// RenderMenu renders the boxed menu view: header, element count, one ruled
// section per non-empty kind, and the command footer. An empty state still
// renders the header and count.
func RenderMenu(state *PageState, limits Limits) string {
	limits = limits.withDefaults()
	rule := strings.Repeat("─", 60)

	lines := renderHeader(state)
	lines = append(lines, "", fmt.Sprintf("Found %d interactive elements", state.Total()))

	if len(state.Links) > 0 {
		shown := len(state.Links)
		if shown > limits.MaxLinks {
			shown = limits.MaxLinks
		}
		lines = append(lines, "", rule,
			fmt.Sprintf("LINKS (%d total, showing first %d)", len(state.Links), shown), rule)
		for _, link := range state.Links[:shown] {
			lines = append(lines, fmt.Sprintf("  [%-4s] %s", link.ID, truncate(link.Label, 45)))
		}
		if rest := len(state.Links) - shown; rest > 0 {
			lines = append(lines, fmt.Sprintf("  ... and %d more links", rest))
		}
	}

	if len(state.Buttons) > 0 {
		shown := len(state.Buttons)
		if shown > limits.MaxButtons {
			shown = limits.MaxButtons
		}
		lines = append(lines, "", rule, fmt.Sprintf("BUTTONS (%d)", len(state.Buttons)), rule)
		for _, btn := range state.Buttons[:shown] {
			lines = append(lines, fmt.Sprintf("  [%-4s] %s", btn.ID, btn.Label))
		}
		if rest := len(state.Buttons) - shown; rest > 0 {
			lines = append(lines, fmt.Sprintf("  ... and %d more buttons", rest))
		}
	}

	if len(state.Inputs) > 0 {
		lines = append(lines, "", rule, fmt.Sprintf("INPUT FIELDS (%d)", len(state.Inputs)), rule)
		for _, inp := range state.Inputs {
			lines = append(lines, fmt.Sprintf("  [%-4s] %s (%s)", inp.ID, inp.Label, inp.InputKind))
		}
	}

	if len(state.Selects) > 0 {
		lines = append(lines, "", rule, fmt.Sprintf("DROPDOWNS (%d)", len(state.Selects)), rule)
		for _, sel := range state.Selects {
			lines = append(lines, fmt.Sprintf("  [%-4s] %s", sel.ID, sel.Label))
		}
	}

	heavy := strings.Repeat("━", 60)
	lines = append(lines, "", heavy,
		"COMMANDS:",
		"   goto <url>  │  click <id>  │  fill <id> <text>",
		"   scroll up/down  │  back  │  json  │  quit",
		heavy)

	return strings.Join(lines, "\n")
}

// RenderCompact renders the minimal listing for token-constrained consumers.
func RenderCompact(state *PageState) string {
	lines := []string{"# " + state.Title, "URL: " + state.URL, ""}

	if len(state.Links) > 0 {
		lines = append(lines, "## Links")
		shown := state.Links
		if len(shown) > 20 {
			shown = shown[:20]
		}
		for _, link := range shown {
			lines = append(lines, fmt.Sprintf("[%s] %s", link.ID, link.Label))
		}
	}
	if len(state.Buttons) > 0 {
		lines = append(lines, "", "## Buttons")
		for _, btn := range state.Buttons {
			lines = append(lines, fmt.Sprintf("[%s] %s", btn.ID, btn.Label))
		}
	}
	if len(state.Inputs) > 0 {
		lines = append(lines, "", "## Inputs")
		for _, inp := range state.Inputs {
			lines = append(lines, fmt.Sprintf("[%s] %s", inp.ID, inp.Label))
		}
	}

	lines = append(lines, "", "Actions: click(id), fill(id, value), scroll(up/down)")
	return strings.Join(lines, "\n")
}

// RenderInline re-walks the raw snapshot and interleaves page prose with
// single-line entries for the interactive elements, so the reader sees
// elements in the context they appear in. Prose blocks and element labels
// share one de-duplication set keyed on a normalized prefix, which drops
// repeated navigation text and prose that merely restates a link.
func RenderInline(state *PageState, limits Limits) string {
	limits = limits.withDefaults()

	byRawID := make(map[string]PageElement, state.Total())
	for _, seq := range [][]PageElement{state.Links, state.Buttons, state.Inputs, state.Selects} {
		for _, el := range seq {
			byRawID[el.RawID] = el
		}
	}

	var (
		contentLines []string
		block        []string
		seen         = make(map[string]bool)
	)

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		text := collapseSpace(strings.Join(block, " "))
		block = nil
		if len([]rune(text)) <= 2 {
			return
		}
		key := dedupKey(text)
		if seen[key] {
			return
		}
		seen[key] = true
		contentLines = append(contentLines, "  "+truncate(text, 70))
	}

	for _, line := range strings.Split(state.RawText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := markerPattern.FindStringSubmatch(line)
		if m == nil {
			clean := markerScrubPattern.ReplaceAllString(line, "")
			clean = shadowScrubPattern.ReplaceAllString(clean, "")
			clean = strings.TrimSpace(clean)
			if len([]rune(clean)) > 1 {
				block = append(block, clean)
			}
			continue
		}
		flushBlock()

		el, ok := byRawID[m[1]]
		if !ok {
			continue
		}
		text := truncate(el.Label, 50)
		key := dedupKey(text)
		if key == "add to cart" && el.Kind == KindLink {
			continue
		}
		if key != "" {
			if seen[key] {
				continue
			}
			seen[key] = true
		}

		switch el.Kind {
		case KindLink, KindButton:
			contentLines = append(contentLines, fmt.Sprintf("  [%s] %s", el.ID, text))
		case KindInput:
			contentLines = append(contentLines, fmt.Sprintf("  [%s] [___%s___] (%s)", el.ID, text, el.InputKind))
		case KindSelect:
			contentLines = append(contentLines, fmt.Sprintf("  [%s] [▼ %s]", el.ID, text))
		}
	}
	flushBlock()

	lines := renderHeader(state)
	total := state.Total()
	lines = append(lines, "",
		fmt.Sprintf("%d interactive elements │ [L#]=link [B#]=button [I#]=input", total),
		strings.Repeat("─", 60))

	budget := limits.MaxChars
	if total < 10 && budget < inlineWideChars {
		budget = inlineWideChars
	}
	emitted := 0
	for _, cl := range contentLines {
		n := utf8.RuneCountInString(cl)
		if emitted+n > budget {
			lines = append(lines, "  ... (content truncated, use 'scroll down' for more)")
			break
		}
		lines = append(lines, cl)
		emitted += n
	}

	if len(contentLines) < 10 && state.RawText != "" {
		lines = append(lines, "", "─── Page Content ───")
		lines = append(lines, wrapPlainText(state.RawText)...)
	}

	heavy := strings.Repeat("━", 60)
	lines = append(lines, "", heavy,
		`click L#/B# │ fill I# "text" │ read │ scroll │ back │ quit`,
		heavy)

	return strings.Join(lines, "\n")
}

// dedupKey normalizes text for cross de-duplication between prose blocks and
// element labels: lowercased, whitespace collapsed, first 40 runes.
func dedupKey(s string) string {
	return truncate(strings.ToLower(collapseSpace(strings.TrimSpace(s))), 40)
}

// wrapPlainText scrubs every marker from the snapshot and word-wraps what
// remains, for pages where the inline walk extracted almost nothing.
func wrapPlainText(rawText string) []string {
	plain := markerScrubPattern.ReplaceAllString(rawText, "")
	plain = shadowScrubPattern.ReplaceAllString(plain, "")
	plain = scrollScrubPattern.ReplaceAllString(plain, "")

	var out []string
	current := ""
	emitted := 0
	for _, word := range strings.Fields(plain) {
		if emitted > 6000 {
			out = append(out, "  ... (use 'read' for full content)")
			return out
		}
		if current != "" && utf8.RuneCountInString(current)+utf8.RuneCountInString(word)+1 > 68 {
			out = append(out, "  "+current)
			emitted += utf8.RuneCountInString(current)
			current = word
			continue
		}
		if current == "" {
			current = word
		} else {
			current += " " + word
		}
	}
	if current != "" && emitted <= 6000 {
		out = append(out, "  "+current)
	}
	return out
}

func renderHeader(state *PageState) []string {
	title := state.Title
	if title == "" {
		title = "(No Title)"
	}
	title = truncate(title, 54)

	url := state.URL
	if utf8.RuneCountInString(url) > 54 {
		url = truncate(url, 51) + "..."
	}

	return []string{
		"",
		"╔" + strings.Repeat("═", 58) + "╗",
		"║ " + padRight(title, 56) + " ║",
		"╠" + strings.Repeat("═", 58) + "╣",
		"║ " + padRight(url, 56) + " ║",
		"╚" + strings.Repeat("═", 58) + "╝",
	}
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
