package snapshot

import (
	"fmt"
	"strings"
	"testing"
)

func TestRenderMenuEmptyState(t *testing.T) {
	state := BuildState("", "", "")
	out := RenderMenu(state, Limits{})

	if !strings.Contains(out, "Found 0 interactive elements") {
		t.Errorf("expected element count line, got:\n%s", out)
	}
	if !strings.Contains(out, "(No Title)") {
		t.Errorf("expected title placeholder, got:\n%s", out)
	}
	if !strings.Contains(out, "COMMANDS:") {
		t.Errorf("expected help footer, got:\n%s", out)
	}
	if strings.Contains(out, "LINKS") || strings.Contains(out, "BUTTONS") {
		t.Errorf("empty state must not render sections, got:\n%s", out)
	}
}

func TestRenderMenuSections(t *testing.T) {
	raw := "[1]<a href=\"/a\">\n\tAlpha link\n" +
		"[2]<button>\n\tBeta button\n" +
		"[3]<input type=\"email\" placeholder=\"Your email\"/>\n" +
		"[4]<select>\n\tCountry picker\n"
	state := BuildState("My Page", "https://example.com", raw)
	out := RenderMenu(state, Limits{})

	for _, want := range []string{
		"Found 4 interactive elements",
		"LINKS (1 total, showing first 1)",
		"[L1  ] Alpha link",
		"BUTTONS (1)",
		"[B1  ] Beta button",
		"INPUT FIELDS (1)",
		"[I1  ] Your email (email)",
		"DROPDOWNS (1)",
		"[S1  ] Country picker",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in menu render, got:\n%s", want, out)
		}
	}
}

func TestRenderMenuLinkCapTrailer(t *testing.T) {
	var raw strings.Builder
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&raw, "[%d]<a href=\"/page-%d\">\n\tLink number %d\n", i, i, i)
	}
	state := BuildState("t", "u", raw.String())
	out := RenderMenu(state, Limits{MaxLinks: 2})

	if !strings.Contains(out, "LINKS (5 total, showing first 2)") {
		t.Errorf("expected capped section header, got:\n%s", out)
	}
	if !strings.Contains(out, "... and 3 more links") {
		t.Errorf("expected overflow trailer, got:\n%s", out)
	}
	if strings.Contains(out, "Link number 3") {
		t.Errorf("links past the cap must not render, got:\n%s", out)
	}
}

func TestRenderMenuHeaderTruncation(t *testing.T) {
	longURL := "https://example.com/" + strings.Repeat("p/", 40)
	state := BuildState(strings.Repeat("T", 80), longURL, "")
	out := RenderMenu(state, Limits{})

	if !strings.Contains(out, strings.Repeat("T", 54)) {
		t.Errorf("expected truncated title, got:\n%s", out)
	}
	if strings.Contains(out, strings.Repeat("T", 55)) {
		t.Errorf("title must be capped at 54 chars, got:\n%s", out)
	}
	if !strings.Contains(out, "...") {
		t.Errorf("expected ellipsis on long url, got:\n%s", out)
	}
}

func TestRenderCompact(t *testing.T) {
	var raw strings.Builder
	for i := 1; i <= 25; i++ {
		fmt.Fprintf(&raw, "[%d]<a href=\"/page-%d\">\n\tLink number %d\n", i, i, i)
	}
	raw.WriteString("[30]<button>\n\tPress me\n")
	raw.WriteString("[31]<input placeholder=\"Search box\"/>\n")
	raw.WriteString("[32]<select>\n\tPicker\n")
	state := BuildState("My Page", "https://example.com", raw.String())
	out := RenderCompact(state)

	if !strings.Contains(out, "# My Page") || !strings.Contains(out, "URL: https://example.com") {
		t.Errorf("expected compact header, got:\n%s", out)
	}
	if got := strings.Count(out, "[L"); got != 20 {
		t.Errorf("expected 20 links in compact render, got %d", got)
	}
	if !strings.Contains(out, "[B1] Press me") {
		t.Errorf("expected button line, got:\n%s", out)
	}
	if !strings.Contains(out, "[I1] Search box") {
		t.Errorf("expected input line, got:\n%s", out)
	}
	if strings.Contains(out, "[S1]") {
		t.Errorf("compact render must not list selects, got:\n%s", out)
	}
	if !strings.Contains(out, "Actions: click(id), fill(id, value), scroll(up/down)") {
		t.Errorf("expected actions trailer, got:\n%s", out)
	}
}

func TestRenderInlineInterleavesProse(t *testing.T) {
	raw := "Welcome to the documentation\n" +
		"[1]<a href=\"/docs/intro\">\n\tGetting Started\n" +
		"Closing remarks follow here\n"
	state := BuildState("Docs", "https://example.com/docs", raw)
	out := RenderInline(state, Limits{})

	idxProse := strings.Index(out, "Welcome to the documentation")
	idxLink := strings.Index(out, "[L1] Getting Started")
	idxTail := strings.Index(out, "Closing remarks follow here")
	if idxProse < 0 || idxLink < 0 || idxTail < 0 {
		t.Fatalf("expected prose and element lines, got:\n%s", out)
	}
	if !(idxProse < idxLink && idxLink < idxTail) {
		t.Errorf("expected document order preserved, got:\n%s", out)
	}
	if !strings.Contains(out, "1 interactive elements") {
		t.Errorf("expected stats line, got:\n%s", out)
	}
	if !strings.Contains(out, `click L#/B# │ fill I# "text"`) {
		t.Errorf("expected help footer, got:\n%s", out)
	}
}

func TestRenderInlineElementShapes(t *testing.T) {
	raw := "[1]<input type=\"search\" placeholder=\"Find things\"/>\n" +
		"[2]<select>\n\tRegionChoice\n"
	state := BuildState("t", "u", raw)
	out := RenderInline(state, Limits{})

	if !strings.Contains(out, "[I1] [___Find things___] (search)") {
		t.Errorf("expected input shape, got:\n%s", out)
	}
	if !strings.Contains(out, "[S1] [▼ RegionChoice]") {
		t.Errorf("expected select shape, got:\n%s", out)
	}
}

func TestRenderInlineDedup(t *testing.T) {
	raw := "Getting Started\n" +
		"[1]<a href=\"/docs\">\n\tGetting Started\n"
	state := BuildState("t", "u", raw)
	out := RenderInline(state, Limits{})

	if !strings.Contains(out, "Getting Started") {
		t.Fatalf("expected prose block, got:\n%s", out)
	}
	if strings.Contains(out, "[L1]") {
		t.Errorf("marker duplicating prose must be skipped, got:\n%s", out)
	}
}

func TestRenderInlineAddToCartLinksSkipped(t *testing.T) {
	raw := "[1]<a href=\"/cart/add\" aria-label=\"Add to Cart\"/>\n" +
		"[2]<button>\n\tAdd to Cart\n"
	state := BuildState("t", "u", raw)
	out := RenderInline(state, Limits{})

	if strings.Contains(out, "[L1]") {
		t.Errorf("add to cart link must be skipped, got:\n%s", out)
	}
	if !strings.Contains(out, "[B1] Add to Cart") {
		t.Errorf("add to cart button must be kept, got:\n%s", out)
	}
}

func TestRenderInlineSkipsMarkersOutsideState(t *testing.T) {
	raw := "[1]<div>\n\tJust structure\n[2]<a href=\"/real\">\n\tReal link\n"
	state := BuildState("t", "u", raw)
	out := RenderInline(state, Limits{})

	if !strings.Contains(out, "[L1] Real link") {
		t.Errorf("expected the real link, got:\n%s", out)
	}
	if strings.Contains(out, "[1]") {
		t.Errorf("non-element markers must not render, got:\n%s", out)
	}
}

func TestRenderInlineBudgetTruncation(t *testing.T) {
	var raw strings.Builder
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&raw, "[%d]<a href=\"/page-%d\">\n\tUnique link label number %d\n", i, i, i)
	}
	state := BuildState("t", "u", raw.String())
	out := RenderInline(state, Limits{MaxChars: 60})

	if !strings.Contains(out, "... (content truncated, use 'scroll down' for more)") {
		t.Errorf("expected truncation notice, got:\n%s", out)
	}
	if strings.Contains(out, "─── Page Content ───") {
		t.Errorf("rich pages must not get the plain dump, got:\n%s", out)
	}
}

func TestRenderInlinePlainDumpForSparsePages(t *testing.T) {
	raw := "A single paragraph of article text with nothing interactive around it\n"
	state := BuildState("Article", "https://example.com/post", raw)
	out := RenderInline(state, Limits{})

	if !strings.Contains(out, "─── Page Content ───") {
		t.Errorf("expected plain content dump, got:\n%s", out)
	}
	if !strings.Contains(out, "A single paragraph of article text") {
		t.Errorf("expected article text in dump, got:\n%s", out)
	}
}

func TestRenderDispatch(t *testing.T) {
	state := BuildState("Page", "https://example.com", "[1]<a href=\"/a\">\n\tAlpha\n")

	if out := Render(state, ModeCompact, Limits{}); !strings.Contains(out, "# Page") {
		t.Errorf("compact dispatch failed:\n%s", out)
	}
	if out := Render(state, ModeInline, Limits{}); !strings.Contains(out, "[L1] Alpha") {
		t.Errorf("inline dispatch failed:\n%s", out)
	}
	if out := Render(state, ModeMenu, Limits{}); !strings.Contains(out, "COMMANDS:") {
		t.Errorf("menu dispatch failed:\n%s", out)
	}
	if out := Render(state, Mode("bogus"), Limits{}); !strings.Contains(out, "COMMANDS:") {
		t.Errorf("unknown mode must fall back to menu:\n%s", out)
	}
}

func TestWrapPlainText(t *testing.T) {
	words := strings.Repeat("word ", 30)
	lines := wrapPlainText(words)
	if len(lines) == 0 {
		t.Fatal("expected wrapped output")
	}
	for _, line := range lines {
		if len(line) > 70 {
			t.Errorf("line exceeds wrap width: %q", line)
		}
	}
}
