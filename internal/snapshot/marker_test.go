package snapshot

import "testing"

func TestParseMarkersSingleLink(t *testing.T) {
	markers := ParseMarkers("[5]<a href=\"/docs/intro\">\n\tGetting Started\n")
	if len(markers) != 1 {
		t.Fatalf("expected 1 marker, got %d: %#v", len(markers), markers)
	}
	m := markers[0]
	if m.RawID != "5" {
		t.Errorf("expected raw id %q, got %q", "5", m.RawID)
	}
	if m.Tag != "a" {
		t.Errorf("expected tag %q, got %q", "a", m.Tag)
	}
	if m.AttrsRaw != `href="/docs/intro"` {
		t.Errorf("unexpected attrs: %q", m.AttrsRaw)
	}
	if m.Text != "Getting Started" {
		t.Errorf("expected text %q, got %q", "Getting Started", m.Text)
	}
}

func TestParseMarkers(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []RawMarker
	}{
		{
			name: "marker without trailing text",
			raw:  "[9]<input type=\"hidden\" name=\"csrf\"/>\n",
			want: []RawMarker{{RawID: "9", Tag: "input", AttrsRaw: `type="hidden" name="csrf"`}},
		},
		{
			name: "tag is lowercased",
			raw:  "[3]<BUTTON>\n\tSave\n",
			want: []RawMarker{{RawID: "3", Tag: "button", Text: "Save"}},
		},
		{
			name: "multi-line text joined with single spaces",
			raw:  "[1]<a href=\"/a\">\n\tone\n\ttwo\n\tthree\n",
			want: []RawMarker{{RawID: "1", Tag: "a", AttrsRaw: `href="/a"`, Text: "one two three"}},
		},
		{
			name: "two markers split by non-indented line",
			raw:  "[1]<a href=\"/a\">\n\tFirst\n[2]<button>\n\tSecond\n",
			want: []RawMarker{
				{RawID: "1", Tag: "a", AttrsRaw: `href="/a"`, Text: "First"},
				{RawID: "2", Tag: "button", Text: "Second"},
			},
		},
		{
			name: "structural noise lines are ignored",
			raw:  "page header\n[4]<a href=\"/z\">\n\tZed\nfooter stuff\n",
			want: []RawMarker{{RawID: "4", Tag: "a", AttrsRaw: `href="/z"`, Text: "Zed"}},
		},
		{
			name: "html comments stripped from text",
			raw:  "[6]<div>\n\tHello <!-- hidden --> World\n",
			want: []RawMarker{{RawID: "6", Tag: "div", Text: "Hello World"}},
		},
		{
			name: "indented marker with no parent still parses",
			raw:  "\t[7]<a href=\"/q\">\n\tQueue\n",
			want: []RawMarker{{RawID: "7", Tag: "a", AttrsRaw: `href="/q"`, Text: "Queue"}},
		},
		{
			name: "malformed marker lines never error",
			raw:  "[12<a/>\n[x]<a/>\n[13]\nplain text\n",
			want: nil,
		},
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMarkers(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d markers, got %d: %#v", len(tt.want), len(got), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("marker[%d]: got %#v want %#v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseMarkersNestedMarker(t *testing.T) {
	// The nested img both cuts the parent's text and yields its own marker
	// whose block is the rest of the run.
	raw := "[4]<a href=\"/x\">\n\tIntro\n\t[6]<img alt=\"pic\"/>\n\ttail\n"
	markers := ParseMarkers(raw)
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d: %#v", len(markers), markers)
	}
	if markers[0].RawID != "4" || markers[0].Text != "Intro" {
		t.Errorf("parent marker: got %#v", markers[0])
	}
	if markers[1].RawID != "6" || markers[1].Tag != "img" || markers[1].Text != "tail" {
		t.Errorf("nested marker: got %#v", markers[1])
	}
}

func TestParseMarkersAriaFallback(t *testing.T) {
	// An aria-label on a nested element stands in when the block has no
	// visible text of its own.
	raw := "[7]<a href=\"/p\">\n\t[8]<h2 aria-label=\"Product Name\"/>\n"
	markers := ParseMarkers(raw)
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d: %#v", len(markers), markers)
	}
	if markers[0].Text != "Product Name" {
		t.Errorf("expected aria fallback text %q, got %q", "Product Name", markers[0].Text)
	}
	if markers[1].RawID != "8" || markers[1].Text != "" {
		t.Errorf("nested marker: got %#v", markers[1])
	}
}

func TestParseMarkersAriaLosesToVisibleText(t *testing.T) {
	raw := "[7]<a href=\"/p\">\n\tVisible words\n\t[8]<h2 aria-label=\"Product Name\"/>\n"
	markers := ParseMarkers(raw)
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d: %#v", len(markers), markers)
	}
	if markers[0].Text != "Visible words" {
		t.Errorf("expected visible text to win, got %q", markers[0].Text)
	}
}

func TestParseMarkersTextCap(t *testing.T) {
	long := "aaaaaaaaaabbbbbbbbbbccccccccccddddddddddeeeeeeeeeeffffffffff"
	markers := ParseMarkers("[1]<div>\n\t" + long + "\n")
	if len(markers) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(markers))
	}
	if len(markers[0].Text) != 50 {
		t.Errorf("expected text capped at 50, got %d: %q", len(markers[0].Text), markers[0].Text)
	}
}

func TestCleanMarkerText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "hello world", want: "hello world"},
		{name: "collapses whitespace", in: "  hello \t  world  ", want: "hello world"},
		{name: "cut at nested marker", in: "before [3]<span/> after", want: "before"},
		{name: "starred nested marker", in: "*[3]<span/> after", want: ""},
		{name: "comment removed", in: "keep <!-- drop me --> this", want: "keep this"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanMarkerText(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
