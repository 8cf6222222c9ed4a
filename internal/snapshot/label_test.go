package snapshot

import "testing"

func TestExtractLabel(t *testing.T) {
	tests := []struct {
		name     string
		attrs    string
		fallback string
		want     string
	}{
		{
			name:  "aria-label beats title regardless of attribute order",
			attrs: `title="Tooltip text" aria-label="Close dialog"`,
			want:  "Close dialog",
		},
		{
			name:  "noise value skipped in favor of later attribute",
			attrs: `value="Submit" name="search_box"`,
			want:  "Search Box",
		},
		{
			name:  "multiword quoted value survives intact",
			attrs: `placeholder="Search the docs"`,
			want:  "Search the docs",
		},
		{
			name:  "separators become spaces and lowercase is title-cased",
			attrs: `aria-label="user_profile-settings"`,
			want:  "User Profile Settings",
		},
		{
			name:  "leading role word dropped",
			attrs: `aria-label="btn-download"`,
			want:  "Download",
		},
		{
			name:  "trailing role word dropped",
			attrs: `alt="search icon"`,
			want:  "Search",
		},
		{
			name:  "role word inside a larger word is kept",
			attrs: `aria-label="navigation"`,
			want:  "Navigation",
		},
		{
			name:  "mixed case value kept as written",
			attrs: `value="Add to Cart"`,
			want:  "Add to Cart",
		},
		{
			name:  "semantic id",
			attrs: `id="main-menu"`,
			want:  "Main Menu",
		},
		{
			name:     "opaque id rejected",
			attrs:    `id="a1b2c3"`,
			fallback: "fb",
			want:     "fb",
		},
		{
			name:     "generated react id rejected",
			attrs:    `id=":r5:"`,
			fallback: "fb",
			want:     "fb",
		},
		{
			name:     "short id rejected",
			attrs:    `id="nv"`,
			fallback: "fb",
			want:     "fb",
		},
		{
			name:  "class vocabulary hit",
			attrs: `class="btn btn-search-icon"`,
			want:  "Search",
		},
		{
			name:  "mailto href",
			attrs: `href="mailto:team@example.com"`,
			want:  "Email",
		},
		{
			name:  "tel href",
			attrs: `href="tel:+15551234"`,
			want:  "Phone",
		},
		{
			name:  "search path href",
			attrs: `href="/search?q=go"`,
			want:  "Search",
		},
		{
			name:  "signin path href",
			attrs: `href="/account/signin"`,
			want:  "Login",
		},
		{
			name:  "register path href",
			attrs: `href="/register"`,
			want:  "Sign Up",
		},
		{
			name:  "last path segment href",
			attrs: `href="/docs/getting-started"`,
			want:  "Getting Started",
		},
		{
			name:     "numeric path segment rejected",
			attrs:    `href="/posts/12345"`,
			fallback: "fb",
			want:     "fb",
		},
		{
			name:     "short path segment rejected",
			attrs:    `href="/ab"`,
			fallback: "fb",
			want:     "fb",
		},
		{
			name:     "bare anchor href rejected",
			attrs:    `href="#"`,
			fallback: "fb",
			want:     "fb",
		},
		{
			name:     "no attributes returns fallback",
			attrs:    "",
			fallback: "fallback",
			want:     "fallback",
		},
		{
			name:     "empty fallback means no usable label",
			attrs:    `value="1"`,
			fallback: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractLabel(tt.attrs, tt.fallback); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtractLabelCap(t *testing.T) {
	got := ExtractLabel(`aria-label="This Is A Very Long Label That Goes On And On Forever"`, "")
	if len([]rune(got)) != maxAttrLabel {
		t.Errorf("expected label capped at %d runes, got %d: %q", maxAttrLabel, len([]rune(got)), got)
	}
}

func TestLabelFromHrefSegmentCap(t *testing.T) {
	got := ExtractLabel(`href="/category/extremely-long-segment-name-for-testing-caps"`, "")
	if len([]rune(got)) != maxHrefLabel {
		t.Errorf("expected label capped at %d runes, got %d: %q", maxHrefLabel, len([]rune(got)), got)
	}
}
