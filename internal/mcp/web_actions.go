package mcp

import (
	"context"
	"fmt"

	"webdeck/internal/browser"
	"webdeck/internal/snapshot"
)

// GotoTool navigates the browser to a URL.
type GotoTool struct {
	browser *browser.Browser
}

func (t *GotoTool) Name() string { return "web_goto" }

func (t *GotoTool) Description() string {
	return `Navigate the browser to a URL and return the page as text.

The response is a terminal-style view: page prose with interactive elements
inlined as short ids (L1=link, B2=button, I3=input, S4=select). Use those ids
with web_click, web_fill and web_select. Bare domains get https:// prepended.

EXAMPLE: web_goto(url: "news.ycombinator.com")`
}

func (t *GotoTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "Destination URL. Scheme is optional, https is assumed.",
			},
		},
		"required": []string{"url"},
	}
}

func (t *GotoTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url := stringArg(args, "url")
	if url == "" {
		return map[string]interface{}{"success": false, "error": "url is required"}, nil
	}

	if err := t.browser.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting browser: %w", err)
	}
	if _, err := t.browser.Goto(ctx, url); err != nil {
		return nil, err
	}
	return t.browser.Render(snapshot.ModeInline), nil
}

// SearchTool runs a web search and lands on the results page.
type SearchTool struct {
	browser *browser.Browser
}

func (t *SearchTool) Name() string { return "web_search" }

func (t *SearchTool) Description() string {
	return `Search the web and return the results page as text.

Engines: "brave" (default), "ddg" (DuckDuckGo HTML, lightest), "searx".
Result links appear as L ids; follow one with web_click.

EXAMPLE: web_search(query: "rod headless browser", engine: "ddg")`
}

func (t *SearchTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search query",
			},
			"engine": map[string]interface{}{
				"type":        "string",
				"description": "Search engine to use (default brave)",
				"enum":        []string{"brave", "ddg", "searx"},
			},
		},
		"required": []string{"query"},
	}
}

func (t *SearchTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	query := stringArg(args, "query")
	if query == "" {
		return map[string]interface{}{"success": false, "error": "query is required"}, nil
	}
	engine := stringArg(args, "engine")

	if err := t.browser.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting browser: %w", err)
	}
	if _, err := t.browser.Search(ctx, query, engine); err != nil {
		return nil, err
	}
	return t.browser.Render(snapshot.ModeInline), nil
}

// ClickTool clicks an element by its menu id.
type ClickTool struct {
	browser *browser.Browser
}

func (t *ClickTool) Name() string { return "web_click" }

func (t *ClickTool) Description() string {
	return `Click an element by the id shown in the page view (L3 for the third
link, B1 for the first button) and return the page after the click.

Ids belong to the current snapshot. If the page changed underneath them the
call fails with a stale-element error; re-read the page with web_state and
use a fresh id.

EXAMPLE: web_click(element_id: "L3")`
}

func (t *ClickTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"element_id": map[string]interface{}{
				"type":        "string",
				"description": "Element id from the rendered page, e.g. L3 or B1",
			},
		},
		"required": []string{"element_id"},
	}
}

func (t *ClickTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	id := stringArg(args, "element_id")
	if id == "" {
		return map[string]interface{}{"success": false, "error": "element_id is required"}, nil
	}

	if err := t.browser.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting browser: %w", err)
	}
	if _, err := t.browser.Click(ctx, id); err != nil {
		return nil, err
	}
	return t.browser.Render(snapshot.ModeInline), nil
}

// FillTool types text into an input or textarea.
type FillTool struct {
	browser *browser.Browser
}

func (t *FillTool) Name() string { return "web_fill" }

func (t *FillTool) Description() string {
	return `Fill an input field (I ids) with text, replacing its current value.
An empty value clears the field. Returns the page after the fill.

EXAMPLE: web_fill(element_id: "I1", value: "golang rod tutorial")`
}

func (t *FillTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"element_id": map[string]interface{}{
				"type":        "string",
				"description": "Input id from the rendered page, e.g. I1",
			},
			"value": map[string]interface{}{
				"type":        "string",
				"description": "Text to type into the field",
			},
		},
		"required": []string{"element_id", "value"},
	}
}

func (t *FillTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	id := stringArg(args, "element_id")
	if id == "" {
		return map[string]interface{}{"success": false, "error": "element_id is required"}, nil
	}
	value := stringArg(args, "value")

	if err := t.browser.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting browser: %w", err)
	}
	if _, err := t.browser.Fill(ctx, id, value); err != nil {
		return nil, err
	}
	return t.browser.Render(snapshot.ModeInline), nil
}

// SelectOptionTool chooses an option in a dropdown.
type SelectOptionTool struct {
	browser *browser.Browser
}

func (t *SelectOptionTool) Name() string { return "web_select" }

func (t *SelectOptionTool) Description() string {
	return `Choose an option in a dropdown (S ids). The value is matched against
option values first, then against visible option text. Returns the page after
the selection.

EXAMPLE: web_select(element_id: "S1", value: "en-US")`
}

func (t *SelectOptionTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"element_id": map[string]interface{}{
				"type":        "string",
				"description": "Select id from the rendered page, e.g. S1",
			},
			"value": map[string]interface{}{
				"type":        "string",
				"description": "Option value or visible option text",
			},
		},
		"required": []string{"element_id", "value"},
	}
}

func (t *SelectOptionTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	id := stringArg(args, "element_id")
	if id == "" {
		return map[string]interface{}{"success": false, "error": "element_id is required"}, nil
	}
	value := stringArg(args, "value")
	if value == "" {
		return map[string]interface{}{"success": false, "error": "value is required"}, nil
	}

	if err := t.browser.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting browser: %w", err)
	}
	if _, err := t.browser.SelectOption(ctx, id, value); err != nil {
		return nil, err
	}
	return t.browser.Render(snapshot.ModeInline), nil
}

// ScrollTool scrolls the page and re-snapshots.
type ScrollTool struct {
	browser *browser.Browser
}

func (t *ScrollTool) Name() string { return "web_scroll" }

func (t *ScrollTool) Description() string {
	return `Scroll the page up or down by half a screen and return the refreshed
view. Content below the fold gets new element ids after the scroll.`
}

func (t *ScrollTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"direction": map[string]interface{}{
				"type":        "string",
				"description": "Scroll direction (default down)",
				"enum":        []string{"up", "down"},
			},
		},
	}
}

func (t *ScrollTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	direction := stringArg(args, "direction")

	if err := t.browser.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting browser: %w", err)
	}
	if _, err := t.browser.Scroll(ctx, direction); err != nil {
		return nil, err
	}
	return t.browser.Render(snapshot.ModeInline), nil
}

// BackTool goes back one page in browser history.
type BackTool struct {
	browser *browser.Browser
}

func (t *BackTool) Name() string { return "web_back" }

func (t *BackTool) Description() string {
	return `Go back one page in browser history and return the page you land on.`
}

func (t *BackTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (t *BackTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if err := t.browser.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting browser: %w", err)
	}
	if _, err := t.browser.Back(ctx); err != nil {
		return nil, err
	}
	return t.browser.Render(snapshot.ModeInline), nil
}
