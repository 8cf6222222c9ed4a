package mcp

import (
	"context"
	"fmt"

	"webdeck/internal/browser"
	"webdeck/internal/journal"
	"webdeck/internal/snapshot"
)

// PageStateTool re-renders the current snapshot without touching the browser.
type PageStateTool struct {
	browser *browser.Browser
}

func (t *PageStateTool) Name() string { return "web_state" }

func (t *PageStateTool) Description() string {
	return `Return the current page without navigating or re-snapshotting.

Formats: "text" (default, full inline view), "compact" (title, element counts
and top links), "json" (structured elements for programmatic use). Cheap to
call; use it to re-read ids after the view scrolled out of your context.

EXAMPLE: web_state(format: "compact")`
}

func (t *PageStateTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"format": map[string]interface{}{
				"type":        "string",
				"description": "Output format (default text)",
				"enum":        []string{"text", "compact", "json"},
			},
		},
	}
}

func (t *PageStateTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	switch format := stringArg(args, "format"); format {
	case "", "text":
		return t.browser.Render(snapshot.ModeInline), nil
	case "compact":
		return t.browser.Render(snapshot.ModeCompact), nil
	case "json":
		return t.browser.State().Doc(), nil
	default:
		return map[string]interface{}{
			"success": false,
			"error":   fmt.Sprintf("unknown format %q, want text, compact or json", format),
		}, nil
	}
}

// ReadContentTool extracts the readable article text of the current page.
type ReadContentTool struct {
	browser *browser.Browser
}

func (t *ReadContentTool) Name() string { return "web_read" }

func (t *ReadContentTool) Description() string {
	return `Extract the readable main content of the current page as plain text.

Strips navigation, ads, sidebars and scripts, preferring the page's main or
article region. Output is capped at max_length characters (default 5000)
with a truncation note when cut short.

EXAMPLE: web_read(max_length: 2000)`
}

func (t *ReadContentTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"max_length": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum characters to return (default 5000)",
			},
		},
	}
}

func (t *ReadContentTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	maxLen := intArg(args, "max_length", 0)

	if err := t.browser.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting browser: %w", err)
	}
	text, err := t.browser.ReadContent(ctx, maxLen)
	if err != nil {
		return nil, err
	}
	return text, nil
}

// JournalTool reports what the session has done so far.
type JournalTool struct {
	journal *journal.Journal
}

func (t *JournalTool) Name() string { return "web_journal" }

func (t *JournalTool) Description() string {
	return `Report the session's recent activity as facts.

Each fact is a (predicate, args, timestamp) tuple. Predicates:
navigation_event, click_event, fill_event, select_event, scroll_event,
history_event, snapshot_event. Filter with predicate; limit caps the count
(default 20, newest facts win).

EXAMPLE: web_journal(predicate: "navigation_event", limit: 10)`
}

func (t *JournalTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"predicate": map[string]interface{}{
				"type":        "string",
				"description": "Only return facts with this predicate (empty for all)",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of facts to return (default 20)",
			},
		},
	}
}

func (t *JournalTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	predicate := stringArg(args, "predicate")
	limit := intArg(args, "limit", 20)
	if limit <= 0 {
		limit = 20
	}

	var facts []journal.Fact
	if predicate == "" {
		facts = t.journal.Facts()
	} else {
		facts = t.journal.ByPredicate(predicate)
	}
	if len(facts) > limit {
		facts = facts[len(facts)-limit:]
	}

	return map[string]interface{}{
		"count": len(facts),
		"facts": facts,
	}, nil
}
