package main

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"webdeck/internal/browser"
	"webdeck/internal/config"
	"webdeck/internal/journal"
	"webdeck/internal/mcp"
	"webdeck/internal/snapshot"
)

// TestIntegrationServerLifecycle tests the full server initialization and
// lifecycle. This covers the main.go entry point which is normally untested.
func TestIntegrationServerLifecycle(t *testing.T) {
	// Test configuration loading and server initialization.
	// This simulates what main() does without actually running main().

	t.Run("Missing config falls back to defaults", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected os.ErrNotExist, got %v", err)
		}

		cfg := config.DefaultConfig()
		if cfg.Server.Name != "webdeck" {
			t.Errorf("default server name = %q, want webdeck", cfg.Server.Name)
		}
		if cfg.MCP.GetTransport() != "stdio" {
			t.Errorf("default transport = %q, want stdio", cfg.MCP.GetTransport())
		}
	})

	t.Run("SSE address override", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.MCP.Transport = "sse"
		cfg.MCP.SSEAddr = ":9931"

		if cfg.MCP.GetTransport() != "sse" {
			t.Errorf("transport = %q, want sse", cfg.MCP.GetTransport())
		}
		if cfg.MCP.GetSSEAddr() != ":9931" {
			t.Errorf("sse addr = %q, want :9931", cfg.MCP.GetSSEAddr())
		}
	})

	t.Run("Initialize journal", func(t *testing.T) {
		jr, err := journal.New(config.DefaultConfig().Journal)
		if err != nil {
			t.Fatalf("journal.New failed: %v", err)
		}
		if len(jr.Facts()) != 0 {
			t.Errorf("fresh journal has %d facts, want 0", len(jr.Facts()))
		}
	})

	t.Run("Initialize browser facade", func(t *testing.T) {
		cfg := config.DefaultConfig()
		jr, err := journal.New(cfg.Journal)
		if err != nil {
			t.Fatalf("journal.New failed: %v", err)
		}

		b := browser.New(cfg, jr, nil)
		if b == nil {
			t.Fatal("expected non-nil browser")
		}
		if b.Started() {
			t.Error("browser should not be started before Start()")
		}
	})

	t.Run("Initialize MCP server", func(t *testing.T) {
		cfg := config.DefaultConfig()
		jr, err := journal.New(cfg.Journal)
		if err != nil {
			t.Fatalf("journal.New failed: %v", err)
		}

		server, err := mcp.NewServer(cfg, browser.New(cfg, jr, nil), jr)
		if err != nil {
			t.Fatalf("NewServer failed: %v", err)
		}
		if server == nil {
			t.Fatal("expected non-nil server")
		}
	})

	t.Run("Read-only tools without a browser", func(t *testing.T) {
		// web_state and web_journal never touch Chrome, so the server can
		// answer them even when no page has ever been opened.
		cfg := config.DefaultConfig()
		jr, err := journal.New(cfg.Journal)
		if err != nil {
			t.Fatalf("journal.New failed: %v", err)
		}

		server, err := mcp.NewServer(cfg, browser.New(cfg, jr, nil), jr)
		if err != nil {
			t.Fatalf("NewServer failed: %v", err)
		}

		stateResult, err := server.ExecuteTool("web_state", map[string]interface{}{})
		if err != nil {
			t.Fatalf("web_state failed: %v", err)
		}
		if rendered, ok := stateResult.(string); !ok || !strings.Contains(rendered, "(No Title)") {
			t.Errorf("unexpected web_state result: %v", stateResult)
		}

		journalResult, err := server.ExecuteTool("web_journal", map[string]interface{}{})
		if err != nil {
			t.Fatalf("web_journal failed: %v", err)
		}
		payload := journalResult.(map[string]interface{})
		if payload["count"].(int) != 0 {
			t.Errorf("expected empty journal, got %v", payload["count"])
		}
	})

	t.Run("Full server lifecycle with browser", func(t *testing.T) {
		if os.Getenv("SKIP_LIVE_TESTS") != "" {
			t.Skip("live lifecycle test disabled via SKIP_LIVE_TESTS")
		}

		cfg := config.DefaultConfig()
		headless := true
		cfg.Browser.Headless = &headless

		jr, err := journal.New(cfg.Journal)
		if err != nil {
			t.Fatalf("journal.New failed: %v", err)
		}

		b := browser.New(cfg, jr, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := b.Start(ctx); err != nil {
			t.Skipf("Browser start failed (Chrome not available?): %v", err)
		}
		defer b.Close()

		server, err := mcp.NewServer(cfg, b, jr)
		if err != nil {
			t.Fatalf("NewServer failed: %v", err)
		}

		page := "<html><head><title>Lifecycle</title></head><body><a href='https://example.com/'>Out</a></body></html>"
		result, err := server.ExecuteTool("web_goto", map[string]interface{}{
			"url": "data:text/html," + url.PathEscape(page),
		})
		if err != nil {
			t.Fatalf("web_goto failed: %v", err)
		}
		if rendered := result.(string); !strings.Contains(rendered, "Lifecycle") {
			t.Errorf("rendered page missing title:\n%s", rendered)
		}

		stateResult, err := server.ExecuteTool("web_state", map[string]interface{}{"format": "json"})
		if err != nil {
			t.Fatalf("web_state failed: %v", err)
		}
		doc := stateResult.(snapshot.StateDoc)
		if doc.Title != "Lifecycle" {
			t.Errorf("state title = %q, want Lifecycle", doc.Title)
		}

		journalResult, err := server.ExecuteTool("web_journal", map[string]interface{}{
			"predicate": journal.PredNavigation,
		})
		if err != nil {
			t.Fatalf("web_journal failed: %v", err)
		}
		payload := journalResult.(map[string]interface{})
		if payload["count"].(int) == 0 {
			t.Error("expected a navigation fact after web_goto")
		}

		if err := b.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
		if b.Started() {
			t.Error("expected browser to be stopped after Close")
		}
	})
}

// TestIntegrationConfigurationVariations exercises config shapes main() may see.
func TestIntegrationConfigurationVariations(t *testing.T) {
	t.Run("Headless toggle", func(t *testing.T) {
		for _, want := range []bool{true, false} {
			b := want
			cfg := config.BrowserConfig{Headless: &b}
			if cfg.IsHeadless() != want {
				t.Errorf("IsHeadless with explicit %v = %v", want, cfg.IsHeadless())
			}
		}
	})

	t.Run("Chrome attach mode", func(t *testing.T) {
		cfg := config.BrowserConfig{Mode: config.ModeChrome}
		if cfg.GetMode() != config.ModeChrome {
			t.Errorf("mode = %q, want %q", cfg.GetMode(), config.ModeChrome)
		}
	})

	t.Run("Journal buffer limit", func(t *testing.T) {
		cfg := config.JournalConfig{FactBufferLimit: 5000}
		if got := cfg.GetFactBufferLimit(); got != 5000 {
			t.Errorf("GetFactBufferLimit = %d, want 5000", got)
		}
	})

	t.Run("Trace disabled by default", func(t *testing.T) {
		if config.DefaultConfig().Trace.Enabled {
			t.Error("tracing should be off by default")
		}
	})
}
