package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"webdeck/internal/browser"
	"webdeck/internal/config"
	"webdeck/internal/journal"
	mcpserver "webdeck/internal/mcp"
	"webdeck/internal/recorder"
)

var (
	configPath = flag.String("config", "config.yaml", "Path to the webdeck MCP config file")
	sseAddr    = flag.String("sse-addr", "", "Optional SSE listen address override (implies sse transport)")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("webdeck: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	closeLog := redirectLogs(cfg)
	defer closeLog()

	jr, err := journal.New(cfg.Journal)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}

	var rec *recorder.Recorder
	if cfg.Trace.Enabled {
		if rec, err = recorder.New(cfg.Trace.Path); err != nil {
			return fmt.Errorf("trace recorder: %w", err)
		}
	}

	b := browser.New(cfg, jr, rec)
	defer b.Close()
	log.Printf("browser will start lazily on first tool use (mode=%s)", cfg.Browser.GetMode())

	server, err := mcpserver.NewServer(cfg, b, jr)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	if cfg.MCP.GetTransport() == "sse" {
		log.Printf("starting webdeck MCP SSE server on %s", cfg.MCP.GetSSEAddr())
		err = server.StartSSE(ctx, cfg.MCP.GetSSEAddr())
	} else {
		log.Printf("starting webdeck MCP stdio server")
		err = server.Start(ctx)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// loadConfig reads -config, falling back to built-in defaults when the file
// does not exist, and applies the -sse-addr override.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("loading config: %w", err)
		}
		cfg = config.DefaultConfig()
		log.Printf("config %s not found, using defaults", *configPath)
	}
	if *sseAddr != "" {
		cfg.MCP.Transport = "sse"
		cfg.MCP.SSEAddr = *sseAddr
	}
	return cfg, nil
}

// redirectLogs points the standard logger at the configured log file when
// running on stdio, where stderr chatter would corrupt the MCP stream. The
// returned func closes the file.
func redirectLogs(cfg config.Config) func() {
	if cfg.MCP.GetTransport() != "stdio" || cfg.Server.LogFile == "" {
		return func() {}
	}
	f, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	log.SetOutput(f)
	return func() { f.Close() }
}
