package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"webdeck/internal/browser"
	"webdeck/internal/cli"
	"webdeck/internal/config"
	"webdeck/internal/journal"
	"webdeck/internal/recorder"
)

var (
	configPath string
	startURL   string
	headless   bool
	mode       string
	engine     string
)

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "webdeck [url]",
		Short: "Browse the web as text from your terminal",
		Long: `webdeck drives a real Chrome through Rod and renders every page as text:
prose plus short menu ids (L1=link, B2=button, I3=input, S4=select) you act
on with one-line commands.

Example:
  webdeck news.ycombinator.com
  webdeck --mode=chrome --headless=false wikipedia.org`,
		Args: cobra.MaximumNArgs(1),
		RunE: run,
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file overlaying the workspace config")
	rootCmd.Flags().StringVar(&startURL, "url", "", "URL to open before the shell starts")
	rootCmd.Flags().BoolVar(&headless, "headless", true, "Run the managed browser headless")
	rootCmd.Flags().StringVar(&mode, "mode", "", "Browser mode: chromium, chrome or cdp")
	rootCmd.Flags().StringVar(&engine, "engine", "brave", "Default search engine: brave, ddg or searx")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, wsDir, err := config.LoadWithWorkspace(configPath, config.WorkspaceOptions{})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if wsDir != "" {
		fmt.Fprintf(os.Stderr, "Using workspace config from %s\n", wsDir)
	}

	// Flags override file and env values only when given explicitly.
	if cmd.Flags().Changed("mode") {
		cfg.Browser.Mode = mode
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = &headless
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	url := startURL
	if len(args) > 0 {
		url = args[0]
	}

	jr, err := journal.New(cfg.Journal)
	if err != nil {
		return fmt.Errorf("starting journal: %w", err)
	}

	var rec *recorder.Recorder
	if cfg.Trace.Enabled {
		rec, err = recorder.New(cfg.Trace.Path)
		if err != nil {
			return fmt.Errorf("starting trace recorder: %w", err)
		}
		defer rec.Close()
	}

	b := browser.New(cfg, jr, rec)
	ctx := context.Background()

	fmt.Fprint(os.Stderr, "Starting browser... ")
	if err := b.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "failed")
		return err
	}
	fmt.Fprintln(os.Stderr, "ready")
	defer b.Close()

	if url != "" {
		if _, err := b.Goto(ctx, url); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}

	return cli.New(b, jr, engine, os.Stdin, os.Stdout).Run(ctx)
}
