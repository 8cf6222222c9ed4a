// Package browser drives one Chrome tab through Rod and distills every page
// into the snapshot element model. It is the only package that speaks CDP;
// everything above it sees states, renders, and history.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"webdeck/internal/config"
	"webdeck/internal/journal"
	"webdeck/internal/recorder"
	"webdeck/internal/snapshot"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

// Browser is the facade over one Rod-driven Chrome tab. All exported
// methods serialize through one mutex: a webdeck session is a single
// cooperative task, and the page, state, and history always move together.
type Browser struct {
	cfg     config.Config
	journal *journal.Journal
	rec     *recorder.Recorder

	sessionID string

	mu      sync.Mutex
	browser *rod.Browser
	page    *rod.Page
	state   *snapshot.PageState
	history []string
	gen     int
}

// New wires a facade; the browser process starts on Start. Journal and
// recorder may be nil, in which case nothing is journaled or traced.
func New(cfg config.Config, jr *journal.Journal, rec *recorder.Recorder) *Browser {
	return &Browser{
		cfg:       cfg,
		journal:   jr,
		rec:       rec,
		sessionID: uuid.NewString(),
		state:     &snapshot.PageState{RawIDToTag: map[string]string{}},
	}
}

// SessionID names this facade's lifetime in journal facts and trace events.
func (b *Browser) SessionID() string {
	return b.sessionID
}

// Start connects to Chrome per the configured mode and opens the working
// tab. Calling Start on a healthy facade is a no-op; a dead connection is
// detected and rebuilt.
func (b *Browser) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		if _, err := b.browser.Version(); err == nil {
			return nil
		}
		log.Printf("Stale browser connection detected, reconnecting...")
		_ = b.browser.Close()
		b.browser = nil
		b.page = nil
	}

	controlURL, err := b.resolveControlURL()
	if err != nil {
		return err
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		return fmt.Errorf("create page: %w", err)
	}

	if b.cfg.Browser.IsStealth() {
		if _, err := (proto.PageAddScriptToEvaluateOnNewDocument{Source: stealthPatchJS}).Call(page); err != nil {
			log.Printf("warning: stealth init script not installed: %v", err)
		}
	}

	b.browser = browser
	b.page = page

	if b.rec != nil {
		if err := b.rec.Start(b.sessionID); err != nil {
			log.Printf("warning: trace recorder not started: %v", err)
		}
	}

	log.Printf("Browser connected at %s (mode=%s)", controlURL, b.cfg.Browser.GetMode())
	return nil
}

// resolveControlURL produces the DevTools WebSocket URL for the configured
// mode, launching a browser process when one is needed.
func (b *Browser) resolveControlURL() (string, error) {
	switch b.cfg.Browser.GetMode() {
	case config.ModeCDP:
		u, err := launcher.ResolveURL(b.cfg.Browser.CDPEndpoint)
		if err != nil {
			return "", fmt.Errorf("resolve cdp endpoint %s: %w", b.cfg.Browser.CDPEndpoint, err)
		}
		return u, nil

	case config.ModeChrome:
		bin := b.cfg.Browser.ChromeBinary
		if bin == "" {
			found, ok := launcher.LookPath()
			if !ok {
				return "", errors.New("no chrome binary found, set browser.chrome_binary")
			}
			bin = found
		}
		// Leakless stays off so the user's browser survives webdeck.
		launch := launcher.New().
			Bin(bin).
			Headless(b.cfg.Browser.IsHeadless()).
			Leakless(false).
			Set(flags.Flag("profile-directory"), b.cfg.Browser.GetChromeProfile())
		if dir := b.cfg.Browser.ChromeUserData; dir != "" {
			launch = launch.UserDataDir(dir)
		}
		u, err := launch.Launch()
		if err != nil {
			return "", fmt.Errorf("launch chrome: %w", err)
		}
		return u, nil

	default:
		u, err := launcher.New().Headless(b.cfg.Browser.IsHeadless()).Launch()
		if err != nil {
			return "", fmt.Errorf("launch chromium: %w", err)
		}
		return u, nil
	}
}

// Close releases the tab and, in chromium mode only, the browser process.
// In chrome and cdp modes the browser belongs to the user; webdeck only
// borrowed a tab.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.page != nil {
		_ = b.page.Close()
		b.page = nil
	}

	var err error
	if b.browser != nil {
		if b.cfg.Browser.GetMode() == config.ModeChromium {
			err = b.browser.Close()
		}
		b.browser = nil
	}

	_ = b.rec.Close()
	log.Printf("Browser closed")
	return err
}

// Started reports whether Start has succeeded and Close has not run since.
func (b *Browser) Started() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page != nil
}

// State returns the current page state. States are immutable; callers get
// the live pointer, not a copy.
func (b *Browser) State() *snapshot.PageState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Render projects the current state through the named mode using the
// configured limits.
func (b *Browser) Render(mode snapshot.Mode) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return snapshot.Render(b.state, mode, b.limits())
}

// History returns a copy of the visited URL list, oldest first.
func (b *Browser) History() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.history))
	copy(out, b.history)
	return out
}

func (b *Browser) limits() snapshot.Limits {
	return snapshot.Limits{
		MaxLinks:   b.cfg.Render.MaxLinks,
		MaxButtons: b.cfg.Render.MaxButtons,
		MaxChars:   b.cfg.Render.MaxChars,
	}
}
