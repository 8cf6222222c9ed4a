package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"webdeck/internal/journal"
	"webdeck/internal/recorder"
	"webdeck/internal/snapshot"

	"github.com/go-rod/rod"
)

// Fixed waits. Pages get a moment to settle after an action instead of a
// readiness protocol; the re-extract afterwards sees whatever the page has
// become.
const (
	clickSettle    = time.Second
	backSettle     = time.Second
	scrollSettle   = 500 * time.Millisecond
	scrollStep     = 500
	resolveTimeout = 2 * time.Second

	defaultReadChars = 5000
)

// Goto navigates to a URL, prefixing https:// when the scheme is missing,
// and returns the freshly extracted state.
func (b *Browser) Goto(ctx context.Context, rawURL string) (*snapshot.PageState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.navigate(ctx, rawURL)
}

// Search navigates to the results page for a query on the named engine.
func (b *Browser) Search(ctx context.Context, query, engine string) (*snapshot.PageState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, err := b.navigate(ctx, BuildSearchURL(query, engine))
	if err != nil {
		return nil, err
	}
	b.rec.Log(recorder.EventSearch, b.sessionID, map[string]interface{}{
		"query": query, "engine": engine,
	})
	return state, nil
}

// Click clicks the element with the given id and returns the state the page
// settled into.
func (b *Browser) Click(ctx context.Context, id string) (*snapshot.PageState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page == nil {
		return nil, ErrNotStarted
	}

	el, err := b.findElement(id)
	if err != nil {
		return nil, b.fail("click", err)
	}
	handle, err := b.resolve(ctx, el.RawID)
	if err != nil {
		return nil, b.fail("click", err)
	}
	if err := handle.Click("left", 1); err != nil {
		return nil, b.fail("click", fmt.Errorf("click %s: %w", el.ID, err))
	}

	time.Sleep(clickSettle)
	b.refreshState(ctx)
	b.emit(ctx, journal.Click(b.sessionID, el.ID, el.Label), recorder.EventClick, map[string]interface{}{
		"id": el.ID, "label": el.Label,
	})
	return b.state, nil
}

// Fill replaces the value of the input with the given id. The typed text is
// traced and journaled only by element, never by content.
func (b *Browser) Fill(ctx context.Context, id, value string) (*snapshot.PageState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page == nil {
		return nil, ErrNotStarted
	}

	el, err := b.findElement(id)
	if err != nil {
		return nil, b.fail("fill", err)
	}
	handle, err := b.resolve(ctx, el.RawID)
	if err != nil {
		return nil, b.fail("fill", err)
	}
	if err := handle.SelectAllText(); err == nil {
		_ = handle.Input("")
	}
	if err := handle.Input(value); err != nil {
		return nil, b.fail("fill", fmt.Errorf("fill %s: %w", el.ID, err))
	}

	b.refreshState(ctx)
	b.emit(ctx, journal.Fill(b.sessionID, el.ID), recorder.EventFill, map[string]interface{}{
		"id": el.ID,
	})
	return b.state, nil
}

// SelectOption chooses a dropdown option, matching by option value first
// and visible text second.
func (b *Browser) SelectOption(ctx context.Context, id, value string) (*snapshot.PageState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page == nil {
		return nil, ErrNotStarted
	}

	el, err := b.findElement(id)
	if err != nil {
		return nil, b.fail("select", err)
	}
	handle, err := b.resolve(ctx, el.RawID)
	if err != nil {
		return nil, b.fail("select", err)
	}
	if err := handle.Select([]string{value}, true, "value"); err != nil {
		if err := handle.Select([]string{value}, true, "text"); err != nil {
			return nil, b.fail("select", fmt.Errorf("select %s option %q: %w", el.ID, value, err))
		}
	}

	b.refreshState(ctx)
	b.emit(ctx, journal.Select(b.sessionID, el.ID, value), recorder.EventSelect, map[string]interface{}{
		"id": el.ID, "value": value,
	})
	return b.state, nil
}

// Scroll moves the viewport one step up or down. Anything that is not "up"
// scrolls down.
func (b *Browser) Scroll(ctx context.Context, direction string) (*snapshot.PageState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page == nil {
		return nil, ErrNotStarted
	}

	dir := strings.ToLower(strings.TrimSpace(direction))
	dy := scrollStep
	if dir == "up" {
		dy = -scrollStep
	} else {
		dir = "down"
	}

	_, err := b.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      `(dy) => window.scrollBy(0, dy)`,
		JSArgs:  []interface{}{dy},
		ByValue: true,
	})
	if err != nil {
		return nil, b.fail("scroll", fmt.Errorf("scroll %s: %w", dir, err))
	}

	time.Sleep(scrollSettle)
	b.refreshState(ctx)
	b.emit(ctx, journal.Scroll(b.sessionID, dir), recorder.EventScroll, map[string]interface{}{
		"direction": dir,
	})
	return b.state, nil
}

// Back steps the tab back through browser history.
func (b *Browser) Back(ctx context.Context) (*snapshot.PageState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page == nil {
		return nil, ErrNotStarted
	}

	if err := b.page.Context(ctx).NavigateBack(); err != nil {
		return nil, b.fail("back", fmt.Errorf("navigate back: %w", err))
	}
	time.Sleep(backSettle)

	url := ""
	if info, err := b.page.Info(); err == nil {
		url = info.URL
	}

	b.refreshState(ctx)
	b.emit(ctx, journal.History(b.sessionID, "back", url), recorder.EventHistory, map[string]interface{}{
		"action": "back", "url": url,
	})
	return b.state, nil
}

// Refresh re-extracts the current page without navigating, for pages
// that mutate themselves after load.
func (b *Browser) Refresh(ctx context.Context) (*snapshot.PageState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page == nil {
		return nil, ErrNotStarted
	}

	b.refreshState(ctx)
	return b.state, nil
}

// ReadContent extracts the page's main prose, truncated to maxLen runes.
// A zero or negative maxLen falls back to 5000.
func (b *Browser) ReadContent(ctx context.Context, maxLen int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page == nil {
		return "", ErrNotStarted
	}
	if maxLen <= 0 {
		maxLen = defaultReadChars
	}

	res, err := b.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           readContentJS,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return "", b.fail("read", fmt.Errorf("content script: %w", err))
	}
	if res == nil {
		return "", b.fail("read", errors.New("content script returned nothing"))
	}

	text := res.Value.Str()
	if runes := []rune(text); len(runes) > maxLen {
		text = string(runes[:maxLen]) + fmt.Sprintf("\n\n... [truncated, %d more chars]", len(runes)-maxLen)
	}

	b.rec.Log(recorder.EventRead, b.sessionID, map[string]interface{}{
		"chars": len(text),
	})
	return text, nil
}

// navigate is the unlocked core shared by Goto and Search. Navigation
// failure is fatal for the operation; everything after it (load wait,
// stealth, snapshot) degrades instead of failing.
func (b *Browser) navigate(ctx context.Context, rawURL string) (*snapshot.PageState, error) {
	if b.page == nil {
		return nil, ErrNotStarted
	}

	url := normalizeURL(rawURL)
	timeout := b.cfg.Browser.NavigationTimeout()

	if err := b.page.Context(ctx).Timeout(timeout).Navigate(url); err != nil {
		return nil, b.fail("goto", fmt.Errorf("navigate %s: %w", url, err))
	}
	_ = b.page.Context(ctx).Timeout(timeout).WaitLoad()

	if b.cfg.Browser.IsStealth() {
		_, _ = b.page.Context(ctx).Evaluate(&rod.EvalOptions{
			JS:      stealthEvalJS,
			ByValue: true,
		})
	}

	if info, err := b.page.Info(); err == nil && info.URL != "" {
		url = info.URL
	}
	b.history = append(b.history, url)

	b.refreshState(ctx)
	b.emit(ctx, journal.Navigation(b.sessionID, url), recorder.EventNavigate, map[string]interface{}{
		"url": url,
	})
	return b.state, nil
}

// refreshState re-extracts the page and replaces the current state. A
// failed extraction degrades to an empty state carrying the last known URL;
// it never brings the session down.
func (b *Browser) refreshState(ctx context.Context) {
	state, err := b.capture(ctx)
	if err != nil {
		log.Printf("warning: snapshot extraction failed: %v", err)
		url := ""
		if len(b.history) > 0 {
			url = b.history[len(b.history)-1]
		}
		b.state = &snapshot.PageState{URL: url, RawIDToTag: map[string]string{}}
		return
	}
	b.state = state
	b.emit(ctx, journal.Snapshot(b.sessionID, state.URL, state.Total()), recorder.EventSnapshot, map[string]interface{}{
		"url": state.URL, "elements": state.Total(),
	})
}

// capture runs the marker snapshot script and classifies its output.
func (b *Browser) capture(ctx context.Context) (*snapshot.PageState, error) {
	res, err := b.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           markerSnapshotJS,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot script: %w", err)
	}
	if res == nil {
		return nil, errors.New("snapshot script returned nothing")
	}

	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	var payload struct {
		Title string `json:"title"`
		URL   string `json:"url"`
		Text  string `json:"text"`
		Gen   int    `json:"gen"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	b.gen = payload.Gen
	return snapshot.BuildState(payload.Title, payload.URL, payload.Text), nil
}

// findElement looks an id up in the current state. Input is upcased so
// users can type "l3" for "L3".
func (b *Browser) findElement(id string) (*snapshot.PageElement, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	el, ok := b.state.Find(id)
	if !ok {
		return nil, fmt.Errorf("element %s: %w", id, ErrElementNotFound)
	}
	return el, nil
}

// resolve turns a marker id from the current state into a live element
// handle. The probe step catches the cheap staleness cases (registry wiped
// by navigation, generation moved on) before asking for the handle itself.
func (b *Browser) resolve(ctx context.Context, rawID string) (*rod.Element, error) {
	res, err := b.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           resolveProbeJS,
		JSArgs:       []interface{}{rawID},
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve marker %s (%v): %w", rawID, err, ErrStaleResolution)
	}
	if res == nil {
		return nil, fmt.Errorf("resolve marker %s: %w", rawID, ErrStaleResolution)
	}

	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("resolve marker %s: %w", rawID, err)
	}
	var probe struct {
		Gen  int  `json:"gen"`
		Held bool `json:"held"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("resolve marker %s: %w", rawID, err)
	}

	if probe.Gen != b.gen {
		return nil, fmt.Errorf("marker %s is from snapshot generation %d, page is at %d: %w",
			rawID, b.gen, probe.Gen, ErrStaleResolution)
	}
	if !probe.Held {
		return nil, fmt.Errorf("marker %s: %w", rawID, ErrStaleResolution)
	}

	el, err := b.page.Context(ctx).Timeout(resolveTimeout).ElementByJS(&rod.EvalOptions{
		JS:     resolveRefJS,
		JSArgs: []interface{}{rawID},
	})
	if err != nil {
		return nil, fmt.Errorf("marker %s (%v): %w", rawID, err, ErrStaleResolution)
	}
	return el, nil
}

// emit records one completed action in the journal and the trace. Both
// sinks are best-effort.
func (b *Browser) emit(ctx context.Context, fact journal.Fact, event string, data map[string]interface{}) {
	if b.journal != nil {
		_ = b.journal.Add(ctx, []journal.Fact{fact})
	}
	b.rec.Log(event, b.sessionID, data)
}

// fail traces a failed operation and hands the error back unchanged.
func (b *Browser) fail(op string, err error) error {
	b.rec.Log(recorder.EventError, b.sessionID, map[string]interface{}{
		"op": op, "error": err.Error(),
	})
	return err
}

// normalizeURL prefixes https:// onto bare hosts. Scheme-carrying URLs,
// including about: and data:, pass through untouched.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if strings.Contains(raw, "://") || strings.HasPrefix(raw, "about:") || strings.HasPrefix(raw, "data:") {
		return raw
	}
	return "https://" + raw
}
