package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const (
	MaxRotatedFiles = 3
	TraceDir        = "webdeck-trace"
)

// Trace event types emitted by the browser facade.
const (
	EventNavigate = "navigate"
	EventSearch   = "search"
	EventClick    = "click"
	EventFill     = "fill"
	EventSelect   = "select"
	EventScroll   = "scroll"
	EventHistory  = "history"
	EventRead     = "read"
	EventSnapshot = "snapshot"
	EventError    = "error"
)

// Event is one line in a JSONL trace file.
type Event struct {
	Timestamp time.Time   `json:"ts"`
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Data      interface{} `json:"data"`
}

// Recorder writes rotating JSONL traces of session activity for debugging.
// All methods are safe on a nil receiver, so callers can thread an optional
// recorder through without guards.
type Recorder struct {
	mu  sync.Mutex
	dir string
	out *os.File
}

// New creates a recorder rooted at dir, creating it if needed. An empty dir
// falls back to TraceDir.
func New(dir string) (*Recorder, error) {
	if dir == "" {
		dir = TraceDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Recorder{dir: dir}, nil
}

// Start opens a fresh trace file for the session. Older traces are pruned
// so the directory never holds more than MaxRotatedFiles files.
func (r *Recorder) Start(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.out != nil {
		_ = r.out.Close()
		r.out = nil
	}
	if err := r.prune(MaxRotatedFiles - 1); err != nil {
		return fmt.Errorf("pruning traces: %w", err)
	}

	name := fmt.Sprintf("trace_%s_%d.jsonl", sessionID, time.Now().UnixMilli())
	f, err := os.Create(filepath.Join(r.dir, name))
	if err != nil {
		return err
	}
	r.out = f
	return nil
}

// Log appends an event to the current trace. Best-effort: a nil recorder
// or an unstarted trace drops the event silently.
func (r *Recorder) Log(eventType, sessionID string, data interface{}) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.out == nil {
		return
	}

	line, err := json.Marshal(Event{
		Timestamp: time.Now(),
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
	})
	if err != nil {
		return
	}
	_, _ = r.out.Write(append(line, '\n'))
}

// prune removes the oldest trace files until at most keep remain.
func (r *Recorder) prune(keep int) error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return err
	}

	type trace struct {
		name string
		mod  time.Time
	}
	var traces []trace
	for _, e := range entries {
		info, err := e.Info()
		if err != nil || info.IsDir() || filepath.Ext(info.Name()) != ".jsonl" {
			continue
		}
		traces = append(traces, trace{info.Name(), info.ModTime()})
	}
	sort.Slice(traces, func(i, j int) bool { return traces[i].mod.Before(traces[j].mod) })

	for len(traces) > keep {
		_ = os.Remove(filepath.Join(r.dir, traces[0].name))
		traces = traces[1:]
	}
	return nil
}

// Close finishes the current trace file.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.out == nil {
		return nil
	}
	err := r.out.Close()
	r.out = nil
	return err
}
