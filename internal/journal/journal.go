// Package journal keeps a deductive log of session activity. Facts live in
// a bounded in-memory buffer for direct inspection and in a Mangle fact
// store so optional datalog rules can derive higher-level predicates.
package journal

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"webdeck/internal/config"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"
)

// Fact is one recorded session event.
type Fact struct {
	Predicate string        `json:"predicate"`
	Args      []interface{} `json:"args"`
	Timestamp time.Time     `json:"timestamp"`
}

// QueryResult is a binding of query variables to values.
type QueryResult map[string]interface{}

// Journal is the in-memory activity store. The buffer holds the newest
// facts up to the configured limit; the Mangle store holds everything
// added since startup plus whatever the loaded rules derive.
type Journal struct {
	cfg config.JournalConfig

	mu      sync.RWMutex
	program *analysis.ProgramInfo
	store   factstore.FactStore
	facts   []Fact
	index   map[string][]int // predicate -> positions in facts
}

// New builds a journal. When cfg.RulesPath is set the rules file is loaded
// up front so derived predicates are queryable from the first fact.
func New(cfg config.JournalConfig) (*Journal, error) {
	j := &Journal{
		cfg:   cfg,
		store: factstore.NewSimpleInMemoryStore(),
		facts: make([]Fact, 0, cfg.GetFactBufferLimit()),
		index: make(map[string][]int),
	}
	if cfg.IsEnabled() && cfg.RulesPath != "" {
		if err := j.LoadRules(cfg.RulesPath); err != nil {
			return nil, err
		}
	}
	return j, nil
}

// Enabled reports whether the journal records facts.
func (j *Journal) Enabled() bool {
	return j.cfg.IsEnabled()
}

// LoadRules parses and analyzes a Mangle rules file. Derived predicates
// become visible to Query after the next Add.
func (j *Journal) LoadRules(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading rules: %w", err)
	}
	unit, err := parse.Unit(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parsing rules: %w", err)
	}
	program, err := analysis.AnalyzeOneUnit(unit, make(map[ast.PredicateSym]ast.Decl))
	if err != nil {
		return fmt.Errorf("analyzing rules: %w", err)
	}

	j.mu.Lock()
	j.program = program
	j.mu.Unlock()
	return nil
}

// Add records facts in the buffer and the Mangle store, then re-evaluates
// loaded rules so derived facts stay current. A disabled journal drops
// everything silently.
func (j *Journal) Add(ctx context.Context, facts []Fact) error {
	if !j.cfg.IsEnabled() || len(facts) == 0 {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.buffer(facts)
	for _, f := range facts {
		j.store.Add(atomize(f))
	}
	if j.program != nil {
		if err := engine.EvalProgram(j.program, j.store); err != nil {
			return fmt.Errorf("evaluating rules: %w", err)
		}
	}
	return nil
}

// buffer appends under j.mu, dropping the oldest facts past the cap.
func (j *Journal) buffer(facts []Fact) {
	j.facts = append(j.facts, facts...)
	if over := len(j.facts) - j.cfg.GetFactBufferLimit(); over > 0 {
		j.facts = append(make([]Fact, 0, len(j.facts)-over), j.facts[over:]...)
		j.reindex()
		return
	}
	base := len(j.facts) - len(facts)
	for i, f := range facts {
		j.index[f.Predicate] = append(j.index[f.Predicate], base+i)
	}
}

func (j *Journal) reindex() {
	j.index = make(map[string][]int)
	for i, f := range j.facts {
		j.index[f.Predicate] = append(j.index[f.Predicate], i)
	}
}

// ByPredicate returns the buffered facts for one predicate, oldest first.
func (j *Journal) ByPredicate(predicate string) []Fact {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.collect(predicate, func(Fact) bool { return true })
}

// Between returns buffered facts for a predicate inside a time window.
// Zero bounds are open.
func (j *Journal) Between(predicate string, after, before time.Time) []Fact {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.collect(predicate, func(f Fact) bool {
		if !after.IsZero() && !f.Timestamp.After(after) {
			return false
		}
		if !before.IsZero() && !f.Timestamp.Before(before) {
			return false
		}
		return true
	})
}

// collect gathers indexed facts passing keep. Callers hold j.mu.
func (j *Journal) collect(predicate string, keep func(Fact) bool) []Fact {
	indices := j.index[predicate]
	out := make([]Fact, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(j.facts) {
			continue
		}
		if f := j.facts[idx]; keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// Facts returns a copy of the buffered facts, oldest first.
func (j *Journal) Facts() []Fact {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]Fact, len(j.facts))
	copy(out, j.facts)
	return out
}

// Query runs a Mangle query atom against the store and returns every
// satisfying variable assignment. Derived predicates are queryable once
// rules are loaded. When the store has no match the buffer is searched
// directly, which also covers arity drift between query and stored atoms.
func (j *Journal) Query(ctx context.Context, queryStr string) ([]QueryResult, error) {
	if !j.cfg.IsEnabled() {
		return nil, fmt.Errorf("journal disabled")
	}

	unit, err := parse.Unit(bytes.NewReader([]byte(queryStr)))
	if err != nil {
		return nil, fmt.Errorf("parsing query: %w", err)
	}
	if len(unit.Clauses) == 0 {
		return nil, fmt.Errorf("no query found")
	}
	// A query is a bare clause; its head is the atom to match.
	goal := unit.Clauses[0].Head

	j.mu.RLock()
	defer j.mu.RUnlock()

	results := make([]QueryResult, 0)
	err = j.store.GetFacts(goal, func(atom ast.Atom) error {
		results = append(results, bind(goal, atom))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}

	if len(results) == 0 {
		results = append(results, j.matchBuffered(goal)...)
	}
	return results, nil
}

// bind maps the goal's variables to the matched atom's values.
func bind(goal, atom ast.Atom) QueryResult {
	result := make(QueryResult)
	for i, arg := range goal.Args {
		if i >= len(atom.Args) {
			break
		}
		if v, ok := arg.(ast.Variable); ok {
			result[v.Symbol] = goValue(atom.Args[i])
		}
	}
	return result
}

// matchBuffered unifies buffered facts with the goal: variables bind, and
// constants must line up textually. Callers hold j.mu.
func (j *Journal) matchBuffered(goal ast.Atom) []QueryResult {
	out := make([]QueryResult, 0)
	for _, f := range j.collect(goal.Predicate.Symbol, func(Fact) bool { return true }) {
		if len(goal.Args) > 0 && len(f.Args) < len(goal.Args) {
			continue
		}
		result := make(QueryResult)
		matched := true
		for i, arg := range goal.Args {
			if i >= len(f.Args) {
				break
			}
			switch a := arg.(type) {
			case ast.Variable:
				result[a.Symbol] = f.Args[i]
			case ast.Constant:
				if fmt.Sprintf("%v", f.Args[i]) != fmt.Sprintf("%v", goValue(a)) {
					matched = false
				}
			}
			if !matched {
				break
			}
		}
		if matched {
			out = append(out, result)
		}
	}
	return out
}
