// Package cli implements the interactive command loop a person drives
// from a terminal, one command per line over the browser facade.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"webdeck/internal/browser"
	"webdeck/internal/journal"
	"webdeck/internal/snapshot"
)

// Shell reads commands from in and prints pages and errors to out. Action
// errors never end the loop; only quit, EOF or a dead input stream do.
type Shell struct {
	browser *browser.Browser
	journal *journal.Journal
	engine  string
	in      io.Reader
	out     io.Writer
}

// New builds a shell. engine is the default search engine for the search
// command.
func New(b *browser.Browser, jr *journal.Journal, engine string, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		browser: b,
		journal: jr,
		engine:  engine,
		in:      in,
		out:     out,
	}
}

// Run drives the command loop until quit or EOF.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "webdeck - text browser. Type 'help' for commands, 'quit' to leave.")
	if s.browser.Started() && s.browser.State().Total() > 0 {
		s.printPage()
	}

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, "webdeck> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if s.dispatch(ctx, line) {
			return nil
		}
	}
}

// dispatch runs one command line. Returns true when the shell should exit.
func (s *Shell) dispatch(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "quit", "q", "exit":
		fmt.Fprintln(s.out, "bye")
		return true

	case "help":
		s.printHelp()

	case "goto":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "usage: goto <url>")
			break
		}
		s.action(func() error { _, err := s.browser.Goto(ctx, args[0]); return err })

	case "search":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "usage: search <query>")
			break
		}
		query := strings.Join(args, " ")
		s.action(func() error { _, err := s.browser.Search(ctx, query, s.engine); return err })

	case "click":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "usage: click <id>")
			break
		}
		s.action(func() error { _, err := s.browser.Click(ctx, args[0]); return err })

	case "fill":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "usage: fill <id> <text>")
			break
		}
		value := strings.Join(args[1:], " ")
		s.action(func() error { _, err := s.browser.Fill(ctx, args[0], value); return err })

	case "select":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "usage: select <id> <value>")
			break
		}
		value := strings.Join(args[1:], " ")
		s.action(func() error { _, err := s.browser.SelectOption(ctx, args[0], value); return err })

	case "scroll":
		direction := "down"
		if len(args) > 0 {
			direction = args[0]
		}
		s.action(func() error { _, err := s.browser.Scroll(ctx, direction); return err })

	case "back":
		s.action(func() error { _, err := s.browser.Back(ctx); return err })

	case "refresh", "r":
		s.action(func() error { _, err := s.browser.Refresh(ctx); return err })

	case "read":
		maxLen := 0
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Fprintln(s.out, "usage: read [chars]")
				break
			}
			maxLen = n
		}
		text, err := s.browser.ReadContent(ctx, maxLen)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			break
		}
		fmt.Fprintln(s.out, text)

	case "compact":
		fmt.Fprintln(s.out, s.browser.Render(snapshot.ModeCompact))

	case "json":
		s.printJSON()

	case "raw":
		s.printRaw()

	case "save":
		file := "page.json"
		if len(args) > 0 {
			file = args[0]
		}
		s.savePage(file)

	case "history":
		s.printHistory()

	case "journal":
		predicate := ""
		if len(args) > 0 {
			predicate = args[0]
		}
		s.printJournal(predicate)

	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type 'help' for commands.\n", cmd)
	}
	return false
}

// action runs a page-changing operation and prints either the error or the
// re-rendered page.
func (s *Shell) action(op func() error) {
	if err := op(); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	s.printPage()
}

func (s *Shell) printPage() {
	fmt.Fprintln(s.out, s.browser.Render(snapshot.ModeMenu))
}

func (s *Shell) printJSON() {
	data, err := json.MarshalIndent(s.browser.State().Doc(), "", "  ")
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, string(data))
}

func (s *Shell) printRaw() {
	tags := s.browser.State().RawIDToTag
	if len(tags) == 0 {
		fmt.Fprintln(s.out, "(no raw markers)")
		return
	}

	ids := make([]string, 0, len(tags))
	for id := range tags {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})
	for _, id := range ids {
		fmt.Fprintf(s.out, "  [%s] %s\n", id, tags[id])
	}
}

func (s *Shell) savePage(file string) {
	data, err := json.MarshalIndent(s.browser.State().Doc(), "", "  ")
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Saved page state to %s\n", file)
}

func (s *Shell) printHistory() {
	facts := s.journal.ByPredicate(journal.PredNavigation)
	if len(facts) == 0 {
		fmt.Fprintln(s.out, "(no navigation history)")
		return
	}
	for _, f := range facts {
		url := ""
		if len(f.Args) > 1 {
			url, _ = f.Args[1].(string)
		}
		fmt.Fprintf(s.out, "  %s  %s\n", f.Timestamp.Format("15:04:05"), url)
	}
}

func (s *Shell) printJournal(predicate string) {
	var facts []journal.Fact
	if predicate == "" {
		facts = s.journal.Facts()
	} else {
		facts = s.journal.ByPredicate(predicate)
	}
	if len(facts) == 0 {
		fmt.Fprintln(s.out, "(journal is empty)")
		return
	}
	for _, f := range facts {
		fmt.Fprintf(s.out, "  %s  %s%v\n", f.Timestamp.Format("15:04:05"), f.Predicate, f.Args)
	}
}

func (s *Shell) printHelp() {
	fmt.Fprint(s.out, `Commands:
  goto <url>           navigate to a URL
  search <query>       web search (engine set by --engine)
  click <id>           click an element (L1, B2, ...)
  fill <id> <text>     fill an input (I1, ...)
  select <id> <value>  choose a dropdown option (S1, ...)
  scroll [up|down]     scroll half a screen (default down)
  back                 go back one page
  read [chars]         extract readable content (default 5000 chars)
  refresh, r           re-snapshot the current page
  compact              compact view of the current page
  json                 current page as JSON
  raw                  raw marker ids and tags
  save [file]          write the page JSON to disk (default page.json)
  history              URLs visited this session
  journal [predicate]  activity facts this session
  help                 this help
  quit, q, exit        leave webdeck
`)
}
