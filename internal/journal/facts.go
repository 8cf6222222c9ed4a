package journal

import "time"

// Predicate names recorded by the browser facade.
const (
	PredNavigation = "navigation_event"
	PredClick      = "click_event"
	PredFill       = "fill_event"
	PredSelect     = "select_event"
	PredScroll     = "scroll_event"
	PredHistory    = "history_event"
	PredSnapshot   = "snapshot_event"
)

func newFact(predicate string, args ...interface{}) Fact {
	now := time.Now()
	return Fact{
		Predicate: predicate,
		Args:      append(args, now.Unix()),
		Timestamp: now,
	}
}

// Navigation records a page load: navigation_event(session, url, ts).
func Navigation(session, url string) Fact {
	return newFact(PredNavigation, session, url)
}

// Click records an element click: click_event(session, id, label, ts).
func Click(session, id, label string) Fact {
	return newFact(PredClick, session, id, label)
}

// Fill records an input fill: fill_event(session, id, ts). The typed text
// is never recorded.
func Fill(session, id string) Fact {
	return newFact(PredFill, session, id)
}

// Select records a dropdown choice: select_event(session, id, value, ts).
func Select(session, id, value string) Fact {
	return newFact(PredSelect, session, id, value)
}

// Scroll records a viewport scroll: scroll_event(session, direction, ts).
func Scroll(session, direction string) Fact {
	return newFact(PredScroll, session, direction)
}

// History records back/forward traversal: history_event(session, action, url, ts).
func History(session, action, url string) Fact {
	return newFact(PredHistory, session, action, url)
}

// Snapshot records a page snapshot: snapshot_event(session, url, elements, ts).
func Snapshot(session, url string, elements int) Fact {
	return newFact(PredSnapshot, session, url, elements)
}
