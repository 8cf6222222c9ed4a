package browser

import "errors"

// Sentinel errors for element addressing. Anything else that goes wrong in
// this package is a collaborator failure and propagates wrapped with the
// operation that hit it.
var (
	// ErrNotStarted means an operation needed a connected browser before
	// Start succeeded.
	ErrNotStarted = errors.New("browser not started")

	// ErrElementNotFound means an id ("L3", "B1") does not exist in the
	// current page state.
	ErrElementNotFound = errors.New("element not found")

	// ErrStaleResolution means an id exists in the current state but its
	// marker no longer resolves against the live page: the page navigated,
	// re-rendered, or a newer snapshot replaced the registry.
	ErrStaleResolution = errors.New("stale element resolution")
)
