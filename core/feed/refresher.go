package feed

import (
	"time"

	"github.com/bep/debounce"
)

// Refresher coalesces high-frequency "something changed, go refetch" signals
// into a single trailing call: the timer resets on every trigger and the
// refetch runs once a quiet window has elapsed since the last one. Events
// that only announce a change, as opposed to carrying it, all go through
// here so a burst costs one request.
type Refresher struct {
	debounced func(func())
	fn        func()
}

// NewRefresher wraps fn with a trailing debounce of the given window.
func NewRefresher(window time.Duration, fn func()) *Refresher {
	return &Refresher{
		debounced: debounce.New(window),
		fn:        fn,
	}
}

// Trigger schedules the refetch, resetting the quiet-window timer.
func (r *Refresher) Trigger() {
	r.debounced(r.fn)
}
