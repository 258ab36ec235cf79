// Package clock provides the single injectable time source for the daemon.
// Every component that needs "now" takes a Clock instead of calling time.Now
// directly, so tests can drive pomodoro ticks and sampler polls deterministically.
package clock

import "time"

// Clock is the contract every timing component depends on.
type Clock interface {
	// Now returns the current instant, used for all internal duration math.
	Now() time.Time

	// WallNow returns the current instant rendered in the local zone,
	// used only for display and for timestamps handed to the user.
	WallNow() time.Time

	// After returns a channel that fires once after d has elapsed.
	After(d time.Duration) <-chan time.Time

	// NewTicker returns a ticker that fires every d.
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of time.Ticker a component needs; Fake implements it
// with a channel the test controls directly.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// System is the production Clock backed by the standard library.
type System struct{}

// New returns the production system clock.
func New() System { return System{} }

func (System) Now() time.Time      { return time.Now() }
func (System) WallNow() time.Time  { return time.Now().Local() }
func (System) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

func (System) NewTicker(d time.Duration) Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct{ t *time.Ticker }

func (s *systemTicker) C() <-chan time.Time { return s.t.C }
func (s *systemTicker) Stop()               { s.t.Stop() }
