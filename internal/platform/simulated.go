package platform

import (
	"sync"
	"time"

	"github.com/kodeflow/tempod/internal/clock"
)

// Simulated is an injectable WindowProbe standing in for real OS window
// enumeration (explicitly out of scope; see platform.WindowProbe). Tests and
// non-desktop deployments drive it directly.
type Simulated struct {
	mu       sync.Mutex
	clock    clock.Clock
	window   WindowInfo
	idleFrom *time.Time
}

// NewSimulated returns a probe initially reporting an empty foreground
// window and no idle time. now is used to compute idle duration so tests can
// drive it with a clock.Fake.
func NewSimulated(c clock.Clock) *Simulated {
	return &Simulated{clock: c}
}

// SetForeground updates the window the next poll will observe.
func (s *Simulated) SetForeground(appName, windowTitle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = WindowInfo{AppName: appName, WindowTitle: windowTitle}
	s.idleFrom = nil
}

// SetIdleSince marks the user as having produced no input since t.
func (s *Simulated) SetIdleSince(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idleFrom = &t
}

// ClearIdle marks the user as active again.
func (s *Simulated) ClearIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idleFrom = nil
}

func (s *Simulated) Foreground() (WindowInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window, nil
}

func (s *Simulated) IdleDuration() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idleFrom == nil {
		return 0, nil
	}
	return s.clock.Now().Sub(*s.idleFrom), nil
}
