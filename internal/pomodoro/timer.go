// Package pomodoro implements PomodoroTimer (C6): a single-instance finite
// state machine serializing Working/ShortBreak/LongBreak/Paused transitions
// through its own actor goroutine and command channel.
//
// Grounded on original_source's PomodoroManager state transitions and the
// teacher's domain.PomodoroSession lifecycle helpers, generalized into an
// explicit state machine per the re-architecture guidance instead of ad hoc
// RwLocks guarding shared fields.
package pomodoro

import (
	"context"
	"time"

	"github.com/kodeflow/tempod/internal/clock"
	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/eventbus"
	"github.com/kodeflow/tempod/internal/ports"
)

// State names the Timer's current phase.
type State int

const (
	Idle State = iota
	Working
	ShortBreak
	LongBreak
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Working:
		return "working"
	case ShortBreak:
		return "short_break"
	case LongBreak:
		return "long_break"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Config holds the durations and policy the Timer applies at every
// transition.
type Config struct {
	WorkDuration       time.Duration
	ShortBreakDuration time.Duration
	LongBreakDuration  time.Duration
	LongBreakInterval  int // number of work sessions between long breaks; >= 1
	AutoStartBreaks    bool
	AutoStartPomodoros bool
}

// Stats holds the Timer's counters in memory only; they are not written to
// Store, which receives only the session rows.
type Stats struct {
	TotalCompleted   int
	TotalInterrupted int
	TotalWorkTime    time.Duration
	TotalBreakTime   time.Duration
	CurrentStreak    int
	LongestStreak    int
	DailyCompleted   map[string]int // date (2006-01-02) -> count
}

func newStats() Stats {
	return Stats{DailyCompleted: make(map[string]int)}
}

// record tracks the running session and the actor's full state.
type record struct {
	state        State
	prev         State // the state Paused resumes to
	session      *domain.PomodoroSession
	stateStart   time.Time
	firedExpiry  bool
	sessionsDone int // completed work sessions since the last long break
	stats        Stats

	// frozenRemaining holds the remaining duration captured at Pause, so
	// Resume can continue the countdown instead of restarting it.
	frozenRemaining time.Duration
}

// Timer is the PomodoroTimer actor. Use New then Run in its own goroutine.
type Timer struct {
	clock    clock.Clock
	sessions ports.SessionRepository
	bus      *eventbus.Bus
	cfg      Config

	commands chan func(*record)
	done     chan struct{}
}

// New constructs a Timer. Call Run to start its actor goroutine.
func New(c clock.Clock, sessions ports.SessionRepository, bus *eventbus.Bus, cfg Config) *Timer {
	if cfg.LongBreakInterval < 1 {
		cfg.LongBreakInterval = 4
	}
	return &Timer{
		clock:    c,
		sessions: sessions,
		bus:      bus,
		cfg:      cfg,
		commands: make(chan func(*record)),
		done:     make(chan struct{}),
	}
}

// Run drives the Timer's tick loop until ctx is cancelled.
func (t *Timer) Run(ctx context.Context) {
	rec := &record{state: Idle, stats: newStats()}
	ticker := t.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(t.done)
			return
		case <-ticker.C():
			t.tick(ctx, rec)
		case cmd := <-t.commands:
			cmd(rec)
		}
	}
}

// Done is closed once Run returns.
func (t *Timer) Done() <-chan struct{} { return t.done }

func (t *Timer) call(ctx context.Context, fn func(*record) error) error {
	reply := make(chan error, 1)
	cmd := func(rec *record) { reply <- fn(rec) }
	select {
	case t.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot is a read-only view of the Timer's current state, returned by
// CurrentSession through a reply channel round-trip.
type Snapshot struct {
	State     State
	Session   *domain.PomodoroSession
	Elapsed   time.Duration
	Remaining time.Duration
	Stats     Stats
}

// CurrentSession snapshots the actor's state without mutating it.
func (t *Timer) CurrentSession(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	cmd := func(rec *record) {
		snap := Snapshot{State: rec.state, Stats: rec.stats}
		if rec.session != nil {
			sessionCopy := *rec.session
			snap.Session = &sessionCopy
			if rec.state == Paused {
				snap.Remaining = rec.frozenRemaining
				snap.Elapsed = t.phaseDuration(rec.prev, Idle) - rec.frozenRemaining
			} else {
				now := t.clock.Now()
				snap.Elapsed = now.Sub(rec.stateStart)
				snap.Remaining = t.phaseDuration(rec.state, Idle) - snap.Elapsed
			}
		}
		reply <- snap
	}
	select {
	case t.commands <- cmd:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (t *Timer) phaseDuration(state, pausedFrom State) time.Duration {
	switch state {
	case Working:
		return t.cfg.WorkDuration
	case ShortBreak:
		return t.cfg.ShortBreakDuration
	case LongBreak:
		return t.cfg.LongBreakDuration
	case Paused:
		return t.phaseDuration(pausedFrom, Idle)
	default:
		return 0
	}
}
