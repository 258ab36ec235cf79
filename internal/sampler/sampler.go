// Package sampler implements ActivitySampler (C5): an actor goroutine that
// polls the injected platform.WindowProbe and turns foreground-window
// changes into persisted Activity segments.
//
// Generalized from original_source's AppTracker (app_tracker.rs) — which
// guarded its fields with ad hoc Mutexes — into a single-owner actor with a
// command channel, per the re-architecture guidance every core component
// follows here.
package sampler

import (
	"context"
	"time"

	"github.com/kodeflow/tempod/internal/clock"
	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/eventbus"
	"github.com/kodeflow/tempod/internal/platform"
	"github.com/kodeflow/tempod/internal/ports"
	"github.com/kodeflow/tempod/internal/ruleengine"
)

// defaultPollInterval is the configured poll interval's default.
const defaultPollInterval = 30 * time.Second

// defaultIdleThreshold is the configured idle threshold's default.
const defaultIdleThreshold = 5 * time.Minute

// minSegmentDuration is the minimum persisted segment length; a shorter
// segment is merged forward into the next one rather than dropped, settling
// Open Question 1.
const minSegmentDuration = time.Second

// openSegment tracks the currently-open activity in memory. carry is extra
// duration merged forward from a too-short predecessor segment, credited to
// this segment's reported duration without moving its recorded start time.
type openSegment struct {
	appName     string
	windowTitle string
	start       time.Time
	carry       time.Duration
}

// Sampler is the ActivitySampler actor. Use New then Run in its own
// goroutine; interact through the exported methods, which round-trip
// through the actor's command channel.
type Sampler struct {
	clock         clock.Clock
	probe         platform.WindowProbe
	store         ports.ActivityRepository
	rules         *ruleengine.Engine
	bus           *eventbus.Bus
	pollInterval  time.Duration
	idleThreshold time.Duration

	commands chan func(*samplerState)
	done     chan struct{}
}

type samplerState struct {
	open *openSegment
}

// Config configures a Sampler's poll cadence and idle threshold; zero values
// take the documented defaults.
type Config struct {
	PollInterval  time.Duration
	IdleThreshold time.Duration
}

// New constructs a Sampler. Call Run to start its actor goroutine.
func New(c clock.Clock, probe platform.WindowProbe, store ports.ActivityRepository, rules *ruleengine.Engine, bus *eventbus.Bus, cfg Config) *Sampler {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	idle := cfg.IdleThreshold
	if idle <= 0 {
		idle = defaultIdleThreshold
	}
	return &Sampler{
		clock:         c,
		probe:         probe,
		store:         store,
		rules:         rules,
		bus:           bus,
		pollInterval:  interval,
		idleThreshold: idle,
		commands:      make(chan func(*samplerState)),
		done:          make(chan struct{}),
	}
}

// Run polls once immediately, then on every tick until ctx is cancelled. It
// closes any open segment before returning.
func (s *Sampler) Run(ctx context.Context) {
	state := &samplerState{}
	ticker := s.clock.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.poll(ctx, state)
	for {
		select {
		case <-ctx.Done():
			s.closeSegment(ctx, state, nil, s.clock.Now())
			close(s.done)
			return
		case <-ticker.C():
			s.poll(ctx, state)
		case cmd := <-s.commands:
			cmd(state)
		}
	}
}

// Done is closed once Run has finished closing any open segment.
func (s *Sampler) Done() <-chan struct{} { return s.done }

// CurrentActivity reports the in-progress segment, if any, snapshotting
// actor state through a reply channel round-trip.
func (s *Sampler) CurrentActivity(ctx context.Context) (*domain.Activity, error) {
	reply := make(chan *domain.Activity, 1)
	cmd := func(st *samplerState) {
		if st.open == nil {
			reply <- nil
			return
		}
		reply <- &domain.Activity{
			AppName:     st.open.appName,
			WindowTitle: st.open.windowTitle,
			StartTime:   st.open.start,
			Duration:    s.clock.Now().Sub(st.open.start) + st.open.carry,
		}
	}
	select {
	case s.commands <- cmd:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case a := <-reply:
		return a, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Sampler) poll(ctx context.Context, state *samplerState) {
	now := s.clock.Now()

	idle, err := s.probe.IdleDuration()
	if err != nil {
		return
	}
	if idle >= s.idleThreshold {
		// Idle periods correspond to gaps, never to a persisted segment: the
		// open segment closes at the moment idleness began and nothing
		// reopens until the next non-idle poll.
		s.closeSegment(ctx, state, nil, now.Add(-idle))
		return
	}

	win, err := s.probe.Foreground()
	if err != nil {
		return
	}

	if state.open == nil {
		state.open = &openSegment{appName: win.AppName, windowTitle: win.WindowTitle, start: now}
		return
	}

	if state.open.appName == win.AppName && state.open.windowTitle == win.WindowTitle {
		return
	}

	next := &openSegment{appName: win.AppName, windowTitle: win.WindowTitle, start: now}
	s.closeSegment(ctx, state, next, now)
}

// closeSegment closes state.open (if any) as of end, persists it, and
// publishes ActivityStopped, in that order — both complete before Run
// processes its next poll, keeping the close atomic with respect to the
// Store transaction per the concurrency model.
//
// If the closed segment is shorter than minSegmentDuration, it is not
// persisted on its own; its duration is merged forward as carry onto next
// (the segment about to open), whose start time stays unchanged. If no
// next segment is opening (idle or shutdown), the sub-second remainder is
// simply absorbed — there is nothing left to carry it into.
func (s *Sampler) closeSegment(ctx context.Context, state *samplerState, next *openSegment, end time.Time) {
	seg := state.open
	state.open = next

	if seg == nil {
		return
	}

	duration := end.Sub(seg.start) + seg.carry
	if duration < minSegmentDuration {
		if next != nil {
			next.carry += duration
		}
		return
	}

	activity := &domain.Activity{
		AppName:     seg.appName,
		WindowTitle: seg.windowTitle,
		StartTime:   seg.start,
		Duration:    duration,
	}
	if s.rules != nil {
		s.rules.Apply(activity)
	}

	if err := s.store.Save(ctx, activity); err != nil {
		// The failed row is not retried: its duration is carried onto next,
		// so the time is persisted with the next segment's app and title.
		// When no next segment is opening (idle or shutdown), it is lost.
		if next != nil {
			next.carry += duration
		}
		return
	}

	s.bus.Publish(domain.Event{
		Kind:    domain.EventActivityStopped,
		At:      end,
		Payload: domain.ActivityPayload{Activity: *activity},
	})
}
