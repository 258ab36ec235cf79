package pomodoro

import (
	"context"
	"time"

	"github.com/kodeflow/tempod/internal/apperr"
	"github.com/kodeflow/tempod/internal/domain"
)

// Start begins a new work session from Idle. Fails with InvalidTransition
// if the Timer is not Idle.
func (t *Timer) Start(ctx context.Context, projectID *int64, tags []string) error {
	return t.call(ctx, func(rec *record) error {
		if rec.state != Idle {
			return apperr.New(apperr.InvalidTransition, "cannot start a pomodoro while one is already active")
		}

		now := t.clock.Now()
		session := &domain.PomodoroSession{
			StartTime: now,
			Duration:  t.cfg.WorkDuration,
			Status:    domain.SessionRunning,
			Tags:      tags,
			ProjectID: projectID,
		}
		if err := t.sessions.Save(ctx, session); err != nil {
			return err
		}

		rec.state = Working
		rec.session = session
		rec.stateStart = now
		rec.firedExpiry = false

		t.bus.Publish(domain.Event{Kind: domain.EventPomodoroStarted, At: now, Payload: domain.PomodoroPayload{Session: *session}})
		return nil
	})
}

// Pause freezes the remaining time of a Working/ShortBreak/LongBreak phase.
func (t *Timer) Pause(ctx context.Context) error {
	return t.call(ctx, func(rec *record) error {
		if rec.state != Working && rec.state != ShortBreak && rec.state != LongBreak {
			return apperr.New(apperr.InvalidTransition, "cannot pause unless a pomodoro phase is active")
		}
		now := t.clock.Now()
		elapsed := now.Sub(rec.stateStart)
		rec.frozenRemaining = t.phaseDuration(rec.state, Idle) - elapsed
		rec.prev = rec.state
		rec.state = Paused

		rec.session.Status = domain.SessionPaused
		if err := t.sessions.Update(ctx, rec.session); err != nil {
			return err
		}

		t.bus.Publish(domain.Event{Kind: domain.EventPomodoroPaused, At: now, Payload: domain.PomodoroPayload{Session: *rec.session}})
		return nil
	})
}

// Resume returns from Paused to the phase it paused from.
func (t *Timer) Resume(ctx context.Context) error {
	return t.call(ctx, func(rec *record) error {
		if rec.state != Paused {
			return apperr.New(apperr.InvalidTransition, "cannot resume unless paused")
		}
		now := t.clock.Now()
		rec.state = rec.prev
		// Resume the countdown from where it was frozen rather than
		// restarting the phase's full duration.
		rec.stateStart = now.Add(-(t.phaseDuration(rec.state, Idle) - rec.frozenRemaining))

		status := domain.SessionRunning
		if rec.state != Working {
			status = domain.SessionBreak
		}
		rec.session.Status = status
		if err := t.sessions.Update(ctx, rec.session); err != nil {
			return err
		}

		t.bus.Publish(domain.Event{Kind: domain.EventPomodoroResumed, At: now, Payload: domain.PomodoroPayload{Session: *rec.session}})
		return nil
	})
}

// Stop ends the active session early. During Working (or Paused from
// Working) this is an interruption: it resets current_streak and increments
// total_interrupted. During a break (or Paused from a break) it is a break
// cancellation per Open Question 2: current_streak is left untouched, since
// the streak only tracks consecutive completed work sessions. Either way the
// session's row becomes a terminal Store row, so total_interrupted is always
// incremented to keep it in step with total_completed + total_interrupted
// equaling the number of terminal rows in Store.
func (t *Timer) Stop(ctx context.Context) error {
	return t.call(ctx, func(rec *record) error {
		active := rec.state
		if active == Paused {
			active = rec.prev
		}
		if active != Working && active != ShortBreak && active != LongBreak {
			return apperr.New(apperr.InvalidTransition, "no active pomodoro to stop")
		}

		now := t.clock.Now()
		wasBreak := active == ShortBreak || active == LongBreak

		rec.session.Status = domain.SessionInterrupted
		rec.session.EndTime = &now
		rec.session.Duration = now.Sub(rec.session.StartTime)
		if err := t.sessions.Update(ctx, rec.session); err != nil {
			return err
		}

		rec.stats.TotalInterrupted++
		if wasBreak {
			rec.stats.TotalBreakTime += rec.session.Duration
		} else {
			rec.stats.CurrentStreak = 0
			rec.stats.TotalWorkTime += rec.session.Duration
		}

		finished := *rec.session
		rec.state = Idle
		rec.session = nil
		rec.stateStart = now
		rec.firedExpiry = false

		if wasBreak {
			t.bus.Publish(domain.Event{Kind: domain.EventBreakEnded, At: now, Payload: domain.BreakEndedPayload{}})
		}
		t.bus.Publish(domain.Event{Kind: domain.EventPomodoroInterrupted, At: now, Payload: domain.PomodoroPayload{Session: finished}})
		return nil
	})
}

// tick recomputes remaining time for the active phase and fires the
// expiration transition exactly once, guarded by firedExpiry, when
// remaining drops to zero or below.
func (t *Timer) tick(ctx context.Context, rec *record) {
	if rec.state == Idle || rec.state == Paused {
		return // Nothing counting down.
	}

	activeState := rec.state

	now := t.clock.Now()
	elapsed := now.Sub(rec.stateStart)
	duration := t.phaseDuration(activeState, Idle)
	remaining := duration - elapsed

	t.bus.Publish(domain.Event{
		Kind: domain.EventPomodoroTick,
		At:   now,
		Payload: domain.PomodoroTickPayload{
			SessionID: rec.session.ID,
			Elapsed:   elapsed,
			Remaining: remaining,
		},
	})

	if remaining > 0 || rec.firedExpiry {
		return
	}

	rec.firedExpiry = true
	t.expire(ctx, rec, now)
}

// expire fires the single transition a phase's natural expiry causes:
// Working -> {ShortBreak, LongBreak, Idle} on completion, or
// Break -> {Working, Idle} per auto_start_pomodoros.
func (t *Timer) expire(ctx context.Context, rec *record, now time.Time) {
	switch rec.state {
	case Working:
		t.completeWork(ctx, rec, now)
	case ShortBreak, LongBreak:
		t.completeBreak(ctx, rec, now)
	}
}

func (t *Timer) completeWork(ctx context.Context, rec *record, now time.Time) {
	rec.session.Status = domain.SessionCompleted
	rec.session.EndTime = &now
	rec.session.Duration = now.Sub(rec.session.StartTime)
	_ = t.sessions.Update(ctx, rec.session)

	rec.stats.TotalCompleted++
	rec.stats.TotalWorkTime += rec.session.Duration
	rec.stats.CurrentStreak++
	if rec.stats.CurrentStreak > rec.stats.LongestStreak {
		rec.stats.LongestStreak = rec.stats.CurrentStreak
	}
	dateKey := now.Format("2006-01-02")
	rec.stats.DailyCompleted[dateKey]++
	rec.sessionsDone++

	finished := *rec.session
	t.bus.Publish(domain.Event{Kind: domain.EventPomodoroCompleted, At: now, Payload: domain.PomodoroPayload{Session: finished}})

	if !t.cfg.AutoStartBreaks {
		rec.state = Idle
		rec.session = nil
		rec.stateStart = now
		rec.firedExpiry = false
		return
	}

	breakKind := domain.BreakShort
	nextState := ShortBreak
	if rec.sessionsDone%t.cfg.LongBreakInterval == 0 {
		breakKind = domain.BreakLong
		nextState = LongBreak
	}

	duration := t.cfg.ShortBreakDuration
	if breakKind == domain.BreakLong {
		duration = t.cfg.LongBreakDuration
	}

	breakSession := &domain.PomodoroSession{
		StartTime: now,
		Duration:  duration,
		Status:    domain.SessionBreak,
		BreakKind: breakKind,
		ProjectID: finished.ProjectID,
	}
	_ = t.sessions.Save(ctx, breakSession)

	rec.state = nextState
	rec.session = breakSession
	rec.stateStart = now
	rec.firedExpiry = false

	t.bus.Publish(domain.Event{Kind: domain.EventBreakStarted, At: now, Payload: domain.BreakStartedPayload{Duration: duration}})
}

func (t *Timer) completeBreak(ctx context.Context, rec *record, now time.Time) {
	rec.session.Status = domain.SessionCompleted
	rec.session.EndTime = &now
	rec.session.Duration = now.Sub(rec.session.StartTime)
	_ = t.sessions.Update(ctx, rec.session)
	rec.stats.TotalCompleted++
	rec.stats.TotalBreakTime += rec.session.Duration

	finished := *rec.session
	t.bus.Publish(domain.Event{Kind: domain.EventPomodoroCompleted, At: now, Payload: domain.PomodoroPayload{Session: finished}})
	t.bus.Publish(domain.Event{Kind: domain.EventBreakEnded, At: now, Payload: domain.BreakEndedPayload{}})

	if !t.cfg.AutoStartPomodoros {
		rec.state = Idle
		rec.session = nil
		rec.stateStart = now
		rec.firedExpiry = false
		return
	}

	session := &domain.PomodoroSession{
		StartTime: now,
		Duration:  t.cfg.WorkDuration,
		Status:    domain.SessionRunning,
		ProjectID: finished.ProjectID,
	}
	_ = t.sessions.Save(ctx, session)

	rec.state = Working
	rec.session = session
	rec.stateStart = now
	rec.firedExpiry = false
}
