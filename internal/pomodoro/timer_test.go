package pomodoro

import (
	"context"
	"testing"
	"time"

	"github.com/kodeflow/tempod/internal/adapters/store"
	"github.com/kodeflow/tempod/internal/clock"
	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/eventbus"
	"github.com/kodeflow/tempod/internal/ports"
)

func newHarness(t *testing.T, cfg Config) (*Timer, *clock.Fake, ports.Store, context.Context, context.CancelFunc) {
	t.Helper()
	fake := clock.NewFake(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	bus := eventbus.New()
	t.Cleanup(bus.Close)

	timer := New(fake, s.Sessions(), bus, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	go timer.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-timer.Done()
	})
	// Let Run enter its select loop before commands are sent.
	time.Sleep(2 * time.Millisecond)
	return timer, fake, s, ctx, cancel
}

func defaultConfig() Config {
	return Config{
		WorkDuration:       25 * time.Minute,
		ShortBreakDuration: 5 * time.Minute,
		LongBreakDuration:  15 * time.Minute,
		LongBreakInterval:  4,
		AutoStartBreaks:    true,
		AutoStartPomodoros: false,
	}
}

func TestTimer_StartFromIdle(t *testing.T) {
	timer, _, _, ctx, _ := newHarness(t, defaultConfig())

	if err := timer.Start(ctx, nil, nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	snap, err := timer.CurrentSession(ctx)
	if err != nil {
		t.Fatalf("CurrentSession() error = %v", err)
	}
	if snap.State != Working {
		t.Errorf("State = %v, want Working", snap.State)
	}
}

func TestTimer_StartWhileActiveFails(t *testing.T) {
	timer, _, _, ctx, _ := newHarness(t, defaultConfig())
	_ = timer.Start(ctx, nil, nil)

	err := timer.Start(ctx, nil, nil)
	if err == nil {
		t.Fatal("expected InvalidTransition starting while already active")
	}
}

func TestTimer_PauseAndResume(t *testing.T) {
	timer, fake, _, ctx, _ := newHarness(t, defaultConfig())
	_ = timer.Start(ctx, nil, nil)

	fake.Advance(5 * time.Minute)
	if err := timer.Pause(ctx); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}

	snap, _ := timer.CurrentSession(ctx)
	if snap.State != Paused {
		t.Fatalf("State = %v, want Paused", snap.State)
	}

	if err := timer.Resume(ctx); err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	snap, _ = timer.CurrentSession(ctx)
	if snap.State != Working {
		t.Errorf("State = %v, want Working after resume", snap.State)
	}
}

func TestTimer_StopDuringWork_IsInterruption(t *testing.T) {
	timer, fake, _, ctx, _ := newHarness(t, defaultConfig())
	_ = timer.Start(ctx, nil, nil)
	fake.Advance(time.Minute)

	if err := timer.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	snap, _ := timer.CurrentSession(ctx)
	if snap.State != Idle {
		t.Fatalf("State = %v, want Idle", snap.State)
	}
	if snap.Stats.TotalInterrupted != 1 {
		t.Errorf("TotalInterrupted = %d, want 1", snap.Stats.TotalInterrupted)
	}
	if snap.Stats.CurrentStreak != 0 {
		t.Errorf("CurrentStreak = %d, want 0 after interruption", snap.Stats.CurrentStreak)
	}
}

func TestTimer_StopDuringBreak_IsCancellationNotInterruption(t *testing.T) {
	timer, fake, _, ctx, _ := newHarness(t, defaultConfig())
	_ = timer.Start(ctx, nil, nil)

	fake.Advance(25 * time.Minute)
	time.Sleep(2 * time.Millisecond)

	snap, _ := timer.CurrentSession(ctx)
	if snap.State != ShortBreak {
		t.Fatalf("State = %v, want ShortBreak after work completion", snap.State)
	}
	if snap.Stats.CurrentStreak != 1 {
		t.Fatalf("CurrentStreak = %d, want 1 after completing one pomodoro", snap.Stats.CurrentStreak)
	}

	if err := timer.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	snap, _ = timer.CurrentSession(ctx)
	if snap.State != Idle {
		t.Fatalf("State = %v, want Idle", snap.State)
	}
	if snap.Stats.TotalInterrupted != 1 {
		t.Errorf("TotalInterrupted = %d, want 1 (the cancelled break is still a terminal Store row)", snap.Stats.TotalInterrupted)
	}
	if snap.Stats.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want unchanged at 1 (break cancellation does not reset the work streak)", snap.Stats.CurrentStreak)
	}
}

func TestTimer_WorkExpiry_TransitionsToShortBreak(t *testing.T) {
	timer, fake, s, ctx, _ := newHarness(t, defaultConfig())
	_ = timer.Start(ctx, nil, nil)

	fake.Advance(25 * time.Minute)
	time.Sleep(2 * time.Millisecond)

	snap, _ := timer.CurrentSession(ctx)
	if snap.State != ShortBreak {
		t.Fatalf("State = %v, want ShortBreak", snap.State)
	}
	if snap.Stats.TotalCompleted != 1 {
		t.Errorf("TotalCompleted = %d, want 1", snap.Stats.TotalCompleted)
	}

	sessions, err := s.Sessions().Query(context.Background(), ports.TimeRange{
		Start: fake.Now().Add(-time.Hour),
		End:   fake.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Query() returned %d sessions, want 2 (completed work + new break)", len(sessions))
	}
}

func TestTimer_BreakExpiry_CountsTowardInvariant(t *testing.T) {
	cfg := defaultConfig()
	cfg.AutoStartBreaks = true
	timer, fake, s, ctx, _ := newHarness(t, cfg)
	_ = timer.Start(ctx, nil, nil)

	fake.Advance(25 * time.Minute)
	time.Sleep(2 * time.Millisecond)
	snap, _ := timer.CurrentSession(ctx)
	if snap.State != ShortBreak {
		t.Fatalf("State = %v, want ShortBreak after work completion", snap.State)
	}

	fake.Advance(5 * time.Minute)
	time.Sleep(2 * time.Millisecond)
	snap, _ = timer.CurrentSession(ctx)
	if snap.State != Idle {
		t.Fatalf("State = %v, want Idle after break expires (auto_start_pomodoros is false)", snap.State)
	}
	if snap.Stats.TotalCompleted != 2 {
		t.Errorf("TotalCompleted = %d, want 2 (work session + break both reached natural expiry)", snap.Stats.TotalCompleted)
	}

	sessions, err := s.Sessions().Query(context.Background(), ports.TimeRange{
		Start: fake.Now().Add(-time.Hour),
		End:   fake.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	terminal := 0
	for _, sess := range sessions {
		if sess.Status == domain.SessionCompleted || sess.Status == domain.SessionInterrupted {
			terminal++
		}
	}
	if total := snap.Stats.TotalCompleted + snap.Stats.TotalInterrupted; total != terminal {
		t.Errorf("TotalCompleted+TotalInterrupted = %d, want %d (terminal sessions in Store)", total, terminal)
	}
}

func TestTimer_LongBreakAfterInterval(t *testing.T) {
	cfg := defaultConfig()
	cfg.LongBreakInterval = 2
	timer, fake, _, ctx, _ := newHarness(t, cfg)

	// First pomodoro -> short break.
	_ = timer.Start(ctx, nil, nil)
	fake.Advance(25 * time.Minute)
	time.Sleep(2 * time.Millisecond)
	snap, _ := timer.CurrentSession(ctx)
	if snap.State != ShortBreak {
		t.Fatalf("first cycle: State = %v, want ShortBreak", snap.State)
	}

	fake.Advance(5 * time.Minute)
	time.Sleep(2 * time.Millisecond)
	snap, _ = timer.CurrentSession(ctx)
	if snap.State != Idle {
		t.Fatalf("after first break: State = %v, want Idle (auto_start_pomodoros is false)", snap.State)
	}

	// Second pomodoro -> long break (interval of 2 reached).
	_ = timer.Start(ctx, nil, nil)
	fake.Advance(25 * time.Minute)
	time.Sleep(2 * time.Millisecond)
	snap, _ = timer.CurrentSession(ctx)
	if snap.State != LongBreak {
		t.Fatalf("second cycle: State = %v, want LongBreak", snap.State)
	}
}

func TestTimer_InvalidTransitions(t *testing.T) {
	timer, _, _, ctx, _ := newHarness(t, defaultConfig())

	if err := timer.Pause(ctx); err == nil {
		t.Error("Pause() from Idle should fail")
	}
	if err := timer.Resume(ctx); err == nil {
		t.Error("Resume() from Idle should fail")
	}
	if err := timer.Stop(ctx); err == nil {
		t.Error("Stop() from Idle should fail")
	}
}

func TestTimer_DailyCompletedTracksByDate(t *testing.T) {
	timer, fake, _, ctx, _ := newHarness(t, defaultConfig())
	_ = timer.Start(ctx, nil, nil)
	fake.Advance(25 * time.Minute)
	time.Sleep(2 * time.Millisecond)

	snap, _ := timer.CurrentSession(ctx)
	key := fake.Now().Format("2006-01-02")
	if snap.Stats.DailyCompleted[key] != 1 {
		t.Errorf("DailyCompleted[%s] = %d, want 1", key, snap.Stats.DailyCompleted[key])
	}
}
