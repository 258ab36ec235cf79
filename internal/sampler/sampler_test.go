package sampler

import (
	"context"
	"testing"
	"time"

	"github.com/kodeflow/tempod/internal/adapters/store"
	"github.com/kodeflow/tempod/internal/clock"
	"github.com/kodeflow/tempod/internal/eventbus"
	"github.com/kodeflow/tempod/internal/platform"
	"github.com/kodeflow/tempod/internal/ports"
)

func newHarness(t *testing.T) (*Sampler, *clock.Fake, *platform.Simulated, ports.Store, *eventbus.Bus) {
	t.Helper()
	fake := clock.NewFake(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	probe := platform.NewSimulated(fake)
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	bus := eventbus.New()
	t.Cleanup(bus.Close)

	smp := New(fake, probe, s.Activities(), nil, bus, Config{
		PollInterval:  time.Minute,
		IdleThreshold: 5 * time.Minute,
	})
	return smp, fake, probe, s, bus
}

func TestSampler_ExtendsSegmentWhileForegroundUnchanged(t *testing.T) {
	smp, fake, probe, s, _ := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	probe.SetForeground("vim", "main.go")

	done := make(chan struct{})
	go func() { smp.Run(ctx); close(done) }()

	// Let Run observe the ticker and commands channel before driving it.
	time.Sleep(5 * time.Millisecond)

	fake.Advance(time.Minute)
	time.Sleep(5 * time.Millisecond)
	fake.Advance(time.Minute)
	time.Sleep(5 * time.Millisecond)

	cancel()
	<-done

	activities, err := s.Activities().Query(context.Background(), ports.TimeRange{
		Start: fake.Now().Add(-time.Hour),
		End:   fake.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("Query() returned %d activities, want 1 continuous segment", len(activities))
	}
	if activities[0].Duration < 2*time.Minute {
		t.Errorf("Duration = %v, want >= 2m", activities[0].Duration)
	}
}

func TestSampler_ClosesAndOpensOnForegroundChange(t *testing.T) {
	smp, fake, probe, s, _ := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	probe.SetForeground("vim", "main.go")

	done := make(chan struct{})
	go func() { smp.Run(ctx); close(done) }()
	time.Sleep(5 * time.Millisecond)

	fake.Advance(time.Minute)
	time.Sleep(5 * time.Millisecond)

	probe.SetForeground("firefox", "docs")
	fake.Advance(time.Minute)
	time.Sleep(5 * time.Millisecond)

	cancel()
	<-done

	activities, err := s.Activities().Query(context.Background(), ports.TimeRange{
		Start: fake.Now().Add(-time.Hour),
		End:   fake.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("Query() returned %d activities, want 2", len(activities))
	}
	if activities[0].AppName != "vim" || activities[1].AppName != "firefox" {
		t.Errorf("activities = %+v, want [vim, firefox]", activities)
	}
}

func TestSampler_IdleClosesSegmentWithoutReopening(t *testing.T) {
	smp, fake, probe, s, _ := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	probe.SetForeground("vim", "main.go")

	done := make(chan struct{})
	go func() { smp.Run(ctx); close(done) }()
	time.Sleep(5 * time.Millisecond)

	fake.Advance(time.Minute)
	time.Sleep(5 * time.Millisecond)

	probe.SetIdleSince(fake.Now())
	fake.Advance(6 * time.Minute)
	time.Sleep(5 * time.Millisecond)

	cancel()
	<-done

	activities, err := s.Activities().Query(context.Background(), ports.TimeRange{
		Start: fake.Now().Add(-time.Hour),
		End:   fake.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("Query() returned %d activities, want 1 segment closed at idle onset", len(activities))
	}
}

func TestSampler_SubSecondSegmentMergesForward(t *testing.T) {
	smp, fake, probe, s, _ := newHarness(t)
	ctx := context.Background()
	state := &samplerState{}

	probe.SetForeground("a", "t1")
	smp.poll(ctx, state)

	// Advance by less than a second and switch windows: the first segment
	// is too short to persist on its own.
	fake.Advance(500 * time.Millisecond)
	probe.SetForeground("b", "t2")
	smp.poll(ctx, state)

	fake.Advance(2 * time.Second)
	probe.SetForeground("c", "t3")
	smp.poll(ctx, state)

	smp.closeSegment(ctx, state, nil, fake.Now())

	activities, err := s.Activities().Query(context.Background(), ports.TimeRange{
		Start: fake.Now().Add(-time.Hour),
		End:   fake.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("Query() returned %d activities, want the sub-second segment's time merged into the next", len(activities))
	}
	if activities[0].AppName != "b" {
		t.Errorf("AppName = %v, want b (carrying forward the dropped a segment's time)", activities[0].AppName)
	}
	if activities[0].Duration < 2*time.Second+500*time.Millisecond {
		t.Errorf("Duration = %v, want >= 2.5s (merged forward, not dropped)", activities[0].Duration)
	}
}
