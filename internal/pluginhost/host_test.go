package pluginhost

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/kodeflow/tempod/internal/adapters/store"
	"github.com/kodeflow/tempod/internal/clock"
	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/eventbus"
	"github.com/kodeflow/tempod/internal/ports"
)

// recordingPlugin counts hook invocations and records delivery order into a
// shared slice, so tests can assert both "was called" and "called in order".
type recordingPlugin struct {
	id      string
	deps    []string
	order   *[]string
	starts  int
	stops   int
	fail    bool
	onEnd   []domain.PomodoroSession
}

func (p *recordingPlugin) Metadata() Metadata {
	return Metadata{ID: p.id, Name: p.id, Version: "0.0.1", Dependencies: p.deps}
}
func (p *recordingPlugin) Initialize(context.Context, json.RawMessage) error { return nil }
func (p *recordingPlugin) Start(context.Context) error                      { p.starts++; return nil }
func (p *recordingPlugin) Stop(context.Context) error                       { p.stops++; return nil }
func (p *recordingPlugin) OnActivityChange(context.Context, domain.Activity) error {
	*p.order = append(*p.order, p.id)
	if p.fail {
		return errBoom
	}
	return nil
}
func (p *recordingPlugin) OnPomodoroStart(context.Context, domain.PomodoroSession) error { return nil }
func (p *recordingPlugin) OnPomodoroEnd(_ context.Context, s domain.PomodoroSession) error {
	p.onEnd = append(p.onEnd, s)
	return nil
}
func (p *recordingPlugin) OnBreakStart(context.Context, time.Duration) error { return nil }
func (p *recordingPlugin) OnBreakEnd(context.Context) error                 { return nil }

var errBoom = &testErr{"boom"}

type testErr struct{ s string }

func (e *testErr) Error() string { return e.s }

func newHarness(t *testing.T) (*Host, ports.Store, *eventbus.Bus, context.Context) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	bus := eventbus.New()
	t.Cleanup(bus.Close)

	h := New(s.Plugins(), bus)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	time.Sleep(2 * time.Millisecond)
	return h, s, bus, ctx
}

func TestHost_RegisterMissingDependencyFails(t *testing.T) {
	h, _, _, ctx := newHarness(t)
	var order []string
	plugin := &recordingPlugin{id: "b", deps: []string{"a"}, order: &order}

	err := h.Register(ctx, plugin)
	if err == nil {
		t.Fatal("expected MissingDependency error")
	}
}

func TestHost_RegisterStartsEnabledPlugin(t *testing.T) {
	h, _, _, ctx := newHarness(t)
	var order []string
	plugin := &recordingPlugin{id: "a", order: &order}

	if err := h.Register(ctx, plugin); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if plugin.starts != 1 {
		t.Errorf("starts = %d, want 1 (new records default enabled)", plugin.starts)
	}
}

func TestHost_DeliversInDependencyOrder(t *testing.T) {
	h, _, bus, ctx := newHarness(t)
	var order []string

	a := &recordingPlugin{id: "a", order: &order}
	b := &recordingPlugin{id: "b", deps: []string{"a"}, order: &order}
	c := &recordingPlugin{id: "c", order: &order} // no deps, but id sorts after a lexicographically

	if err := h.Register(ctx, a); err != nil {
		t.Fatalf("Register(a) error = %v", err)
	}
	if err := h.Register(ctx, b); err != nil {
		t.Fatalf("Register(b) error = %v", err)
	}
	if err := h.Register(ctx, c); err != nil {
		t.Fatalf("Register(c) error = %v", err)
	}

	bus.Publish(domain.Event{Kind: domain.EventActivityStopped, At: time.Now(), Payload: domain.ActivityPayload{Activity: domain.Activity{AppName: "editor"}}})
	time.Sleep(10 * time.Millisecond)

	if len(order) != 3 {
		t.Fatalf("order = %v, want 3 deliveries", order)
	}
	if order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("order = %v, want [a b c] (a before its dependent b, then c)", order)
	}
}

func TestHost_DisabledPluginDoesNotReceiveEvents(t *testing.T) {
	h, _, bus, ctx := newHarness(t)
	var order []string
	plugin := &recordingPlugin{id: "a", order: &order}
	_ = h.Register(ctx, plugin)

	if err := h.Disable(ctx, "a"); err != nil {
		t.Fatalf("Disable() error = %v", err)
	}
	if plugin.stops != 1 {
		t.Errorf("stops = %d, want 1", plugin.stops)
	}

	bus.Publish(domain.Event{Kind: domain.EventActivityStopped, At: time.Now(), Payload: domain.ActivityPayload{Activity: domain.Activity{}}})
	time.Sleep(10 * time.Millisecond)

	if len(order) != 0 {
		t.Errorf("order = %v, want no deliveries to a disabled plugin", order)
	}
}

func TestHost_EnableRestartsPlugin(t *testing.T) {
	h, _, _, ctx := newHarness(t)
	var order []string
	plugin := &recordingPlugin{id: "a", order: &order}
	_ = h.Register(ctx, plugin)
	_ = h.Disable(ctx, "a")

	if err := h.Enable(ctx, "a"); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}
	if plugin.starts != 2 {
		t.Errorf("starts = %d, want 2 (initial register + re-enable)", plugin.starts)
	}
}

func TestHost_ConfigureRejectsInvalidJSON(t *testing.T) {
	h, _, _, ctx := newHarness(t)
	var order []string
	plugin := &recordingPlugin{id: "a", order: &order}
	_ = h.Register(ctx, plugin)

	err := h.Configure(ctx, "a", json.RawMessage(`not json`))
	if err == nil {
		t.Fatal("expected InvalidConfig error for malformed JSON")
	}
}

func TestHost_HookErrorDoesNotStopDelivery(t *testing.T) {
	h, _, bus, ctx := newHarness(t)
	var order []string
	a := &recordingPlugin{id: "a", order: &order, fail: true}
	b := &recordingPlugin{id: "b", order: &order}
	_ = h.Register(ctx, a)
	_ = h.Register(ctx, b)

	bus.Publish(domain.Event{Kind: domain.EventActivityStopped, At: time.Now(), Payload: domain.ActivityPayload{Activity: domain.Activity{}}})
	time.Sleep(10 * time.Millisecond)

	if len(order) != 2 {
		t.Errorf("order = %v, want both plugins invoked despite a's failure", order)
	}
}

func TestHost_DailyRollupTracksActivity(t *testing.T) {
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	bus := eventbus.New()
	t.Cleanup(bus.Close)

	h := New(s.Plugins(), bus)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	time.Sleep(2 * time.Millisecond)

	fake := clock.NewFake(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	rollup := NewDailyRollupPlugin(s.Summaries(), fake)
	if err := h.Register(ctx, rollup); err != nil {
		t.Fatalf("Register(dailyrollup) error = %v", err)
	}

	activity := domain.Activity{AppName: "editor", StartTime: fake.Now(), Duration: time.Hour, IsProductive: true}
	bus.Publish(domain.Event{Kind: domain.EventActivityStopped, At: fake.Now(), Payload: domain.ActivityPayload{Activity: activity}})
	time.Sleep(10 * time.Millisecond)

	summary, err := s.Summaries().Get(context.Background(), truncateToDate(fake.Now()))
	if err != nil {
		t.Fatalf("Summaries().Get() error = %v", err)
	}
	if summary.ActivitiesTracked != 1 {
		t.Errorf("ActivitiesTracked = %d, want 1", summary.ActivitiesTracked)
	}
	if summary.ProductiveDuration != time.Hour {
		t.Errorf("ProductiveDuration = %v, want 1h", summary.ProductiveDuration)
	}
}
