// Package integration exercises the Coordinator end-to-end, the way the
// teacher's integration suite drove a full pomodoro lifecycle through its
// service layer — generalized here to also cross activity sampling,
// classification rules, and plugin state in a single run.
package integration

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kodeflow/tempod/internal/clock"
	"github.com/kodeflow/tempod/internal/coordinator"
	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/export"
	"github.com/kodeflow/tempod/internal/platform"
	"github.com/kodeflow/tempod/internal/ports"
)

func setupCoordinator(t *testing.T) (*coordinator.Coordinator, *clock.Fake, *platform.Simulated) {
	t.Helper()
	fake := clock.NewFake(time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC))
	probe := platform.NewSimulated(fake)
	dir := t.TempDir()

	co, err := coordinator.New(coordinator.Deps{
		ConfigPath: filepath.Join(dir, "config.json"),
		DataDir:    dir,
		Probe:      probe,
		Clock:      fake,
	})
	if err != nil {
		t.Fatalf("coordinator.New() error = %v", err)
	}
	if err := co.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		if err := co.Stop(context.Background()); err != nil {
			t.Errorf("Stop() error = %v", err)
		}
	})
	return co, fake, probe
}

// TestFullSessionLifecycle drives a pomodoro session through every
// command — start, pause, resume, stop — and confirms the queries observe
// the corresponding state at each step, the same sequence the teacher's
// namesake test drove through its PomodoroService.
func TestFullSessionLifecycle(t *testing.T) {
	co, _, _ := setupCoordinator(t)
	ctx := context.Background()

	if err := co.StartPomodoro(ctx, nil, nil); err != nil {
		t.Fatalf("StartPomodoro() error = %v", err)
	}
	snap, err := co.GetCurrentPomodoro(ctx)
	if err != nil {
		t.Fatalf("GetCurrentPomodoro() error = %v", err)
	}
	if snap.State.String() != "working" {
		t.Errorf("state after start = %s, want working", snap.State)
	}

	if err := co.PausePomodoro(ctx); err != nil {
		t.Fatalf("PausePomodoro() error = %v", err)
	}
	snap, _ = co.GetCurrentPomodoro(ctx)
	if snap.State.String() != "paused" {
		t.Errorf("state after pause = %s, want paused", snap.State)
	}

	if err := co.ResumePomodoro(ctx); err != nil {
		t.Fatalf("ResumePomodoro() error = %v", err)
	}
	snap, _ = co.GetCurrentPomodoro(ctx)
	if snap.State.String() != "working" {
		t.Errorf("state after resume = %s, want working", snap.State)
	}

	if err := co.StopPomodoro(ctx); err != nil {
		t.Fatalf("StopPomodoro() error = %v", err)
	}
	snap, err = co.GetCurrentPomodoro(ctx)
	if err != nil {
		t.Fatalf("GetCurrentPomodoro() error = %v", err)
	}
	if snap.Session != nil {
		t.Errorf("expected no active session after stop, got %+v", snap.Session)
	}
}

// TestActivitySamplingThroughExport crosses rule classification, activity
// sampling, and the CSV exporter in one run: a rule is added, the simulated
// window changes twice, and the resulting activity segment is expected to
// come back out through the exact same export path a CLI invocation uses.
func TestActivitySamplingThroughExport(t *testing.T) {
	co, fake, probe := setupCoordinator(t)
	ctx := context.Background()

	if err := co.AddRule(ctx, &domain.Rule{
		Name:         "terminal",
		AppPattern:   "^Terminal$",
		Category:     "ops",
		IsProductive: true,
		Priority:     5,
	}); err != nil {
		t.Fatalf("AddRule() error = %v", err)
	}

	probe.SetForeground("Terminal", "deploy.sh")
	time.Sleep(5 * time.Millisecond)
	fake.Advance(31 * time.Second)
	time.Sleep(5 * time.Millisecond)

	probe.SetForeground("Mail", "inbox")
	fake.Advance(31 * time.Second)
	time.Sleep(5 * time.Millisecond)

	activities, err := co.GetActivities(ctx, ports.TimeRange{
		Start: fake.Now().Add(-time.Hour),
		End:   fake.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("GetActivities() error = %v", err)
	}

	var buf bytes.Buffer
	if err := export.Activities(&buf, export.FormatCSV, activities); err != nil {
		t.Fatalf("export.Activities() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Terminal") || !strings.Contains(buf.String(), "ops") {
		t.Errorf("exported CSV missing the classified Terminal segment: %q", buf.String())
	}
}

// TestPluginLifecycleSurvivesConfigReload toggles the built-in dailyrollup plugin
// and persists a config change through UpdateConfig, confirming both paths
// the Coordinator exposes for "settings applied while running" keep working
// together rather than only in isolation.
func TestPluginLifecycleSurvivesConfigReload(t *testing.T) {
	co, _, _ := setupCoordinator(t)
	ctx := context.Background()

	if err := co.DisablePlugin(ctx, "dailyrollup"); err != nil {
		t.Fatalf("DisablePlugin() error = %v", err)
	}

	cfg := co.GetConfig()
	cfg.Pomodoro.LongBreakInterval = 6
	if err := co.UpdateConfig(ctx, cfg); err != nil {
		t.Fatalf("UpdateConfig() error = %v", err)
	}
	if co.GetConfig().Pomodoro.LongBreakInterval != 6 {
		t.Errorf("LongBreakInterval = %d, want 6", co.GetConfig().Pomodoro.LongBreakInterval)
	}

	if err := co.EnablePlugin(ctx, "dailyrollup"); err != nil {
		t.Fatalf("EnablePlugin() error = %v", err)
	}
}
