package coordinator

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kodeflow/tempod/internal/clock"
	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/platform"
	"github.com/kodeflow/tempod/internal/ports"
)

func newHarness(t *testing.T) (*Coordinator, *clock.Fake, *platform.Simulated) {
	t.Helper()
	fake := clock.NewFake(time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC))
	probe := platform.NewSimulated(fake)

	dir := t.TempDir()
	co, err := New(Deps{
		ConfigPath: filepath.Join(dir, "config.json"),
		DataDir:    dir,
		Probe:      probe,
		Clock:      fake,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if err := co.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		if err := co.Stop(context.Background()); err != nil {
			t.Errorf("Stop() error = %v", err)
		}
	})
	return co, fake, probe
}

func TestCoordinator_StartStopIsClean(t *testing.T) {
	newHarness(t)
}

func TestCoordinator_ProjectLifecycle(t *testing.T) {
	co, _, _ := newHarness(t)
	ctx := context.Background()

	p, err := co.CreateProject(ctx, "Writing", "", "#ffaa00")
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if p.ID == 0 {
		t.Fatal("expected a persisted project id")
	}

	projects, err := co.GetProjects(ctx, false)
	if err != nil {
		t.Fatalf("GetProjects() error = %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "Writing" {
		t.Errorf("GetProjects() = %+v, want one project named Writing", projects)
	}

	if err := co.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	projects, err = co.GetProjects(ctx, false)
	if err != nil {
		t.Fatalf("GetProjects() error = %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("GetProjects() after delete = %+v, want none", projects)
	}
}

func TestCoordinator_PomodoroCommandsDriveTimer(t *testing.T) {
	co, _, _ := newHarness(t)
	ctx := context.Background()

	if err := co.StartPomodoro(ctx, nil, nil); err != nil {
		t.Fatalf("StartPomodoro() error = %v", err)
	}
	snap, err := co.GetCurrentPomodoro(ctx)
	if err != nil {
		t.Fatalf("GetCurrentPomodoro() error = %v", err)
	}
	if snap.Session == nil {
		t.Fatal("expected an active pomodoro session")
	}

	if err := co.PausePomodoro(ctx); err != nil {
		t.Fatalf("PausePomodoro() error = %v", err)
	}
	if err := co.ResumePomodoro(ctx); err != nil {
		t.Fatalf("ResumePomodoro() error = %v", err)
	}
	if err := co.StopPomodoro(ctx); err != nil {
		t.Fatalf("StopPomodoro() error = %v", err)
	}

	snap, err = co.GetCurrentPomodoro(ctx)
	if err != nil {
		t.Fatalf("GetCurrentPomodoro() error = %v", err)
	}
	if snap.Session != nil {
		t.Errorf("GetCurrentPomodoro() after stop = %+v, want no active session", snap.Session)
	}
}

func TestCoordinator_RuleLifecycleAffectsActivitySampling(t *testing.T) {
	co, fake, probe := newHarness(t)
	ctx := context.Background()

	if err := co.AddRule(ctx, &domain.Rule{
		Name:         "editor",
		AppPattern:   "^Editor$",
		Category:     "coding",
		IsProductive: true,
		Priority:     10,
	}); err != nil {
		t.Fatalf("AddRule() error = %v", err)
	}

	probe.SetForeground("Editor", "main.go")
	time.Sleep(5 * time.Millisecond) // let the sampler actor register its ticker first
	fake.Advance(31 * time.Second)   // crosses the default 30s poll interval
	time.Sleep(5 * time.Millisecond)

	probe.SetForeground("Browser", "news")
	fake.Advance(31 * time.Second)
	time.Sleep(5 * time.Millisecond)

	activities, err := co.GetActivities(ctx, ports.TimeRange{
		Start: fake.Now().Add(-time.Hour),
		End:   fake.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("GetActivities() error = %v", err)
	}

	var sawCoding bool
	for _, a := range activities {
		if a.AppName == "Editor" {
			sawCoding = a.Category == "coding" && a.IsProductive
		}
	}
	if !sawCoding {
		t.Errorf("GetActivities() = %+v, want an Editor segment classified as coding", activities)
	}
}

func TestCoordinator_PluginCommandsRoundTrip(t *testing.T) {
	co, _, _ := newHarness(t)
	ctx := context.Background()

	if err := co.DisablePlugin(ctx, "notify"); err != nil {
		t.Fatalf("DisablePlugin() error = %v", err)
	}
	if err := co.EnablePlugin(ctx, "notify"); err != nil {
		t.Fatalf("EnablePlugin() error = %v", err)
	}
}

func TestCoordinator_UpdateConfigPersists(t *testing.T) {
	co, _, _ := newHarness(t)
	ctx := context.Background()

	cfg := co.GetConfig()
	cfg.UI.FontSize = 20
	if err := co.UpdateConfig(ctx, cfg); err != nil {
		t.Fatalf("UpdateConfig() error = %v", err)
	}
	if co.GetConfig().UI.FontSize != 20 {
		t.Errorf("GetConfig().UI.FontSize = %d, want 20", co.GetConfig().UI.FontSize)
	}
}
