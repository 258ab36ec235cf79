// Package coordinator implements Coordinator (C8): the composition root
// wiring Clock, Store, EventBus, RuleEngine, ActivitySampler, PomodoroTimer,
// PluginHost, and ConfigStore, and the single Commands/Queries surface every
// UI shell (cmd/, the bubbletea live view, the MCP server) calls instead of
// touching any component directly.
//
// Grounded on the teacher's cmd/root.go composition (opening storage, wiring
// services, registering cobra subcommands against one shared state),
// generalized from a single-process CLI invocation into a long-running
// daemon's startup and shutdown sequence.
package coordinator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/kodeflow/tempod/internal/adapters/store"
	"github.com/kodeflow/tempod/internal/clock"
	"github.com/kodeflow/tempod/internal/config"
	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/eventbus"
	"github.com/kodeflow/tempod/internal/platform"
	"github.com/kodeflow/tempod/internal/pluginhost"
	"github.com/kodeflow/tempod/internal/pomodoro"
	"github.com/kodeflow/tempod/internal/ports"
	"github.com/kodeflow/tempod/internal/ruleengine"
	"github.com/kodeflow/tempod/internal/sampler"
)

// Coordinator is the composition root and command/query facade described by
// the daemon's core architecture. Construct with New, call Start, and Stop
// on shutdown.
type Coordinator struct {
	clock clock.Clock
	store ports.Store
	bus   *eventbus.Bus
	rules *ruleengine.Engine

	sample *sampler.Sampler
	timer  *pomodoro.Timer
	host   *pluginhost.Host

	cfg     *config.Config
	cfgPath string
	watcher *config.Watcher
	probe   platform.WindowProbe

	cancel context.CancelFunc
}

// Deps are the externally-supplied pieces Coordinator cannot construct
// itself: where the config file and data directory live, and the platform
// capability the sampler polls (cmd/root.go supplies none, so New falls back
// to platform.Simulated; tests wire platform.Simulated on a clock.Fake).
type Deps struct {
	ConfigPath string
	DataDir    string
	Probe      platform.WindowProbe
	Clock      clock.Clock
}

// New loads config, opens the store (running its migrations), and wires every
// core component's dependencies, but starts no actor goroutine yet — call
// Start for that.
func New(deps Deps) (*Coordinator, error) {
	cfgPath := deps.ConfigPath
	if cfgPath == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	c := deps.Clock
	if c == nil {
		c = clock.New()
	}

	probe := deps.Probe
	if probe == nil {
		probe = platform.NewSimulated(c)
	}

	dataDir := deps.DataDir
	if dataDir == "" {
		dataDir = cfg.Storage.DataDir
	}

	st, err := store.New(filepath.Join(dataDir, "time_tracker.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	return &Coordinator{
		clock:   c,
		store:   st,
		bus:     eventbus.New(),
		rules:   ruleengine.New(st.Rules()),
		cfg:     cfg,
		cfgPath: cfgPath,
		probe:   probe,
	}, nil
}

// Start runs the startup sequence: migrate storage, load rules, construct
// and start the sampler/timer/plugin-host actors, register the built-in
// plugins, start watching the config file, then publish
// EventApplicationStarted.
func (co *Coordinator) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	co.cancel = cancel

	if err := co.store.Migrate(runCtx); err != nil {
		cancel()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := co.rules.Load(runCtx); err != nil {
		cancel()
		return fmt.Errorf("failed to load rules: %w", err)
	}

	co.sample = sampler.New(co.clock, co.probe, co.store.Activities(), co.rules, co.bus, sampler.Config{
		PollInterval:  time.Duration(co.cfg.Sampler.PollInterval),
		IdleThreshold: time.Duration(co.cfg.Sampler.IdleThreshold),
	})
	co.timer = pomodoro.New(co.clock, co.store.Sessions(), co.bus, pomodoro.Config{
		WorkDuration:       time.Duration(co.cfg.Pomodoro.WorkDuration),
		ShortBreakDuration: time.Duration(co.cfg.Pomodoro.ShortBreakDuration),
		LongBreakDuration:  time.Duration(co.cfg.Pomodoro.LongBreakDuration),
		LongBreakInterval:  co.cfg.Pomodoro.LongBreakInterval,
		AutoStartBreaks:    co.cfg.Pomodoro.AutoStartBreaks,
		AutoStartPomodoros: co.cfg.Pomodoro.AutoStartPomodoros,
	})
	co.host = pluginhost.New(co.store.Plugins(), co.bus)

	go co.sample.Run(runCtx)
	go co.timer.Run(runCtx)
	go co.host.Run(runCtx)

	if err := co.host.Register(runCtx, pluginhost.NewDailyRollupPlugin(co.store.Summaries(), co.clock)); err != nil {
		cancel()
		return fmt.Errorf("failed to register dailyrollup plugin: %w", err)
	}
	if err := co.host.Register(runCtx, pluginhost.NewNotifyPlugin()); err != nil {
		cancel()
		return fmt.Errorf("failed to register notify plugin: %w", err)
	}

	watcher, err := config.NewWatcher(co.cfgPath, co.onConfigReload)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to watch config: %w", err)
	}
	co.watcher = watcher

	co.bus.Publish(domain.Event{Kind: domain.EventApplicationStarted, At: co.clock.WallNow()})
	return nil
}

func (co *Coordinator) onConfigReload(cfg *config.Config) {
	co.cfg = cfg
	co.bus.Publish(domain.Event{Kind: domain.EventConfigUpdated, At: co.clock.WallNow(), Payload: domain.ConfigUpdatedPayload{}})
}

// Stop runs the shutdown sequence in reverse startup order: publish
// EventApplicationStopping, stop watching config, cancel the actors' shared
// context, wait for each to finish closing out its own state, close the
// event bus, then close storage.
func (co *Coordinator) Stop(ctx context.Context) error {
	co.bus.Publish(domain.Event{Kind: domain.EventApplicationStopping, At: co.clock.WallNow()})

	if co.watcher != nil {
		co.watcher.Close()
	}
	if co.cancel != nil {
		co.cancel()
	}
	if co.sample != nil {
		<-co.sample.Done()
	}
	if co.timer != nil {
		<-co.timer.Done()
	}
	if co.host != nil {
		<-co.host.Done()
	}

	co.bus.Close()
	return co.store.Close()
}
