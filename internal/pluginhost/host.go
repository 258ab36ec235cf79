package pluginhost

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/kodeflow/tempod/internal/apperr"
	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/eventbus"
	"github.com/kodeflow/tempod/internal/ports"
)

// hookTimeout bounds how long a single hook invocation may run before
// PluginHost cancels its context and moves on.
const hookTimeout = 5 * time.Second

type entry struct {
	plugin  Plugin
	meta    Metadata
	record  *domain.PluginRecord
	enabled bool
}

// Host is the PluginHost actor. Registration, enable/disable/configure, and
// event delivery are all serialized onto its single dispatcher goroutine —
// Run must be started before any of those calls are made.
type Host struct {
	store ports.PluginRepository
	bus   *eventbus.Bus

	commands chan func()
	done     chan struct{}

	entries map[string]*entry
	order   []string // dependency-topological, then id lexicographic
}

// New constructs a Host. Call Run in its own goroutine before using it.
func New(store ports.PluginRepository, bus *eventbus.Bus) *Host {
	return &Host{
		store:    store,
		bus:      bus,
		commands: make(chan func()),
		done:     make(chan struct{}),
		entries:  make(map[string]*entry),
	}
}

// Run subscribes to the EventBus and drives the dispatcher loop until ctx is
// cancelled.
func (h *Host) Run(ctx context.Context) {
	sub := h.bus.Subscribe()
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			return
		case cmd := <-h.commands:
			cmd()
		case v, ok := <-sub.Events():
			if !ok {
				continue
			}
			switch payload := v.(type) {
			case domain.Event:
				h.deliver(ctx, payload)
			case eventbus.Lagged:
				fmt.Fprintf(os.Stderr, "Warning: plugin host dropped %d buffered events, plugins may be out of sync\n", payload.N)
			}
		}
	}
}

// Done is closed once Run returns.
func (h *Host) Done() <-chan struct{} { return h.done }

func (h *Host) call(ctx context.Context, fn func() error) error {
	reply := make(chan error, 1)
	cmd := func() { reply <- fn() }
	select {
	case h.commands <- cmd:
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

// Register validates plugin's declared dependencies are already registered,
// loads or creates its persisted PluginRecord, initializes it, starts it if
// enabled, and adds it to the active set.
func (h *Host) Register(ctx context.Context, plugin Plugin) error {
	return h.call(ctx, func() error {
		meta := plugin.Metadata()
		for _, dep := range meta.Dependencies {
			if _, ok := h.entries[dep]; !ok {
				return apperr.New(apperr.MissingDependency, fmt.Sprintf("plugin %s depends on unregistered plugin %s", meta.ID, dep))
			}
		}

		record, err := h.store.Get(ctx, meta.ID)
		if apperr.Is(err, apperr.NotFound) {
			record = &domain.PluginRecord{ID: meta.ID, Enabled: true}
			if err := h.store.Save(ctx, record); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := plugin.Initialize(ctx, record.Config); err != nil {
			return err
		}
		if record.Enabled {
			if err := plugin.Start(ctx); err != nil {
				return err
			}
		}

		h.entries[meta.ID] = &entry{plugin: plugin, meta: meta, record: record, enabled: record.Enabled}
		h.recomputeOrder()
		return nil
	})
}

// Enable persists the plugin's enabled flag and starts it. The flag is
// restored if Start fails.
func (h *Host) Enable(ctx context.Context, id string) error {
	return h.call(ctx, func() error {
		e, ok := h.entries[id]
		if !ok {
			return apperr.New(apperr.NotFound, fmt.Sprintf("plugin %s is not registered", id))
		}
		if e.enabled {
			return nil
		}

		e.record.Enabled = true
		if err := h.store.Save(ctx, e.record); err != nil {
			return err
		}
		if err := e.plugin.Start(ctx); err != nil {
			e.record.Enabled = false
			_ = h.store.Save(ctx, e.record)
			return err
		}
		e.enabled = true
		return nil
	})
}

// Disable persists the plugin's disabled flag and stops it. The flag is
// restored if Stop fails.
func (h *Host) Disable(ctx context.Context, id string) error {
	return h.call(ctx, func() error {
		e, ok := h.entries[id]
		if !ok {
			return apperr.New(apperr.NotFound, fmt.Sprintf("plugin %s is not registered", id))
		}
		if !e.enabled {
			return nil
		}

		e.record.Enabled = false
		if err := h.store.Save(ctx, e.record); err != nil {
			return err
		}
		if err := e.plugin.Stop(ctx); err != nil {
			e.record.Enabled = true
			_ = h.store.Save(ctx, e.record)
			return err
		}
		e.enabled = false
		return nil
	})
}

// Configure validates newConfig against the plugin's declared schema, then
// persists it, re-initializes the plugin, and restarts it if enabled.
func (h *Host) Configure(ctx context.Context, id string, newConfig json.RawMessage) error {
	return h.call(ctx, func() error {
		e, ok := h.entries[id]
		if !ok {
			return apperr.New(apperr.NotFound, fmt.Sprintf("plugin %s is not registered", id))
		}
		if err := validateConfig(e.meta.ConfigSchema, newConfig); err != nil {
			return apperr.Wrap(apperr.InvalidConfig, fmt.Sprintf("invalid config for plugin %s", id), err)
		}

		prevConfig := e.record.Config
		e.record.Config = newConfig
		if err := h.store.Save(ctx, e.record); err != nil {
			return err
		}
		if err := e.plugin.Initialize(ctx, newConfig); err != nil {
			e.record.Config = prevConfig
			_ = h.store.Save(ctx, e.record)
			return err
		}
		if e.enabled {
			if err := e.plugin.Stop(ctx); err != nil {
				return err
			}
			if err := e.plugin.Start(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// validateConfig confirms newConfig is well-formed JSON honoring the schema's
// declared shape. No JSON Schema validator ships in the teacher's or pack's
// dependency set (invopop/jsonschema, the one schema library in go.mod, only
// generates schemas for mcp-go tool definitions — it has no validation API),
// so this checks well-formedness against encoding/json rather than pulling in
// an unrelated validator for a single call site.
func validateConfig(schema, config json.RawMessage) error {
	if len(config) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(config, &v); err != nil {
		return fmt.Errorf("config is not valid JSON: %w", err)
	}
	if len(schema) == 0 {
		return nil
	}
	if _, ok := v.(map[string]any); !ok {
		return fmt.Errorf("config must be a JSON object")
	}
	return nil
}

// recomputeOrder rebuilds the delivery order: dependencies before
// dependents, ties broken by ascending id.
func (h *Host) recomputeOrder() {
	ids := make([]string, 0, len(h.entries))
	for id := range h.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	visited := make(map[string]bool, len(ids))
	order := make([]string, 0, len(ids))
	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		e, ok := h.entries[id]
		if !ok {
			return
		}
		deps := append([]string(nil), e.meta.Dependencies...)
		sort.Strings(deps)
		for _, dep := range deps {
			visit(dep)
		}
		order = append(order, id)
	}
	for _, id := range ids {
		visit(id)
	}
	h.order = order
}

func (h *Host) deliver(ctx context.Context, ev domain.Event) {
	for _, id := range h.order {
		e, ok := h.entries[id]
		if !ok || !e.enabled {
			continue
		}
		h.invoke(ctx, e, ev)
	}
}

func (h *Host) invoke(ctx context.Context, e *entry, ev domain.Event) {
	hctx, cancel := context.WithTimeout(ctx, hookTimeout)
	defer cancel()

	var err error
	switch ev.Kind {
	case domain.EventActivityStopped:
		if p, ok := ev.Payload.(domain.ActivityPayload); ok {
			err = e.plugin.OnActivityChange(hctx, p.Activity)
		}
	case domain.EventPomodoroStarted:
		if p, ok := ev.Payload.(domain.PomodoroPayload); ok {
			err = e.plugin.OnPomodoroStart(hctx, p.Session)
		}
	case domain.EventPomodoroCompleted, domain.EventPomodoroInterrupted:
		if p, ok := ev.Payload.(domain.PomodoroPayload); ok {
			err = e.plugin.OnPomodoroEnd(hctx, p.Session)
		}
	case domain.EventBreakStarted:
		if p, ok := ev.Payload.(domain.BreakStartedPayload); ok {
			err = e.plugin.OnBreakStart(hctx, p.Duration)
		}
	case domain.EventBreakEnded:
		err = e.plugin.OnBreakEnd(hctx)
	default:
		return
	}

	if err == nil {
		return
	}
	hookErr := apperr.Wrap(apperr.PluginHookError, fmt.Sprintf("plugin %s handling %s", e.meta.ID, ev.Kind), err)
	if hctx.Err() != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (timed out after %s)\n", hookErr, hookTimeout)
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: %v\n", hookErr)
}
