// Package pluginhost implements PluginHost (C7): a fixed, built-in set of
// plugins delivered events from the EventBus on a single dispatcher
// goroutine, in dependency-topological then id-lexicographic order.
//
// Grounded on original_source's PluginManager/Plugin trait (domain/plugin.rs)
// adapted per the re-architecture guidance to a closed capability set — no
// dynamic library loading — the way the teacher has no plugin surface at all
// and the rest of the pack's dynamic-plugin-registry reference contributes
// only the dependency-validation and ordered-registration shape.
package pluginhost

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kodeflow/tempod/internal/domain"
)

// Metadata is the static declaration a plugin makes about itself.
type Metadata struct {
	ID           string
	Name         string
	Version      string
	Author       string
	Dependencies []string
	ConfigSchema json.RawMessage
}

// Plugin is the hook set every built-in plugin implements. Initialize is
// called with the persisted config (nil if never configured) whenever the
// plugin is registered or reconfigured. Start/Stop bracket the plugin's
// enabled lifetime; event hooks only fire between a returned Start and the
// next Stop.
type Plugin interface {
	Metadata() Metadata

	Initialize(ctx context.Context, config json.RawMessage) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	OnActivityChange(ctx context.Context, activity domain.Activity) error
	OnPomodoroStart(ctx context.Context, session domain.PomodoroSession) error
	OnPomodoroEnd(ctx context.Context, session domain.PomodoroSession) error
	OnBreakStart(ctx context.Context, duration time.Duration) error
	OnBreakEnd(ctx context.Context) error
}
