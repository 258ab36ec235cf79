package pluginhost

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/kodeflow/tempod/internal/domain"
)

// notifyConfigSchema documents the one knob Configure accepts.
const notifyConfigSchema = `{"type":"object","properties":{"icon":{"type":"string"}}}`

type notifyConfig struct {
	Icon string `json:"icon"`
}

// NotifyPlugin is the built-in desktop-notification plugin, grounded on the
// teacher's beeep-backed notifier (internal/adapters/notification), adapted
// from a standalone helper struct into a PluginHost hook implementation.
type NotifyPlugin struct {
	mu  sync.Mutex
	cfg notifyConfig
}

// NewNotifyPlugin constructs the notify plugin.
func NewNotifyPlugin() *NotifyPlugin {
	return &NotifyPlugin{}
}

func (p *NotifyPlugin) Metadata() Metadata {
	return Metadata{
		ID:           "notify",
		Name:         "Desktop Notifications",
		Version:      "1.0.0",
		Author:       "tempod",
		ConfigSchema: json.RawMessage(notifyConfigSchema),
	}
}

func (p *NotifyPlugin) Initialize(_ context.Context, config json.RawMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = notifyConfig{}
	if len(config) == 0 {
		return nil
	}
	return json.Unmarshal(config, &p.cfg)
}

func (p *NotifyPlugin) Start(_ context.Context) error { return nil }
func (p *NotifyPlugin) Stop(_ context.Context) error  { return nil }

func (p *NotifyPlugin) OnActivityChange(_ context.Context, _ domain.Activity) error {
	return nil
}

func (p *NotifyPlugin) OnPomodoroStart(_ context.Context, session domain.PomodoroSession) error {
	return p.notify("Pomodoro started", fmt.Sprintf("Focusing for %s.", session.Duration.Round(time.Second)))
}

func (p *NotifyPlugin) OnPomodoroEnd(_ context.Context, session domain.PomodoroSession) error {
	if session.IsBreak() {
		return nil
	}
	if session.Status == domain.SessionCompleted {
		return p.notify("🍅 Pomodoro Complete!", fmt.Sprintf("Great job! You completed a %s work session.", session.Duration.Round(time.Second)))
	}
	return p.notify("Pomodoro stopped", "The session was interrupted before it completed.")
}

func (p *NotifyPlugin) OnBreakStart(_ context.Context, duration time.Duration) error {
	return p.notify("☕ Break time", fmt.Sprintf("Take a %s break.", duration.Round(time.Second)))
}

func (p *NotifyPlugin) OnBreakEnd(_ context.Context) error {
	return p.notify("☕ Break over", "Ready to focus?")
}

func (p *NotifyPlugin) notify(title, message string) error {
	p.mu.Lock()
	icon := p.cfg.Icon
	p.mu.Unlock()
	return beeep.Notify(title, message, icon)
}
